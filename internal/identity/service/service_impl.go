package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/clock"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	"github.com/smallbiznis/credicheck/internal/identity/password"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	obslogger "github.com/smallbiznis/credicheck/internal/observability/logger"
	"github.com/smallbiznis/credicheck/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      identitydomain.Repository
	LedgerSvc ledgerdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      identitydomain.Repository
	ledgerSvc ledgerdomain.Service
}

func New(p Params) identitydomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("identity.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		ledgerSvc: p.LedgerSvc,
	}
}

func (s *Service) Register(ctx context.Context, req identitydomain.RegisterRequest) (*identitydomain.User, error) {
	normalizeRegisterRequest(&req)
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByIdentity(ctx, s.db, req.PAN, req.Mobile)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Re-registration is a lookup, not a conflict, for consumers.
		return existing, nil
	}

	user, err := s.newUser(req, identitydomain.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, identitydomain.ErrAlreadyExists
		}
		return nil, err
	}

	obslogger.WithContext(ctx, s.log).Info("consumer registered",
		zap.String("user_id", user.ID.String()),
	)
	return user, nil
}

func (s *Service) CreatePartner(ctx context.Context, req identitydomain.CreatePartnerRequest) (*identitydomain.User, error) {
	normalizeRegisterRequest(&req.RegisterRequest)
	if err := validateRegisterRequest(req.RegisterRequest); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByIdentity(ctx, s.db, req.PAN, req.Mobile)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, identitydomain.ErrAlreadyExists
	}

	user, err := s.newUser(req.RegisterRequest, identitydomain.RolePartnerAdmin)
	if err != nil {
		return nil, err
	}
	user.FranchiseCode = s.franchiseCode(user.ID)
	if req.Password != "" {
		hash, err := password.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, identitydomain.ErrAlreadyExists
		}
		return nil, err
	}
	if err := s.ledgerSvc.EnsureWallet(ctx, user.ID); err != nil {
		return nil, err
	}

	obslogger.WithContext(ctx, s.log).Info("partner created",
		zap.String("user_id", user.ID.String()),
		zap.String("franchise_code", user.FranchiseCode),
	)
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (*identitydomain.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, identitydomain.ErrNotFound
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, role identitydomain.Role) ([]identitydomain.User, error) {
	if role != "" && !validRole(role) {
		return nil, identitydomain.ErrInvalidRole
	}
	return s.repo.List(ctx, s.db, role)
}

func (s *Service) Update(ctx context.Context, id string, req identitydomain.UpdateRequest) (*identitydomain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, identitydomain.ErrInvalidName
		}
		user.FullName = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, identitydomain.ErrInvalidEmail
		}
		user.Email = email
	}
	if req.DOB != nil {
		user.DOB = strings.TrimSpace(*req.DOB)
	}
	if req.Gender != nil {
		user.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Addresses != nil {
		raw, err := json.Marshal(*req.Addresses)
		if err != nil {
			return nil, err
		}
		user.Addresses = datatypes.JSON(raw)
	}
	if req.Occupation != nil {
		user.Occupation = strings.TrimSpace(*req.Occupation)
	}
	if req.IncomeBand != nil {
		user.IncomeBand = strings.TrimSpace(*req.IncomeBand)
	}
	user.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Save(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateRole(ctx context.Context, id string, role identitydomain.Role) (*identitydomain.User, error) {
	if !validRole(role) {
		return nil, identitydomain.ErrInvalidRole
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	user.Role = role
	if role == identitydomain.RolePartnerAdmin && user.FranchiseCode == "" {
		user.FranchiseCode = s.franchiseCode(user.ID)
	}
	user.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Save(ctx, s.db, user); err != nil {
		return nil, err
	}
	if role == identitydomain.RolePartnerAdmin {
		if err := s.ledgerSvc.EnsureWallet(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	obslogger.WithContext(ctx, s.log).Info("role updated",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
	)
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, user.ID)
}

func (s *Service) newUser(req identitydomain.RegisterRequest, role identitydomain.Role) (*identitydomain.User, error) {
	now := s.clock.Now().UTC()
	user := &identitydomain.User{
		ID:         s.genID.Generate(),
		FullName:   req.FullName,
		PAN:        req.PAN,
		Mobile:     req.Mobile,
		Email:      req.Email,
		DOB:        req.DOB,
		Gender:     req.Gender,
		Occupation: req.Occupation,
		IncomeBand: req.IncomeBand,
		IDType:     req.IDType,
		IDNumber:   req.IDNumber,
		Role:       role,
		ReferredBy: req.ReferredBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(req.Addresses) > 0 {
		raw, err := json.Marshal(req.Addresses)
		if err != nil {
			return nil, err
		}
		user.Addresses = datatypes.JSON(raw)
	}
	return user, nil
}

func (s *Service) franchiseCode(id snowflake.ID) string {
	return fmt.Sprintf("FR-%04d", id.Int64()%10000)
}

func normalizeRegisterRequest(req *identitydomain.RegisterRequest) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.PAN = strings.ToUpper(strings.TrimSpace(req.PAN))
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.Email = strings.TrimSpace(req.Email)
}

func validateRegisterRequest(req identitydomain.RegisterRequest) error {
	if req.FullName == "" {
		return identitydomain.ErrInvalidName
	}
	if !panPattern.MatchString(req.PAN) {
		return identitydomain.ErrInvalidPAN
	}
	if !mobilePattern.MatchString(req.Mobile) {
		return identitydomain.ErrInvalidMobile
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return identitydomain.ErrInvalidEmail
		}
	}
	return nil
}

func validRole(role identitydomain.Role) bool {
	switch role {
	case identitydomain.RoleUser, identitydomain.RolePartnerAdmin, identitydomain.RoleMasterAdmin:
		return true
	}
	return false
}

func parseID(id string) (snowflake.ID, error) {
	raw, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || raw <= 0 {
		return 0, identitydomain.ErrInvalidID
	}
	return snowflake.ID(raw), nil
}
