package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	"github.com/smallbiznis/credicheck/internal/clock"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	obslogger "github.com/smallbiznis/credicheck/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/credicheck/internal/observability/metrics"
	"github.com/smallbiznis/credicheck/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       ledgerdomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       ledgerdomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Authorize(ctx context.Context, req ledgerdomain.AuthorizeRequest) (snowflake.ID, error) {
	if req.PayerID == 0 {
		return 0, ledgerdomain.ErrWalletNotFound
	}
	if req.Amount <= 0 {
		return 0, ledgerdomain.ErrInvalidAmount
	}

	method := ledgerdomain.FundingMethod(strings.ToUpper(strings.TrimSpace(string(req.Method))))
	switch method {
	case ledgerdomain.MethodGateway, ledgerdomain.MethodWallet:
	default:
		return 0, ledgerdomain.ErrInvalidMethod
	}

	txnID := s.genID.Generate()
	now := s.clock.Now().UTC()

	bureausJSON, err := marshalBureaus(req.Bureaus)
	if err != nil {
		return 0, err
	}

	txn := &ledgerdomain.Transaction{
		ID:          txnID,
		PayerID:     req.PayerID,
		Amount:      req.Amount,
		Bureaus:     bureausJSON,
		Method:      method,
		Purpose:     req.Purpose,
		Status:      ledgerdomain.StatusSuccess,
		OccurredAt:  now,
		CreatedAt:   now,
		Description: purchaseDescription(req.Purpose, req.Bureaus),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if method == ledgerdomain.MethodWallet {
			txn.Direction = ledgerdomain.DirectionDebit
			wallet, err := s.repo.FindWallet(ctx, tx, req.PayerID)
			if err != nil {
				return err
			}
			if wallet == nil {
				return ledgerdomain.ErrWalletNotFound
			}
			debited, err := s.repo.DebitWallet(ctx, tx, req.PayerID, req.Amount, now)
			if err != nil {
				return err
			}
			if !debited {
				return ledgerdomain.ErrInsufficientFunds
			}
		}
		return s.repo.AppendTransaction(ctx, tx, txn)
	})
	if err != nil {
		if errors.Is(err, ledgerdomain.ErrInsufficientFunds) && s.obsMetrics != nil {
			s.obsMetrics.RecordInsufficientFunds(ctx)
		}
		return 0, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordTransaction(ctx, string(method), string(req.Purpose))
	}
	obslogger.WithContext(ctx, s.log).Info("payment authorized",
		zap.String("transaction_id", txnID.String()),
		zap.String("payer_id", req.PayerID.String()),
		zap.Int64("amount", req.Amount),
		zap.String("method", string(method)),
		zap.String("purpose", string(req.Purpose)),
	)
	return txnID, nil
}

func (s *Service) AdjustBalance(ctx context.Context, partnerID snowflake.ID, amount int64, direction ledgerdomain.Direction, reason string) error {
	if amount <= 0 {
		return ledgerdomain.ErrInvalidAmount
	}
	switch direction {
	case ledgerdomain.DirectionCredit, ledgerdomain.DirectionDebit:
	default:
		return ledgerdomain.ErrInvalidDirection
	}

	now := s.clock.Now().UTC()
	txn := &ledgerdomain.Transaction{
		ID:          s.genID.Generate(),
		PayerID:     partnerID,
		Amount:      amount,
		Method:      ledgerdomain.MethodAdminAdjustment,
		Purpose:     ledgerdomain.PurposeAdminAdjustment,
		Direction:   direction,
		Description: reason,
		Status:      ledgerdomain.StatusSuccess,
		OccurredAt:  now,
		CreatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.repo.FindWallet(ctx, tx, partnerID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return ledgerdomain.ErrWalletNotFound
		}

		delta := amount
		if direction == ledgerdomain.DirectionDebit {
			delta = -amount
		}
		if err := s.repo.AdjustWallet(ctx, tx, partnerID, delta, now); err != nil {
			return err
		}
		return s.repo.AppendTransaction(ctx, tx, txn)
	})
	if err != nil {
		return err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordTransaction(ctx, string(ledgerdomain.MethodAdminAdjustment), string(ledgerdomain.PurposeAdminAdjustment))
	}
	obslogger.WithContext(ctx, s.log).Info("wallet adjusted",
		zap.String("partner_id", partnerID.String()),
		zap.Int64("amount", amount),
		zap.String("direction", string(direction)),
	)
	return nil
}

func (s *Service) Recharge(ctx context.Context, payerID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return ledgerdomain.ErrInvalidAmount
	}

	now := s.clock.Now().UTC()
	txn := &ledgerdomain.Transaction{
		ID:          s.genID.Generate(),
		PayerID:     payerID,
		Amount:      amount,
		Method:      ledgerdomain.MethodGateway,
		Purpose:     ledgerdomain.PurposeWalletTopup,
		Direction:   ledgerdomain.DirectionCredit,
		Description: "wallet recharge",
		Status:      ledgerdomain.StatusSuccess,
		OccurredAt:  now,
		CreatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.repo.FindWallet(ctx, tx, payerID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return ledgerdomain.ErrWalletNotFound
		}
		if err := s.repo.CreditWallet(ctx, tx, payerID, amount, now); err != nil {
			return err
		}
		return s.repo.AppendTransaction(ctx, tx, txn)
	})
	if err != nil {
		return err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordTransaction(ctx, string(ledgerdomain.MethodGateway), string(ledgerdomain.PurposeWalletTopup))
	}
	obslogger.WithContext(ctx, s.log).Info("wallet recharged",
		zap.String("payer_id", payerID.String()),
		zap.Int64("amount", amount),
	)
	return nil
}

func (s *Service) EnsureWallet(ctx context.Context, partnerID snowflake.ID) error {
	wallet, err := s.repo.FindWallet(ctx, s.db, partnerID)
	if err != nil {
		return err
	}
	if wallet != nil {
		return nil
	}

	now := s.clock.Now().UTC()
	return s.repo.InsertWallet(ctx, s.db, &ledgerdomain.WalletAccount{
		PartnerID: partnerID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) GetBalance(ctx context.Context, partnerID snowflake.ID) (int64, error) {
	wallet, err := s.repo.FindWallet(ctx, s.db, partnerID)
	if err != nil {
		return 0, err
	}
	if wallet == nil {
		return 0, ledgerdomain.ErrWalletNotFound
	}
	return wallet.Balance, nil
}

func (s *Service) ListByPayer(ctx context.Context, payerID snowflake.ID) ([]ledgerdomain.Transaction, error) {
	return s.repo.ListByPayer(ctx, s.db, payerID)
}

func (s *Service) ListAll(ctx context.Context, page pagination.Pagination) ([]ledgerdomain.Transaction, *pagination.PageInfo, error) {
	var beforeID snowflake.ID
	if token := strings.TrimSpace(page.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, nil, ledgerdomain.ErrInvalidPageToken
		}
		parsed, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, nil, ledgerdomain.ErrInvalidPageToken
		}
		beforeID = snowflake.ID(parsed)
	}

	limit := page.Limit()
	txns, err := s.repo.ListAll(ctx, s.db, beforeID, limit+1)
	if err != nil {
		return nil, nil, err
	}

	txns, info := pagination.TrimPage(txns, limit, func(txn ledgerdomain.Transaction) string {
		return txn.ID.String()
	})
	return txns, info, nil
}

func marshalBureaus(bureaus []bureau.Bureau) (datatypes.JSON, error) {
	if len(bureaus) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(bureau.Strings(bureaus))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func purchaseDescription(purpose ledgerdomain.Purpose, bureaus []bureau.Bureau) string {
	if len(bureaus) == 0 {
		return string(purpose)
	}
	return fmt.Sprintf("%s %s", purpose, strings.Join(bureau.Strings(bureaus), ","))
}
