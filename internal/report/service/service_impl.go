package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	"github.com/smallbiznis/credicheck/internal/clock"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	obslogger "github.com/smallbiznis/credicheck/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/credicheck/internal/observability/metrics"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
	reportdomain "github.com/smallbiznis/credicheck/internal/report/domain"
	"github.com/smallbiznis/credicheck/internal/report/synth"
	"github.com/smallbiznis/credicheck/internal/score"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        reportdomain.Repository
	IdentitySvc identitydomain.Service
	PricingSvc  pricingdomain.Service
	LedgerSvc   ledgerdomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        reportdomain.Repository
	identitySvc identitydomain.Service
	pricingSvc  pricingdomain.Service
	ledgerSvc   ledgerdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) reportdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("report.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		identitySvc: p.IdentitySvc,
		pricingSvc:  p.PricingSvc,
		ledgerSvc:   p.LedgerSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Generate(ctx context.Context, req reportdomain.GenerateRequest) (*reportdomain.BatchResult, error) {
	if len(req.Bureaus) == 0 {
		return nil, reportdomain.ErrEmptyBatch
	}
	switch req.Purpose {
	case ledgerdomain.PurposeInitial, ledgerdomain.PurposeRefresh:
	default:
		return nil, reportdomain.ErrInvalidPurpose
	}

	consumer, err := s.identitySvc.Get(ctx, req.ConsumerID.String())
	if err != nil {
		if errors.Is(err, identitydomain.ErrNotFound) || errors.Is(err, identitydomain.ErrInvalidID) {
			return nil, reportdomain.ErrConsumerNotFound
		}
		return nil, err
	}

	generator := consumer
	if req.GeneratedBy != req.ConsumerID {
		generator, err = s.identitySvc.Get(ctx, req.GeneratedBy.String())
		if err != nil {
			if errors.Is(err, identitydomain.ErrNotFound) || errors.Is(err, identitydomain.ErrInvalidID) {
				return nil, reportdomain.ErrGeneratorNotFound
			}
			return nil, err
		}
	}

	class := pricingdomain.ClassUser
	method := req.Method
	if generator.IsPartner() {
		class = pricingdomain.ClassPartner
		if method == "" {
			method = ledgerdomain.MethodWallet
		}
	} else if method == "" {
		method = ledgerdomain.MethodGateway
	}

	quote, err := s.pricingSvc.QuoteFor(ctx, class, req.Bureaus)
	if err != nil {
		return nil, err
	}

	// The whole batch is paid once, before any bureau is generated.
	txnID, err := s.ledgerSvc.Authorize(ctx, ledgerdomain.AuthorizeRequest{
		PayerID: generator.ID,
		Amount:  quote.Total,
		Method:  method,
		Purpose: req.Purpose,
		Bureaus: req.Bureaus,
	})
	if err != nil {
		return nil, err
	}

	result := &reportdomain.BatchResult{
		TransactionID: txnID,
		AmountCharged: quote.Total,
	}
	log := obslogger.WithContext(ctx, s.log)

	for _, b := range req.Bureaus {
		record, err := s.generateOne(ctx, consumer, generator.ID, txnID, b)
		if err != nil {
			result.Failures = append(result.Failures, reportdomain.BureauFailure{
				Bureau: b,
				Reason: err.Error(),
			})
			if s.obsMetrics != nil {
				s.obsMetrics.RecordReportFailure(ctx, string(b), "generation_error")
			}
			log.Warn("bureau generation failed",
				zap.String("bureau", string(b)),
				zap.String("consumer_id", consumer.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Reports = append(result.Reports, *record)
		if s.obsMetrics != nil {
			s.obsMetrics.RecordReportGenerated(ctx, string(b))
		}
	}

	log.Info("report batch generated",
		zap.String("consumer_id", consumer.ID.String()),
		zap.String("transaction_id", txnID.String()),
		zap.Int64("amount", quote.Total),
		zap.Int("succeeded", len(result.Reports)),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}

func (s *Service) generateOne(
	ctx context.Context,
	consumer *identitydomain.User,
	generatedBy snowflake.ID,
	txnID snowflake.ID,
	b bureau.Bureau,
) (*reportdomain.CreditReportRecord, error) {
	var record *reportdomain.CreditReportRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maxRev, err := s.repo.MaxRevision(ctx, tx, consumer.ID, b)
		if err != nil {
			return err
		}
		revision := maxRev + 1

		derived := score.Derive(consumer.PAN, b, revision)
		now := s.clock.Now().UTC()
		content := synth.Generate(score.Seed(consumer.PAN, b, revision), derived.Risk, consumer, now)

		consumerJSON, err := json.Marshal(content.Consumer)
		if err != nil {
			return err
		}
		loansJSON, err := json.Marshal(content.Loans)
		if err != nil {
			return err
		}
		enquiriesJSON, err := json.Marshal(content.Enquiries)
		if err != nil {
			return err
		}

		record = &reportdomain.CreditReportRecord{
			ID:            s.genID.Generate(),
			ConsumerID:    consumer.ID,
			GeneratedBy:   generatedBy,
			TransactionID: txnID,
			Bureau:        b,
			Revision:      revision,
			Status:        reportdomain.StatusSuccess,
			ReferenceID:   content.ReferenceID,
			ControlNumber: content.ControlNumber,
			Score:         derived.Score,
			Band:          derived.Band,
			Risk:          derived.Risk,
			Consumer:      datatypes.JSON(consumerJSON),
			Loans:         datatypes.JSON(loansJSON),
			Enquiries:     datatypes.JSON(enquiriesJSON),

			TotalLoans:      content.Summary.TotalLoans,
			ActiveLoans:     content.Summary.ActiveLoans,
			ClosedLoans:     content.Summary.ClosedLoans,
			OverdueAccounts: content.Summary.OverdueAccounts,

			ReportDate: now,
			CreatedAt:  now,
		}
		return s.repo.Insert(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (*reportdomain.CreditReportRecord, error) {
	reportID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, s.db, reportID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, reportdomain.ErrReportNotFound
	}
	return record, nil
}

func (s *Service) ListByConsumer(ctx context.Context, consumerID string) ([]reportdomain.CreditReportRecord, error) {
	id, err := parseID(consumerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByConsumer(ctx, s.db, id)
}

func (s *Service) ListByGenerator(ctx context.Context, generatorID string) ([]reportdomain.ReportListItem, error) {
	id, err := parseID(generatorID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListByGenerator(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, records)
}

func (s *Service) ListAll(ctx context.Context) ([]reportdomain.ReportListItem, error) {
	records, err := s.repo.ListAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, records)
}

// enrich joins stored reports with user names and transaction amounts for
// the partner and admin views. Lookups are memoized per call.
func (s *Service) enrich(ctx context.Context, records []reportdomain.CreditReportRecord) ([]reportdomain.ReportListItem, error) {
	users := make(map[snowflake.ID]*identitydomain.User)
	amounts := make(map[snowflake.ID]int64)

	lookupUser := func(id snowflake.ID) *identitydomain.User {
		if user, ok := users[id]; ok {
			return user
		}
		user, err := s.identitySvc.Get(ctx, id.String())
		if err != nil {
			user = nil
		}
		users[id] = user
		return user
	}

	items := make([]reportdomain.ReportListItem, 0, len(records))
	for _, record := range records {
		item := reportdomain.ReportListItem{CreditReportRecord: record}
		if consumer := lookupUser(record.ConsumerID); consumer != nil {
			item.ConsumerName = consumer.FullName
		}
		if generator := lookupUser(record.GeneratedBy); generator != nil {
			item.GeneratorName = generator.FullName
			item.FranchiseCode = generator.FranchiseCode
		}
		if amount, ok := amounts[record.TransactionID]; ok {
			item.Amount = amount
		} else if record.TransactionID != 0 {
			var value int64
			err := s.db.WithContext(ctx).
				Model(&ledgerdomain.Transaction{}).
				Where("id = ?", record.TransactionID).
				Select("COALESCE(MAX(amount), 0)").
				Scan(&value).Error
			if err == nil {
				amounts[record.TransactionID] = value
				item.Amount = value
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func parseID(id string) (snowflake.ID, error) {
	raw, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || raw <= 0 {
		return 0, reportdomain.ErrInvalidReportID
	}
	return snowflake.ID(raw), nil
}
