package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	reportdomain "github.com/smallbiznis/credicheck/internal/report/domain"
	"github.com/smallbiznis/credicheck/internal/report/synth"
	"github.com/smallbiznis/credicheck/internal/score"
	statsdomain "github.com/smallbiznis/credicheck/internal/stats/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	LedgerSvc ledgerdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	ledgerSvc ledgerdomain.Service
}

func New(p Params) statsdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("stats.service"),
		ledgerSvc: p.LedgerSvc,
	}
}

func (s *Service) Admin(ctx context.Context) (*statsdomain.AdminStats, error) {
	stats := &statsdomain.AdminStats{
		LoanTypeDistribution: make(map[string]int64),
	}

	if err := s.db.WithContext(ctx).
		Model(&identitydomain.User{}).
		Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(&identitydomain.User{}).
		Where("role = ?", identitydomain.RolePartnerAdmin).
		Count(&stats.TotalPartners).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(&reportdomain.CreditReportRecord{}).
		Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}

	// Revenue counts purchases only; wallet top-ups and admin adjustments
	// move balances, not revenue.
	if err := s.db.WithContext(ctx).
		Model(&ledgerdomain.Transaction{}).
		Where("purpose IN ?", []ledgerdomain.Purpose{ledgerdomain.PurposeInitial, ledgerdomain.PurposeRefresh}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, err
	}

	if stats.TotalReports > 0 {
		if err := s.db.WithContext(ctx).
			Model(&reportdomain.CreditReportRecord{}).
			Select("COALESCE(AVG(score), 0)").
			Scan(&stats.AverageScore).Error; err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).
			Model(&reportdomain.CreditReportRecord{}).
			Where("risk = ?", score.RiskHigh).
			Count(&stats.HighRiskCount).Error; err != nil {
			return nil, err
		}
		if err := s.loadLoanDistribution(ctx, stats.LoanTypeDistribution); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// loadLoanDistribution counts stored tradelines by account type across every
// generated report.
func (s *Service) loadLoanDistribution(ctx context.Context, dist map[string]int64) error {
	rows, err := s.db.WithContext(ctx).
		Model(&reportdomain.CreditReportRecord{}).
		Select("loans").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		var loans []synth.Loan
		if err := json.Unmarshal(raw, &loans); err != nil {
			continue
		}
		for _, loan := range loans {
			dist[loan.AccountType]++
		}
	}
	return rows.Err()
}

func (s *Service) Partner(ctx context.Context, partnerID string) (*statsdomain.PartnerStats, error) {
	id, err := parseID(partnerID)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledgerSvc.GetBalance(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &statsdomain.PartnerStats{WalletBalance: balance}
	if err := s.db.WithContext(ctx).
		Model(&reportdomain.CreditReportRecord{}).
		Where("generated_by = ?", id).
		Count(&stats.ReportsSold).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(&ledgerdomain.Transaction{}).
		Where("payer_id = ? AND purpose IN ?", id, []ledgerdomain.Purpose{ledgerdomain.PurposeInitial, ledgerdomain.PurposeRefresh}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.AmountSpent).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func parseID(id string) (snowflake.ID, error) {
	raw, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || raw <= 0 {
		return 0, statsdomain.ErrInvalidPartnerID
	}
	return snowflake.ID(raw), nil
}
