package domain

import (
	"context"
	"errors"
)

// AdminStats is the operator dashboard rollup, computed from stored rows on
// every call.
type AdminStats struct {
	TotalUsers           int64            `json:"total_users"`
	TotalPartners        int64            `json:"total_partners"`
	TotalReports         int64            `json:"total_reports"`
	TotalRevenue         int64            `json:"total_revenue"`
	AverageScore         float64          `json:"average_score"`
	HighRiskCount        int64            `json:"high_risk_count"`
	LoanTypeDistribution map[string]int64 `json:"loan_type_distribution"`
}

// PartnerStats is the reseller dashboard: prepaid balance plus sales volume.
type PartnerStats struct {
	WalletBalance int64 `json:"wallet_balance"`
	ReportsSold   int64 `json:"reports_sold"`
	AmountSpent   int64 `json:"amount_spent"`
}

type Service interface {
	Admin(ctx context.Context) (*AdminStats, error)
	Partner(ctx context.Context, partnerID string) (*PartnerStats, error)
}

var ErrInvalidPartnerID = errors.New("invalid_partner_id")
