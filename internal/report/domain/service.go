package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
)

type GenerateRequest struct {
	ConsumerID  snowflake.ID               `json:"consumer_id"`
	GeneratedBy snowflake.ID               `json:"generated_by"`
	Bureaus     []bureau.Bureau            `json:"bureaus"`
	Purpose     ledgerdomain.Purpose       `json:"purpose"`
	Method      ledgerdomain.FundingMethod `json:"method"`
}

// BureauFailure records one bureau that could not be generated. The rest of
// the batch is unaffected.
type BureauFailure struct {
	Bureau bureau.Bureau `json:"bureau"`
	Reason string        `json:"reason"`
}

// BatchResult is the outcome of one paid generation request. Payment happens
// once for the whole batch before any bureau is attempted.
type BatchResult struct {
	TransactionID snowflake.ID         `json:"transaction_id"`
	AmountCharged int64                `json:"amount_charged"`
	Reports       []CreditReportRecord `json:"reports"`
	Failures      []BureauFailure      `json:"failures,omitempty"`
}

// ReportListItem is a stored report joined with display context for the
// partner and admin views.
type ReportListItem struct {
	CreditReportRecord
	ConsumerName  string `json:"consumer_name,omitempty"`
	GeneratorName string `json:"generator_name,omitempty"`
	FranchiseCode string `json:"franchise_code,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
}

type Service interface {
	// Generate prices the bureau selection, charges the payer once, then
	// produces one report per bureau. A bureau failing mid-batch is reported
	// in the result while the others still complete.
	Generate(ctx context.Context, req GenerateRequest) (*BatchResult, error)
	Get(ctx context.Context, id string) (*CreditReportRecord, error)
	ListByConsumer(ctx context.Context, consumerID string) ([]CreditReportRecord, error)
	ListByGenerator(ctx context.Context, generatorID string) ([]ReportListItem, error)
	ListAll(ctx context.Context) ([]ReportListItem, error)
}

var (
	ErrConsumerNotFound  = errors.New("consumer_not_found")
	ErrGeneratorNotFound = errors.New("generator_not_found")
	ErrInvalidPurpose    = errors.New("invalid_purpose")
	ErrEmptyBatch        = errors.New("empty_bureau_selection")
	ErrReportNotFound    = errors.New("report_not_found")
	ErrInvalidReportID   = errors.New("invalid_report_id")
)
