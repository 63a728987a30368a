package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	"github.com/smallbiznis/credicheck/internal/score"
	"gorm.io/datatypes"
)

// ReportStatus models the report lifecycle. Generation is synchronous, so
// only SUCCESS is ever written today; PENDING and FAILED exist for the
// stored contract.
type ReportStatus string

const (
	StatusPending ReportStatus = "PENDING"
	StatusSuccess ReportStatus = "SUCCESS"
	StatusFailed  ReportStatus = "FAILED"
)

// CreditReportRecord is one generated bureau report. Records are immutable
// after insert; a refresh writes a new row at the next revision.
type CreditReportRecord struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	ConsumerID    snowflake.ID  `gorm:"not null;uniqueIndex:ux_reports_consumer_bureau_rev,priority:1;index" json:"consumer_id"`
	GeneratedBy   snowflake.ID  `gorm:"not null;index" json:"generated_by"`
	TransactionID snowflake.ID  `gorm:"not null" json:"transaction_id"`
	Bureau        bureau.Bureau `gorm:"type:text;not null;uniqueIndex:ux_reports_consumer_bureau_rev,priority:2" json:"bureau"`
	Revision      int           `gorm:"not null;uniqueIndex:ux_reports_consumer_bureau_rev,priority:3" json:"revision"`
	Status        ReportStatus  `gorm:"type:text;not null;default:'SUCCESS'" json:"status"`

	ReferenceID   string `gorm:"type:text;not null" json:"reference_id"`
	ControlNumber string `gorm:"type:text;not null" json:"control_number"`

	Score int             `gorm:"not null" json:"score"`
	Band  score.Band      `gorm:"type:text;not null" json:"band"`
	Risk  score.RiskLevel `gorm:"type:text;not null" json:"risk"`

	Consumer  datatypes.JSON `gorm:"type:jsonb;not null" json:"consumer"`
	Loans     datatypes.JSON `gorm:"type:jsonb;not null" json:"loans"`
	Enquiries datatypes.JSON `gorm:"type:jsonb" json:"enquiries"`

	TotalLoans      int `gorm:"not null" json:"total_loans"`
	ActiveLoans     int `gorm:"not null" json:"active_loans"`
	ClosedLoans     int `gorm:"not null" json:"closed_loans"`
	OverdueAccounts int `gorm:"not null" json:"overdue_accounts"`

	ReportDate time.Time `gorm:"not null" json:"report_date"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (CreditReportRecord) TableName() string { return "credit_reports" }
