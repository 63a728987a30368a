package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *CreditReportRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CreditReportRecord, error)
	// MaxRevision returns 0 when the consumer has no report for the bureau.
	MaxRevision(ctx context.Context, db *gorm.DB, consumerID snowflake.ID, b bureau.Bureau) (int, error)
	ListByConsumer(ctx context.Context, db *gorm.DB, consumerID snowflake.ID) ([]CreditReportRecord, error)
	ListByGenerator(ctx context.Context, db *gorm.DB, generatorID snowflake.ID) ([]CreditReportRecord, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]CreditReportRecord, error)
}
