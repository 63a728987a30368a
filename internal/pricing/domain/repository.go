package domain

import (
	"context"

	"github.com/smallbiznis/credicheck/internal/bureau"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]PricingEntry, error)
	Find(ctx context.Context, db *gorm.DB, class RequesterClass, b bureau.Bureau) (*PricingEntry, error)
	// ReplaceAll swaps the whole price table for the provided rows.
	ReplaceAll(ctx context.Context, db *gorm.DB, entries []PricingEntry) error
}
