package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/credicheck/internal/bureau"
)

type PriceUpdate struct {
	RequesterClass RequesterClass `json:"requester_class"`
	Bureau         string         `json:"bureau"`
	UnitPrice      int64          `json:"unit_price"`
}

// Quote is the priced breakdown for a bureau selection, computed before any
// charge is taken.
type Quote struct {
	RequesterClass RequesterClass  `json:"requester_class"`
	Lines          []QuoteLine     `json:"lines"`
	Total          int64           `json:"total"`
	Bureaus        []bureau.Bureau `json:"bureaus"`
}

type QuoteLine struct {
	Bureau    bureau.Bureau `json:"bureau"`
	UnitPrice int64         `json:"unit_price"`
}

type Service interface {
	List(ctx context.Context) ([]PricingEntry, error)
	// Replace installs a complete new price table atomically. Partial tables
	// are rejected so no class/bureau pair is ever left unpriced.
	Replace(ctx context.Context, updates []PriceUpdate) ([]PricingEntry, error)
	// QuoteFor prices a bureau selection for a requester class. The total is
	// the sum of the per-bureau unit prices.
	QuoteFor(ctx context.Context, class RequesterClass, bureaus []bureau.Bureau) (*Quote, error)
}

var (
	ErrInvalidClass      = errors.New("invalid_requester_class")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrIncompleteTable   = errors.New("incomplete_price_table")
	ErrDuplicatePriceRow = errors.New("duplicate_price_row")
	ErrPriceNotFound     = errors.New("price_not_found")
)
