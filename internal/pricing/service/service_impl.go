package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	"github.com/smallbiznis/credicheck/internal/clock"
	obslogger "github.com/smallbiznis/credicheck/internal/observability/logger"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  pricingdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  pricingdomain.Repository
}

func New(p Params) pricingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pricing.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]pricingdomain.PricingEntry, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Replace(ctx context.Context, updates []pricingdomain.PriceUpdate) ([]pricingdomain.PricingEntry, error) {
	now := s.clock.Now().UTC()
	seen := make(map[pricingdomain.RequesterClass]map[bureau.Bureau]bool)
	entries := make([]pricingdomain.PricingEntry, 0, len(updates))

	for _, update := range updates {
		if !validClass(update.RequesterClass) {
			return nil, pricingdomain.ErrInvalidClass
		}
		b, err := bureau.Parse(update.Bureau)
		if err != nil {
			return nil, err
		}
		// Zero is a valid operator choice (a free bureau); only negative
		// prices are rejected.
		if update.UnitPrice < 0 {
			return nil, pricingdomain.ErrInvalidPrice
		}
		if seen[update.RequesterClass] == nil {
			seen[update.RequesterClass] = make(map[bureau.Bureau]bool)
		}
		if seen[update.RequesterClass][b] {
			return nil, pricingdomain.ErrDuplicatePriceRow
		}
		seen[update.RequesterClass][b] = true

		entries = append(entries, pricingdomain.PricingEntry{
			ID:             s.genID.Generate(),
			RequesterClass: update.RequesterClass,
			Bureau:         b,
			UnitPrice:      update.UnitPrice,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	// Every class must price every bureau before the swap is allowed.
	for _, class := range []pricingdomain.RequesterClass{pricingdomain.ClassUser, pricingdomain.ClassPartner} {
		for _, b := range bureau.All() {
			if !seen[class][b] {
				return nil, pricingdomain.ErrIncompleteTable
			}
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.ReplaceAll(ctx, tx, entries)
	})
	if err != nil {
		return nil, err
	}

	obslogger.WithContext(ctx, s.log).Info("price table replaced",
		zap.Int("rows", len(entries)),
	)
	return entries, nil
}

func (s *Service) QuoteFor(ctx context.Context, class pricingdomain.RequesterClass, bureaus []bureau.Bureau) (*pricingdomain.Quote, error) {
	if !validClass(class) {
		return nil, pricingdomain.ErrInvalidClass
	}
	if len(bureaus) == 0 {
		return nil, bureau.ErrUnknownBureau
	}

	quote := &pricingdomain.Quote{
		RequesterClass: class,
		Bureaus:        bureaus,
		Lines:          make([]pricingdomain.QuoteLine, 0, len(bureaus)),
	}
	for _, b := range bureaus {
		entry, err := s.repo.Find(ctx, s.db, class, b)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, pricingdomain.ErrPriceNotFound
		}
		quote.Lines = append(quote.Lines, pricingdomain.QuoteLine{
			Bureau:    b,
			UnitPrice: entry.UnitPrice,
		})
		quote.Total += entry.UnitPrice
	}
	return quote, nil
}

func validClass(class pricingdomain.RequesterClass) bool {
	return class == pricingdomain.ClassUser || class == pricingdomain.ClassPartner
}
