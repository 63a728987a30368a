package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/credicheck/internal/bureau"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricingdomain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]pricingdomain.PricingEntry, error) {
	var entries []pricingdomain.PricingEntry
	err := db.WithContext(ctx).
		Order("requester_class ASC, bureau ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, class pricingdomain.RequesterClass, b bureau.Bureau) (*pricingdomain.PricingEntry, error) {
	var entry pricingdomain.PricingEntry
	err := db.WithContext(ctx).
		First(&entry, "requester_class = ? AND bureau = ?", class, b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, entries []pricingdomain.PricingEntry) error {
	if err := db.WithContext(ctx).
		Where("1 = 1").
		Delete(&pricingdomain.PricingEntry{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&entries).Error
}
