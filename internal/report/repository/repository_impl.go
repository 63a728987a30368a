package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	reportdomain "github.com/smallbiznis/credicheck/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() reportdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *reportdomain.CreditReportRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*reportdomain.CreditReportRecord, error) {
	var record reportdomain.CreditReportRecord
	err := db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) MaxRevision(ctx context.Context, db *gorm.DB, consumerID snowflake.ID, b bureau.Bureau) (int, error) {
	var max int
	err := db.WithContext(ctx).
		Model(&reportdomain.CreditReportRecord{}).
		Where("consumer_id = ? AND bureau = ?", consumerID, b).
		Select("COALESCE(MAX(revision), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *repo) ListByConsumer(ctx context.Context, db *gorm.DB, consumerID snowflake.ID) ([]reportdomain.CreditReportRecord, error) {
	var records []reportdomain.CreditReportRecord
	err := db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) ListByGenerator(ctx context.Context, db *gorm.DB, generatorID snowflake.ID) ([]reportdomain.CreditReportRecord, error) {
	var records []reportdomain.CreditReportRecord
	err := db.WithContext(ctx).
		Where("generated_by = ?", generatorID).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]reportdomain.CreditReportRecord, error) {
	var records []reportdomain.CreditReportRecord
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
