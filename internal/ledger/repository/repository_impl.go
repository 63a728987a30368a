package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

func (r *repo) InsertWallet(ctx context.Context, db *gorm.DB, wallet *ledgerdomain.WalletAccount) error {
	return db.WithContext(ctx).Create(wallet).Error
}

func (r *repo) FindWallet(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) (*ledgerdomain.WalletAccount, error) {
	var wallet ledgerdomain.WalletAccount
	err := db.WithContext(ctx).First(&wallet, "partner_id = ?", partnerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *repo) DebitWallet(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, amount int64, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&ledgerdomain.WalletAccount{}).
		Where("partner_id = ? AND balance >= ?", partnerID, amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CreditWallet(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, amount int64, now time.Time) error {
	return db.WithContext(ctx).
		Model(&ledgerdomain.WalletAccount{}).
		Where("partner_id = ?", partnerID).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": now,
		}).Error
}

func (r *repo) AdjustWallet(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, delta int64, now time.Time) error {
	// Floor at zero in SQL so concurrent adjustments cannot race a stale read.
	res := db.WithContext(ctx).
		Model(&ledgerdomain.WalletAccount{}).
		Where("partner_id = ?", partnerID).
		Updates(map[string]any{
			"balance":    gorm.Expr("CASE WHEN balance + ? < 0 THEN 0 ELSE balance + ? END", delta, delta),
			"updated_at": now,
		})
	return res.Error
}

func (r *repo) AppendTransaction(ctx context.Context, db *gorm.DB, txn *ledgerdomain.Transaction) error {
	return db.WithContext(ctx).Create(txn).Error
}

func (r *repo) ListByPayer(ctx context.Context, db *gorm.DB, payerID snowflake.ID) ([]ledgerdomain.Transaction, error) {
	var txns []ledgerdomain.Transaction
	err := db.WithContext(ctx).
		Where("payer_id = ?", payerID).
		Order("occurred_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, beforeID snowflake.ID, limit int) ([]ledgerdomain.Transaction, error) {
	// Snowflake ids are time ordered, so the id doubles as the page cursor.
	stmt := db.WithContext(ctx).Order("id DESC")
	if beforeID > 0 {
		stmt = stmt.Where("id < ?", beforeID)
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var txns []ledgerdomain.Transaction
	if err := stmt.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) FindTransaction(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ledgerdomain.Transaction, error) {
	var txn ledgerdomain.Transaction
	err := db.WithContext(ctx).First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}
