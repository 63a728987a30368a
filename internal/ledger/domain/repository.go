package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertWallet(ctx context.Context, db *gorm.DB, wallet *WalletAccount) error
	FindWallet(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) (*WalletAccount, error)
	// DebitWallet decrements the balance only when it covers the amount.
	// It reports whether the conditional update matched a row.
	DebitWallet(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, amount int64, now time.Time) (bool, error)
	CreditWallet(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, amount int64, now time.Time) error
	// AdjustWallet applies a signed delta, flooring the balance at zero.
	AdjustWallet(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, delta int64, now time.Time) error

	AppendTransaction(ctx context.Context, db *gorm.DB, txn *Transaction) error
	ListByPayer(ctx context.Context, db *gorm.DB, payerID snowflake.ID) ([]Transaction, error)
	// ListAll returns up to limit rows older than beforeID, newest first.
	// A zero beforeID starts from the top of the log.
	ListAll(ctx context.Context, db *gorm.DB, beforeID snowflake.ID, limit int) ([]Transaction, error)
	FindTransaction(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
}
