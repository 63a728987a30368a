package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// FundingMethod identifies how a transaction was paid.
type FundingMethod string

const (
	MethodGateway         FundingMethod = "GATEWAY"
	MethodWallet          FundingMethod = "WALLET"
	MethodAdminAdjustment FundingMethod = "ADMIN_ADJUSTMENT"
)

// Purpose classifies what a transaction paid for.
type Purpose string

const (
	PurposeInitial         Purpose = "INITIAL"
	PurposeRefresh         Purpose = "REFRESH"
	PurposeWalletTopup     Purpose = "WALLET_TOPUP"
	PurposeAdminAdjustment Purpose = "ADMIN_ADJUSTMENT"
)

// Direction is the typed credit/debit tag on wallet movements. It replaces
// the free-text description parsing the legacy flow relied on.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// TransactionStatus is recorded for forward compatibility; the synchronous
// engine only ever writes SUCCESS.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
)

// WalletAccount is a partner's prepaid balance. The balance never goes
// negative through a purchase debit.
type WalletAccount struct {
	PartnerID snowflake.ID `gorm:"primaryKey;column:partner_id" json:"partner_id"`
	Balance   int64        `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (WalletAccount) TableName() string { return "wallet_accounts" }

// Transaction is an immutable ledger record. Rows are appended and never
// updated or deleted.
type Transaction struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	PayerID     snowflake.ID      `gorm:"not null;index" json:"payer_id"`
	Amount      int64             `gorm:"not null" json:"amount"`
	Bureaus     datatypes.JSON    `gorm:"type:jsonb" json:"bureaus"`
	Method      FundingMethod     `gorm:"type:text;not null" json:"method"`
	Purpose     Purpose           `gorm:"type:text;not null;index" json:"purpose"`
	Direction   Direction         `gorm:"type:text" json:"direction,omitempty"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	Status      TransactionStatus `gorm:"type:text;not null;default:'SUCCESS'" json:"status"`
	OccurredAt  time.Time         `gorm:"not null;index" json:"occurred_at"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }
