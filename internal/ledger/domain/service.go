package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	"github.com/smallbiznis/credicheck/pkg/db/pagination"
)

type AuthorizeRequest struct {
	PayerID snowflake.ID
	Amount  int64
	Method  FundingMethod
	Purpose Purpose
	Bureaus []bureau.Bureau
}

type Service interface {
	// Authorize charges the payer and appends exactly one transaction. For
	// wallet funding the debit and the transaction row are written in one
	// database transaction; insufficient balance leaves both untouched.
	Authorize(ctx context.Context, req AuthorizeRequest) (snowflake.ID, error)

	// AdjustBalance is the trusted operator path: it credits or debits a
	// partner wallet without the sufficiency check and always logs an
	// ADMIN_ADJUSTMENT transaction carrying the typed direction.
	AdjustBalance(ctx context.Context, partnerID snowflake.ID, amount int64, direction Direction, reason string) error

	// Recharge credits a wallet from a gateway-confirmed top-up and logs a
	// WALLET_TOPUP transaction, kept distinct from purchases in reporting.
	Recharge(ctx context.Context, payerID snowflake.ID, amount int64) error

	EnsureWallet(ctx context.Context, partnerID snowflake.ID) error
	GetBalance(ctx context.Context, partnerID snowflake.ID) (int64, error)
	ListByPayer(ctx context.Context, payerID snowflake.ID) ([]Transaction, error)
	// ListAll pages the full transaction log for the operator view, newest
	// first, keyed by an opaque cursor token.
	ListAll(ctx context.Context, page pagination.Pagination) ([]Transaction, *pagination.PageInfo, error)
}

var (
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidMethod     = errors.New("invalid_method")
	ErrInvalidDirection  = errors.New("invalid_direction")
	ErrWalletNotFound    = errors.New("wallet_not_found")
	ErrInvalidPageToken  = errors.New("invalid_page_token")
)
