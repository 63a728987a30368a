package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/credicheck/internal/bureau"
	"github.com/smallbiznis/credicheck/internal/clock"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/credicheck/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/credicheck/internal/ledger/service"
	"github.com/smallbiznis/credicheck/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_ledger_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE wallet_accounts (
			partner_id BIGINT PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE transactions (
			id BIGINT PRIMARY KEY,
			payer_id BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			bureaus TEXT,
			method TEXT NOT NULL,
			purpose TEXT NOT NULL,
			direction TEXT,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'SUCCESS',
			occurred_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX ix_transactions_payer ON transactions(payer_id)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

func newLedgerService(t *testing.T, db *gorm.DB) ledgerdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	return ledgerservice.New(ledgerservice.Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
		Repo:  ledgerrepo.Provide(),
	})
}

func seedWallet(t *testing.T, db *gorm.DB, partnerID snowflake.ID, balance int64) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO wallet_accounts (partner_id, balance, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		partnerID, balance, time.Now().UTC(), time.Now().UTC(),
	).Error
	require.NoError(t, err)
}

func walletBalance(t *testing.T, db *gorm.DB, partnerID snowflake.ID) int64 {
	t.Helper()
	var balance int64
	err := db.Raw(`SELECT balance FROM wallet_accounts WHERE partner_id = ?`, partnerID).Scan(&balance).Error
	require.NoError(t, err)
	return balance
}

func TestAuthorizeWalletDebit(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	partnerID := node.Generate()
	seedWallet(t, db, partnerID, 100)

	txnID, err := svc.Authorize(ctx, ledgerdomain.AuthorizeRequest{
		PayerID: partnerID,
		Amount:  49,
		Method:  ledgerdomain.MethodWallet,
		Purpose: ledgerdomain.PurposeInitial,
		Bureaus: []bureau.Bureau{bureau.CIBIL},
	})
	require.NoError(t, err)
	assert.NotZero(t, txnID)

	assert.Equal(t, int64(51), walletBalance(t, db, partnerID))

	txns, err := svc.ListByPayer(ctx, partnerID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(49), txns[0].Amount)
	assert.Equal(t, ledgerdomain.MethodWallet, txns[0].Method)
	assert.Equal(t, ledgerdomain.PurposeInitial, txns[0].Purpose)
	assert.Equal(t, ledgerdomain.DirectionDebit, txns[0].Direction)
	assert.Equal(t, ledgerdomain.StatusSuccess, txns[0].Status)
}

func TestAuthorizeInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	partnerID := node.Generate()
	seedWallet(t, db, partnerID, 10)

	_, err = svc.Authorize(ctx, ledgerdomain.AuthorizeRequest{
		PayerID: partnerID,
		Amount:  49,
		Method:  ledgerdomain.MethodWallet,
		Purpose: ledgerdomain.PurposeInitial,
		Bureaus: []bureau.Bureau{bureau.CIBIL},
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInsufficientFunds)

	// A failed debit must leave both the balance and the ledger untouched.
	assert.Equal(t, int64(10), walletBalance(t, db, partnerID))
	txns, err := svc.ListByPayer(ctx, partnerID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestAuthorizeGatewayNeedsNoWallet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	payerID := node.Generate()

	txnID, err := svc.Authorize(ctx, ledgerdomain.AuthorizeRequest{
		PayerID: payerID,
		Amount:  99,
		Method:  ledgerdomain.MethodGateway,
		Purpose: ledgerdomain.PurposeInitial,
		Bureaus: []bureau.Bureau{bureau.Experian, bureau.Equifax},
	})
	require.NoError(t, err)
	assert.NotZero(t, txnID)

	txns, err := svc.ListByPayer(ctx, payerID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, ledgerdomain.MethodGateway, txns[0].Method)
	assert.JSONEq(t, `["EXPERIAN","EQUIFAX"]`, string(txns[0].Bureaus))
}

func TestAuthorizeValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	payerID := node.Generate()

	t.Run("zero amount", func(t *testing.T) {
		_, err := svc.Authorize(ctx, ledgerdomain.AuthorizeRequest{
			PayerID: payerID,
			Amount:  0,
			Method:  ledgerdomain.MethodGateway,
			Purpose: ledgerdomain.PurposeInitial,
		})
		assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := svc.Authorize(ctx, ledgerdomain.AuthorizeRequest{
			PayerID: payerID,
			Amount:  99,
			Method:  "CHEQUE",
			Purpose: ledgerdomain.PurposeInitial,
		})
		assert.ErrorIs(t, err, ledgerdomain.ErrInvalidMethod)
	})

	t.Run("wallet missing", func(t *testing.T) {
		_, err := svc.Authorize(ctx, ledgerdomain.AuthorizeRequest{
			PayerID: payerID,
			Amount:  49,
			Method:  ledgerdomain.MethodWallet,
			Purpose: ledgerdomain.PurposeInitial,
		})
		assert.ErrorIs(t, err, ledgerdomain.ErrWalletNotFound)
	})
}

func TestAdjustBalance(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	partnerID := node.Generate()
	seedWallet(t, db, partnerID, 51)

	t.Run("credit", func(t *testing.T) {
		err := svc.AdjustBalance(ctx, partnerID, 500, ledgerdomain.DirectionCredit, "goodwill credit")
		require.NoError(t, err)
		assert.Equal(t, int64(551), walletBalance(t, db, partnerID))
	})

	t.Run("debit clamps at zero", func(t *testing.T) {
		err := svc.AdjustBalance(ctx, partnerID, 10000, ledgerdomain.DirectionDebit, "clawback")
		require.NoError(t, err)
		assert.Equal(t, int64(0), walletBalance(t, db, partnerID))
	})

	t.Run("every adjustment is logged", func(t *testing.T) {
		txns, err := svc.ListByPayer(ctx, partnerID)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		for _, txn := range txns {
			assert.Equal(t, ledgerdomain.MethodAdminAdjustment, txn.Method)
			assert.Equal(t, ledgerdomain.PurposeAdminAdjustment, txn.Purpose)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		err := svc.AdjustBalance(ctx, partnerID, 100, "SIDEWAYS", "oops")
		assert.ErrorIs(t, err, ledgerdomain.ErrInvalidDirection)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		err := svc.AdjustBalance(ctx, node.Generate(), 100, ledgerdomain.DirectionCredit, "nobody")
		assert.ErrorIs(t, err, ledgerdomain.ErrWalletNotFound)
	})
}

func TestRecharge(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	partnerID := node.Generate()
	seedWallet(t, db, partnerID, 0)

	err = svc.Recharge(ctx, partnerID, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), walletBalance(t, db, partnerID))

	txns, err := svc.ListByPayer(ctx, partnerID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, ledgerdomain.PurposeWalletTopup, txns[0].Purpose)
	assert.Equal(t, ledgerdomain.DirectionCredit, txns[0].Direction)

	err = svc.Recharge(ctx, partnerID, -5)
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)
}

func TestEnsureWalletIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	partnerID := node.Generate()

	require.NoError(t, svc.EnsureWallet(ctx, partnerID))
	require.NoError(t, svc.Recharge(ctx, partnerID, 250))

	// A second ensure must not reset the balance.
	require.NoError(t, svc.EnsureWallet(ctx, partnerID))
	balance, err := svc.GetBalance(ctx, partnerID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)
}

func TestGetBalanceUnknownWallet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)

	_, err = svc.GetBalance(ctx, node.Generate())
	assert.ErrorIs(t, err, ledgerdomain.ErrWalletNotFound)
}

func walletUpdatedAt(t *testing.T, db *gorm.DB, partnerID snowflake.ID) time.Time {
	t.Helper()
	var updatedAt time.Time
	err := db.Raw(`SELECT updated_at FROM wallet_accounts WHERE partner_id = ?`, partnerID).Scan(&updatedAt).Error
	require.NoError(t, err)
	return updatedAt
}

func TestWalletMutationsStampClockTime(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)
	want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	partnerID := node.Generate()

	// Seed with a stale timestamp so each mutation has to overwrite it.
	stale := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	err = db.Exec(
		`INSERT INTO wallet_accounts (partner_id, balance, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		partnerID, 100, stale, stale,
	).Error
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, ledgerdomain.AuthorizeRequest{
		PayerID: partnerID,
		Amount:  49,
		Method:  ledgerdomain.MethodWallet,
		Purpose: ledgerdomain.PurposeInitial,
		Bureaus: []bureau.Bureau{bureau.CIBIL},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, want, walletUpdatedAt(t, db, partnerID), time.Second)

	resetWalletUpdatedAt := func() {
		require.NoError(t, db.Exec(
			`UPDATE wallet_accounts SET updated_at = ? WHERE partner_id = ?`, stale, partnerID,
		).Error)
	}

	resetWalletUpdatedAt()
	require.NoError(t, svc.Recharge(ctx, partnerID, 200))
	assert.WithinDuration(t, want, walletUpdatedAt(t, db, partnerID), time.Second)

	resetWalletUpdatedAt()
	require.NoError(t, svc.AdjustBalance(ctx, partnerID, 25, ledgerdomain.DirectionDebit, "correction"))
	assert.WithinDuration(t, want, walletUpdatedAt(t, db, partnerID), time.Second)
}

func TestListAllPagination(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newLedgerService(t, db)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	partnerID := node.Generate()
	seedWallet(t, db, partnerID, 0)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Recharge(ctx, partnerID, int64(10+i)))
	}

	firstPage, info, err := svc.ListAll(ctx, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.True(t, info.HasMore)
	require.NotEmpty(t, info.NextPageToken)
	assert.Greater(t, int64(firstPage[0].ID), int64(firstPage[1].ID))

	secondPage, info, err := svc.ListAll(ctx, pagination.Pagination{PageSize: 2, PageToken: info.NextPageToken})
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	require.True(t, info.HasMore)
	assert.Greater(t, int64(firstPage[1].ID), int64(secondPage[0].ID))

	lastPage, info, err := svc.ListAll(ctx, pagination.Pagination{PageSize: 2, PageToken: info.NextPageToken})
	require.NoError(t, err)
	require.Len(t, lastPage, 1)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)

	_, _, err = svc.ListAll(ctx, pagination.Pagination{PageToken: "not-a-token"})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidPageToken)
}
