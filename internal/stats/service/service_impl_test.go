package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/credicheck/internal/clock"
	ledgerrepo "github.com/smallbiznis/credicheck/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/credicheck/internal/ledger/service"
	statsservice "github.com/smallbiznis/credicheck/internal/stats/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_stats_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			full_name TEXT NOT NULL,
			pan TEXT NOT NULL,
			mobile TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			dob TEXT, gender TEXT, addresses TEXT, occupation TEXT,
			income_band TEXT, id_type TEXT, id_number TEXT,
			role TEXT NOT NULL DEFAULT 'USER',
			franchise_code TEXT, password_hash TEXT, referred_by TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
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
		`CREATE TABLE credit_reports (
			id BIGINT PRIMARY KEY,
			consumer_id BIGINT NOT NULL,
			generated_by BIGINT NOT NULL,
			transaction_id BIGINT NOT NULL,
			bureau TEXT NOT NULL,
			revision INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'SUCCESS',
			reference_id TEXT NOT NULL,
			control_number TEXT NOT NULL,
			score INTEGER NOT NULL,
			band TEXT NOT NULL,
			risk TEXT NOT NULL,
			consumer TEXT NOT NULL,
			loans TEXT NOT NULL,
			enquiries TEXT,
			total_loans INTEGER NOT NULL,
			active_loans INTEGER NOT NULL,
			closed_loans INTEGER NOT NULL,
			overdue_accounts INTEGER NOT NULL,
			report_date DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id snowflake.ID, role string) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO users (id, full_name, pan, mobile, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, "User "+id.String(), "PAN"+id.String(), "9"+id.String()[:9], role,
		time.Now().UTC(), time.Now().UTC(),
	).Error
	require.NoError(t, err)
}

func seedReport(t *testing.T, db *gorm.DB, node *snowflake.Node, consumerID, generatorID snowflake.ID, scoreValue int, risk string, loanTypes []string) {
	t.Helper()

	loans := make([]map[string]any, 0, len(loanTypes))
	for _, loanType := range loanTypes {
		loans = append(loans, map[string]any{"account_type": loanType, "amount_overdue": 0})
	}
	raw, err := json.Marshal(loans)
	require.NoError(t, err)

	err = db.Exec(
		`INSERT INTO credit_reports (
			id, consumer_id, generated_by, transaction_id, bureau, revision,
			status, reference_id, control_number, score, band, risk,
			consumer, loans, enquiries,
			total_loans, active_loans, closed_loans, overdue_accounts,
			report_date, created_at
		) VALUES (?, ?, ?, ?, 'CIBIL', 1, 'SUCCESS', 'REF-1', '100000001', ?, 'FAIR', ?, '{}', ?, '[]', ?, ?, 0, 0, ?, ?)`,
		node.Generate(), consumerID, generatorID, node.Generate(),
		scoreValue, risk, string(raw), len(loans), len(loans),
		time.Now().UTC(), time.Now().UTC(),
	).Error
	require.NoError(t, err)
}

func seedTransaction(t *testing.T, db *gorm.DB, node *snowflake.Node, payerID snowflake.ID, amount int64, purpose string) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO transactions (id, payer_id, amount, method, purpose, status, occurred_at, created_at)
		 VALUES (?, ?, ?, 'WALLET', ?, 'SUCCESS', ?, ?)`,
		node.Generate(), payerID, amount, purpose, time.Now().UTC(), time.Now().UTC(),
	).Error
	require.NoError(t, err)
}

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(15)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB: db, Log: log, GenID: node,
		Clock: clock.NewFakeClock(time.Now()),
		Repo:  ledgerrepo.Provide(),
	})
	svc := statsservice.New(statsservice.Params{DB: db, Log: log, LedgerSvc: ledgerSvc})

	consumer := node.Generate()
	partner := node.Generate()
	seedUser(t, db, consumer, "USER")
	seedUser(t, db, partner, "PARTNER_ADMIN")

	seedReport(t, db, node, consumer, partner, 700, "MEDIUM", []string{"Credit Card", "Personal Loan"})
	seedReport(t, db, node, consumer, partner, 600, "HIGH", []string{"Personal Loan"})

	seedTransaction(t, db, node, partner, 49, "INITIAL")
	seedTransaction(t, db, node, partner, 49, "REFRESH")
	// Top-ups are balance movements, not revenue.
	seedTransaction(t, db, node, partner, 1000, "WALLET_TOPUP")

	stats, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalPartners)
	assert.Equal(t, int64(2), stats.TotalReports)
	assert.Equal(t, int64(98), stats.TotalRevenue)
	assert.InDelta(t, 650.0, stats.AverageScore, 0.01)
	assert.Equal(t, int64(1), stats.HighRiskCount)
	assert.Equal(t, int64(2), stats.LoanTypeDistribution["Personal Loan"])
	assert.Equal(t, int64(1), stats.LoanTypeDistribution["Credit Card"])
}

func TestAdminStatsEmpty(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(15)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB: db, Log: log, GenID: node,
		Clock: clock.NewFakeClock(time.Now()),
		Repo:  ledgerrepo.Provide(),
	})
	svc := statsservice.New(statsservice.Params{DB: db, Log: log, LedgerSvc: ledgerSvc})

	stats, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReports)
	assert.Zero(t, stats.AverageScore)
	assert.Empty(t, stats.LoanTypeDistribution)
}

func TestPartnerStats(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(15)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB: db, Log: log, GenID: node,
		Clock: clock.NewFakeClock(time.Now()),
		Repo:  ledgerrepo.Provide(),
	})
	svc := statsservice.New(statsservice.Params{DB: db, Log: log, LedgerSvc: ledgerSvc})

	partner := node.Generate()
	consumer := node.Generate()
	require.NoError(t, ledgerSvc.EnsureWallet(ctx, partner))
	require.NoError(t, ledgerSvc.Recharge(ctx, partner, 500))

	seedReport(t, db, node, consumer, partner, 700, "MEDIUM", []string{"Gold Loan"})
	seedTransaction(t, db, node, partner, 49, "INITIAL")

	stats, err := svc.Partner(ctx, partner.String())
	require.NoError(t, err)
	assert.Equal(t, int64(500), stats.WalletBalance)
	assert.Equal(t, int64(1), stats.ReportsSold)
	assert.Equal(t, int64(49), stats.AmountSpent)

	_, err = svc.Partner(ctx, "abc")
	assert.Error(t, err)
}
