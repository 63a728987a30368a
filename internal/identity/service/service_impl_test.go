package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/credicheck/internal/clock"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	"github.com/smallbiznis/credicheck/internal/identity/password"
	identityrepo "github.com/smallbiznis/credicheck/internal/identity/repository"
	identityservice "github.com/smallbiznis/credicheck/internal/identity/service"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/credicheck/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/credicheck/internal/ledger/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_identity_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
			dob TEXT,
			gender TEXT,
			addresses TEXT,
			occupation TEXT,
			income_band TEXT,
			id_type TEXT,
			id_number TEXT,
			role TEXT NOT NULL DEFAULT 'USER',
			franchise_code TEXT,
			password_hash TEXT,
			referred_by TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_users_pan ON users(pan)`,
		`CREATE UNIQUE INDEX ux_users_mobile ON users(mobile)`,
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
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

func newIdentityService(t *testing.T, db *gorm.DB) (identitydomain.Service, ledgerdomain.Service) {
	t.Helper()

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: fakeClock,
		Repo:  ledgerrepo.Provide(),
	})
	identitySvc := identityservice.New(identityservice.Params{
		DB:        db,
		Log:       zaptest.NewLogger(t),
		GenID:     node,
		Clock:     fakeClock,
		Repo:      identityrepo.Provide(),
		LedgerSvc: ledgerSvc,
	})
	return identitySvc, ledgerSvc
}

func consumerRequest() identitydomain.RegisterRequest {
	return identitydomain.RegisterRequest{
		FullName:   "Asha Verma",
		PAN:        "ABCDE1234F",
		Mobile:     "9876543210",
		Email:      "asha@example.com",
		DOB:        "1991-04-12",
		Gender:     "F",
		Addresses:  []string{"14 MG Road, Pune"},
		Occupation: "SALARIED",
		IncomeBand: "5-10L",
	}
}

func TestRegisterConsumer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newIdentityService(t, db)

	user, err := svc.Register(ctx, consumerRequest())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, identitydomain.RoleUser, user.Role)
	assert.Empty(t, user.FranchiseCode)
}

func TestRegisterExistingConsumerReturnsAccount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newIdentityService(t, db)

	first, err := svc.Register(ctx, consumerRequest())
	require.NoError(t, err)

	// Same PAN, different mobile: still the same person.
	req := consumerRequest()
	req.Mobile = "9123456780"
	second, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	users, err := svc.List(ctx, identitydomain.RoleUser)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newIdentityService(t, db)

	cases := []struct {
		name    string
		mutate  func(*identitydomain.RegisterRequest)
		wantErr error
	}{
		{"blank name", func(r *identitydomain.RegisterRequest) { r.FullName = "  " }, identitydomain.ErrInvalidName},
		{"malformed pan", func(r *identitydomain.RegisterRequest) { r.PAN = "1234ABCDE" }, identitydomain.ErrInvalidPAN},
		{"short mobile", func(r *identitydomain.RegisterRequest) { r.Mobile = "98765" }, identitydomain.ErrInvalidMobile},
		{"bad email", func(r *identitydomain.RegisterRequest) { r.Email = "not-an-email" }, identitydomain.ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := consumerRequest()
			tc.mutate(&req)
			_, err := svc.Register(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRegisterNormalizesPAN(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newIdentityService(t, db)

	req := consumerRequest()
	req.PAN = " abcde1234f "
	user, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", user.PAN)
}

func TestCreatePartner(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, ledgerSvc := newIdentityService(t, db)

	partner, err := svc.CreatePartner(ctx, identitydomain.CreatePartnerRequest{
		RegisterRequest: identitydomain.RegisterRequest{
			FullName: "Nexus Finserv",
			PAN:      "FGHIJ5678K",
			Mobile:   "9000000001",
			Email:    "ops@nexusfinserv.example",
		},
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, identitydomain.RolePartnerAdmin, partner.Role)
	assert.Regexp(t, `^FR-\d{4}$`, partner.FranchiseCode)
	assert.True(t, password.Verify("s3cret-pass", partner.PasswordHash))

	balance, err := ledgerSvc.GetBalance(ctx, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	t.Run("duplicate identity is a conflict", func(t *testing.T) {
		_, err := svc.CreatePartner(ctx, identitydomain.CreatePartnerRequest{
			RegisterRequest: identitydomain.RegisterRequest{
				FullName: "Copycat",
				PAN:      "FGHIJ5678K",
				Mobile:   "9000000002",
			},
		})
		assert.ErrorIs(t, err, identitydomain.ErrAlreadyExists)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newIdentityService(t, db)

	user, err := svc.Register(ctx, consumerRequest())
	require.NoError(t, err)

	newName := "Asha V. Kulkarni"
	newBand := "10-25L"
	updated, err := svc.Update(ctx, user.ID.String(), identitydomain.UpdateRequest{
		FullName:   &newName,
		IncomeBand: &newBand,
	})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.FullName)
	assert.Equal(t, newBand, updated.IncomeBand)
	assert.Equal(t, user.PAN, updated.PAN)

	badEmail := "nope"
	_, err = svc.Update(ctx, user.ID.String(), identitydomain.UpdateRequest{Email: &badEmail})
	assert.ErrorIs(t, err, identitydomain.ErrInvalidEmail)
}

func TestUpdateRolePromotionProvisionsPartner(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, ledgerSvc := newIdentityService(t, db)

	user, err := svc.Register(ctx, consumerRequest())
	require.NoError(t, err)

	promoted, err := svc.UpdateRole(ctx, user.ID.String(), identitydomain.RolePartnerAdmin)
	require.NoError(t, err)
	assert.Equal(t, identitydomain.RolePartnerAdmin, promoted.Role)
	assert.NotEmpty(t, promoted.FranchiseCode)

	_, err = ledgerSvc.GetBalance(ctx, promoted.ID)
	require.NoError(t, err)

	_, err = svc.UpdateRole(ctx, user.ID.String(), "SUPERVISOR")
	assert.ErrorIs(t, err, identitydomain.ErrInvalidRole)
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newIdentityService(t, db)

	user, err := svc.Register(ctx, consumerRequest())
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)

	_, err = svc.Get(ctx, "not-a-number")
	assert.ErrorIs(t, err, identitydomain.ErrInvalidID)

	require.NoError(t, svc.Delete(ctx, user.ID.String()))
	_, err = svc.Get(ctx, user.ID.String())
	assert.ErrorIs(t, err, identitydomain.ErrNotFound)
}
