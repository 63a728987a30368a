package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	"github.com/smallbiznis/credicheck/internal/identity/password"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
	"gorm.io/gorm"
)

const (
	adminFullName = "Platform Admin"
	adminPAN      = "ADMNX0001A"
	adminMobile   = "9999999999"

	defaultUserPrice    = 99
	defaultPartnerPrice = 49
)

// EnsureAdmin seeds the master admin account. Safe to run on every boot.
func EnsureAdmin(db *gorm.DB, email, plainPassword string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing identitydomain.User
		err := tx.WithContext(ctx).
			Where("role = ?", identitydomain.RoleMasterAdmin).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(plainPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		admin := identitydomain.User{
			ID:           node.Generate(),
			FullName:     adminFullName,
			PAN:          adminPAN,
			Mobile:       adminMobile,
			Email:        email,
			Role:         identitydomain.RoleMasterAdmin,
			PasswordHash: hashed,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&admin).Error
	})
}

// EnsureDefaultPricing installs the stock price table when none exists. An
// operator-edited table is never overwritten.
func EnsureDefaultPricing(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).
			Model(&pricingdomain.PricingEntry{}).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		entries := make([]pricingdomain.PricingEntry, 0, 2*len(bureau.All()))
		for _, b := range bureau.All() {
			entries = append(entries,
				pricingdomain.PricingEntry{
					ID:             node.Generate(),
					RequesterClass: pricingdomain.ClassUser,
					Bureau:         b,
					UnitPrice:      defaultUserPrice,
					CreatedAt:      now,
					UpdatedAt:      now,
				},
				pricingdomain.PricingEntry{
					ID:             node.Generate(),
					RequesterClass: pricingdomain.ClassPartner,
					Bureau:         b,
					UnitPrice:      defaultPartnerPrice,
					CreatedAt:      now,
					UpdatedAt:      now,
				},
			)
		}
		return tx.WithContext(ctx).Create(&entries).Error
	})
}
