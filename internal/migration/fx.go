package migration

import (
	"github.com/smallbiznis/credicheck/internal/config"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
	reportdomain "github.com/smallbiznis/credicheck/internal/report/domain"
	"github.com/smallbiznis/credicheck/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// golang-migrate is wired for Postgres; other dialects are dev
			// setups where the ORM schema is enough.
			if err := conn.AutoMigrate(
				&identitydomain.User{},
				&ledgerdomain.WalletAccount{},
				&ledgerdomain.Transaction{},
				&pricingdomain.PricingEntry{},
				&reportdomain.CreditReportRecord{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureAdmin(conn, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
			return err
		}
		return seed.EnsureDefaultPricing(conn)
	}),
)
