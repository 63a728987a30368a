package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/credicheck/internal/bureau"
)

// RequesterClass selects which price column applies to a purchase.
type RequesterClass string

const (
	ClassUser    RequesterClass = "USER"
	ClassPartner RequesterClass = "PARTNER"
)

// PricingEntry is one cell of the price table: the per-report unit price
// for a requester class and bureau.
type PricingEntry struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	RequesterClass RequesterClass `gorm:"type:text;not null;uniqueIndex:ux_pricing_class_bureau" json:"requester_class"`
	Bureau         bureau.Bureau  `gorm:"type:text;not null;uniqueIndex:ux_pricing_class_bureau" json:"bureau"`
	UnitPrice      int64          `gorm:"not null" json:"unit_price"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PricingEntry) TableName() string { return "pricing_entries" }
