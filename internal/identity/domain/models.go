package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role classifies an account: end consumer, reseller partner, or master admin.
type Role string

const (
	RoleUser         Role = "USER"
	RolePartnerAdmin Role = "PARTNER_ADMIN"
	RoleMasterAdmin  Role = "MASTER_ADMIN"
)

// User is a registered account. Consumers pay per report via the gateway;
// partners prepay into a wallet and purchase at the reseller rate.
type User struct {
	ID            snowflake.ID   `gorm:"primaryKey" json:"id"`
	FullName      string         `gorm:"type:text;not null" json:"full_name"`
	PAN           string         `gorm:"type:text;not null;uniqueIndex:ux_users_pan" json:"pan"`
	Mobile        string         `gorm:"type:text;not null;uniqueIndex:ux_users_mobile" json:"mobile"`
	Email         string         `gorm:"type:text;not null" json:"email"`
	DOB           string         `gorm:"type:text" json:"dob"`
	Gender        string         `gorm:"type:text" json:"gender"`
	Addresses     datatypes.JSON `gorm:"type:jsonb" json:"addresses"`
	Occupation    string         `gorm:"type:text" json:"occupation"`
	IncomeBand    string         `gorm:"type:text" json:"income_band"`
	IDType        string         `gorm:"type:text" json:"id_type"`
	IDNumber      string         `gorm:"type:text" json:"id_number"`
	Role          Role           `gorm:"type:text;not null;default:'USER';index" json:"role"`
	FranchiseCode string         `gorm:"type:text" json:"franchise_code,omitempty"`
	PasswordHash  string         `gorm:"type:text" json:"-"`
	ReferredBy    string         `gorm:"type:text" json:"referred_by,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

func (u User) IsPartner() bool { return u.Role == RolePartnerAdmin }
