package domain

import (
	"context"
	"errors"
)

type RegisterRequest struct {
	FullName   string   `json:"full_name"`
	PAN        string   `json:"pan"`
	Mobile     string   `json:"mobile"`
	Email      string   `json:"email"`
	DOB        string   `json:"dob"`
	Gender     string   `json:"gender"`
	Addresses  []string `json:"addresses"`
	Occupation string   `json:"occupation"`
	IncomeBand string   `json:"income_band"`
	IDType     string   `json:"id_type"`
	IDNumber   string   `json:"id_number"`
	ReferredBy string   `json:"referred_by"`
}

type CreatePartnerRequest struct {
	RegisterRequest
	Password string `json:"password"`
}

type UpdateRequest struct {
	FullName   *string   `json:"full_name"`
	Email      *string   `json:"email"`
	DOB        *string   `json:"dob"`
	Gender     *string   `json:"gender"`
	Addresses  *[]string `json:"addresses"`
	Occupation *string   `json:"occupation"`
	IncomeBand *string   `json:"income_band"`
}

type Service interface {
	// Register creates a consumer account. A consumer re-registering with a
	// known PAN or mobile gets the existing account back instead of an error.
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	// CreatePartner creates a reseller account with a franchise code and a
	// zero-balance wallet. Duplicate identity is a conflict for partners.
	CreatePartner(ctx context.Context, req CreatePartnerRequest) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, role Role) ([]User, error)
	// Update edits the live profile only; reports already generated keep the
	// consumer snapshot they were stamped with.
	Update(ctx context.Context, id string, req UpdateRequest) (*User, error)
	// UpdateRole changes an account's role. Promotion to partner provisions
	// the franchise code and wallet.
	UpdateRole(ctx context.Context, id string, role Role) (*User, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidPAN    = errors.New("invalid_pan")
	ErrInvalidMobile = errors.New("invalid_mobile")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrInvalidID     = errors.New("invalid_id")
	ErrAlreadyExists = errors.New("already_exists")
	ErrNotFound      = errors.New("not_found")
)
