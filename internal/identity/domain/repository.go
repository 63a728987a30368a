package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByIdentity(ctx context.Context, db *gorm.DB, pan, mobile string) (*User, error)
	List(ctx context.Context, db *gorm.DB, role Role) ([]User, error)
	Save(ctx context.Context, db *gorm.DB, user *User) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
