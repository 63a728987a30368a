package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() identitydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *identitydomain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*identitydomain.User, error) {
	var user identitydomain.User
	err := db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByIdentity(ctx context.Context, db *gorm.DB, pan, mobile string) (*identitydomain.User, error) {
	var user identitydomain.User
	err := db.WithContext(ctx).
		Where("pan = ? OR mobile = ?", pan, mobile).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, role identitydomain.Role) ([]identitydomain.User, error) {
	query := db.WithContext(ctx).Order("created_at ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []identitydomain.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, user *identitydomain.User) error {
	return db.WithContext(ctx).Save(user).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&identitydomain.User{}, "id = ?", id).Error
}
