package repository

import (
	"context"
	"strings"
	"time"

	"gearvault/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return toDomainUser(m), nil
}

// UpdateProfile writes name and profile image only.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"name":              u.Name,
			"profile_image_url": nullable(u.ProfileImageURL),
			"updated_at":        now,
		})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	u.UpdatedAt = now
	return nil
}

// Deactivate marks the account inactive. Deactivating an inactive account
// keeps the original deactivation time.
func (r *UserRepository) Deactivate(ctx context.Context, id int64, at time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]any{
			"active":         false,
			"deactivated_at": at,
			"updated_at":     at,
		})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userModel{}).Count(&n).Error
	return n, translateError(err)
}
