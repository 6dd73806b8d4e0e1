package repository

import (
	"context"
	"strings"

	"gearvault/internal/domain"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m := categoryModel{OwnerID: c.OwnerID, Name: strings.TrimSpace(c.Name)}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*c = *toDomainCategory(m)
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var m categoryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainCategory(m), nil
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Category, error) {
	var rows []categoryModel
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainCategory(m))
	}
	return out, nil
}

func (r *CategoryRepository) Rename(ctx context.Context, id int64, name string) error {
	tx := r.db.WithContext(ctx).Model(&categoryModel{}).Where("id = ?", id).Update("name", strings.TrimSpace(name))
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&categoryModel{}, id)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, l *domain.Location) error {
	m := locationModel{
		OwnerID:     l.OwnerID,
		Name:        strings.TrimSpace(l.Name),
		Description: nullable(l.Description),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*l = *toDomainLocation(m)
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	var m locationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainLocation(m), nil
}

func (r *LocationRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Location, error) {
	var rows []locationModel
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Location, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainLocation(m))
	}
	return out, nil
}

func (r *LocationRepository) Update(ctx context.Context, l *domain.Location) error {
	tx := r.db.WithContext(ctx).
		Model(&locationModel{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"name":        strings.TrimSpace(l.Name),
			"description": nullable(l.Description),
		})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LocationRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&locationModel{}, id)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
