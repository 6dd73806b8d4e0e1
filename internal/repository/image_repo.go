package repository

import (
	"context"

	"gearvault/internal/domain"

	"gorm.io/gorm"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create appends the image after the existing ones. Callers clear the
// previous primary in the same transaction before adding a primary image.
func (r *ImageRepository) Create(ctx context.Context, img *domain.Image) error {
	var agg struct {
		MaxPos *int
	}
	err := r.db.WithContext(ctx).
		Model(&imageModel{}).
		Where("equipment_id = ?", img.EquipmentID).
		Select("MAX(position) AS max_pos").
		Scan(&agg).Error
	if err != nil {
		return translateError(err)
	}

	m := imageModel{
		EquipmentID: img.EquipmentID,
		ImageURL:    img.ImageURL,
		IsPrimary:   img.IsPrimary,
		CreatedAt:   img.CreatedAt,
	}
	if agg.MaxPos != nil {
		m.Position = *agg.MaxPos + 1
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*img = toDomainImage(m)
	return nil
}

func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	var m imageModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translateError(err)
	}
	img := toDomainImage(m)
	return &img, nil
}

func (r *ImageRepository) ListByEquipment(ctx context.Context, equipmentID int64) ([]domain.Image, error) {
	var rows []imageModel
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Order("position ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]domain.Image, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainImage(m))
	}
	return out, nil
}

func (r *ImageRepository) ClearPrimary(ctx context.Context, equipmentID int64) error {
	err := r.db.WithContext(ctx).
		Model(&imageModel{}).
		Where("equipment_id = ? AND is_primary = ?", equipmentID, true).
		Update("is_primary", false).Error
	return translateError(err)
}

func (r *ImageRepository) SetPrimary(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).
		Model(&imageModel{}).
		Where("id = ?", id).
		Update("is_primary", true)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ImageRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&imageModel{}, id)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ImageRepository) DeleteByEquipment(ctx context.Context, equipmentID int64) error {
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Delete(&imageModel{}).Error
	return translateError(err)
}
