package repository

import (
	"context"
	"strings"
	"time"

	"gearvault/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

type EquipmentFilter struct {
	OwnerID    int64
	Status     domain.EquipmentStatus
	CategoryID *int64
	LocationID *int64
	Query      string
	Limit      int
	Offset     int
}

func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	m := toEquipmentModel(e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*e = *toDomainEquipment(m)
	return nil
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	var m equipmentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainEquipment(m), nil
}

// GetForUpdate reads the row under SELECT ... FOR UPDATE. SQLite ignores the
// locking clause and relies on its single writer.
func (r *EquipmentRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Equipment, error) {
	var m equipmentModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toDomainEquipment(m), nil
}

// UpdateFields applies column updates and bumps updated_at.
func (r *EquipmentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any, at time.Time) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = at
	tx := r.db.WithContext(ctx).Model(&equipmentModel{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.EquipmentStatus, at time.Time) error {
	return r.UpdateFields(ctx, id, map[string]any{"status": string(status)}, at)
}

func (r *EquipmentRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&equipmentModel{}, id)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of an owner's equipment, newest first, together with
// the total number of matches.
func (r *EquipmentRepository) List(ctx context.Context, f EquipmentFilter) ([]domain.Equipment, int64, error) {
	q := r.db.WithContext(ctx).Model(&equipmentModel{}).Where("owner_id = ?", f.OwnerID)
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(serial_number) LIKE ? OR LOWER(manufacturer) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	q = q.Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var rows []equipmentModel
	err := q.Find(&rows).Error
	if err != nil {
		return nil, 0, translateError(err)
	}

	out := make([]domain.Equipment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainEquipment(m))
	}
	return out, total, nil
}

// ListByStatus scans every owner's equipment in the given status.
func (r *EquipmentRepository) ListByStatus(ctx context.Context, status domain.EquipmentStatus) ([]domain.Equipment, error) {
	var rows []equipmentModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Equipment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainEquipment(m))
	}
	return out, nil
}

func (r *EquipmentRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&equipmentModel{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, translateError(err)
}

func (r *EquipmentRepository) CountByLocation(ctx context.Context, locationID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&equipmentModel{}).Where("location_id = ?", locationID).Count(&n).Error
	return n, translateError(err)
}

// LoadRelations fills Category, Location and Images on e.
func (r *EquipmentRepository) LoadRelations(ctx context.Context, e *domain.Equipment) error {
	db := r.db.WithContext(ctx)

	if e.CategoryID != nil {
		var c categoryModel
		err := db.First(&c, *e.CategoryID).Error
		switch {
		case err == nil:
			e.Category = toDomainCategory(c)
		case translateError(err) != ErrNotFound:
			return translateError(err)
		}
	}

	if e.LocationID != nil {
		var l locationModel
		err := db.First(&l, *e.LocationID).Error
		switch {
		case err == nil:
			e.Location = toDomainLocation(l)
		case translateError(err) != ErrNotFound:
			return translateError(err)
		}
	}

	images, err := NewImageRepository(r.db).ListByEquipment(ctx, e.ID)
	if err != nil {
		return err
	}
	e.Images = images
	return nil
}
