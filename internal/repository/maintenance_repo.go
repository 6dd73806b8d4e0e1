package repository

import (
	"context"
	"time"

	"gearvault/internal/domain"

	"gorm.io/gorm"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// Create inserts an open record. A second open record for the same
// equipment fails with ErrUniqueViolation.
func (r *MaintenanceRepository) Create(ctx context.Context, rec *domain.MaintenanceRecord) error {
	m := maintenanceRecordModel{
		EquipmentID: rec.EquipmentID,
		Description: rec.Description,
		OpenedAt:    rec.OpenedAt,
		ClosedAt:    rec.ClosedAt,
		Cost:        rec.Cost,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*rec = *toDomainMaintenance(m)
	return nil
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id int64) (*domain.MaintenanceRecord, error) {
	var m maintenanceRecordModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainMaintenance(m), nil
}

// FindOpen returns the open record of an equipment or ErrNotFound.
func (r *MaintenanceRepository) FindOpen(ctx context.Context, equipmentID int64) (*domain.MaintenanceRecord, error) {
	var m maintenanceRecordModel
	err := r.db.WithContext(ctx).
		Where("equipment_id = ? AND closed_at IS NULL", equipmentID).
		Order("opened_at DESC").
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toDomainMaintenance(m), nil
}

func (r *MaintenanceRepository) CountOpen(ctx context.Context, equipmentID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&maintenanceRecordModel{}).
		Where("equipment_id = ? AND closed_at IS NULL", equipmentID).
		Count(&n).Error
	return n, translateError(err)
}

// Close sets closed_at (and cost when given) on a still-open record.
// It reports false when the record was already closed.
func (r *MaintenanceRepository) Close(ctx context.Context, id int64, at time.Time, cost *int64) (bool, error) {
	fields := map[string]any{"closed_at": at}
	if cost != nil {
		fields["cost"] = *cost
	}
	tx := r.db.WithContext(ctx).
		Model(&maintenanceRecordModel{}).
		Where("id = ? AND closed_at IS NULL", id).
		Updates(fields)
	if tx.Error != nil {
		return false, translateError(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}

// CloseAllOpen closes every open record of the equipment. Records opened
// after at are closed at their own opened_at.
func (r *MaintenanceRepository) CloseAllOpen(ctx context.Context, equipmentID int64, at time.Time) (int64, error) {
	var open []maintenanceRecordModel
	err := r.db.WithContext(ctx).
		Where("equipment_id = ? AND closed_at IS NULL", equipmentID).
		Find(&open).Error
	if err != nil {
		return 0, translateError(err)
	}

	var closed int64
	for _, m := range open {
		closedAt := at
		if closedAt.Before(m.OpenedAt) {
			closedAt = m.OpenedAt
		}
		ok, err := r.Close(ctx, m.ID, closedAt, nil)
		if err != nil {
			return closed, err
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

// ListByEquipment returns the history newest first.
func (r *MaintenanceRepository) ListByEquipment(ctx context.Context, equipmentID int64) ([]domain.MaintenanceRecord, error) {
	var rows []maintenanceRecordModel
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Order("opened_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]domain.MaintenanceRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainMaintenance(m))
	}
	return out, nil
}

// LastClosedAt returns the latest closing time, nil when nothing was closed.
func (r *MaintenanceRepository) LastClosedAt(ctx context.Context, equipmentID int64) (*time.Time, error) {
	var m maintenanceRecordModel
	err := r.db.WithContext(ctx).
		Where("equipment_id = ? AND closed_at IS NOT NULL", equipmentID).
		Order("closed_at DESC").
		First(&m).Error
	if err != nil {
		if err = translateError(err); err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return m.ClosedAt, nil
}

func (r *MaintenanceRepository) DeleteByEquipment(ctx context.Context, equipmentID int64) error {
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Delete(&maintenanceRecordModel{}).Error
	return translateError(err)
}
