package maintenance

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearvault/internal/domain"
	"gearvault/internal/modules/access"
	"gearvault/internal/modules/equipment"
	"gearvault/internal/modules/events"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/pkg/metrics"
	"gearvault/internal/pkg/validator"
	"gearvault/internal/repository"

	"go.uber.org/zap"
)

type Service struct {
	store    *repository.Store
	guard    *access.Guard
	engine   *equipment.Engine
	events   events.Publisher
	interval time.Duration
	log      *zap.Logger
}

func NewService(store *repository.Store, guard *access.Guard, engine *equipment.Engine, publisher events.Publisher, interval time.Duration, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		guard:    guard,
		engine:   engine,
		events:   publisher,
		interval: interval,
		log:      log,
	}
}

// Open starts a maintenance record and moves the item to MAINTENANCE in
// the same transaction.
func (s *Service) Open(ctx context.Context, p domain.Principal, equipmentID int64, req OpenRequest) (*domain.MaintenanceRecord, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperror.NewValidationError("description", "is required")
	}

	var (
		eq  *domain.Equipment
		rec *domain.MaintenanceRecord
		out equipment.Outcome
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		eq, err = s.guard.Equipment(ctx, tx, p, access.ActionWrite, equipmentID)
		if err != nil {
			return err
		}
		if eq.Status == domain.StatusLost || eq.Status == domain.StatusSold {
			return &apperror.InvalidTransitionError{From: eq.Status, To: domain.StatusMaintenance}
		}

		if _, err := tx.Maintenance().FindOpen(ctx, eq.ID); err == nil {
			return apperror.ErrAlreadyInMaintenance
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		rec = &domain.MaintenanceRecord{
			EquipmentID: eq.ID,
			Description: description,
			OpenedAt:    s.engine.Now(),
			Cost:        req.Cost,
		}
		if err := tx.Maintenance().Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				return apperror.ErrAlreadyInMaintenance
			}
			return err
		}

		out, err = s.engine.Apply(ctx, tx, eq, domain.StatusMaintenance, equipment.TriggerMaintenanceOpened)
		return err
	})
	if err != nil {
		if errors.Is(err, apperror.ErrAlreadyInMaintenance) {
			s.log.Info("maintenance already open", zap.Int64("equipment_id", equipmentID))
		}
		return nil, err
	}

	equipment.RecordTransition(out)
	metrics.RecordMaintenance("opened", 1)
	s.events.Publish(events.Event{
		Type:        events.TypeMaintenanceOpened,
		OwnerID:     eq.OwnerID,
		EquipmentID: eq.ID,
		RecordID:    rec.ID,
		At:          rec.OpenedAt,
	})
	s.events.Publish(events.Event{
		Type:        events.TypeStatusChanged,
		OwnerID:     eq.OwnerID,
		EquipmentID: eq.ID,
		From:        out.From,
		To:          out.Status,
		At:          rec.OpenedAt,
	})
	return rec, nil
}

// Close ends an open record. The item returns to ACTIVE only when it was
// in MAINTENANCE and no other record is still open; a LOST item stays LOST.
func (s *Service) Close(ctx context.Context, p domain.Principal, recordID int64, req CloseRequest) (*domain.MaintenanceRecord, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		eq  *domain.Equipment
		rec *domain.MaintenanceRecord
		out equipment.Outcome
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		rec, eq, err = s.guard.MaintenanceRecord(ctx, tx, p, access.ActionWrite, recordID)
		if err != nil {
			return err
		}
		if !rec.IsOpen() {
			return apperror.ErrNoOpenRecord
		}

		closedAt := s.engine.Now()
		if closedAt.Before(rec.OpenedAt) {
			closedAt = rec.OpenedAt
		}
		ok, err := tx.Maintenance().Close(ctx, rec.ID, closedAt, req.Cost)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.ErrNoOpenRecord
		}

		if eq.Status == domain.StatusMaintenance {
			remaining, err := tx.Maintenance().CountOpen(ctx, eq.ID)
			if err != nil {
				return err
			}
			if remaining == 0 {
				out, err = s.engine.Apply(ctx, tx, eq, domain.StatusActive, equipment.TriggerMaintenanceClosed)
				if err != nil {
					return err
				}
			}
		}

		rec, err = tx.Maintenance().GetByID(ctx, rec.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMaintenance("closed", 1)
	s.events.Publish(events.Event{
		Type:        events.TypeMaintenanceClosed,
		OwnerID:     eq.OwnerID,
		EquipmentID: eq.ID,
		RecordID:    rec.ID,
		At:          *rec.ClosedAt,
	})
	if out.From != "" {
		equipment.RecordTransition(out)
		s.events.Publish(events.Event{
			Type:        events.TypeStatusChanged,
			OwnerID:     eq.OwnerID,
			EquipmentID: eq.ID,
			From:        out.From,
			To:          out.Status,
			At:          *rec.ClosedAt,
		})
	}
	return rec, nil
}

// ListHistory returns every record of the item, newest first.
func (s *Service) ListHistory(ctx context.Context, p domain.Principal, equipmentID int64) ([]domain.MaintenanceRecord, error) {
	eq, err := s.guard.Equipment(ctx, s.store, p, access.ActionRead, equipmentID)
	if err != nil {
		return nil, err
	}
	return s.store.Maintenance().ListByEquipment(ctx, eq.ID)
}

func (s *Service) NextDue(ctx context.Context, p domain.Principal, equipmentID int64) (*Reminder, error) {
	eq, err := s.guard.Equipment(ctx, s.store, p, access.ActionRead, equipmentID)
	if err != nil {
		return nil, err
	}
	r, err := reminderFor(ctx, s.store, eq, s.interval, s.engine.Now())
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func reminderFor(ctx context.Context, store *repository.Store, eq *domain.Equipment, interval time.Duration, now time.Time) (Reminder, error) {
	open, err := store.Maintenance().CountOpen(ctx, eq.ID)
	if err != nil {
		return Reminder{}, err
	}
	last, err := store.Maintenance().LastClosedAt(ctx, eq.ID)
	if err != nil {
		return Reminder{}, err
	}
	return ComputeReminder(eq, last, open > 0, interval, now), nil
}
