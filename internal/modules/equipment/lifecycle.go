package equipment

import (
	"context"
	"time"

	"gearvault/internal/domain"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/pkg/metrics"
	"gearvault/internal/repository"
)

// Trigger names what asked for a status change.
type Trigger string

const (
	TriggerCaller            Trigger = "caller"
	TriggerMaintenanceOpened Trigger = "maintenance_opened"
	TriggerMaintenanceClosed Trigger = "maintenance_closed"
)

// Outcome is an accepted transition. Status can differ from the requested
// target: a recovered LOST item with an open record lands in MAINTENANCE.
type Outcome struct {
	From       domain.EquipmentStatus
	Status     domain.EquipmentStatus
	ForceClose bool
	Closed     int64
}

// Transition validates a status change without touching storage.
//
//	ACTIVE      -> MAINTENANCE  maintenance_opened
//	MAINTENANCE -> ACTIVE       maintenance_closed, no open record left
//	ACTIVE      -> LOST         caller
//	MAINTENANCE -> LOST         caller, open record stays open
//	*           -> SOLD         caller from ACTIVE, MAINTENANCE or LOST, force-closes open records
//	LOST        -> ACTIVE       caller
//	SOLD        -> *            never
func Transition(from, to domain.EquipmentStatus, trigger Trigger, hasOpenRecord bool) (Outcome, error) {
	reject := &apperror.InvalidTransitionError{From: from, To: to}
	if !from.Valid() || !to.Valid() || from == to || from == domain.StatusSold {
		return Outcome{}, reject
	}

	out := Outcome{From: from, Status: to}
	switch to {
	case domain.StatusMaintenance:
		if from != domain.StatusActive || trigger != TriggerMaintenanceOpened {
			return Outcome{}, reject
		}

	case domain.StatusActive:
		switch from {
		case domain.StatusMaintenance:
			if trigger != TriggerMaintenanceClosed || hasOpenRecord {
				return Outcome{}, reject
			}
		case domain.StatusLost:
			if trigger != TriggerCaller {
				return Outcome{}, reject
			}
			if hasOpenRecord {
				out.Status = domain.StatusMaintenance
			}
		default:
			return Outcome{}, reject
		}

	case domain.StatusLost:
		if trigger != TriggerCaller {
			return Outcome{}, reject
		}

	case domain.StatusSold:
		if trigger != TriggerCaller {
			return Outcome{}, reject
		}
		out.ForceClose = hasOpenRecord
	}

	return out, nil
}

// Engine applies transitions inside a caller-owned transaction.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return NewEngineWithClock(time.Now)
}

func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: func() time.Time { return now().UTC() }}
}

func (e *Engine) Now() time.Time { return e.now() }

// Apply re-reads the open-record count under the caller's transaction,
// validates the change and writes status plus any forced closures. eq must
// have been loaded with a row lock in the same transaction; it is updated in
// place.
func (e *Engine) Apply(ctx context.Context, tx *repository.Store, eq *domain.Equipment, to domain.EquipmentStatus, trigger Trigger) (Outcome, error) {
	open, err := tx.Maintenance().CountOpen(ctx, eq.ID)
	if err != nil {
		return Outcome{}, err
	}

	out, err := Transition(eq.Status, to, trigger, open > 0)
	if err != nil {
		return Outcome{}, err
	}

	now := e.now()
	if out.ForceClose {
		out.Closed, err = tx.Maintenance().CloseAllOpen(ctx, eq.ID, now)
		if err != nil {
			return Outcome{}, err
		}
	}

	if out.Status != eq.Status {
		if err := tx.Equipment().UpdateStatus(ctx, eq.ID, out.Status, now); err != nil {
			return Outcome{}, err
		}
		eq.Status = out.Status
		eq.UpdatedAt = now
	}
	return out, nil
}

// RecordTransition counts a committed transition.
func RecordTransition(out Outcome) {
	if out.From != out.Status {
		metrics.RecordTransition(string(out.From), string(out.Status))
	}
	metrics.RecordMaintenance("force_closed", int(out.Closed))
}
