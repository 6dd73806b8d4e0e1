package maintenance

import (
	"context"
	"fmt"
	"time"

	"gearvault/internal/domain"
	"gearvault/internal/modules/events"
	"gearvault/internal/pkg/metrics"
	"gearvault/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderJob sweeps ACTIVE equipment of every owner and reports the items
// whose next service date has passed.
type ReminderJob struct {
	store    *repository.Store
	events   events.Publisher
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewReminderJob(store *repository.Store, publisher events.Publisher, interval time.Duration, log *zap.Logger) *ReminderJob {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderJob{
		store:    store,
		events:   publisher,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Run returns the overdue reminders found in this sweep.
func (j *ReminderJob) Run(ctx context.Context) ([]Reminder, error) {
	items, err := j.store.Equipment().ListByStatus(ctx, domain.StatusActive)
	if err != nil {
		metrics.RecordReminderRun(false)
		return nil, fmt.Errorf("list active equipment: %w", err)
	}

	now := j.now()
	var overdue []Reminder
	for i := range items {
		eq := &items[i]
		r, err := reminderFor(ctx, j.store, eq, j.interval, now)
		if err != nil {
			metrics.RecordReminderRun(false)
			return nil, fmt.Errorf("next due for equipment %d: %w", eq.ID, err)
		}
		if !r.Overdue {
			continue
		}

		overdue = append(overdue, r)
		j.log.Info("maintenance overdue",
			zap.Int64("equipment_id", eq.ID),
			zap.Int64("owner_id", eq.OwnerID),
			zap.String("name", eq.Name),
			zap.Time("next_due_at", *r.NextDueAt),
		)
		j.events.Publish(events.Event{
			Type:        events.TypeMaintenanceOverdue,
			OwnerID:     eq.OwnerID,
			EquipmentID: eq.ID,
			At:          now,
		})
	}

	metrics.SetOverdueEquipment(len(overdue))
	metrics.RecordReminderRun(true)
	j.log.Info("reminder sweep finished",
		zap.Int("active", len(items)),
		zap.Int("overdue", len(overdue)),
	)
	return overdue, nil
}

// StartCron schedules the sweep. An empty spec disables scheduling and
// returns a nil scheduler.
func StartCron(spec string, job *ReminderJob, log *zap.Logger) (*cron.Cron, error) {
	if spec == "" {
		log.Info("maintenance reminder schedule disabled")
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			log.Error("reminder sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info("maintenance reminder scheduled", zap.String("schedule", spec))
	return c, nil
}
