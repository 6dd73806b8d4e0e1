package maintenance

import (
	"testing"
	"time"

	"gearvault/internal/domain"
	"gearvault/internal/modules/events"
	"gearvault/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestComputeReminder(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	created := now.Add(-10 * 24 * time.Hour)
	purchased := now.Add(-200 * 24 * time.Hour)
	serviced := now.Add(-30 * 24 * time.Hour)

	tests := []struct {
		name       string
		eq         domain.Equipment
		lastClosed *time.Time
		hasOpen    bool
		wantDue    bool
		wantNext   time.Time
		wantLate   bool
	}{
		{
			name:     "falls back to creation",
			eq:       domain.Equipment{Status: domain.StatusActive, CreatedAt: created},
			wantDue:  true,
			wantNext: created.Add(interval),
		},
		{
			name:     "purchase date before creation",
			eq:       domain.Equipment{Status: domain.StatusActive, CreatedAt: created, PurchaseDate: &purchased},
			wantDue:  true,
			wantNext: purchased.Add(interval),
			wantLate: true,
		},
		{
			name:       "last service wins",
			eq:         domain.Equipment{Status: domain.StatusActive, CreatedAt: created, PurchaseDate: &purchased},
			lastClosed: &serviced,
			wantDue:    true,
			wantNext:   serviced.Add(interval),
		},
		{
			name:    "open record",
			eq:      domain.Equipment{Status: domain.StatusMaintenance, CreatedAt: created},
			hasOpen: true,
		},
		{
			name: "lost",
			eq:   domain.Equipment{Status: domain.StatusLost, CreatedAt: created, PurchaseDate: &purchased},
		},
		{
			name: "sold",
			eq:   domain.Equipment{Status: domain.StatusSold, CreatedAt: created},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ComputeReminder(&tt.eq, tt.lastClosed, tt.hasOpen, interval, now)
			assert.Equal(t, tt.wantDue, r.Due)
			assert.Equal(t, tt.wantLate, r.Overdue)
			if !tt.wantDue {
				assert.Nil(t, r.NextDueAt)
				return
			}
			require.NotNil(t, r.NextDueAt)
			assert.True(t, r.NextDueAt.Equal(tt.wantNext))
		})
	}
}

func TestComputeReminderOverdueAtExactDueTime(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eq := &domain.Equipment{Status: domain.StatusActive, CreatedAt: created}

	r := ComputeReminder(eq, nil, false, interval, created.Add(interval))
	assert.True(t, r.Overdue)
}

func TestReminderJobReportsOverdueActiveItems(t *testing.T) {
	store := testutil.NewStore(t)
	owner := testutil.CreateUser(t, store, "owner@example.com")
	ctx := t.Context()
	now := time.Now().UTC()
	old := now.Add(-2 * interval)
	recent := now.Add(-24 * time.Hour)

	stale := &domain.Equipment{OwnerID: owner.ID, Name: "Old amp", Status: domain.StatusActive, PurchaseDate: &old}
	fresh := &domain.Equipment{OwnerID: owner.ID, Name: "New amp", Status: domain.StatusActive, PurchaseDate: &recent}
	lost := &domain.Equipment{OwnerID: owner.ID, Name: "Lost amp", Status: domain.StatusLost, PurchaseDate: &old}
	for _, eq := range []*domain.Equipment{stale, fresh, lost} {
		require.NoError(t, store.Equipment().Create(ctx, eq))
	}

	rec := &events.Recorder{}
	job := NewReminderJob(store, rec, interval, nil)

	overdue, err := job.Run(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, stale.ID, overdue[0].EquipmentID)

	require.Len(t, rec.Events, 1)
	assert.Equal(t, events.TypeMaintenanceOverdue, rec.Events[0].Type)
	assert.Equal(t, owner.ID, rec.Events[0].OwnerID)
}

func TestStartCron(t *testing.T) {
	store := testutil.NewStore(t)
	job := NewReminderJob(store, nil, interval, nil)

	c, err := StartCron("", job, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = StartCron("not a schedule", job, zap.NewNop())
	assert.Error(t, err)

	c, err = StartCron("@daily", job, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
