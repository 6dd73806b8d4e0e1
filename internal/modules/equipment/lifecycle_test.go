package equipment

import (
	"testing"

	"gearvault/internal/domain"
	"gearvault/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	const (
		A = domain.StatusActive
		M = domain.StatusMaintenance
		L = domain.StatusLost
		S = domain.StatusSold
	)

	tests := []struct {
		from, to   domain.EquipmentStatus
		trigger    Trigger
		open       bool
		ok         bool
		want       domain.EquipmentStatus
		forceClose bool
	}{
		{from: A, to: M, trigger: TriggerMaintenanceOpened, ok: true, want: M},
		{from: A, to: M, trigger: TriggerCaller},
		{from: A, to: L, trigger: TriggerCaller, ok: true, want: L},
		{from: A, to: S, trigger: TriggerCaller, ok: true, want: S},
		{from: A, to: A, trigger: TriggerCaller},

		{from: M, to: A, trigger: TriggerMaintenanceClosed, ok: true, want: A},
		{from: M, to: A, trigger: TriggerMaintenanceClosed, open: true},
		{from: M, to: A, trigger: TriggerCaller, open: true},
		{from: M, to: L, trigger: TriggerCaller, open: true, ok: true, want: L},
		{from: M, to: S, trigger: TriggerCaller, open: true, ok: true, want: S, forceClose: true},
		{from: M, to: M, trigger: TriggerMaintenanceOpened, open: true},

		{from: L, to: A, trigger: TriggerCaller, ok: true, want: A},
		{from: L, to: A, trigger: TriggerCaller, open: true, ok: true, want: M},
		{from: L, to: M, trigger: TriggerMaintenanceOpened},
		{from: L, to: S, trigger: TriggerCaller, open: true, ok: true, want: S, forceClose: true},
		{from: L, to: S, trigger: TriggerCaller, ok: true, want: S},
		{from: L, to: L, trigger: TriggerCaller},

		{from: S, to: A, trigger: TriggerCaller},
		{from: S, to: M, trigger: TriggerMaintenanceOpened},
		{from: S, to: L, trigger: TriggerCaller},
		{from: S, to: S, trigger: TriggerCaller},

		{from: A, to: "BROKEN", trigger: TriggerCaller},
	}

	for _, tt := range tests {
		name := string(tt.from) + "->" + string(tt.to) + "/" + string(tt.trigger)
		t.Run(name, func(t *testing.T) {
			out, err := Transition(tt.from, tt.to, tt.trigger, tt.open)
			if !tt.ok {
				var transitionErr *apperror.InvalidTransitionError
				require.ErrorAs(t, err, &transitionErr)
				assert.Equal(t, tt.from, transitionErr.From)
				assert.Equal(t, tt.to, transitionErr.To)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Status)
			assert.Equal(t, tt.from, out.From)
			assert.Equal(t, tt.forceClose, out.ForceClose)
		})
	}
}

func TestSoldIsTerminalForEveryTrigger(t *testing.T) {
	for _, to := range []domain.EquipmentStatus{domain.StatusActive, domain.StatusMaintenance, domain.StatusLost} {
		for _, trigger := range []Trigger{TriggerCaller, TriggerMaintenanceOpened, TriggerMaintenanceClosed} {
			for _, open := range []bool{false, true} {
				_, err := Transition(domain.StatusSold, to, trigger, open)
				assert.Error(t, err, "SOLD -> %s via %s", to, trigger)
			}
		}
	}
}

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, BadgeSuccess, StatusBadge(domain.StatusActive))
	assert.Equal(t, BadgeWarning, StatusBadge(domain.StatusMaintenance))
	assert.Equal(t, BadgeError, StatusBadge(domain.StatusLost))
	assert.Equal(t, BadgeDefault, StatusBadge(domain.StatusSold))
	assert.Equal(t, BadgeDefault, StatusBadge("UNKNOWN"))
}

func TestPrimaryImage(t *testing.T) {
	assert.Nil(t, PrimaryImage(nil))

	images := []domain.Image{{ID: 1, ImageURL: "a"}, {ID: 2, ImageURL: "b"}}
	assert.Equal(t, int64(1), PrimaryImage(images).ID)

	images[1].IsPrimary = true
	assert.Equal(t, int64(2), PrimaryImage(images).ID)
}
