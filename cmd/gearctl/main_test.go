package main

import (
	"testing"
	"time"

	"gearvault/internal/config"
	"gearvault/internal/domain"
	"gearvault/internal/repository"
	"gearvault/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRootCommandTree(t *testing.T) {
	cmd := rootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "seed", "reminders"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("database-url"))
}

func TestSeedKeepsLifecycleConsistent(t *testing.T) {
	store := testutil.NewStore(t)
	e := &env{
		cfg:   &config.Config{AppEnv: "test", MaintenanceInterval: 180 * 24 * time.Hour},
		log:   zap.NewNop(),
		store: store,
	}
	ctx := t.Context()

	require.NoError(t, seed(ctx, e))

	owner, err := store.Users().GetByEmail(ctx, "owner@gearvault.local")
	require.NoError(t, err)
	items, total, err := store.Equipment().List(ctx, repository.EquipmentFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	for _, eq := range items {
		open, err := store.Maintenance().CountOpen(ctx, eq.ID)
		require.NoError(t, err)
		if eq.Status == domain.StatusMaintenance {
			assert.Equal(t, int64(1), open, eq.Name)
		} else {
			assert.Zero(t, open, eq.Name)
		}
	}

	require.NoError(t, wipe(e))
	n, err := store.Users().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
