package catalog

import (
	"testing"

	"gearvault/internal/domain"
	"gearvault/internal/modules/access"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/repository"
	"gearvault/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	store *repository.Store
	alice domain.Principal
	bob   domain.Principal
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	return &fixture{
		svc:   NewService(store, access.NewGuard(nil), nil),
		store: store,
		alice: testutil.CreateUser(t, store, "alice@example.com").Principal(),
		bob:   testutil.CreateUser(t, store, "bob@example.com").Principal(),
	}
}

func ptr[T any](v T) *T { return &v }

func TestDeleteReferencedCategoryFails(t *testing.T) {
	f := setup(t)
	ctx := t.Context()

	c, err := f.svc.CreateCategory(ctx, f.alice, CategoryRequest{Name: "Guitars"})
	require.NoError(t, err)

	eq := &domain.Equipment{OwnerID: f.alice.UserID, Name: "Les Paul", Status: domain.StatusActive, CategoryID: &c.ID}
	require.NoError(t, f.store.Equipment().Create(ctx, eq))

	err = f.svc.DeleteCategory(ctx, f.alice, c.ID)
	var rerr *apperror.ReferentialIntegrityError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "category", rerr.Entity)
	assert.Equal(t, c.ID, rerr.ID)

	got, err := f.store.Categories().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Guitars", got.Name)

	require.NoError(t, f.store.Equipment().Delete(ctx, eq.ID))
	require.NoError(t, f.svc.DeleteCategory(ctx, f.alice, c.ID))
}

func TestCategoryDuplicateNameConflicts(t *testing.T) {
	f := setup(t)
	ctx := t.Context()

	_, err := f.svc.CreateCategory(ctx, f.alice, CategoryRequest{Name: "Amps"})
	require.NoError(t, err)

	_, err = f.svc.CreateCategory(ctx, f.alice, CategoryRequest{Name: " Amps "})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.svc.CreateCategory(ctx, f.bob, CategoryRequest{Name: "Amps"})
	assert.NoError(t, err)

	other, err := f.svc.CreateCategory(ctx, f.alice, CategoryRequest{Name: "Pedals"})
	require.NoError(t, err)
	_, err = f.svc.RenameCategory(ctx, f.alice, other.ID, CategoryRequest{Name: "Amps"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCategoryOwnershipIsEnforced(t *testing.T) {
	f := setup(t)
	ctx := t.Context()

	c, err := f.svc.CreateCategory(ctx, f.alice, CategoryRequest{Name: "Drums"})
	require.NoError(t, err)

	_, err = f.svc.RenameCategory(ctx, f.bob, c.ID, CategoryRequest{Name: "Mine"})
	assert.ErrorIs(t, err, apperror.ErrAccessDenied)
	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, f.bob, c.ID), apperror.ErrAccessDenied)
	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, f.bob, 9999), apperror.ErrAccessDenied)

	bobs, err := f.svc.ListCategories(ctx, f.bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	renamed, err := f.svc.RenameCategory(ctx, f.alice, c.ID, CategoryRequest{Name: "Percussion"})
	require.NoError(t, err)
	assert.Equal(t, "Percussion", renamed.Name)
}

func TestCategoryValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateCategory(t.Context(), f.alice, CategoryRequest{Name: "   "})
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	_, err = f.svc.CreateCategory(t.Context(), domain.Principal{}, CategoryRequest{Name: "Amps"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestLocationLifecycle(t *testing.T) {
	f := setup(t)
	ctx := t.Context()

	l, err := f.svc.CreateLocation(ctx, f.alice, CreateLocationRequest{Name: "Studio A", Description: "Rack 3"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateLocation(ctx, f.alice, l.ID, UpdateLocationRequest{Name: "Studio B"})
	require.NoError(t, err)
	assert.Equal(t, "Studio B", updated.Name)
	assert.Equal(t, "Rack 3", updated.Description)

	updated, err = f.svc.UpdateLocation(ctx, f.alice, l.ID, UpdateLocationRequest{Name: "Studio B", Description: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)

	eq := &domain.Equipment{OwnerID: f.alice.UserID, Name: "Console", Status: domain.StatusActive, LocationID: &l.ID}
	require.NoError(t, f.store.Equipment().Create(ctx, eq))

	var rerr *apperror.ReferentialIntegrityError
	require.ErrorAs(t, f.svc.DeleteLocation(ctx, f.alice, l.ID), &rerr)
	assert.Equal(t, "location", rerr.Entity)

	_, err = f.svc.UpdateLocation(ctx, f.bob, l.ID, UpdateLocationRequest{Name: "Hijack"})
	assert.ErrorIs(t, err, apperror.ErrAccessDenied)

	list, err := f.svc.ListLocations(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Studio B", list[0].Name)
}
