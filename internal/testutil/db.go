// Package testutil opens isolated in-memory stores for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gearvault/internal/database"
	"gearvault/internal/domain"
	"gearvault/internal/repository"

	"github.com/stretchr/testify/require"
)

// NewStore returns a migrated in-memory SQLite store private to t.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:gearvault_%s?mode=memory&cache=shared", name)

	db, err := database.OpenSQLite(dsn, nil)
	require.NoError(t, err, "open sqlite")
	require.NoError(t, database.Migrate(db), "migrate")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewStore(db)
}

// CreateUser inserts an active user with the given email.
func CreateUser(t *testing.T, s *repository.Store, email string, roles ...domain.Role) *domain.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: "x",
		Roles:        roles,
		Name:         strings.Split(email, "@")[0],
		Active:       true,
	}
	require.NoError(t, s.Users().Create(t.Context(), u))
	return u
}
