package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "ENV", "HTTP_ADDR", "DATABASE_URL", "JWT_SECRET", "JWT_ACCESS_TTL",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "LOGIN_MAX_ATTEMPTS", "LOGIN_LOCKOUT",
		"MAINTENANCE_INTERVAL", "REMINDER_CRON", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, 180*24*time.Hour, cfg.MaintenanceInterval)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvEmptyReminderCronDisablesSweep(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.ReminderCron)
}

func TestFromEnvRejectsInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAINTENANCE_INTERVAL", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAINTENANCE_INTERVAL")
}

func TestFromEnvRejectsNonPositiveAttempts(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOGIN_MAX_ATTEMPTS", "0")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvRejectsUnknownLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvProdRequiresSecretAndPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://gear:vault@db:5432/gearvault")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
