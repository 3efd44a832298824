package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easylaw/auth-service/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("DATABASE_URI", "postgres://localhost:5432/auth")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "super-secret", cfg.JWT.Secret)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 1440, cfg.JWT.ExpireMinutes)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, "0.0.0.0:8000", cfg.ListenAddr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9001")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("JWT_EXPIRE_MINUTES", "15")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9001", cfg.ListenAddr())
	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, 15, cfg.JWT.ExpireMinutes)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("DATABASE_URI", "postgres://localhost:5432/auth")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadMissingAdminEmail(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("DATABASE_URI", "postgres://localhost:5432/auth")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_EMAIL")
}

func TestLoadDatabaseRequiredOutsideDevelopment(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("DATABASE_URI", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URI")

	t.Setenv("ENVIRONMENT", "development")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURI)
}
