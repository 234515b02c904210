package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./skycast.db", cfg.DatabasePath)
	assert.Equal(t, "test-secret", cfg.SecretKey)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenExpiration)
	assert.Equal(t, "http://localhost:3000", cfg.AllowedOrigin)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_EXPIRATION", "3600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, time.Hour, cfg.TokenExpiration)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}
