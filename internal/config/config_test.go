package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./storage.db", cfg.DatabasePath)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "@hourly", cfg.SweepSchedule)
	assert.True(t, cfg.InsecureSecret())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SECRET_KEY", "real-secret")
	t.Setenv("TOKEN_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.False(t, cfg.InsecureSecret())
}

func TestLoad_BadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}
