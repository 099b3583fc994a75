package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerDefaults(t *testing.T) {
	cfg, err := ParseServer()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "scorekeeper.db", cfg.SQLitePath)
}

func TestParseServerFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/scores.db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := ParseServer()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "/tmp/scores.db", cfg.SQLitePath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseServerInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := ParseServer()
	assert.Error(t, err)
}
