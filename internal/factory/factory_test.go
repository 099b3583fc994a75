package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignyos/scorekeeper/internal/model"
)

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)

	require.NotNil(t, app.Storage)
	require.NotNil(t, app.Players)
	require.NotNil(t, app.Sessions)
	require.NotNil(t, app.Standings)
}

func TestNewRejectsInvalidStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "cassette-tape"})
	assert.Error(t, err)
}

func TestNewRequiresRedisConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}

func TestNewRequiresSQLitePath(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeSQLite})
	assert.Error(t, err)
}

func TestNewWithSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")

	app, err := New(Config{StorageType: StorageTypeSQLite, SQLitePath: path})
	require.NoError(t, err)
	require.NotNil(t, app.Storage)
}

func TestRegistryKnowsAllVariants(t *testing.T) {
	registry := NewRegistry()

	for _, variant := range []model.GameVariant{
		model.GameYahtzee,
		model.GameScrabble,
		model.GameThreeThirteen,
		model.GameTrepenta,
	} {
		assert.True(t, registry.Knows(variant), "missing variant %s", variant)
	}
	assert.False(t, registry.Knows("canasta"))
}

func TestTestAppUsesMocks(t *testing.T) {
	app := NewTestApp()

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, start, app.Clock.Now())

	app.MockClock.Advance(2 * time.Hour)
	assert.Equal(t, start.Add(2*time.Hour), app.Clock.Now())

	// Services share the mocked dependencies
	app.MockRandom.QueueString("ABC123")
	created, err := app.Players.CreatePlayer(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, model.PlayerID("ABC123"), created.ID)
	assert.Equal(t, start.Add(2*time.Hour), created.CreatedAt)
}
