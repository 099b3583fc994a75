package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/ignyos/scorekeeper/internal/dependencies/clock"
	"github.com/ignyos/scorekeeper/internal/dependencies/random"
	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/games/scrabble"
	"github.com/ignyos/scorekeeper/internal/games/threethirteen"
	"github.com/ignyos/scorekeeper/internal/games/trepenta"
	"github.com/ignyos/scorekeeper/internal/games/yahtzee"
	"github.com/ignyos/scorekeeper/internal/model"
	"github.com/ignyos/scorekeeper/internal/services/player"
	"github.com/ignyos/scorekeeper/internal/services/session"
	"github.com/ignyos/scorekeeper/internal/services/standings"
	"github.com/ignyos/scorekeeper/internal/storage"
	"github.com/ignyos/scorekeeper/internal/storage/memory"
	redisstorage "github.com/ignyos/scorekeeper/internal/storage/redis"
	sqlitestorage "github.com/ignyos/scorekeeper/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Game rule engines
	Registry games.Registry

	// Services
	Players   *player.Controller
	Sessions  *session.Controller
	Standings *standings.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
}

// NewRegistry returns the registry of all supported game variants
func NewRegistry() games.Registry {
	return games.Registry{
		model.GameYahtzee:       yahtzee.NewEngine,
		model.GameScrabble:      scrabble.NewEngine,
		model.GameThreeThirteen: threethirteen.NewEngine,
		model.GameTrepenta:      trepenta.NewEngine,
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	registry := NewRegistry()

	players := player.NewController(store, clk, rnd)
	sessions := session.NewController(store, registry, players, clk, logger)
	standingsService := standings.NewService(registry)

	return &App{
		Storage:   store,
		Clock:     clk,
		Random:    rnd,
		Registry:  registry,
		Players:   players,
		Sessions:  sessions,
		Standings: standingsService,
	}
}
