package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/xogame/arena/internal/dependencies/clock"
	"github.com/xogame/arena/internal/services/auth"
	"github.com/xogame/arena/internal/services/bot"
	"github.com/xogame/arena/internal/services/match"
	"github.com/xogame/arena/internal/services/presence"
	"github.com/xogame/arena/internal/storage"
	"github.com/xogame/arena/internal/storage/memory"
	redisstorage "github.com/xogame/arena/internal/storage/redis"
	sqlitestorage "github.com/xogame/arena/internal/storage/sqlite"
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
	Storage storage.Gateway

	// External dependencies
	Clock clock.Clock

	// Services
	Presence        *presence.Registry
	AuthService     *auth.Service
	BotStrategy     bot.Strategy
	MatchController *match.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service. Secret is
	// required.
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis", or
	// "sqlite"). If empty, defaults to "memory".
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if cfg.AuthConfig.Secret == "" {
		return nil, errors.New("AuthConfig.Secret is required")
	}

	// Create storage based on type
	var store storage.Gateway
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
		sqliteStore, err := sqlitestorage.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis', or 'sqlite'")
	}

	clk := clock.New()

	return newWithDependencies(store, clk, cfg.AuthConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Gateway, clk clock.Clock, authCfg auth.Config, logger *slog.Logger) *App {
	registry := presence.NewRegistry(logger)
	authService := auth.New(store, clk, authCfg, logger)
	botStrategy := bot.NewMinimaxStrategy()
	matchController := match.NewController(store, registry, botStrategy, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Presence:        registry,
		AuthService:     authService,
		BotStrategy:     botStrategy,
		MatchController: matchController,
	}
}
