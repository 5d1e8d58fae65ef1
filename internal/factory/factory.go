package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/partygame/internal/dependencies/clock"
	"github.com/mcoot/partygame/internal/dependencies/random"
	"github.com/mcoot/partygame/internal/metrics"
	"github.com/mcoot/partygame/internal/services/assignment"
	"github.com/mcoot/partygame/internal/services/catalog"
	"github.com/mcoot/partygame/internal/services/rotation"
	"github.com/mcoot/partygame/internal/services/scoring"
	"github.com/mcoot/partygame/internal/services/session"
	"github.com/mcoot/partygame/internal/snapshot"
	"github.com/mcoot/partygame/internal/storage"
	"github.com/mcoot/partygame/internal/storage/memory"
	redisstorage "github.com/mcoot/partygame/internal/storage/redis"
	"github.com/mcoot/partygame/internal/storage/sqlite"
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
	Clock   clock.Clock
	Random  random.Random
	Metrics *metrics.Metrics

	// Services
	AssignmentService *assignment.Service
	ScoringService    *scoring.Service
	RotationService   *rotation.Service
	CatalogService    *catalog.Service
	Codec             *snapshot.Codec
	Engine            *session.Engine
	SessionController *session.Controller
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
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// RandomSeed makes selection reproducible. Zero uses crypto random.
	RandomSeed uint64
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.RandomSeed != 0 {
		rnd = random.NewSeeded(cfg.RandomSeed)
		logger.Info("using seeded random source", slog.Uint64("seed", cfg.RandomSeed))
	}

	return newWithDependencies(store, clk, rnd, metrics.New(), logger), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, m *metrics.Metrics, logger *slog.Logger) *App {
	assignmentService := assignment.New(rnd, logger)
	scoringService := scoring.New()
	rotationService := rotation.New(clk)
	catalogService := catalog.New(store, rnd, logger)
	codec := snapshot.NewCodec(rnd, clk, logger)
	engine := session.NewEngine(assignmentService, scoringService, rotationService, clk, rnd, logger)
	controller := session.NewController(store, engine, codec, catalogService, scoringService, rotationService, m, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Metrics:           m,
		AssignmentService: assignmentService,
		ScoringService:    scoringService,
		RotationService:   rotationService,
		CatalogService:    catalogService,
		Codec:             codec,
		Engine:            engine,
		SessionController: controller,
	}
}

// Close releases the storage backend if it holds a connection
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
