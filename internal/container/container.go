package container

import (
	"context"
	"fmt"
	"time"

	"goeda/adapters/excel"
	"goeda/adapters/store/filestore"
	"goeda/adapters/store/memory"
	"goeda/adapters/store/sqlstore"
	"goeda/app"
	"goeda/internal/cache"
	"goeda/internal/config"
	"goeda/internal/logging"
	"goeda/internal/migration"
	"goeda/ports"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// DriverMemory keeps dataset records in process memory.
const DriverMemory = "memory"

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB    *sqlx.DB
	Redis *cache.RedisCache

	// Storage
	Datasets ports.DatasetRepository
	Files    ports.FileStorage
	Reader   ports.SpreadsheetReader
	Reports  cache.Blob

	Service *app.AnalysisService

	logger     zerolog.Logger
	localBlobs *cache.MemoryBlob
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg, logger: logging.WithComponent("container")}, nil
}

// Init connects storage, caches and the analysis service. A Redis outage
// falls back to the in-memory report cache.
func (c *Container) Init(ctx context.Context) error {
	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	files, err := filestore.New(c.Config.Storage.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize upload storage: %w", err)
	}
	c.Files = files

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.Sheet = c.Config.Data.Sheet
	c.Reader = excel.NewDataReader(readerConfig)

	c.initReportCache(ctx)

	serviceConfig := app.DefaultServiceConfig()
	serviceConfig.MaxUploadBytes = c.Config.Server.MaxUploadBytes()
	serviceConfig.CacheTTL = c.Config.Cache.TTL
	serviceConfig.Coercion.LenientNumbers = c.Config.Data.LenientNumbers
	c.Service = app.NewAnalysisService(c.Datasets, c.Files, c.Reader, c.Reports, serviceConfig)

	c.logger.Info().
		Str("database", c.Config.Database.Driver).
		Str("upload_dir", c.Config.Storage.UploadDir).
		Bool("redis", c.Redis != nil).
		Msg("container initialized")
	return nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	if c.Config.Database.Driver == DriverMemory {
		c.Datasets = memory.NewDatasetRepository()
		return nil
	}

	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return err
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return err
	}
	c.DB = db
	c.Datasets = sqlstore.NewDatasetRepository(db)
	return nil
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

func (c *Container) initReportCache(ctx context.Context) {
	if addr := c.Config.Cache.RedisAddr; addr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     addr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		}, logging.WithComponent("cache"))
		if err == nil {
			c.Redis = redisCache
			c.Reports = redisCache
			return
		}
		c.logger.Warn().Err(err).Str("addr", addr).Msg("redis unavailable, caching reports in memory")
	}
	c.localBlobs = cache.NewMemoryBlob(time.Minute)
	c.Reports = c.localBlobs
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Service != nil {
		c.Service.Close()
	}
	if c.localBlobs != nil {
		c.localBlobs.Stop()
	}

	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		c.logger.Warn().Err(firstErr).Msg("shutdown finished with errors")
	}
	return firstErr
}
