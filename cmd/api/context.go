package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"soundblast/internal/config"
	"soundblast/internal/database"
	"soundblast/internal/database/migration"
	"soundblast/internal/logging"
	"soundblast/internal/metrics"
	"soundblast/internal/repository/postgres"
	"soundblast/internal/runner"
	"soundblast/internal/service"
	"soundblast/internal/storage"
)

// commandContext lazily loads configuration and the logger shared by every
// subcommand.
type commandContext struct {
	configOnce sync.Once
	config     *config.AppConfig
	configErr  error
	logger     zerolog.Logger
}

func newCommandContext() *commandContext {
	return &commandContext{logger: zerolog.Nop()}
}

func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logging.Init(cfg.Log)
	})
	return c.config, c.configErr
}

// openDatabase connects to PostgreSQL and applies the transcript schema.
func (c *commandContext) openDatabase(ctx context.Context) (*sql.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.NewPostgres(ctx, cfg.Database, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, c.logger, cfg.Database.Host); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// openBlobStore builds the configured backend. The returned close func is
// never nil.
func (c *commandContext) openBlobStore(ctx context.Context) (storage.BlobStore, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Storage.Backend {
	case config.StorageGridFS:
		store, err := storage.NewGridFS(ctx, cfg.Mongo, c.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize gridfs storage: %w", err)
		}
		return store, func() {
			if err := store.Close(context.Background()); err != nil {
				c.logger.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}, nil
	default:
		store, err := storage.NewMinIO(cfg.MinIO, c.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		return store, func() {}, nil
	}
}

// services bundles everything the server and the transcribe command share.
type services struct {
	db          *sql.DB
	files       service.FileService
	transcriber service.TranscriptionService
	tools       runner.Tools
	close       func()
}

func (c *commandContext) buildServices(ctx context.Context, reg prometheus.Registerer) (*services, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	db, err := c.openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := c.openBlobStore(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	tools := runner.NewTools(cfg.Pipeline)
	transcriber, err := service.NewTranscriptionService(
		store,
		postgres.NewTranscriptPostgres(db),
		runner.NewExecRunner(c.logger),
		cfg.Pipeline,
		metrics.NewPipeline(reg),
		c.logger,
	)
	if err != nil {
		closeStore()
		db.Close()
		return nil, err
	}

	return &services{
		db:          db,
		files:       service.NewFileService(store, c.logger),
		transcriber: transcriber,
		tools:       tools,
		close: func() {
			closeStore()
			db.Close()
		},
	}, nil
}
