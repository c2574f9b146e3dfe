// Package cli implements the bizdesk command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/iudanet/bizdesk/internal/client/api"
	"github.com/iudanet/bizdesk/internal/client/data"
	"github.com/iudanet/bizdesk/internal/client/iocli"
	"github.com/iudanet/bizdesk/internal/client/localstore"
	"github.com/iudanet/bizdesk/internal/client/storage"
	"github.com/iudanet/bizdesk/internal/client/storage/boltdb"
	"github.com/iudanet/bizdesk/internal/client/storage/sqlite"
	"github.com/iudanet/bizdesk/internal/client/sync"
	"github.com/iudanet/bizdesk/internal/config"
)

// durableStorage is a snapshot storage backed by a database file.
type durableStorage interface {
	storage.SnapshotStorage
	io.Closer
}

// Cli holds the wired client components used by every command.
type Cli struct {
	io          iocli.IO
	cfg         *config.Config
	logger      *slog.Logger
	storage     durableStorage
	store       *localstore.Store
	apiClient   *api.Client
	syncService *sync.Service
	dataService *data.Service
}

// Open opens local storage and builds the client components described by cfg.
func Open(ctx context.Context, cfg *config.Config, terminal iocli.IO, logger *slog.Logger) (*Cli, error) {
	st, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	store := localstore.New(ctx, st, cfg.Storage.Key, logger.With("component", "localstore"))

	// Интервал из конфига перекрывает сохранённый, только если задан явно
	if cfg.Sync.IntervalMinutes != 0 && cfg.Sync.IntervalMinutes != store.Metadata().SyncIntervalMinutes {
		if err := store.SetSyncInterval(ctx, cfg.Sync.IntervalMinutes); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to apply sync interval: %w", err)
		}
	}

	apiClient := api.NewClient(cfg.ServerURL,
		api.WithToken(cfg.AccessToken),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.With("component", "api")),
	)

	return &Cli{
		io:        terminal,
		cfg:       cfg,
		logger:    logger,
		storage:   st,
		store:     store,
		apiClient: apiClient,
		syncService: sync.NewService(apiClient, store, logger.With("component", "sync"),
			sync.WithMaxConcurrent(cfg.Sync.MaxConcurrentFetches)),
		dataService: data.NewService(apiClient, store, logger.With("component", "data"),
			data.WithConflictPolicy(cfg.ConflictPolicy())),
	}, nil
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (durableStorage, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		st, err := sqlite.New(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return st, nil
	default:
		st, err := boltdb.New(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return st, nil
	}
}

// Close waits for in-flight server confirmations and closes local storage.
func (c *Cli) Close() error {
	if n := c.dataService.Pending(); n > 0 {
		c.logger.Debug("Waiting for pending server confirmations", "count", n)
	}
	c.dataService.Wait()

	if err := c.storage.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
