// Package sync keeps the local store converged with the server by periodically
// refetching every tracked collection.
package sync

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/bizdesk/internal/models"
)

// DefaultMaxConcurrent bounds parallel collection fetches.
const DefaultMaxConcurrent = 3

//go:generate moq -out api_mock.go . APIClient

// APIClient fetches whole collections from the server
type APIClient interface {
	ListRecords(ctx context.Context, collection models.Collection) ([]models.Record, error)
}

// LocalStore is the part of localstore.Store the sync loop needs
type LocalStore interface {
	Fingerprint(c models.Collection) uint64
	ReplaceAll(ctx context.Context, c models.Collection, records []models.Record)
	SetLastSync(ctx context.Context, t time.Time)
	Metadata() models.SyncMetadata
}

// CollectionResult is the outcome of one collection fetch
type CollectionResult struct {
	Err        error
	Collection models.Collection
	Fetched    int  // количество полученных записей
	Replaced   bool // локальные данные заменены
}

// SyncResult contains sync cycle results
type SyncResult struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	Collections []CollectionResult
	Replaced    int // коллекции, которые отличались и были заменены
	Unchanged   int // коллекции без изменений
	Failed      int // коллекции, которые не удалось получить
}

// Succeeded reports whether at least one collection was fetched.
func (r *SyncResult) Succeeded() bool {
	return r.Replaced+r.Unchanged > 0
}

// Service handles synchronization between client and server
type Service struct {
	api           APIClient
	store         LocalStore
	logger        *slog.Logger
	now           func() time.Time
	collections   []models.Collection
	maxConcurrent int
	// cycleMu сериализует циклы: ручная синхронизация ждёт фоновую
	cycleMu gosync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithCollections overrides the set of synchronized collections.
func WithCollections(collections ...models.Collection) Option {
	return func(s *Service) {
		s.collections = collections
	}
}

// WithMaxConcurrent bounds parallel collection fetches.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new sync service
func NewService(apiClient APIClient, store LocalStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		api:           apiClient,
		store:         store,
		logger:        logger,
		now:           time.Now,
		collections:   models.Collections,
		maxConcurrent: DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncNow runs one fetch-compare-replace cycle over every tracked collection.
// Failures are logged and reported in the result; cached data is kept.
func (s *Service) SyncNow(ctx context.Context) *SyncResult {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	return s.cycle(ctx)
}

// ForceSyncNow is the manual trigger: it runs a cycle and stamps lastSync
// when at least one collection was fetched.
func (s *Service) ForceSyncNow(ctx context.Context) *SyncResult {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	result := s.cycle(ctx)
	s.stamp(ctx, result)
	return result
}

// Run runs a cycle immediately and then every sync interval until ctx is done.
// The interval is re-read from the store before each wait.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("Background sync started")
	defer s.logger.Info("Background sync stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		s.cycleMu.Lock()
		result := s.cycle(ctx)
		if ctx.Err() == nil {
			s.stamp(ctx, result)
		}
		s.cycleMu.Unlock()

		interval := s.store.Metadata().Interval()
		s.logger.Debug("Next sync scheduled", "in", interval)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (s *Service) stamp(ctx context.Context, result *SyncResult) {
	if !result.Succeeded() {
		s.logger.Warn("Sync cycle fetched nothing, lastSync unchanged", "failed", result.Failed)
		return
	}
	s.store.SetLastSync(ctx, result.FinishedAt)
}

func (s *Service) cycle(ctx context.Context) *SyncResult {
	result := &SyncResult{
		StartedAt:   s.now(),
		Collections: make([]CollectionResult, len(s.collections)),
	}

	s.logger.Info("Starting synchronization", "collections", len(s.collections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, c := range s.collections {
		g.Go(func() error {
			// Ошибку не возвращаем: иначе errgroup отменит остальные запросы
			result.Collections[i] = s.syncCollection(gctx, c)
			return nil
		})
	}
	_ = g.Wait()

	for _, cr := range result.Collections {
		switch {
		case cr.Err != nil:
			result.Failed++
		case cr.Replaced:
			result.Replaced++
		default:
			result.Unchanged++
		}
	}
	result.FinishedAt = s.now()

	s.logger.Info("Synchronization completed",
		"replaced", result.Replaced,
		"unchanged", result.Unchanged,
		"failed", result.Failed,
		"duration", result.FinishedAt.Sub(result.StartedAt))

	return result
}

func (s *Service) syncCollection(ctx context.Context, c models.Collection) CollectionResult {
	cr := CollectionResult{Collection: c}

	records, err := s.api.ListRecords(ctx, c)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		s.logger.Log(ctx, level, "Failed to fetch collection, keeping cached data",
			"collection", c,
			"error", err)
		cr.Err = err
		return cr
	}
	cr.Fetched = len(records)

	// Сравниваем структурный хеш, а не записи целиком
	if models.Fingerprint(records) == s.store.Fingerprint(c) {
		s.logger.Debug("Collection unchanged", "collection", c, "records", cr.Fetched)
		return cr
	}

	s.store.ReplaceAll(ctx, c, records)
	cr.Replaced = true
	s.logger.Debug("Collection replaced", "collection", c, "records", cr.Fetched)
	return cr
}
