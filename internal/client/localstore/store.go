// Package localstore keeps the durable local copy of server-owned collections.
//
// Store serves reads synchronously from memory, writes the whole snapshot to
// durable storage after every mutation and notifies subscribers. Storage
// failures are logged and never returned: memory stays authoritative for the
// running process.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/bizdesk/internal/client/storage"
	"github.com/iudanet/bizdesk/internal/models"
)

// DefaultKey is the storage key the snapshot is written under.
const DefaultKey = "bizdesk-local-store"

// ErrInvalidSyncInterval is returned when the sync interval is not positive.
var ErrInvalidSyncInterval = errors.New("sync interval must be positive")

// Store is the persisted local cache.
type Store struct {
	storage      storage.SnapshotStorage
	logger       *slog.Logger
	now          func() time.Time
	snapshot     *models.Snapshot
	fingerprints map[models.Collection]uint64
	subscribers  *registry
	key          string
	mu           sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store and loads the snapshot saved under key.
// A missing or unreadable snapshot is replaced by the default one.
func New(ctx context.Context, st storage.SnapshotStorage, key string, logger *slog.Logger, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}

	s := &Store{
		storage:     st,
		logger:      logger,
		now:         time.Now,
		key:         key,
		subscribers: newRegistry(logger),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.snapshot = s.load(ctx)
	s.fingerprints = make(map[models.Collection]uint64, len(models.Collections))
	for _, c := range models.Collections {
		s.fingerprints[c] = models.Fingerprint(s.snapshot.Collections[c])
	}

	return s
}

// load читает снимок из хранилища; любые ошибки только логируются
func (s *Store) load(ctx context.Context) *models.Snapshot {
	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			s.logger.Debug("No stored snapshot, starting empty", "key", s.key)
		} else {
			s.logger.Warn("Failed to load stored snapshot, starting empty", "key", s.key, "error", err)
		}
		return models.NewSnapshot()
	}

	snapshot := &models.Snapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		s.logger.Warn("Stored snapshot is corrupted, starting empty", "key", s.key, "error", err)
		return models.NewSnapshot()
	}

	s.logger.Debug("Loaded stored snapshot", "key", s.key, "last_sync", snapshot.LastSync)
	return snapshot
}

// persistLocked сериализует весь снимок и пишет его одной операцией.
// Вызывается под s.mu, поэтому порядок записей совпадает с порядком мутаций.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.snapshot)
	if err != nil {
		s.logger.Error("Failed to serialize snapshot", "error", err)
		return
	}

	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.logger.Warn("Failed to persist snapshot, keeping in-memory state", "key", s.key, "error", err)
	}
}

// Get returns a copy of the records of collection c.
// Unknown collections yield an empty sequence.
func (s *Store) Get(c models.Collection) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.CloneRecords(s.snapshot.Collections[c])
}

// Snapshot returns a deep copy of the whole cache state.
func (s *Store) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot.Clone()
}

// Metadata returns the current sync metadata.
func (s *Store) Metadata() models.SyncMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot.SyncMetadata
}

// LastSync returns the ISO-8601 time of the last successful sync, or "".
func (s *Store) LastSync() string {
	return s.Metadata().LastSync
}

// IsStale reports whether the cache is older than the sync interval.
func (s *Store) IsStale() bool {
	return s.Metadata().IsStale(s.now())
}

// Fingerprint returns the structural hash of the cached collection.
func (s *Store) Fingerprint(c models.Collection) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fp, ok := s.fingerprints[c]; ok {
		return fp
	}
	return models.Fingerprint(nil)
}

// Subscribe registers fn to be called after every collection mutation.
// The returned function removes the subscription; calling it twice is safe.
// fn receives a snapshot shared by all subscribers and must not modify it.
func (s *Store) Subscribe(fn func(*models.Snapshot)) (unsubscribe func()) {
	return s.subscribers.add(fn)
}

// SetLastSync records t as the time of the last successful sync.
// Metadata changes are persisted but not pushed to subscribers.
func (s *Store) SetLastSync(ctx context.Context, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastSync = models.FormatTimestamp(t)
	s.persistLocked(ctx)
}

// SetSyncInterval changes the background sync interval.
func (s *Store) SetSyncInterval(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidSyncInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.SyncIntervalMinutes = minutes
	s.persistLocked(ctx)
	return nil
}

// Reset drops every cached record and the last sync time.
// The sync interval is kept.
func (s *Store) Reset(ctx context.Context) {
	s.mutate(ctx, "reset", func(snap *models.Snapshot) []models.Collection {
		interval := snap.SyncIntervalMinutes
		*snap = *models.NewSnapshot()
		snap.SyncIntervalMinutes = interval
		return models.Collections
	})
}
