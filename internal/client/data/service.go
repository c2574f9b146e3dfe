// Package data implements optimistic writes: every mutation is applied to the
// local store first and confirmed with the server in the background.
package data

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/iudanet/bizdesk/internal/models"
)

// TempIDPrefix marks records created locally and not yet confirmed.
const TempIDPrefix = "local-"

// ConflictPolicy decides what happens to an optimistic change the server rejected.
type ConflictPolicy int

const (
	// KeepLocalOnFailure leaves the local change in place until the next sync.
	KeepLocalOnFailure ConflictPolicy = iota
	// RevertOnFailure undoes the local change.
	RevertOnFailure
)

func (p ConflictPolicy) String() string {
	switch p {
	case RevertOnFailure:
		return "revert"
	default:
		return "keep-local"
	}
}

// ParseConflictPolicy parses "keep-local" or "revert".
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep-local":
		return KeepLocalOnFailure, nil
	case "revert":
		return RevertOnFailure, nil
	default:
		return KeepLocalOnFailure, fmt.Errorf("unknown conflict policy %q (want keep-local or revert)", s)
	}
}

// IsTempID reports whether id was assigned locally.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

//go:generate moq -out api_mock.go . APIClient

// APIClient sends confirmed writes to the server
type APIClient interface {
	CreateRecord(ctx context.Context, collection models.Collection, draft models.Record) (models.Record, error)
	UpdateRecord(ctx context.Context, collection models.Collection, id string, patch models.Record) (models.Record, error)
	DeleteRecord(ctx context.Context, collection models.Collection, id string) error
}

// LocalStore is the part of localstore.Store the mutation path needs
type LocalStore interface {
	InsertOne(ctx context.Context, c models.Collection, record models.Record)
	InsertAt(ctx context.Context, c models.Collection, index int, record models.Record)
	PatchOne(ctx context.Context, c models.Collection, id string, fields models.Record) (models.Record, bool)
	PutOne(ctx context.Context, c models.Collection, id string, record models.Record) bool
	DeleteOne(ctx context.Context, c models.Collection, id string) (models.Record, int, bool)
}

// Service handles client-side optimistic mutations
type Service struct {
	api      APIClient
	store    LocalStore
	logger   *slog.Logger
	newID    func() string
	inflight sync.WaitGroup
	pending  atomic.Int64
	failures atomic.Int64
	policy   ConflictPolicy
}

// Option configures a Service.
type Option func(*Service)

// WithConflictPolicy sets how rejected changes are handled.
func WithConflictPolicy(policy ConflictPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithIDGenerator overrides temporary id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService creates a new data service
func NewService(apiClient APIClient, store LocalStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		api:    apiClient,
		store:  store,
		logger: logger,
		newID:  newTempID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newTempID возвращает временный id на основе UUIDv7 (содержит метку времени)
func newTempID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return TempIDPrefix + uuid.NewString()
	}
	return TempIDPrefix + id.String()
}

// Policy returns the configured conflict policy.
func (s *Service) Policy() ConflictPolicy {
	return s.policy
}

// CreateRecord inserts draft locally under a temporary id and returns it
// immediately. The server-assigned record replaces it once the create is
// confirmed. Returns nil for an unknown collection.
func (s *Service) CreateRecord(ctx context.Context, c models.Collection, draft models.Record) models.Record {
	if !c.Valid() {
		s.logger.Warn("Create rejected: unknown collection", "collection", c)
		return nil
	}

	tempID := s.newID()
	local := draft.Clone()
	if local == nil {
		local = models.Record{}
	}
	local[models.FieldID] = tempID

	body := draft.Clone()
	if body == nil {
		body = models.Record{}
	}
	delete(body, models.FieldID)

	s.store.InsertOne(ctx, c, local)
	s.logger.Debug("Record created locally", "collection", c, "id", tempID)

	s.background(ctx, func(ctx context.Context) {
		created, err := s.api.CreateRecord(ctx, c, body)
		if err != nil {
			s.failures.Add(1)
			s.logger.Error("Failed to create record on server",
				"collection", c,
				"id", tempID,
				"policy", s.policy,
				"error", err)
			if s.policy == RevertOnFailure {
				s.store.DeleteOne(ctx, c, tempID)
			}
			return
		}

		// Запись могли удалить локально, пока запрос был в пути
		if _, ok := s.store.PatchOne(ctx, c, tempID, created); !ok {
			s.logger.Warn("Created record no longer cached locally",
				"collection", c,
				"temp_id", tempID,
				"id", created.ID())
			return
		}
		s.logger.Debug("Record create confirmed", "collection", c, "temp_id", tempID, "id", created.ID())
	})

	return local.Clone()
}

// UpdateRecord applies patch locally and sends it to the server. Returns false,
// sending nothing, when the record is not cached.
func (s *Service) UpdateRecord(ctx context.Context, c models.Collection, id string, patch models.Record) bool {
	body := patch.Clone()
	if body == nil {
		body = models.Record{}
	}
	delete(body, models.FieldID)

	previous, ok := s.store.PatchOne(ctx, c, id, body)
	if !ok {
		s.logger.Warn("Update skipped: record not found locally", "collection", c, "id", id)
		return false
	}

	s.background(ctx, func(ctx context.Context) {
		if _, err := s.api.UpdateRecord(ctx, c, id, body); err != nil {
			s.failures.Add(1)
			s.logger.Error("Failed to update record on server",
				"collection", c,
				"id", id,
				"policy", s.policy,
				"error", err)
			if s.policy == RevertOnFailure {
				s.store.PutOne(ctx, c, id, previous)
			}
			return
		}
		s.logger.Debug("Record update confirmed", "collection", c, "id", id)
	})

	return true
}

// DeleteRecord removes the record locally and deletes it on the server.
// Returns false, sending nothing, when the record is not cached.
func (s *Service) DeleteRecord(ctx context.Context, c models.Collection, id string) bool {
	removed, index, ok := s.store.DeleteOne(ctx, c, id)
	if !ok {
		s.logger.Warn("Delete skipped: record not found locally", "collection", c, "id", id)
		return false
	}

	s.background(ctx, func(ctx context.Context) {
		if err := s.api.DeleteRecord(ctx, c, id); err != nil {
			s.failures.Add(1)
			s.logger.Error("Failed to delete record on server",
				"collection", c,
				"id", id,
				"policy", s.policy,
				"error", err)
			if s.policy == RevertOnFailure {
				s.store.InsertAt(ctx, c, index, removed)
			}
			return
		}
		s.logger.Debug("Record delete confirmed", "collection", c, "id", id)
	})

	return true
}

// Wait blocks until every in-flight confirmation has settled.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Pending returns the number of confirmations still in flight.
func (s *Service) Pending() int {
	return int(s.pending.Load())
}

// Failures returns how many confirmations the server has rejected so far.
func (s *Service) Failures() int {
	return int(s.failures.Load())
}

// background запускает подтверждение на сервере; запрос переживает отмену ctx вызывающего
func (s *Service) background(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer s.pending.Add(-1)
		fn(ctx)
	}()
}
