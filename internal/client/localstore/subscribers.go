package localstore

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/iudanet/bizdesk/internal/models"
)

// registry is the observer list of a Store.
type registry struct {
	logger *slog.Logger
	subs   map[uint64]func(*models.Snapshot)
	next   uint64
	mu     sync.Mutex
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{
		logger: logger,
		subs:   make(map[uint64]func(*models.Snapshot)),
	}
}

func (r *registry) add(fn func(*models.Snapshot)) func() {
	r.mu.Lock()
	id := r.next
	r.next++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// notify вызывает каждого подписчика один раз, синхронно.
// Копия списка снимается под блокировкой, чтобы подписчик мог отписаться
// прямо из колбэка.
func (r *registry) notify(snap *models.Snapshot) {
	r.mu.Lock()
	subs := make([]func(*models.Snapshot), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		r.call(fn, snap)
	}
}

// call isolates a panicking subscriber so the rest still get notified.
func (r *registry) call(fn func(*models.Snapshot), snap *models.Snapshot) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("Subscriber panic recovered",
				"error", err,
				"stack", string(debug.Stack()),
			)
		}
	}()

	fn(snap)
}
