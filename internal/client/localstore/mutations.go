package localstore

import (
	"context"

	"github.com/iudanet/bizdesk/internal/models"
)

// mutate applies fn under the write lock, refreshes fingerprints of the
// collections fn reports as touched, persists and then notifies subscribers.
// fn returns nil when nothing changed.
func (s *Store) mutate(ctx context.Context, op string, fn func(snap *models.Snapshot) []models.Collection) {
	s.mu.Lock()
	touched := fn(s.snapshot)
	if len(touched) == 0 {
		s.mu.Unlock()
		return
	}

	for _, c := range touched {
		s.fingerprints[c] = models.Fingerprint(s.snapshot.Collections[c])
	}
	s.persistLocked(ctx)

	var snap *models.Snapshot
	if s.subscribers.len() > 0 {
		snap = s.snapshot.Clone()
	}
	s.mu.Unlock()

	s.logger.Debug("Local cache updated", "op", op, "collections", touched)

	// Подписчики вызываются вне блокировки, чтобы они могли читать Store
	if snap != nil {
		s.subscribers.notify(snap)
	}
}

// known проверяет коллекцию; мутации неизвестных коллекций игнорируются
func (s *Store) known(op string, c models.Collection) bool {
	if c.Valid() {
		return true
	}
	s.logger.Warn("Ignoring mutation of unknown collection", "op", op, "collection", c)
	return false
}

// ReplaceAll overwrites every record of collection c.
// Identical consecutive calls each persist and notify.
func (s *Store) ReplaceAll(ctx context.Context, c models.Collection, records []models.Record) {
	if !s.known("replace_all", c) {
		return
	}

	s.mutate(ctx, "replace_all", func(snap *models.Snapshot) []models.Collection {
		snap.Collections[c] = models.CloneRecords(records)
		return []models.Collection{c}
	})
}

// InsertOne appends record to collection c.
func (s *Store) InsertOne(ctx context.Context, c models.Collection, record models.Record) {
	if !s.known("insert_one", c) {
		return
	}

	s.mutate(ctx, "insert_one", func(snap *models.Snapshot) []models.Collection {
		snap.Collections[c] = append(snap.Collections[c], record.Clone())
		return []models.Collection{c}
	})
}

// InsertAt inserts record at position index of collection c.
// The index is clamped to the collection bounds.
func (s *Store) InsertAt(ctx context.Context, c models.Collection, index int, record models.Record) {
	if !s.known("insert_at", c) {
		return
	}

	s.mutate(ctx, "insert_at", func(snap *models.Snapshot) []models.Collection {
		records := snap.Collections[c]
		index = max(0, min(index, len(records)))

		out := make([]models.Record, 0, len(records)+1)
		out = append(out, records[:index]...)
		out = append(out, record.Clone())
		out = append(out, records[index:]...)
		snap.Collections[c] = out
		return []models.Collection{c}
	})
}

// PatchOne shallow-merges fields into the record with the given id and
// returns the record as it was before the patch.
// An unknown id is a logged no-op and reports ok=false.
func (s *Store) PatchOne(ctx context.Context, c models.Collection, id string, fields models.Record) (previous models.Record, ok bool) {
	if !s.known("patch_one", c) {
		return nil, false
	}

	s.mutate(ctx, "patch_one", func(snap *models.Snapshot) []models.Collection {
		i := indexOf(snap.Collections[c], id)
		if i < 0 {
			return nil
		}

		current := snap.Collections[c][i]
		previous = current.Clone()

		patched := current.Clone()
		for k, v := range fields.Clone() {
			patched[k] = v
		}
		snap.Collections[c][i] = patched
		ok = true
		return []models.Collection{c}
	})

	if !ok {
		s.logger.Debug("Patch skipped, record not found", "collection", c, "id", id)
	}
	return previous, ok
}

// PutOne replaces the record with the given id wholesale.
// An unknown id is a logged no-op.
func (s *Store) PutOne(ctx context.Context, c models.Collection, id string, record models.Record) bool {
	if !s.known("put_one", c) {
		return false
	}

	var ok bool
	s.mutate(ctx, "put_one", func(snap *models.Snapshot) []models.Collection {
		i := indexOf(snap.Collections[c], id)
		if i < 0 {
			return nil
		}
		snap.Collections[c][i] = record.Clone()
		ok = true
		return []models.Collection{c}
	})

	if !ok {
		s.logger.Debug("Put skipped, record not found", "collection", c, "id", id)
	}
	return ok
}

// DeleteOne removes the first record with the given id and returns it with
// its former position. An unknown id is a logged no-op and reports ok=false.
func (s *Store) DeleteOne(ctx context.Context, c models.Collection, id string) (removed models.Record, index int, ok bool) {
	if !s.known("delete_one", c) {
		return nil, -1, false
	}

	index = -1
	s.mutate(ctx, "delete_one", func(snap *models.Snapshot) []models.Collection {
		records := snap.Collections[c]
		i := indexOf(records, id)
		if i < 0 {
			return nil
		}

		removed = records[i]
		index = i

		out := make([]models.Record, 0, len(records)-1)
		out = append(out, records[:i]...)
		out = append(out, records[i+1:]...)
		snap.Collections[c] = out
		ok = true
		return []models.Collection{c}
	})

	if !ok {
		s.logger.Debug("Delete skipped, record not found", "collection", c, "id", id)
	}
	return removed, index, ok
}

func indexOf(records []models.Record, id string) int {
	if id == "" {
		return -1
	}
	for i, r := range records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}
