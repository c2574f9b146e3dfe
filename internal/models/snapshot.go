package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// DefaultSyncIntervalMinutes is used when no interval was stored.
	DefaultSyncIntervalMinutes = 5

	// TimestampLayout is the ISO-8601 layout of SyncMetadata.LastSync.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

	keyLastSync            = "lastSync"
	keySyncIntervalMinutes = "syncIntervalMinutes"
)

// SyncMetadata describes when the cache was last reconciled with the server.
type SyncMetadata struct {
	LastSync            string `json:"lastSync"`            // ISO-8601, "" если синхронизации не было
	SyncIntervalMinutes int    `json:"syncIntervalMinutes"` // всегда > 0
}

// FormatTimestamp renders t in the LastSync layout (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Interval returns the sync interval as a duration.
func (m SyncMetadata) Interval() time.Duration {
	minutes := m.SyncIntervalMinutes
	if minutes <= 0 {
		minutes = DefaultSyncIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// IsStale reports whether the cache may no longer reflect the server.
// Пустой или нечитаемый lastSync всегда считается устаревшим.
func (m SyncMetadata) IsStale(now time.Time) bool {
	if m.LastSync == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, m.LastSync)
	if err != nil {
		return true
	}
	return now.Sub(last) > m.Interval()
}

// Snapshot is the complete state of the local cache.
type Snapshot struct {
	Collections map[Collection][]Record
	SyncMetadata
}

// NewSnapshot returns the default snapshot: every collection empty, never synced.
func NewSnapshot() *Snapshot {
	s := &Snapshot{
		Collections: make(map[Collection][]Record, len(Collections)),
		SyncMetadata: SyncMetadata{
			SyncIntervalMinutes: DefaultSyncIntervalMinutes,
		},
	}
	for _, c := range Collections {
		s.Collections[c] = []Record{}
	}
	return s
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Collections:  make(map[Collection][]Record, len(s.Collections)),
		SyncMetadata: s.SyncMetadata,
	}
	for c, records := range s.Collections {
		out.Collections[c] = CloneRecords(records)
	}
	return out
}

// MarshalJSON encodes the snapshot as one flat object:
// {"workspaces": [...], ..., "lastSync": "...", "syncIntervalMinutes": 5}.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(Collections)+2)
	for _, c := range Collections {
		records := s.Collections[c]
		if records == nil {
			records = []Record{}
		}
		flat[string(c)] = records
	}
	flat[keyLastSync] = s.LastSync
	flat[keySyncIntervalMinutes] = s.SyncIntervalMinutes
	return json.Marshal(flat)
}

// UnmarshalJSON shallow-merges the stored object over the default snapshot:
// present keys win, missing keys keep their defaults, unknown keys are ignored.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	merged := NewSnapshot()
	for _, c := range Collections {
		value, ok := raw[string(c)]
		if !ok {
			continue
		}
		records, err := DecodeRecords(value)
		if err != nil {
			return fmt.Errorf("collection %s: %w", c, err)
		}
		merged.Collections[c] = records
	}

	if value, ok := raw[keyLastSync]; ok {
		var lastSync *string
		if err := json.Unmarshal(value, &lastSync); err != nil {
			return fmt.Errorf("failed to decode %s: %w", keyLastSync, err)
		}
		if lastSync != nil {
			merged.LastSync = *lastSync
		}
	}

	if value, ok := raw[keySyncIntervalMinutes]; ok {
		var minutes *int
		if err := json.Unmarshal(value, &minutes); err != nil {
			return fmt.Errorf("failed to decode %s: %w", keySyncIntervalMinutes, err)
		}
		// Инвариант: интервал строго положительный
		if minutes != nil && *minutes > 0 {
			merged.SyncIntervalMinutes = *minutes
		}
	}

	*s = *merged
	return nil
}
