package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot_AllCollectionsPresent(t *testing.T) {
	s := NewSnapshot()

	require.Len(t, s.Collections, len(Collections))
	for _, c := range Collections {
		records, ok := s.Collections[c]
		assert.True(t, ok, "collection %s must be present", c)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	}
	assert.Equal(t, "", s.LastSync)
	assert.Equal(t, DefaultSyncIntervalMinutes, s.SyncIntervalMinutes)
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	s := NewSnapshot()
	s.Collections[CollectionClients] = []Record{
		{"id": json.Number("1"), "name": "Acme"},
		{"id": "c-2", "name": "Globex", "tags": []any{"vip"}},
	}
	s.LastSync = "2026-10-17T10:00:00.000Z"
	s.SyncIntervalMinutes = 10

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, s.Collections, decoded.Collections)
	assert.Equal(t, s.SyncMetadata, decoded.SyncMetadata)
}

func TestSnapshot_MarshalFlatObject(t *testing.T) {
	data, err := json.Marshal(NewSnapshot())
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))

	for _, c := range Collections {
		assert.Contains(t, flat, string(c))
		assert.Equal(t, []any{}, flat[string(c)])
	}
	assert.Equal(t, "", flat["lastSync"])
	assert.Equal(t, float64(DefaultSyncIntervalMinutes), flat["syncIntervalMinutes"])
}

func TestSnapshot_UnmarshalShallowMerge(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantInterval int
		wantLastSync string
		wantClients  int
	}{
		{
			name:         "only one collection stored",
			input:        `{"clients":[{"id":1}]}`,
			wantInterval: DefaultSyncIntervalMinutes,
			wantClients:  1,
		},
		{
			name:         "metadata only",
			input:        `{"lastSync":"2026-10-17T10:00:00.000Z","syncIntervalMinutes":15}`,
			wantInterval: 15,
			wantLastSync: "2026-10-17T10:00:00.000Z",
		},
		{
			name:         "non-positive interval falls back to default",
			input:        `{"syncIntervalMinutes":0}`,
			wantInterval: DefaultSyncIntervalMinutes,
		},
		{
			name:         "null collection and unknown keys",
			input:        `{"tasks":null,"invoices":[{"id":1}]}`,
			wantInterval: DefaultSyncIntervalMinutes,
		},
		{
			name:         "empty object",
			input:        `{}`,
			wantInterval: DefaultSyncIntervalMinutes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Snapshot
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))

			for _, c := range Collections {
				assert.NotNil(t, s.Collections[c], "collection %s must never be nil", c)
			}
			assert.Len(t, s.Collections[CollectionClients], tt.wantClients)
			assert.Equal(t, tt.wantInterval, s.SyncIntervalMinutes)
			assert.Equal(t, tt.wantLastSync, s.LastSync)
			assert.NotContains(t, s.Collections, Collection("invoices"))
		})
	}
}

func TestSnapshot_UnmarshalInvalid(t *testing.T) {
	var s Snapshot
	assert.Error(t, json.Unmarshal([]byte(`{"clients":{"id":1}}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &s))
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	s := NewSnapshot()
	s.Collections[CollectionProjects] = []Record{
		{"id": "p-1", "meta": map[string]any{"color": "red"}},
	}

	c := s.Clone()
	c.Collections[CollectionProjects][0]["meta"].(map[string]any)["color"] = "blue"
	c.Collections[CollectionProjects] = append(c.Collections[CollectionProjects], Record{"id": "p-2"})

	assert.Len(t, s.Collections[CollectionProjects], 1)
	assert.Equal(t, "red", s.Collections[CollectionProjects][0]["meta"].(map[string]any)["color"])
}

func TestSyncMetadata_IsStale(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		meta     SyncMetadata
		expected bool
	}{
		{
			name:     "never synced",
			meta:     SyncMetadata{LastSync: "", SyncIntervalMinutes: 5},
			expected: true,
		},
		{
			name:     "six minutes ago",
			meta:     SyncMetadata{LastSync: FormatTimestamp(now.Add(-6 * time.Minute)), SyncIntervalMinutes: 5},
			expected: true,
		},
		{
			name:     "four minutes ago",
			meta:     SyncMetadata{LastSync: FormatTimestamp(now.Add(-4 * time.Minute)), SyncIntervalMinutes: 5},
			expected: false,
		},
		{
			name:     "exactly at the threshold",
			meta:     SyncMetadata{LastSync: FormatTimestamp(now.Add(-5 * time.Minute)), SyncIntervalMinutes: 5},
			expected: false,
		},
		{
			name:     "unparsable timestamp",
			meta:     SyncMetadata{LastSync: "yesterday", SyncIntervalMinutes: 5},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meta.IsStale(now))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 10, 17, 9, 30, 15, 123_000_000, time.FixedZone("MSK", 3*60*60))
	assert.Equal(t, "2026-10-17T06:30:15.123Z", FormatTimestamp(ts))
}
