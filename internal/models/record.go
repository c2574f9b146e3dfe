package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// FieldID is the only field the cache interprets inside a record.
const FieldID = "id"

// Record is an opaque server-owned object. Its shape belongs to the server
// schema; the cache only relies on the "id" field.
type Record map[string]any

// ID returns the record identifier normalised to a string.
// Returns "" when the record has no id.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	return IDString(r[FieldID])
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// IDString converts a decoded JSON identifier into its string form.
// Числовые id сохраняются в виде JSON-литерала, чтобы "42" и 42 совпадали.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case Record:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return val
	}
}

// CloneRecords deep-copies a sequence of records. The result is never nil.
func CloneRecords(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return out
}

// DecodeRecord decodes a single JSON object keeping numbers as json.Number.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("record is null")
	}
	return rec, nil
}

// DecodeRecords decodes a JSON array of objects keeping numbers as json.Number.
// A JSON null decodes to an empty sequence.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Fingerprint returns a structural hash of a collection.
// encoding/json сортирует ключи map, поэтому одинаковые по структуре
// коллекции дают одинаковый отпечаток независимо от порядка полей.
func Fingerprint(records []Record) uint64 {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		// Record содержит только значения, полученные из JSON
		return 0
	}
	return xxhash.Sum64(data)
}
