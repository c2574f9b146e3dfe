package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iudanet/bizdesk/internal/client/data"
	"github.com/iudanet/bizdesk/internal/client/iocli"
	"github.com/iudanet/bizdesk/internal/models"
)

// printRecord выводит запись: id в заголовке, остальные поля по алфавиту.
// n == 0 означает запись без номера.
func printRecord(out iocli.IO, n int, r models.Record) {
	header := r.ID()
	if data.IsTempID(header) {
		header += " (not confirmed)"
	}
	if n > 0 {
		out.Printf("%d. %s\n", n, header)
	} else {
		out.Printf("   %s\n", header)
	}

	keys := make([]string, 0, len(r))
	for k := range r {
		if k != models.FieldID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		out.Printf("   %s: %s\n", k, formatValue(r[k]))
	}
	out.Println()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case json.Number:
		return val.String()
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}

// summary returns "clients=2 projects=0 ..." for a snapshot.
func summary(snap *models.Snapshot) string {
	parts := make([]string, 0, len(models.Collections))
	for _, c := range models.Collections {
		parts = append(parts, fmt.Sprintf("%s=%d", c, len(snap.Collections[c])))
	}
	return strings.Join(parts, " ")
}
