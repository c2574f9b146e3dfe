package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCollection(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		errMsg     string
		wantErr    bool
	}{
		{name: "workspaces", collection: "workspaces"},
		{name: "camel case", collection: "taskAssignments"},
		{name: "empty", collection: "", wantErr: true, errMsg: "collection cannot be empty"},
		{name: "unknown", collection: "invoices", wantErr: true, errMsg: "unknown collection \"invoices\""},
		{name: "kebab case is not a name", collection: "task-assignments", wantErr: true, errMsg: "expected one of"},
		{name: "case sensitive", collection: "Clients", wantErr: true, errMsg: "unknown collection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollection(tt.collection)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRecordID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		errMsg  string
		wantErr bool
	}{
		{name: "numeric", id: "42"},
		{name: "temporary id", id: "local-0192f3a4-7c1e-7d2a-9b1c-3f4e5d6c7b8a"},
		{name: "max length", id: strings.Repeat("a", MaxRecordIDLen)},
		{name: "empty", id: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "too long", id: strings.Repeat("a", MaxRecordIDLen+1), wantErr: true, errMsg: "must not exceed 128"},
		{name: "slash", id: "a/b", wantErr: true, errMsg: "'/'"},
		{name: "space", id: "a b", wantErr: true, errMsg: "whitespace"},
		{name: "tab", id: "a\tb", wantErr: true, errMsg: "whitespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecordID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSyncInterval(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		wantErr bool
	}{
		{name: "minimum", minutes: 1},
		{name: "default", minutes: 5},
		{name: "one day", minutes: 1440},
		{name: "zero", minutes: 0, wantErr: true},
		{name: "negative", minutes: -5, wantErr: true},
		{name: "more than a day", minutes: 1441, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSyncInterval(tt.minutes)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
