package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionPath(t *testing.T) {
	tests := []struct {
		collection string
		expected   string
	}{
		{collection: "workspaces", expected: "/api/v1/workspaces"},
		{collection: "clients", expected: "/api/v1/clients"},
		{collection: "taskAssignments", expected: "/api/v1/task-assignments"},
	}

	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			assert.Equal(t, tt.expected, CollectionPath(tt.collection))
		})
	}
}

func TestRecordPath(t *testing.T) {
	assert.Equal(t, "/api/v1/tasks/42", RecordPath("tasks", "42"))
	assert.Equal(t, "/api/v1/task-assignments/a%20b", RecordPath("taskAssignments", "a b"))
}
