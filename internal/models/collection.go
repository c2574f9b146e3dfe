package models

import "fmt"

// Collection is the name of a server-owned set of records tracked by the local cache.
type Collection string

const (
	CollectionWorkspaces      Collection = "workspaces"
	CollectionClients         Collection = "clients"
	CollectionProjects        Collection = "projects"
	CollectionTasks           Collection = "tasks"
	CollectionEmployees       Collection = "employees"
	CollectionTaskAssignments Collection = "taskAssignments"
)

// Collections lists every recognised collection in a stable order.
// Порядок используется при сериализации и в выводе CLI.
var Collections = []Collection{
	CollectionWorkspaces,
	CollectionClients,
	CollectionProjects,
	CollectionTasks,
	CollectionEmployees,
	CollectionTaskAssignments,
}

// Valid reports whether c is one of the recognised collections.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

func (c Collection) String() string {
	return string(c)
}

// ParseCollection converts a raw name into a Collection.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if !c.Valid() {
		return "", fmt.Errorf("unknown collection: %q", name)
	}
	return c, nil
}
