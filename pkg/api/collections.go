// Package api contains the wire contract shared with the bizdesk server.
package api

import (
	"net/url"
	"strings"
	"unicode"
)

// BasePath is the prefix of every collection endpoint.
const BasePath = "/api/v1"

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// CollectionPath returns the REST path of a collection, e.g.
// "taskAssignments" -> "/api/v1/task-assignments".
func CollectionPath(collection string) string {
	return BasePath + "/" + kebab(collection)
}

// RecordPath returns the REST path of a single record.
func RecordPath(collection, id string) string {
	return CollectionPath(collection) + "/" + url.PathEscape(id)
}

// kebab переводит camelCase имя коллекции в сегмент URL
func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
