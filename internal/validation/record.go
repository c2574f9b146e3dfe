// Package validation checks user input before it reaches the local store.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/iudanet/bizdesk/internal/models"
)

const (
	// MaxRecordIDLen максимальная длина id записи
	MaxRecordIDLen = 128
	// MinSyncIntervalMinutes минимальный интервал синхронизации
	MinSyncIntervalMinutes = 1
	// MaxSyncIntervalMinutes максимальный интервал синхронизации (сутки)
	MaxSyncIntervalMinutes = 24 * 60
)

// ValidateCollection проверяет, что имя коллекции известно клиенту
func ValidateCollection(name string) error {
	if name == "" {
		return fmt.Errorf("collection cannot be empty")
	}

	if _, err := models.ParseCollection(name); err != nil {
		names := make([]string, 0, len(models.Collections))
		for _, c := range models.Collections {
			names = append(names, c.String())
		}
		return fmt.Errorf("unknown collection %q, expected one of: %s", name, strings.Join(names, ", "))
	}

	return nil
}

// ValidateRecordID проверяет id записи
// id подставляется в URL, поэтому "/" и пробельные символы запрещены
func ValidateRecordID(id string) error {
	if id == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	if len(id) > MaxRecordIDLen {
		return fmt.Errorf("record id must not exceed %d characters", MaxRecordIDLen)
	}

	if strings.ContainsFunc(id, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	}) {
		return fmt.Errorf("record id must not contain '/' or whitespace")
	}

	return nil
}

// ValidateSyncInterval проверяет интервал фоновой синхронизации в минутах
func ValidateSyncInterval(minutes int) error {
	if minutes < MinSyncIntervalMinutes || minutes > MaxSyncIntervalMinutes {
		return fmt.Errorf("sync interval must be between %d and %d minutes", MinSyncIntervalMinutes, MaxSyncIntervalMinutes)
	}
	return nil
}
