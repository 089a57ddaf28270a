// Package repository is the gorm access layer behind the database backend.
package repository

import (
	"context"

	"github.com/jmylchreest/prefstore/internal/models"
)

// SettingRepository defines operations for persisted key/value entries.
type SettingRepository interface {
	// Get retrieves an entry by key. Returns nil, nil if the key is absent.
	Get(ctx context.Context, key string) (*models.SettingEntry, error)
	// Upsert creates the entry or replaces its value.
	Upsert(ctx context.Context, entry *models.SettingEntry) error
}
