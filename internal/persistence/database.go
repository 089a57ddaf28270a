package persistence

import (
	"context"
	"io"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/repository"
)

// DatabaseBackend stores entries in the setting_entries table.
type DatabaseBackend struct {
	repo   repository.SettingRepository
	closer io.Closer
}

// NewDatabaseBackend creates a DatabaseBackend over repo. closer, if non-nil,
// is closed with the backend.
func NewDatabaseBackend(repo repository.SettingRepository, closer io.Closer) *DatabaseBackend {
	return &DatabaseBackend{repo: repo, closer: closer}
}

// Name implements Backend.
func (d *DatabaseBackend) Name() string { return "database" }

// Get implements Backend.
func (d *DatabaseBackend) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := d.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return []byte(entry.Value), nil
}

// Set implements Backend.
func (d *DatabaseBackend) Set(ctx context.Context, key string, value []byte) error {
	return d.repo.Upsert(ctx, &models.SettingEntry{Key: key, Value: string(value)})
}

// Close implements Backend.
func (d *DatabaseBackend) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
