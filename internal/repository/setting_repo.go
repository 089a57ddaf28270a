package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/prefstore/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingRepository implements SettingRepository using GORM.
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get retrieves an entry by key.
func (r *settingRepository) Get(ctx context.Context, key string) (*models.SettingEntry, error) {
	var entry models.SettingEntry
	if err := r.db.WithContext(ctx).First(&entry, "entry_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert creates or updates an entry based on its key.
func (r *settingRepository) Upsert(ctx context.Context, entry *models.SettingEntry) error {
	if entry.Key == "" {
		return fmt.Errorf("setting entry key is required")
	}
	entry.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
}
