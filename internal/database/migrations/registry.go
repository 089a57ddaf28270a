// Package migrations provides database migration management for the
// database-backed preference store.
package migrations

import (
	"github.com/jmylchreest/prefstore/internal/models"
	"gorm.io/gorm"
)

// AllMigrations returns all registered migrations in order.
// - 001: Create the setting_entries key/value table
// - 002: Index setting_entries.updated_at
func AllMigrations() []Migration {
	return []Migration{
		migration001SettingEntries(),
		migration002SettingEntriesUpdatedAtIndex(),
	}
}

// migration001SettingEntries creates the key/value table holding persisted entries.
func migration001SettingEntries() Migration {
	return Migration{
		Version:     "001",
		Description: "Create setting_entries table",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.SettingEntry{})
		},
		Down: func(tx *gorm.DB) error {
			if tx.Migrator().HasTable("setting_entries") {
				return tx.Migrator().DropTable("setting_entries")
			}
			return nil
		},
	}
}

const settingEntriesUpdatedAtIndex = "idx_setting_entries_updated_at"

// migration002SettingEntriesUpdatedAtIndex adds an index used when listing
// entries by recency.
func migration002SettingEntriesUpdatedAtIndex() Migration {
	return Migration{
		Version:     "002",
		Description: "Index setting_entries.updated_at",
		Up: func(tx *gorm.DB) error {
			if tx.Migrator().HasIndex(&models.SettingEntry{}, settingEntriesUpdatedAtIndex) {
				return nil
			}
			return tx.Exec("CREATE INDEX " + settingEntriesUpdatedAtIndex + " ON setting_entries (updated_at)").Error
		},
		Down: func(tx *gorm.DB) error {
			if !tx.Migrator().HasIndex(&models.SettingEntry{}, settingEntriesUpdatedAtIndex) {
				return nil
			}
			return tx.Migrator().DropIndex(&models.SettingEntry{}, settingEntriesUpdatedAtIndex)
		},
	}
}
