package models

import "time"

// SettingEntry is one persisted key/value record of the database backend.
// The key column is named entry_key because KEY is reserved in MySQL.
type SettingEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;type:varchar(128)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for setting entries.
func (SettingEntry) TableName() string {
	return "setting_entries"
}
