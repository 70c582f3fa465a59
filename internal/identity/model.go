package identity

import (
	"strings"
	"time"
)

// Preference is one durable key-value pair of viewer state. The author
// display name is the only key in use today.
type Preference struct {
	Key       string    `gorm:"column:pref_key;primaryKey;size:190;not null"`
	Value     string    `gorm:"column:pref_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing viewer preferences.
func (Preference) TableName() string {
	return "viewer_preferences"
}

// normalize value helper used across service implementation.
func normalize(value string) string {
	return strings.TrimSpace(value)
}
