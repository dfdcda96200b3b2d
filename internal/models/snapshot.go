package models

import (
	"time"
)

// Snapshot keys. Every mutation round-trips the whole affected collection
// under its key; there are no partial writes.
const (
	SnapshotKeyEmails  = "flowyn_emails"
	SnapshotKeyFolders = "flowyn_folders"
	SnapshotKeyTheme   = "flowyn_theme"
)

// Snapshot is one key-value row of the persistent snapshot store. The value
// is the JSON serialization of an entire collection.
type Snapshot struct {
	Key       string    `gorm:"column:key;type:varchar(100);primaryKey"`
	Value     JSONText  `gorm:"column:value;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (Snapshot) TableName() string {
	return "snapshots"
}
