package models

import "time"

// Snapshot is one persisted document in the client-scoped key-value store.
// The whole portfolio is serialized under a single key, so no multi-key
// transaction support is needed.
type Snapshot struct {
	Key       string    `json:"key" gorm:"primaryKey;column:key;type:varchar(255)"`
	Data      string    `json:"data" gorm:"column:data;type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;type:timestamp;autoUpdateTime"`
}

// TableName returns the table name for the Snapshot model
func (Snapshot) TableName() string {
	return "snapshots"
}
