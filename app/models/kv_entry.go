package models

import "time"

// KVEntry backs the SQL implementation of the durable key-value store.
type KVEntry struct {
	Key       string `gorm:"column:storage_key;size:191;primaryKey"`
	Value     string `gorm:"column:storage_value;type:mediumtext;not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
