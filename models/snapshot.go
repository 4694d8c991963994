package models

import "time"

// Snapshot is the gorm row holding a serialized document tree. The local
// store keeps a single row keyed "tree" and rewrites it in full on every
// mutation.
type Snapshot struct {
	Key       string    `gorm:"primarykey" json:"key"`
	Data      []byte    `gorm:"type:blob" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Snapshot
func (Snapshot) TableName() string {
	return "snapshots"
}
