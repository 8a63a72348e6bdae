package models

import (
	"time"
)

// CountRecord is one row of the count table.
// Table: count_table
// Indices: count_number
// CreatedAt is written once on insert, UpdatedAt stays NULL until the first update.
// Both timestamps are set by the repository clock, not by GORM.
type CountRecord struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CountNumber int64      `gorm:"not null;default:0;index:idx_count_table_count_number" json:"count_number"`
	Description *string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (CountRecord) TableName() string { return "count_table" }

// CountRecordPatch carries the fields of a partial update.
// Description is applied only when SetDescription is true, so it can be cleared to NULL.
type CountRecordPatch struct {
	CountNumber    *int64
	Description    *string
	SetDescription bool
}

// IsEmpty reports whether the patch would change nothing
func (p CountRecordPatch) IsEmpty() bool {
	return p.CountNumber == nil && !p.SetDescription
}
