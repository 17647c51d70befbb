package models

import "time"

const LoadStatusSucceeded = "EXITOSO"

// LoadControl is the per-source-file ledger that makes the loader idempotent
// at file granularity.
type LoadControl struct {
	FileName    string     `gorm:"type:text;primaryKey" json:"file_name"`
	Status      string     `gorm:"type:text" json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RecordCount int        `gorm:"type:int" json:"record_count"`
}
