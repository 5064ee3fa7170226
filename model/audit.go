package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records one mutating HTTP request.
type AuditLog struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_audit_trace;size:36;not null" json:"trace_id"`
	Action     string         `gorm:"size:128;not null" json:"action"`
	Path       string         `gorm:"size:255" json:"path"`
	Request    datatypes.JSON `json:"request"`
	Status     int            `json:"status"`
	Error      string         `gorm:"type:text" json:"error"`
	IP         string         `gorm:"size:45" json:"ip"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
