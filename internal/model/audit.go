package model

import "time"

// AuditLimit caps the in-memory audit mirror to the most recent entries.
const AuditLimit = 100

// SentinelAuditID is the one row spared by a bulk audit wipe, so the table
// is never dropped to zero by the delete-all call shape.
const SentinelAuditID = "00000000-0000-0000-0000-000000000000"

// AuditEntry mirrors one row of the audit_logs table.
type AuditEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp"`
	Action    string    `json:"action" gorm:"not null"`
	User      string    `json:"user" gorm:"column:user"`
	Details   string    `json:"details"`
}

func (AuditEntry) TableName() string { return "audit_logs" }
