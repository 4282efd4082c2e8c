package model

import "time"

// TenantStatus is the reported state of a network node.
type TenantStatus string

const (
	TenantActive    TenantStatus = "ACTIVE"
	TenantSyncing   TenantStatus = "SYNCING"
	TenantOffline   TenantStatus = "OFFLINE"
	TenantRebooting TenantStatus = "REBOOTING"
)

// ValidTenantStatus reports whether s is a recognized node state.
func ValidTenantStatus(s TenantStatus) bool {
	switch s {
	case TenantActive, TenantSyncing, TenantOffline, TenantRebooting:
		return true
	}
	return false
}

// Tenant mirrors one row of the tenants table. Tenant identifiers are
// assigned by the backend and stable across the fleet.
type Tenant struct {
	ID        string       `json:"id" gorm:"primaryKey;size:64"`
	Location  string       `json:"location" gorm:"not null"`
	Status    TenantStatus `json:"status" gorm:"size:16;default:SYNCING"`
	Load      string       `json:"load" gorm:"size:16;default:0%"`
	Yield     float64      `json:"yield" gorm:"default:0"`
	Health    int          `json:"health" gorm:"default:100"`
	CreatedAt time.Time    `json:"created_at,omitempty" gorm:"column:created_at"`
}

func (Tenant) TableName() string { return "tenants" }
