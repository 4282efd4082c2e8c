package model

import "time"

// StaffStatus is the duty state of an operator.
type StaffStatus string

const (
	StaffActive   StaffStatus = "ACTIVE"
	StaffBreak    StaffStatus = "BREAK"
	StaffIncident StaffStatus = "INCIDENT"
)

// ValidStaffStatus reports whether s is a recognized duty state.
func ValidStaffStatus(s StaffStatus) bool {
	switch s {
	case StaffActive, StaffBreak, StaffIncident:
		return true
	}
	return false
}

// StaffMember mirrors one row of the staff table.
type StaffMember struct {
	ID        string      `json:"id" gorm:"primaryKey;size:64"`
	Name      string      `json:"name" gorm:"not null"`
	Role      string      `json:"role" gorm:"not null"`
	Status    StaffStatus `json:"status" gorm:"size:16;default:ACTIVE"`
	Sector    string      `json:"sector"`
	CreatedAt time.Time   `json:"created_at,omitempty" gorm:"column:created_at"`
}

func (StaffMember) TableName() string { return "staff" }
