package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// ReservationStatus is the lifecycle state of a booking.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCheckedIn ReservationStatus = "checked-in"
	StatusCancelled ReservationStatus = "cancelled"
	StatusVoided    ReservationStatus = "voided"
)

// ValidStatus reports whether s is a recognized reservation status.
func ValidStatus(s ReservationStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCancelled, StatusVoided:
		return true
	}
	return false
}

// TableZone identifies a sector of the club floor.
type TableZone string

const (
	ZoneMainFloor TableZone = "Main Floor"
	ZoneVIPLounge TableZone = "VIP Lounge"
	ZoneBalcony   TableZone = "Balcony"
	ZoneStanding  TableZone = "Standing"
)

// ValidZone reports whether z is a recognized table zone.
func ValidZone(z TableZone) bool {
	switch z {
	case ZoneMainFloor, ZoneVIPLounge, ZoneBalcony, ZoneStanding:
		return true
	}
	return false
}

// Reservation mirrors one row of the reservations table. JSON tags use the
// client-facing field names; gorm tags carry the storage column names.
type Reservation struct {
	ID          string            `json:"id" gorm:"primaryKey;size:64"`
	Name        string            `json:"name" gorm:"not null"`
	Email       string            `json:"email" gorm:"not null"`
	Phone       string            `json:"phone"`
	Date        string            `json:"date" gorm:"column:booking_date;size:32"`
	Time        string            `json:"time" gorm:"column:booking_time;size:32"`
	PartySize   int               `json:"partySize" gorm:"column:party_size"`
	Table       string            `json:"table" gorm:"column:table_id;size:16"`
	Zone        TableZone         `json:"zone" gorm:"size:32"`
	Status      ReservationStatus `json:"status" gorm:"size:16;default:pending"`
	TotalAmount float64           `json:"totalAmount" gorm:"column:total_amount"`
	VIP         bool              `json:"vip" gorm:"column:is_vip;default:false"`
	CreatedAt   time.Time         `json:"createdAt" gorm:"column:created_at"`
}

// TableName keeps the storage name independent of the struct name.
func (Reservation) TableName() string { return "reservations" }

// TempIDPrefix marks a reservation identifier assigned locally before the
// backend has confirmed the row. Temporary identifiers only exist so the
// client has something to key on; the canonical identifier replaces them.
const TempIDPrefix = "PULSE-"

// NewTempID returns a fresh temporary reservation identifier.
func NewTempID() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return TempIDPrefix + strings.ToUpper(hex.EncodeToString(buf))
}

// IsTempID reports whether id is a locally assigned temporary identifier.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}
