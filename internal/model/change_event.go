package model

import "time"

// ChangeEvent is one entry of the change-event outbox. Every row mutation
// the backend client performs appends one of these in the same transaction;
// the feed poller replays them in id order to keep mirrors convergent.
type ChangeEvent struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Table     string    `gorm:"column:table_name;size:64;not null;index"`
	EventType string    `gorm:"size:16;not null"`
	NewRow    []byte    `gorm:"column:new_row"`
	OldRow    []byte    `gorm:"column:old_row"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ChangeEvent) TableName() string { return "change_events" }
