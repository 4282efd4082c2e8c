package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"pulse-backend/internal/backend"
	"pulse-backend/internal/model"
)

// EventType classifies a row-level change.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is one row-level change notification from the backend.
type Event struct {
	Table string
	Type  EventType
	New   backend.Row // populated for insert/update
	Old   backend.Row // populated for update/delete
}

// Handler consumes change events in arrival order.
type Handler func(Event)

// Poller tails the change-event outbox and dispatches decoded events to its
// handlers in arrival order.
type Poller struct {
	db       *gorm.DB
	interval time.Duration
	batch    int
	cursor   int64
	handlers []Handler
}

// NewPoller creates a feed poller starting after the newest existing event,
// so a fresh process does not replay history it already loaded via snapshot.
func NewPoller(db *gorm.DB, interval time.Duration, batch int) (*Poller, error) {
	var cursor int64
	err := db.Model(&model.ChangeEvent{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&cursor).Error
	if err != nil {
		return nil, fmt.Errorf("feed cursor init: %w", err)
	}
	return &Poller{
		db:       db,
		interval: interval,
		batch:    batch,
		cursor:   cursor,
	}, nil
}

// Subscribe registers a handler. Not safe to call after Run has started.
func (p *Poller) Subscribe(h Handler) {
	p.handlers = append(p.handlers, h)
}

// Run polls until the context is cancelled. Transient read errors are logged
// and the cursor is retained, so the next tick retries the same window.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Printf("feed poller started (interval %s, batch %d)", p.interval, p.batch)
	for {
		select {
		case <-ctx.Done():
			log.Println("feed poller stopped")
			return
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil {
				log.Printf("feed poll failed: %v", err)
			}
		}
	}
}

// Poll reads one batch of change events past the cursor and dispatches them.
func (p *Poller) Poll(ctx context.Context) error {
	var entries []model.ChangeEvent
	err := p.db.WithContext(ctx).
		Where("id > ?", p.cursor).
		Order("id ASC").
		Limit(p.batch).
		Find(&entries).Error
	if err != nil {
		return fmt.Errorf("read change events: %w", err)
	}

	for _, entry := range entries {
		ev, err := decodeEntry(entry)
		if err != nil {
			// A malformed outbox row is skipped, not retried forever.
			log.Printf("skipping malformed change event %d: %v", entry.ID, err)
			p.cursor = entry.ID
			continue
		}
		for _, h := range p.handlers {
			h(ev)
		}
		p.cursor = entry.ID
	}
	return nil
}

func decodeEntry(entry model.ChangeEvent) (Event, error) {
	ev := Event{Table: entry.Table}
	switch entry.EventType {
	case string(EventInsert), string(EventUpdate), string(EventDelete):
		ev.Type = EventType(entry.EventType)
	default:
		return Event{}, fmt.Errorf("unknown event type %q", entry.EventType)
	}

	if len(entry.NewRow) > 0 {
		var row backend.Row
		if err := json.Unmarshal(entry.NewRow, &row); err != nil {
			return Event{}, fmt.Errorf("decode new row: %w", err)
		}
		ev.New = row
	}
	if len(entry.OldRow) > 0 {
		var row backend.Row
		if err := json.Unmarshal(entry.OldRow, &row); err != nil {
			return Event{}, fmt.Errorf("decode old row: %w", err)
		}
		ev.Old = row
	}
	return ev, nil
}
