package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pulse-backend/internal/model"
)

// ErrSchemaMissing marks a query that failed because an expected table does
// not exist yet. Callers surface it as a setup prompt instead of a fault.
var ErrSchemaMissing = errors.New("backend: required table does not exist")

// Row is one table row keyed by storage column name.
type Row map[string]any

// SelectOptions narrows a full-table read.
type SelectOptions struct {
	Order string
	Limit int
}

// Client is the data contract of the opaque row store: per-table CRUD plus a
// bulk clear. Implementations also feed the change-event outbox so mirrors
// elsewhere converge.
type Client interface {
	SelectAll(ctx context.Context, table string, opts SelectOptions) ([]Row, error)
	InsertOne(ctx context.Context, table string, row Row) (Row, error)
	UpdateByID(ctx context.Context, table, id string, partial Row) error
	DeleteByID(ctx context.Context, table, id string) error
	DeleteAllExcept(ctx context.Context, table, sentinelID string) error
}

// tableSpec names the identifier and creation-time columns per table.
type tableSpec struct {
	idColumn   string
	timeColumn string
}

var tables = map[string]tableSpec{
	"reservations":  {idColumn: "id", timeColumn: "created_at"},
	"tenants":       {idColumn: "id", timeColumn: "created_at"},
	"staff":         {idColumn: "id", timeColumn: "created_at"},
	"audit_logs":    {idColumn: "id", timeColumn: "timestamp"},
	"change_events": {idColumn: "id", timeColumn: "created_at"},
}

// gormClient implements Client using GORM.
type gormClient struct {
	db *gorm.DB
}

// NewGormClient creates a new GORM-backed row store client.
func NewGormClient(db *gorm.DB) Client {
	return &gormClient{db: db}
}

// SelectAll fetches every row of a table, optionally ordered and limited.
func (c *gormClient) SelectAll(ctx context.Context, table string, opts SelectOptions) ([]Row, error) {
	if _, ok := tables[table]; !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	q := c.db.WithContext(ctx).Table(table)
	if opts.Order != "" {
		q = q.Order(opts.Order)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var raw []map[string]any
	if err := q.Find(&raw).Error; err != nil {
		return nil, translateErr(table, err)
	}

	rows := make([]Row, len(raw))
	for i, m := range raw {
		rows[i] = Row(m)
	}
	return rows, nil
}

// InsertOne persists a single row and returns the canonical persisted copy,
// with the backend-assigned identifier and creation timestamp filled in.
func (c *gormClient) InsertOne(ctx context.Context, table string, row Row) (Row, error) {
	spec, ok := tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	persisted := make(Row, len(row)+2)
	for k, v := range row {
		persisted[k] = v
	}
	if _, ok := persisted[spec.idColumn]; !ok {
		persisted[spec.idColumn] = uuid.NewString()
	}
	if _, ok := persisted[spec.timeColumn]; !ok {
		persisted[spec.timeColumn] = time.Now().UTC()
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).Create(map[string]any(persisted)).Error; err != nil {
			return err
		}
		return appendChange(tx, table, "insert", persisted, nil)
	})
	if err != nil {
		return nil, translateErr(table, err)
	}
	return persisted, nil
}

// UpdateByID applies a partial update to the row matching id. The recorded
// change event carries the merged row, so subscribers see complete state.
func (c *gormClient) UpdateByID(ctx context.Context, table, id string, partial Row) error {
	spec, ok := tables[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	if len(partial) == 0 {
		return nil
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := takeRow(tx, table, spec.idColumn, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // nothing to update
			}
			return err
		}

		if err := tx.Table(table).
			Where(spec.idColumn+" = ?", id).
			Updates(map[string]any(partial)).Error; err != nil {
			return err
		}

		merged := make(Row, len(old)+len(partial))
		for k, v := range old {
			merged[k] = v
		}
		for k, v := range partial {
			merged[k] = v
		}
		return appendChange(tx, table, "update", merged, old)
	})
	return translateErr(table, err)
}

// DeleteByID removes the row matching id. Deleting an absent row is a no-op.
func (c *gormClient) DeleteByID(ctx context.Context, table, id string) error {
	spec, ok := tables[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := takeRow(tx, table, spec.idColumn, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Exec("DELETE FROM "+table+" WHERE "+spec.idColumn+" = ?", id).Error; err != nil {
			return err
		}
		return appendChange(tx, table, "delete", nil, old)
	})
	return translateErr(table, err)
}

// DeleteAllExcept clears a table apart from the sentinel row, emitting one
// delete event per removed row.
func (c *gormClient) DeleteAllExcept(ctx context.Context, table, sentinelID string) error {
	spec, ok := tables[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Table(table).
			Where(spec.idColumn+" <> ?", sentinelID).
			Pluck(spec.idColumn, &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Exec("DELETE FROM "+table+" WHERE "+spec.idColumn+" <> ?", sentinelID).Error; err != nil {
			return err
		}
		for _, id := range ids {
			if err := appendChange(tx, table, "delete", nil, Row{spec.idColumn: id}); err != nil {
				return err
			}
		}
		return nil
	})
	return translateErr(table, err)
}

func takeRow(tx *gorm.DB, table, idColumn, id string) (Row, error) {
	var raw map[string]any
	if err := tx.Table(table).Where(idColumn+" = ?", id).Take(&raw).Error; err != nil {
		return nil, err
	}
	return Row(raw), nil
}

// appendChange records a mutation in the change-event outbox inside the
// caller's transaction.
func appendChange(tx *gorm.DB, table, eventType string, newRow, oldRow Row) error {
	ev := model.ChangeEvent{
		Table:     table,
		EventType: eventType,
		CreatedAt: time.Now().UTC(),
	}
	if newRow != nil {
		b, err := json.Marshal(newRow)
		if err != nil {
			return fmt.Errorf("marshal new row: %w", err)
		}
		ev.NewRow = b
	}
	if oldRow != nil {
		b, err := json.Marshal(oldRow)
		if err != nil {
			return fmt.Errorf("marshal old row: %w", err)
		}
		ev.OldRow = b
	}
	return tx.Create(&ev).Error
}

// translateErr maps driver errors for a missing table onto ErrSchemaMissing.
func translateErr(table string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	missing := strings.Contains(msg, "SQLSTATE 42P01") ||
		strings.Contains(msg, "no such table") ||
		(strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"))
	if missing {
		return fmt.Errorf("%w: %s (%v)", ErrSchemaMissing, table, err)
	}
	return err
}
