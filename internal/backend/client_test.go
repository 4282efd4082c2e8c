package backend

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestSelectAll(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reservations" ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow("r1", "Ava", now).
			AddRow("r2", "Ben", now.Add(-time.Hour)))

	rows, err := client.SelectAll(context.Background(), "reservations", SelectOptions{Order: "created_at DESC"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "r1", rows[0]["id"])
	assert.Equal(t, "Ben", rows[1]["name"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectAllUnknownTable(t *testing.T) {
	gormDB, _ := newTestDB(t)
	client := NewGormClient(gormDB)

	_, err := client.SelectAll(context.Background(), "secrets", SelectOptions{})
	assert.Error(t, err)
}

func TestSelectAllSchemaMissing(t *testing.T) {
	testCases := []struct {
		name   string
		dbErr  error
		schema bool
	}{
		{
			name:   "postgres missing relation",
			dbErr:  errors.New(`ERROR: relation "reservations" does not exist (SQLSTATE 42P01)`),
			schema: true,
		},
		{
			name:   "sqlite missing table",
			dbErr:  errors.New("no such table: reservations"),
			schema: true,
		},
		{
			name:   "unrelated failure",
			dbErr:  errors.New("connection refused"),
			schema: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			client := NewGormClient(gormDB)

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reservations"`)).
				WillReturnError(tc.dbErr)

			_, err := client.SelectAll(context.Background(), "reservations", SelectOptions{})
			require.Error(t, err)
			if tc.schema {
				assert.ErrorIs(t, err, ErrSchemaMissing)
			} else {
				assert.NotErrorIs(t, err, ErrSchemaMissing)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInsertOneAssignsIDAndWritesOutbox(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "audit_logs"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "change_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	saved, err := client.InsertOne(context.Background(), "audit_logs", Row{
		"action":  "CORE_AUTH_UPLINK",
		"user":    "admin",
		"details": "",
	})
	require.NoError(t, err)

	// The canonical copy carries a backend-assigned id and timestamp.
	assert.NotEmpty(t, saved["id"])
	assert.NotNil(t, saved["timestamp"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOneFailureWritesNothing(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "reservations"`)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	_, err := client.InsertOne(context.Background(), "reservations", Row{"name": "Ava"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByIDMergesRowForOutbox(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reservations" WHERE id = $1`)).
		WithArgs("r1", Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).
			AddRow("r1", "Ava", "pending"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "reservations" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "change_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := client.UpdateByID(context.Background(), "reservations", "r1", Row{"status": "confirmed"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByIDAbsentRowIsNoOp(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reservations" WHERE id = $1`)).
		WithArgs("ghost", Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := client.UpdateByID(context.Background(), "reservations", "ghost", Row{"status": "confirmed"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByIDEmptyPatchSkipsBackend(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	err := client.UpdateByID(context.Background(), "reservations", "r1", Row{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDEmitsDeleteEvent(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tenants" WHERE id = $1`)).
		WithArgs("t1", Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "location"}).AddRow("t1", "Berlin"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tenants WHERE id = $1`)).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "change_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := client.DeleteByID(context.Background(), "tenants", "t1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDAbsentRowIsNoOp(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tenants" WHERE id = $1`)).
		WithArgs("ghost", Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := client.DeleteByID(context.Background(), "tenants", "ghost")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllExceptSparesSentinel(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	sentinel := "00000000-0000-0000-0000-000000000000"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "audit_logs" WHERE id <> $1`)).
		WithArgs(sentinel).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1").AddRow("a2"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM audit_logs WHERE id <> $1`)).
		WithArgs(sentinel).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "change_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "change_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	err := client.DeleteAllExcept(context.Background(), "audit_logs", sentinel)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllExceptEmptyTable(t *testing.T) {
	gormDB, mock := newTestDB(t)
	client := NewGormClient(gormDB)

	sentinel := "00000000-0000-0000-0000-000000000000"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "audit_logs" WHERE id <> $1`)).
		WithArgs(sentinel).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := client.DeleteAllExcept(context.Background(), "audit_logs", sentinel)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
