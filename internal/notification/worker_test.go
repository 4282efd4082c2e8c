package notification

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// mockSender records sent notifications and returns a canned status code.
type mockSender struct {
	sent       []string
	statusCode int
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	m.sent = append(m.sent, sub.Endpoint)
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func subscriptionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}).
		AddRow("https://push.example/one", "key1", "auth1").
		AddRow("https://push.example/two", "key2", "auth2")
}

func TestBroadcastSendsToAllSubscribers(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	sender := &mockSender{statusCode: http.StatusCreated}
	wp.sender = sender

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions"`)).
		WillReturnRows(subscriptionRows())

	wp.broadcast(context.Background(), Alert{Percent: 91, CheckedIn: 182})

	assert.Equal(t, []string{"https://push.example/one", "https://push.example/two"}, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastPrunesExpiredSubscriptions(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	wp.sender = &mockSender{statusCode: http.StatusGone}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}).
			AddRow("https://push.example/dead", "key1", "auth1"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "push_subscriptions"`)).
		WithArgs("https://push.example/dead").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	wp.broadcast(context.Background(), Alert{Percent: 95, CheckedIn: 190})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastNoSubscribers(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	sender := &mockSender{statusCode: http.StatusCreated}
	wp.sender = sender

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}))

	wp.broadcast(context.Background(), Alert{Percent: 91, CheckedIn: 182})
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchDropsWhenQueueFull(t *testing.T) {
	gormDB, _ := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	// No workers running, so the single-slot queue fills after one alert.
	wp.Dispatch(Alert{Percent: 90})
	wp.Dispatch(Alert{Percent: 91})

	assert.Len(t, wp.Jobs(), 1)
	got := <-wp.Jobs()
	assert.Equal(t, 90, got.Percent)
}
