package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-backend/config"
	"pulse-backend/internal/auth"
	"pulse-backend/internal/backend"
	"pulse-backend/internal/model"
	"pulse-backend/internal/store"
)

// stubClient is a minimal backend.Client for handler tests.
type stubClient struct {
	rows      map[string][]backend.Row
	insertErr error
	nextID    int
}

func (s *stubClient) SelectAll(ctx context.Context, table string, opts backend.SelectOptions) ([]backend.Row, error) {
	return s.rows[table], nil
}

func (s *stubClient) InsertOne(ctx context.Context, table string, row backend.Row) (backend.Row, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	persisted := make(backend.Row, len(row)+2)
	for k, v := range row {
		persisted[k] = v
	}
	s.nextID++
	persisted["id"] = fmt.Sprintf("%s-%d", table, s.nextID)
	timeCol := "created_at"
	if table == "audit_logs" {
		timeCol = "timestamp"
	}
	if _, ok := persisted[timeCol]; !ok {
		persisted[timeCol] = time.Now().UTC()
	}
	return persisted, nil
}

func (s *stubClient) UpdateByID(ctx context.Context, table, id string, partial backend.Row) error {
	return nil
}

func (s *stubClient) DeleteByID(ctx context.Context, table, id string) error { return nil }

func (s *stubClient) DeleteAllExcept(ctx context.Context, table, sentinelID string) error {
	return nil
}

func testVenue() config.VenueConfig {
	return config.VenueConfig{
		Capacity:        200,
		AlertThreshold:  0.9,
		VIPMinimumSpend: 1200,
		StdMinimumSpend: 500,
		VIPTableCount:   10,
		MainTableCount:  20,
	}
}

func testRegistry() map[string]config.Credential {
	return map[string]config.Credential{
		"admin": {Username: "admin", Password: "admin"},
	}
}

func setupTestHandler(client backend.Client) (*Handler, *store.Store) {
	gin.SetMode(gin.TestMode)
	s := store.New(client)
	gate := auth.NewGate(testRegistry())
	h := NewHandler(s, gate, testVenue(), nil, &webpush.Options{VAPIDPublicKey: "test-key"}, nil, nil, nil)
	return h, s
}

func TestListReservationsWithFilter(t *testing.T) {
	client := &stubClient{rows: map[string][]backend.Row{
		"reservations": {
			{"id": "r1", "name": "Ava Stone", "email": "ava@gmail.com", "created_at": time.Now()},
			{"id": "r2", "name": "Ben Cole", "email": "ben@gmail.com", "created_at": time.Now()},
		},
	}}
	h, s := setupTestHandler(client)
	require.NoError(t, s.LoadAll(context.Background()))

	r := gin.New()
	r.GET("/api/reservations", h.ListReservations)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/reservations?q=ava", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []model.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestCreateReservationIssuesTicket(t *testing.T) {
	h, _ := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.POST("/api/reservations", h.CreateReservation)

	body := `{
		"date": "2026-08-28",
		"time": "11:00 PM",
		"partySize": 4,
		"zone": "VIP Lounge",
		"name": "Jane Doe",
		"email": "jane@gmail.com",
		"phone": "12345678"
	}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/reservations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp createReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, model.IsTempID(resp.Reservation.ID))
	assert.True(t, resp.Reservation.VIP)
	assert.Equal(t, 1200.0, resp.Reservation.TotalAmount)
	assert.True(t, strings.HasPrefix(resp.Ticket.Key, "SEC-"))
	assert.Contains(t, resp.Ticket.QR, "reserve.pulse-nightclub.com/verify")
}

func TestCreateReservationRejectsNonGmail(t *testing.T) {
	h, _ := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.POST("/api/reservations", h.CreateReservation)

	body := `{
		"date": "2026-08-28",
		"time": "11:00 PM",
		"partySize": 4,
		"zone": "Main Floor",
		"name": "Jane Doe",
		"email": "user@yahoo.com",
		"phone": "12345678"
	}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/reservations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateReservationMissingFields(t *testing.T) {
	h, _ := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.POST("/api/reservations", h.CreateReservation)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/reservations", strings.NewReader(`{"name":"Jane Doe"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetReservationStatusRejectsUnknown(t *testing.T) {
	h, _ := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.PUT("/api/reservations/:id/status", h.SetReservationStatus)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/reservations/r1/status", strings.NewReader(`{"status":"teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetTicketUnknownReservation(t *testing.T) {
	h, _ := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.GET("/api/reservations/:id/ticket", h.GetTicket)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/reservations/ghost/ticket", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginRecordsAuditAndCompletesPendingView(t *testing.T) {
	h, s := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.POST("/api/view", h.RequestView)
	r.POST("/api/auth/login", h.Login)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/view", strings.NewReader(`{"view":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":"admin"`)
	assert.Contains(t, w.Body.String(), `"view":"customer"`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"role":"admin","username":"admin","password":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"view":"admin"`)

	audit := s.Audit()
	require.Len(t, audit, 1)
	assert.Equal(t, "CORE_AUTH_UPLINK", audit[0].Action)
	assert.Equal(t, "admin", audit[0].User)
}

func TestLoginRejected(t *testing.T) {
	h, _ := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.POST("/api/auth/login", h.Login)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"role":"admin","username":"admin","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	h, _ := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.GET("/api/vapid_public_key", h.GetVAPIDPublicKey)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/vapid_public_key", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"test-key"}`, w.Body.String())
}

func TestGetStatusHealthy(t *testing.T) {
	h, _ := setupTestHandler(&stubClient{rows: map[string][]backend.Row{}})

	r := gin.New()
	r.GET("/api/status", h.GetStatus)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/status", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"degraded":false}`, w.Body.String())
}

func TestGetOccupancy(t *testing.T) {
	client := &stubClient{rows: map[string][]backend.Row{
		"reservations": {
			{"id": "r1", "status": "checked-in", "created_at": time.Now()},
			{"id": "r2", "status": "confirmed", "created_at": time.Now()},
		},
	}}
	h, s := setupTestHandler(client)
	require.NoError(t, s.LoadAll(context.Background()))

	r := gin.New()
	r.GET("/api/dashboard/occupancy", h.GetOccupancy)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard/occupancy", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var occ store.Occupancy
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &occ))
	assert.Equal(t, 1, occ.CheckedIn)
	assert.False(t, occ.Critical)
}
