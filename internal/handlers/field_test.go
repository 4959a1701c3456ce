package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldtrack-backend/internal/middleware"
	"fieldtrack-backend/internal/models"
	"fieldtrack-backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory session.Store that enforces the same
// one-active-session-per-day rule as the Postgres schema.
type memStore struct {
	sessions []*models.WorkSession
	counts   session.ActivityCounts
}

func (s *memStore) Create(_ context.Context, ws *models.WorkSession) error {
	for _, existing := range s.sessions {
		if existing.UserID == ws.UserID && existing.Date == ws.Date && existing.IsActive {
			return session.ErrDayAlreadyStarted
		}
	}
	cp := *ws
	s.sessions = append(s.sessions, &cp)
	return nil
}

func (s *memStore) Close(_ context.Context, ws *models.WorkSession) error {
	for _, existing := range s.sessions {
		if existing.ID == ws.ID && existing.IsActive {
			*existing = *ws
			return nil
		}
	}
	return session.ErrNoActiveDay
}

func (s *memStore) ActiveByUserAndDate(_ context.Context, userID, date string) (*models.WorkSession, error) {
	for _, existing := range s.sessions {
		if existing.UserID == userID && existing.Date == date && existing.IsActive {
			cp := *existing
			return &cp, nil
		}
	}
	return nil, session.ErrNotFound
}

func (s *memStore) LatestByUserAndDate(_ context.Context, userID, date string) (*models.WorkSession, error) {
	var latest *models.WorkSession
	for _, existing := range s.sessions {
		if existing.UserID == userID && existing.Date == date {
			latest = existing
		}
	}
	if latest == nil {
		return nil, session.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *memStore) CountActivity(_ context.Context, _ string, _ int64) (session.ActivityCounts, error) {
	return s.counts, nil
}

func authedRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	claims := middleware.UserClaims{UserID: "officer-1", Email: "officer@fieldtrack.in", Role: "field"}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestStartDay(t *testing.T) {
	store := &memStore{}
	m := session.NewManager(store)

	w := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPost, "/api/field/start-day", map[string]float64{"lat": 12.9716, "lng": 77.5946})
	StartDay(m, nil)(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, true, envelope["success"])

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["isActive"])
	assert.Equal(t, 12.9716, data["startLocation"].(map[string]interface{})["lat"])
}

func TestStartDay_Conflict(t *testing.T) {
	store := &memStore{}
	m := session.NewManager(store)
	body := map[string]float64{"lat": 12.9716, "lng": 77.5946}

	w := httptest.NewRecorder()
	StartDay(m, nil)(w, authedRequest(t, http.MethodPost, "/api/field/start-day", body))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	StartDay(m, nil)(w, authedRequest(t, http.MethodPost, "/api/field/start-day", body))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, store.sessions, 1)
}

func TestStartDay_InvalidCoordinates(t *testing.T) {
	store := &memStore{}
	m := session.NewManager(store)

	w := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPost, "/api/field/start-day", map[string]float64{"lat": 91, "lng": 0})
	StartDay(m, nil)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.sessions)
}

func TestStartDay_InvalidBody(t *testing.T) {
	store := &memStore{}
	m := session.NewManager(store)

	req := httptest.NewRequest(http.MethodPost, "/api/field/start-day", bytes.NewBufferString("{not json"))
	claims := middleware.UserClaims{UserID: "officer-1", Role: "field"}
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))

	w := httptest.NewRecorder()
	StartDay(m, nil)(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartDay_Unauthorized(t *testing.T) {
	m := session.NewManager(&memStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/field/start-day", bytes.NewBufferString("{}"))
	StartDay(m, nil)(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEndDay(t *testing.T) {
	store := &memStore{}
	m := session.NewManager(store)

	w := httptest.NewRecorder()
	StartDay(m, nil)(w, authedRequest(t, http.MethodPost, "/api/field/start-day",
		map[string]float64{"lat": 12.9716, "lng": 77.5946}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	EndDay(nil, m, nil, nil)(w, authedRequest(t, http.MethodPost, "/api/field/end-day",
		map[string]float64{"lat": 12.9352, "lng": 77.6245}))
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, false, data["isActive"])
	assert.InDelta(t, 4.6, data["totalDistance"].(float64), 0.2)
	assert.NotNil(t, data["endTime"])
}

func TestEndDay_NoActiveDay(t *testing.T) {
	m := session.NewManager(&memStore{})

	w := httptest.NewRecorder()
	EndDay(nil, m, nil, nil)(w, authedRequest(t, http.MethodPost, "/api/field/end-day",
		map[string]float64{"lat": 12.9352, "lng": 77.6245}))

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestEndDay_Twice(t *testing.T) {
	store := &memStore{}
	m := session.NewManager(store)

	w := httptest.NewRecorder()
	StartDay(m, nil)(w, authedRequest(t, http.MethodPost, "/api/field/start-day",
		map[string]float64{"lat": 12.9716, "lng": 77.5946}))
	require.Equal(t, http.StatusCreated, w.Code)

	end := map[string]float64{"lat": 12.9352, "lng": 77.6245}
	w = httptest.NewRecorder()
	EndDay(nil, m, nil, nil)(w, authedRequest(t, http.MethodPost, "/api/field/end-day", end))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	EndDay(nil, m, nil, nil)(w, authedRequest(t, http.MethodPost, "/api/field/end-day", end))
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestToday_NullBeforeStart(t *testing.T) {
	m := session.NewManager(&memStore{})

	w := httptest.NewRecorder()
	Today(m)(w, authedRequest(t, http.MethodGet, "/api/field/today", nil))

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, true, envelope["success"])
	assert.Nil(t, envelope["data"])
}

func TestToday_AfterStart(t *testing.T) {
	store := &memStore{}
	m := session.NewManager(store)

	w := httptest.NewRecorder()
	StartDay(m, nil)(w, authedRequest(t, http.MethodPost, "/api/field/start-day",
		map[string]float64{"lat": 12.9716, "lng": 77.5946}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	Today(m)(w, authedRequest(t, http.MethodGet, "/api/field/today", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["isActive"])
}

func TestSummary(t *testing.T) {
	store := &memStore{counts: session.ActivityCounts{Meetings: 3, Samples: 2, Sales: 1}}
	m := session.NewManager(store)

	w := httptest.NewRecorder()
	StartDay(m, nil)(w, authedRequest(t, http.MethodPost, "/api/field/start-day",
		map[string]float64{"lat": 12.9716, "lng": 77.5946}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	Summary(m)(w, authedRequest(t, http.MethodGet, "/api/field/summary", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["meetingsCount"])
	assert.Equal(t, float64(2), data["samplesCount"])
	assert.Equal(t, float64(1), data["salesCount"])
	assert.Equal(t, true, data["dayStarted"])
	assert.Equal(t, false, data["dayEnded"])
}
