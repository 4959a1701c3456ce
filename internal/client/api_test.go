package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldtrack-backend/internal/geo"
	"fieldtrack-backend/internal/offline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_Online(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "")
	assert.True(t, api.Online(context.Background()))

	srv.Close()
	assert.False(t, api.Online(context.Background()))
}

func TestAPI_StartDaySendsTokenAndBody(t *testing.T) {
	var gotAuth string
	var gotBody map[string]float64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/field/start-day", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id":            "ws-1",
				"isActive":      true,
				"startLocation": map[string]float64{"lat": gotBody["lat"], "lng": gotBody["lng"]},
			},
		})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "test-token")
	ws, err := api.StartDay(context.Background(), geo.Point{Lat: 12.9716, Lng: 77.5946})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, 12.9716, gotBody["lat"])
	assert.Equal(t, "ws-1", ws.ID)
	assert.True(t, ws.IsActive)
}

func TestAPI_ErrorResponsesSurfaceMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Day already started",
		})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "test-token")
	_, err := api.StartDay(context.Background(), geo.Point{Lat: 1, Lng: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Day already started")
}

func TestAPI_TodayNilWhenNotStarted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": nil})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "test-token")
	ws, err := api.Today(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ws)
}

func TestAPI_DeliverRoutesByKind(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "test-token")
	ctx := context.Background()

	actions := []offline.Action{
		{ID: 1, Kind: offline.KindStartDay, Payload: json.RawMessage(`{"lat":1,"lng":2}`)},
		{ID: 2, Kind: offline.KindAddMeeting, Payload: json.RawMessage(`{"type":"group"}`)},
		{ID: 3, Kind: offline.KindAddSale, Payload: json.RawMessage(`{"product":"seeds"}`)},
		{ID: 4, Kind: offline.KindEndDay, Payload: json.RawMessage(`{"lat":3,"lng":4}`)},
	}
	for _, action := range actions {
		require.NoError(t, api.Deliver(ctx, action))
	}

	assert.Equal(t, []string{
		"/api/field/start-day",
		"/api/field/meeting",
		"/api/field/sale",
		"/api/field/end-day",
	}, paths)
}

func TestAPI_DeliverUnknownKind(t *testing.T) {
	api := NewAPI("http://localhost:0", "")
	err := api.Deliver(context.Background(), offline.Action{Kind: "bogus"})
	assert.Error(t, err)
}
