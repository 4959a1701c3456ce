package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldtrack-backend/internal/client"
	"fieldtrack-backend/internal/offline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, serverURL string) *App {
	t.Helper()

	queue, err := offline.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { queue.Close() })

	return &App{
		Config: &client.Config{ServerURL: serverURL},
		Queue:  queue,
		API:    client.NewAPI(serverURL, "test-token"),
	}
}

func TestSubmit_OfflineQueuesAction(t *testing.T) {
	// A closed server means Online() is false.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	app := newTestApp(t, srv.URL)
	ctx := context.Background()

	directCalled := false
	err := app.submit(ctx, offline.KindStartDay, offline.DayPayload{Lat: 1, Lng: 2},
		func(context.Context) error {
			directCalled = true
			return nil
		})
	require.NoError(t, err)
	assert.False(t, directCalled)

	pending, err := app.Queue.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, offline.KindStartDay, pending[0].Kind)
}

func TestSubmit_OnlineCallsDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	app := newTestApp(t, srv.URL)
	ctx := context.Background()

	directCalled := false
	err := app.submit(ctx, offline.KindAddSample, offline.SamplePayload{Product: "seeds"},
		func(context.Context) error {
			directCalled = true
			return nil
		})
	require.NoError(t, err)
	assert.True(t, directCalled)

	n, err := app.Queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSubmit_OnlineFlushesQueueFirst(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			paths = append(paths, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	app := newTestApp(t, srv.URL)
	ctx := context.Background()

	// Recorded earlier while offline.
	_, err := app.Queue.Enqueue(ctx, offline.KindStartDay, offline.DayPayload{Lat: 1, Lng: 2})
	require.NoError(t, err)

	err = app.submit(ctx, offline.KindAddMeeting, offline.MeetingPayload{Type: "group"},
		func(ctx context.Context) error {
			return app.API.AddMeeting(ctx, offline.MeetingPayload{Type: "group"})
		})
	require.NoError(t, err)

	// The queued start-day reaches the server before the new meeting.
	assert.Equal(t, []string{"/api/field/start-day", "/api/field/meeting"}, paths)

	n, err := app.Queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSubmit_FailedFlushQueuesNewAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "rejected"})
	}))
	defer srv.Close()

	app := newTestApp(t, srv.URL)
	ctx := context.Background()

	_, err := app.Queue.Enqueue(ctx, offline.KindStartDay, offline.DayPayload{Lat: 1, Lng: 2})
	require.NoError(t, err)

	directCalled := false
	err = app.submit(ctx, offline.KindAddSale, offline.SalePayload{Product: "seeds"},
		func(context.Context) error {
			directCalled = true
			return nil
		})
	require.NoError(t, err)
	assert.False(t, directCalled, "new action must not jump ahead of stuck queue")

	pending, err := app.Queue.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, offline.KindStartDay, pending[0].Kind)
	assert.Equal(t, offline.KindAddSale, pending[1].Kind)
}
