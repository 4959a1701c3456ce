package offline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records delivered actions and fails on configured kinds.
type fakeTransport struct {
	delivered []Action
	failKinds map[Kind]bool
	online    bool
}

func (t *fakeTransport) Deliver(_ context.Context, action Action) error {
	if t.failKinds[action.Kind] {
		return errors.New("server rejected action")
	}
	t.delivered = append(t.delivered, action)
	return nil
}

func (t *fakeTransport) Online(_ context.Context) bool {
	return t.online
}

func openTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

func TestEnqueueAssignsIncreasingIDs(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	a, err := q.Enqueue(ctx, KindStartDay, DayPayload{Lat: 12.9716, Lng: 77.5946})
	require.NoError(t, err)
	b, err := q.Enqueue(ctx, KindAddMeeting, MeetingPayload{Type: "group"})
	require.NoError(t, err)
	c, err := q.Enqueue(ctx, KindEndDay, DayPayload{Lat: 12.9352, Lng: 77.6245})
	require.NoError(t, err)

	assert.Less(t, a.ID, b.ID)
	assert.Less(t, b.ID, c.ID)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPendingPreservesOrder(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, KindStartDay, DayPayload{Lat: 1, Lng: 2})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, KindAddSample, SamplePayload{Product: "seeds", Quantity: 5, ReceiverName: "Gita"})
	require.NoError(t, err)

	actions, err := q.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, KindStartDay, actions[0].Kind)
	assert.Equal(t, KindAddSample, actions[1].Kind)

	var payload SamplePayload
	require.NoError(t, json.Unmarshal(actions[1].Payload, &payload))
	assert.Equal(t, "seeds", payload.Product)
	assert.Equal(t, 5, payload.Quantity)
}

func TestDrainDeliversInOrder(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, KindStartDay, DayPayload{Lat: 1, Lng: 2})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, KindAddMeeting, MeetingPayload{Type: "one-on-one"})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, KindEndDay, DayPayload{Lat: 3, Lng: 4})
	require.NoError(t, err)

	transport := &fakeTransport{}
	delivered, err := q.Drain(ctx, transport)
	require.NoError(t, err)
	assert.Equal(t, 3, delivered)

	require.Len(t, transport.delivered, 3)
	assert.Equal(t, KindStartDay, transport.delivered[0].Kind)
	assert.Equal(t, KindAddMeeting, transport.delivered[1].Kind)
	assert.Equal(t, KindEndDay, transport.delivered[2].Kind)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDrainStopsAtFirstFailure(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, KindStartDay, DayPayload{Lat: 1, Lng: 2})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, KindAddMeeting, MeetingPayload{Type: "group"})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, KindAddSale, SalePayload{Product: "fertilizer", Quantity: 1, Amount: 450, Type: "B2C", BuyerName: "Arun"})
	require.NoError(t, err)

	transport := &fakeTransport{failKinds: map[Kind]bool{KindAddMeeting: true}}
	delivered, err := q.Drain(ctx, transport)
	require.Error(t, err)
	assert.Equal(t, 1, delivered)

	// The failed action and everything behind it stay queued, in order.
	remaining, err := q.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, KindAddMeeting, remaining[0].Kind)
	assert.Equal(t, KindAddSale, remaining[1].Kind)
}

func TestDrainRetryAfterFailure(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, KindAddMeeting, MeetingPayload{Type: "group"})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, KindAddSale, SalePayload{Product: "seeds", Quantity: 2, Amount: 120, Type: "B2B", BuyerName: "Stockist"})
	require.NoError(t, err)

	failing := &fakeTransport{failKinds: map[Kind]bool{KindAddMeeting: true}}
	_, err = q.Drain(ctx, failing)
	require.Error(t, err)

	working := &fakeTransport{}
	delivered, err := q.Drain(ctx, working)
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
	assert.Equal(t, KindAddMeeting, working.delivered[0].Kind)
}

// blockingTransport parks the drain goroutine until released.
type blockingTransport struct {
	started chan struct{}
	release chan struct{}
}

func (t *blockingTransport) Deliver(_ context.Context, _ Action) error {
	close(t.started)
	<-t.release
	return nil
}

func (t *blockingTransport) Online(_ context.Context) bool { return true }

func TestDrainRejectsConcurrentCalls(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, KindStartDay, DayPayload{Lat: 1, Lng: 2})
	require.NoError(t, err)

	blocking := &blockingTransport{started: make(chan struct{}), release: make(chan struct{})}
	done := make(chan error, 1)
	go func() {
		_, err := q.Drain(ctx, blocking)
		done <- err
	}()

	<-blocking.started
	_, err = q.Drain(ctx, &fakeTransport{})
	assert.ErrorIs(t, err, ErrDrainInProgress)

	close(blocking.release)
	require.NoError(t, <-done)
}

func TestQueueSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")
	ctx := context.Background()

	q, err := Open(path)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, KindAddSample, SamplePayload{Product: "pesticide", Quantity: 3, ReceiverName: "Mohan"})
	require.NoError(t, err)
	require.NoError(t, q.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	actions, err := reopened.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, KindAddSample, actions[0].Kind)
}
