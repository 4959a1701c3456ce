package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrDrainInProgress is returned when Drain is called while another drain
// is still running.
var ErrDrainInProgress = errors.New("drain already in progress")

// Transport delivers a queued action to the server.
type Transport interface {
	// Deliver sends one action. A nil return confirms the server accepted
	// it and the action can be removed from the queue.
	Deliver(ctx context.Context, action Action) error

	// Online reports whether the server is currently reachable.
	Online(ctx context.Context) bool
}

// Queue is a durable FIFO of actions recorded while offline. Actions are
// kept in a local SQLite file so they survive restarts, and are replayed
// in enqueue order when connectivity returns.
type Queue struct {
	db      *sql.DB
	drainMu sync.Mutex
}

// Open opens (or creates) the queue database at the given path.
// If path is ":memory:", uses an in-memory database.
func Open(path string) (*Queue, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating queue directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening queue database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// AUTOINCREMENT keeps IDs strictly increasing even after deletes, so
	// replay order always matches enqueue order.
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pending_actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		enqueued_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating queue table: %w", err)
	}

	return &Queue{db: db}, nil
}

// Close closes the underlying database.
func (q *Queue) Close() error {
	return q.db.Close()
}

// Enqueue records an action and returns it with its assigned ID.
func (q *Queue) Enqueue(ctx context.Context, kind Kind, payload interface{}) (Action, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Action{}, fmt.Errorf("marshaling payload: %w", err)
	}

	action := Action{
		Kind:       kind,
		Payload:    data,
		EnqueuedAt: time.Now().Unix(),
	}

	result, err := q.db.ExecContext(ctx,
		`INSERT INTO pending_actions (kind, payload, enqueued_at) VALUES (?, ?, ?)`,
		string(kind), string(data), action.EnqueuedAt)
	if err != nil {
		return Action{}, fmt.Errorf("enqueuing action: %w", err)
	}

	action.ID, err = result.LastInsertId()
	if err != nil {
		return Action{}, fmt.Errorf("enqueuing action: %w", err)
	}
	return action, nil
}

// Pending returns all queued actions in enqueue order.
func (q *Queue) Pending(ctx context.Context) ([]Action, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, kind, payload, enqueued_at FROM pending_actions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing pending actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		var kind, payload string
		if err := rows.Scan(&a.ID, &kind, &payload, &a.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("scanning pending action: %w", err)
		}
		a.Kind = Kind(kind)
		a.Payload = json.RawMessage(payload)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing pending actions: %w", err)
	}
	return actions, nil
}

// Len returns the number of queued actions.
func (q *Queue) Len(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pending actions: %w", err)
	}
	return n, nil
}

func (q *Queue) remove(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing action %d: %w", id, err)
	}
	return nil
}

// Drain replays pending actions through the transport in enqueue order.
// An action is removed only after the transport confirms delivery; the
// first failure stops the drain so later actions never jump the queue.
// Returns the number of actions delivered.
func (q *Queue) Drain(ctx context.Context, transport Transport) (int, error) {
	if !q.drainMu.TryLock() {
		return 0, ErrDrainInProgress
	}
	defer q.drainMu.Unlock()

	actions, err := q.Pending(ctx)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, action := range actions {
		if err := transport.Deliver(ctx, action); err != nil {
			log.Printf("⚠️ Sync stopped at action %d (%s): %v", action.ID, action.Kind, err)
			return delivered, fmt.Errorf("delivering action %d (%s): %w", action.ID, action.Kind, err)
		}
		if err := q.remove(ctx, action.ID); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
