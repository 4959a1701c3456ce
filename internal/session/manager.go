package session

import (
	"context"
	"errors"
	"time"

	"fieldtrack-backend/internal/geo"
	"fieldtrack-backend/internal/models"

	"github.com/google/uuid"
)

// DateOf normalizes a moment to its local calendar day.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// Manager owns the per-officer workday state machine:
// no session -> active (start day) -> closed (end day, terminal for the day).
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// StartDay opens today's session at the given GPS fix. Returns
// ErrDayAlreadyStarted if the officer already has an active session today.
func (m *Manager) StartDay(ctx context.Context, userID string, loc geo.Point) (*models.WorkSession, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	now := m.now()
	s := &models.WorkSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      DateOf(now),
		StartTime: now.Unix(),
		StartLat:  loc.Lat,
		StartLng:  loc.Lng,
		IsActive:  true,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	// The store's uniqueness invariant decides the winner between
	// concurrent starts; no pre-check here.
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// EndDay closes today's active session at the given GPS fix, computing the
// straight-line distance from the stored start location. The distance is
// written exactly once; the session never changes again afterwards.
func (m *Manager) EndDay(ctx context.Context, userID string, loc geo.Point) (*models.WorkSession, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	s, err := m.store.ActiveByUserAndDate(ctx, userID, DateOf(m.now()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoActiveDay
		}
		return nil, err
	}

	now := m.now().Unix()
	endLat, endLng := loc.Lat, loc.Lng
	s.EndTime = &now
	s.EndLat = &endLat
	s.EndLng = &endLng
	s.TotalDistance = geo.Distance(s.StartLocation(), loc)
	s.IsActive = false
	s.UpdatedAt = now

	if err := m.store.Close(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Today returns today's most recent session, or nil when the officer has not
// started yet. The not-yet-started state is normal, not an error.
func (m *Manager) Today(ctx context.Context, userID string) (*models.WorkSession, error) {
	s, err := m.store.LatestByUserAndDate(ctx, userID, DateOf(m.now()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Summary derives the officer's day status and activity counts.
func (m *Manager) Summary(ctx context.Context, userID string) (*models.DaySummary, error) {
	now := m.now()
	y, mo, d := now.Date()
	dayStart := time.Date(y, mo, d, 0, 0, 0, 0, now.Location()).Unix()

	counts, err := m.store.CountActivity(ctx, userID, dayStart)
	if err != nil {
		return nil, err
	}

	summary := &models.DaySummary{
		MeetingsCount: counts.Meetings,
		SamplesCount:  counts.Samples,
		SalesCount:    counts.Sales,
	}

	date := DateOf(now)
	active, err := m.store.ActiveByUserAndDate(ctx, userID, date)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	summary.DayStarted = active != nil

	latest, err := m.store.LatestByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return summary, nil
		}
		return nil, err
	}

	// The latest-created session drives the ended state, so a closed morning
	// session does not mark the day ended while a later one is active.
	if !latest.IsActive && active == nil {
		summary.DayEnded = true
		summary.LastEndedTime = latest.EndTime
	}
	return summary, nil
}
