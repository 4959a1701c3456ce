package models

import "fieldtrack-backend/internal/geo"

// WorkSession is one field officer's workday record: started with a GPS fix,
// closed with a second fix and the straight-line distance between the two.
type WorkSession struct {
	ID            string   `db:"id"`
	UserID        string   `db:"user_id"`
	Date          string   `db:"date"` // local calendar day, YYYY-MM-DD
	StartTime     int64    `db:"start_time"`
	StartLat      float64  `db:"start_lat"`
	StartLng      float64  `db:"start_lng"`
	EndTime       *int64   `db:"end_time"`
	EndLat        *float64 `db:"end_lat"`
	EndLng        *float64 `db:"end_lng"`
	TotalDistance float64  `db:"total_distance"`
	IsActive      bool     `db:"is_active"`
	CreatedAt     int64    `db:"created_at"`
	UpdatedAt     int64    `db:"updated_at"`
}

// StartLocation returns the opening GPS fix.
func (s *WorkSession) StartLocation() geo.Point {
	return geo.Point{Lat: s.StartLat, Lng: s.StartLng}
}

// WorkSessionResponse is the wire shape of a session, with nested locations.
type WorkSessionResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Date          string     `json:"date"`
	StartTime     int64      `json:"startTime"`
	StartLocation geo.Point  `json:"startLocation"`
	EndTime       *int64     `json:"endTime"`
	EndLocation   *geo.Point `json:"endLocation"`
	TotalDistance float64    `json:"totalDistance"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     int64      `json:"createdAt"`
	UpdatedAt     int64      `json:"updatedAt"`
}

func (s *WorkSession) ToResponse() WorkSessionResponse {
	resp := WorkSessionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Date:          s.Date,
		StartTime:     s.StartTime,
		StartLocation: s.StartLocation(),
		EndTime:       s.EndTime,
		TotalDistance: s.TotalDistance,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.EndLat != nil && s.EndLng != nil {
		resp.EndLocation = &geo.Point{Lat: *s.EndLat, Lng: *s.EndLng}
	}
	return resp
}

// DaySummary is the per-user "where am I in today's workflow" view.
type DaySummary struct {
	MeetingsCount int    `json:"meetingsCount"`
	SamplesCount  int    `json:"samplesCount"`
	SalesCount    int    `json:"salesCount"`
	DayStarted    bool   `json:"dayStarted"`
	DayEnded      bool   `json:"dayEnded"`
	LastEndedTime *int64 `json:"lastEndedTime"`
}
