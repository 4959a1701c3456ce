package offline

import "encoding/json"

// Kind identifies what a queued action does when delivered.
type Kind string

const (
	KindStartDay   Kind = "start-day"
	KindEndDay     Kind = "end-day"
	KindAddMeeting Kind = "add-meeting"
	KindAddSample  Kind = "add-sample"
	KindAddSale    Kind = "add-sale"
)

// Action is a recorded operation awaiting delivery to the server. IDs are
// assigned by the queue in strictly increasing order, so ordering by ID is
// ordering by enqueue time.
type Action struct {
	ID         int64           `json:"id"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt int64           `json:"enqueuedAt"`
}

// DayPayload carries the GPS fix for start-day and end-day actions.
type DayPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MeetingPayload mirrors the server's meeting request body.
type MeetingPayload struct {
	Type           string   `json:"type"`
	PersonName     string   `json:"personName,omitempty"`
	Village        string   `json:"village,omitempty"`
	Category       string   `json:"category,omitempty"`
	AttendeesCount int      `json:"attendeesCount,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lng            *float64 `json:"lng,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Timestamp      int64    `json:"timestamp,omitempty"`
}

// SamplePayload mirrors the server's sample request body.
type SamplePayload struct {
	Product      string `json:"product"`
	Quantity     int    `json:"quantity"`
	ReceiverName string `json:"receiverName"`
	Purpose      string `json:"purpose,omitempty"`
	RecordedAt   int64  `json:"recordedAt,omitempty"`
}

// SalePayload mirrors the server's sale request body.
type SalePayload struct {
	Product    string  `json:"product"`
	Quantity   int     `json:"quantity"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	BuyerName  string  `json:"buyerName"`
	RecordedAt int64   `json:"recordedAt,omitempty"`
}
