package models

import "github.com/lib/pq"

// MeetingType distinguishes one-on-one visits from group gatherings.
type MeetingType string

const (
	MeetingOneOnOne MeetingType = "one-on-one"
	MeetingGroup    MeetingType = "group"
)

// Meeting is a farmer/seller/distributor interaction logged from the field.
type Meeting struct {
	ID             string         `json:"id" db:"id"`
	UserID         string         `json:"user_id" db:"user_id"`
	Type           MeetingType    `json:"type" db:"type"`
	PersonName     string         `json:"person_name" db:"person_name"`
	Village        string         `json:"village" db:"village"`
	Category       string         `json:"category" db:"category"` // farmer, seller, distributor, other
	AttendeesCount int            `json:"attendees_count" db:"attendees_count"`
	Lat            *float64       `json:"lat" db:"lat"`
	Lng            *float64       `json:"lng" db:"lng"`
	Photos         pq.StringArray `json:"photos" db:"photos"`
	Notes          string         `json:"notes" db:"notes"`
	Timestamp      int64          `json:"timestamp" db:"timestamp"`
	CreatedAt      int64          `json:"created_at" db:"created_at"`
	UpdatedAt      int64          `json:"updated_at" db:"updated_at"`
}

// Sample records a product sample handed out.
type Sample struct {
	ID           string `json:"id" db:"id"`
	UserID       string `json:"user_id" db:"user_id"`
	Product      string `json:"product" db:"product"`
	Quantity     int    `json:"quantity" db:"quantity"`
	ReceiverName string `json:"receiver_name" db:"receiver_name"`
	Purpose      string `json:"purpose" db:"purpose"`
	RecordedAt   int64  `json:"recorded_at" db:"recorded_at"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
	UpdatedAt    int64  `json:"updated_at" db:"updated_at"`
}

// Sale records a closed sale, either direct to consumer or to a business.
type Sale struct {
	ID         string  `json:"id" db:"id"`
	UserID     string  `json:"user_id" db:"user_id"`
	Product    string  `json:"product" db:"product"`
	Quantity   int     `json:"quantity" db:"quantity"`
	Amount     float64 `json:"amount" db:"amount"`
	Type       string  `json:"type" db:"type"` // "B2C" or "B2B"
	BuyerName  string  `json:"buyer_name" db:"buyer_name"`
	RecordedAt int64   `json:"recorded_at" db:"recorded_at"`
	CreatedAt  int64   `json:"created_at" db:"created_at"`
	UpdatedAt  int64   `json:"updated_at" db:"updated_at"`
}

// FCMToken represents a Firebase Cloud Messaging token for a user
type FCMToken struct {
	ID         int    `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"` // "ios" or "android"
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}
