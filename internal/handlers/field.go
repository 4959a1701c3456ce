package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fieldtrack-backend/internal/geo"
	"fieldtrack-backend/internal/middleware"
	"fieldtrack-backend/internal/models"
	"fieldtrack-backend/internal/services"
	"fieldtrack-backend/internal/session"
	"fieldtrack-backend/internal/websocket"
	"fieldtrack-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const maxMeetingPhotos = 5

type dayRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// StartDay opens a work session for the authenticated field officer
func StartDay(m *session.Manager, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/field/start-day")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req dayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}

		ws, err := m.StartDay(r.Context(), userClaims.UserID, geo.Point{Lat: req.Lat, Lng: req.Lng})
		if errors.Is(err, session.ErrDayAlreadyStarted) {
			utils.RespondError(w, http.StatusConflict, "Day already started")
			return
		}
		if errors.Is(err, geo.ErrInvalidCoordinates) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		if err != nil {
			log.Printf("❌ Error starting day: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to start day")
			return
		}

		if hub != nil {
			hub.BroadcastToRole("admin", map[string]interface{}{
				"type":      "day_started",
				"userId":    userClaims.UserID,
				"email":     userClaims.Email,
				"startTime": ws.StartTime,
			})
		}

		log.Printf("✅ Day started: %s (%s)", userClaims.Email, ws.ID)
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    ws.ToResponse(),
		})
	}
}

// EndDay closes the active work session and records the covered distance
func EndDay(db *sqlx.DB, m *session.Manager, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/field/end-day")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req dayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}

		ws, err := m.EndDay(r.Context(), userClaims.UserID, geo.Point{Lat: req.Lat, Lng: req.Lng})
		if errors.Is(err, session.ErrNoActiveDay) {
			utils.RespondError(w, http.StatusPreconditionFailed, "No active day to end")
			return
		}
		if errors.Is(err, geo.ErrInvalidCoordinates) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		if err != nil {
			log.Printf("❌ Error ending day: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to end day")
			return
		}

		if hub != nil {
			hub.BroadcastToRole("admin", map[string]interface{}{
				"type":          "day_ended",
				"userId":        userClaims.UserID,
				"email":         userClaims.Email,
				"totalDistance": ws.TotalDistance,
			})
		}

		if fcm != nil {
			var officerName string
			db.Get(&officerName, "SELECT name FROM users WHERE id = $1", userClaims.UserID)

			var tokens []string
			err := db.Select(&tokens, `
				SELECT t.token FROM fcm_tokens t
				JOIN users u ON u.id = t.user_id
				WHERE u.role = 'admin'`)
			if err != nil {
				log.Printf("⚠️ Failed to load admin FCM tokens: %v", err)
			} else if err := fcm.NotifyDayEnded(tokens, officerName, ws.TotalDistance); err != nil {
				log.Printf("⚠️ Failed to send day-ended notification: %v", err)
			}
		}

		log.Printf("✅ Day ended: %s, distance %.2f km", userClaims.Email, ws.TotalDistance)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    ws.ToResponse(),
		})
	}
}

// Today returns the latest work session for the current local date, or null
func Today(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ws, err := m.Today(r.Context(), userClaims.UserID)
		if err != nil {
			log.Printf("❌ Error getting today's session: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		if ws == nil {
			utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    nil,
			})
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    ws.ToResponse(),
		})
	}
}

// Summary returns today's activity counts and day state
func Summary(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		summary, err := m.Summary(r.Context(), userClaims.UserID)
		if err != nil {
			log.Printf("❌ Error building summary: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    summary,
		})
	}
}

type meetingRequest struct {
	Type           string   `json:"type" validate:"required,oneof=one-on-one group"`
	PersonName     string   `json:"personName"`
	Village        string   `json:"village"`
	Category       string   `json:"category" validate:"omitempty,oneof=farmer seller distributor other"`
	AttendeesCount int      `json:"attendeesCount"`
	Lat            *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng            *float64 `json:"lng" validate:"omitempty,longitude"`
	Notes          string   `json:"notes"`
	Timestamp      int64    `json:"timestamp"`
}

func uploadsDir() string {
	dir := os.Getenv("UPLOADS_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	return dir
}

// saveMeetingPhotos writes uploaded photos to disk and returns their public paths
func saveMeetingPhotos(r *http.Request) ([]string, error) {
	files := r.MultipartForm.File["photos"]
	if len(files) > maxMeetingPhotos {
		return nil, fmt.Errorf("at most %d photos allowed", maxMeetingPhotos)
	}

	dir := uploadsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	var paths []string
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}

		name := uuid.New().String() + filepath.Ext(fh.Filename)
		dst, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to create file: %w", err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to write file: %w", err)
		}

		paths = append(paths, "/uploads/"+name)
	}
	return paths, nil
}

// AddMeeting records a meeting. Accepts JSON, or multipart form data when
// photos are attached.
func AddMeeting(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/field/meeting")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req meetingRequest
		var photos []string

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
				return
			}

			if data := r.FormValue("data"); data != "" {
				if err := json.Unmarshal([]byte(data), &req); err != nil {
					utils.RespondError(w, http.StatusBadRequest, "Invalid meeting data")
					return
				}
			}

			var err error
			photos, err = saveMeetingPhotos(r)
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest, err.Error())
				return
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
		}

		if req.Category == "" {
			req.Category = "farmer"
		}
		if req.AttendeesCount == 0 {
			req.AttendeesCount = 1
		}
		if req.Timestamp == 0 {
			req.Timestamp = time.Now().Unix()
		}
		if err := validate.Struct(req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		now := time.Now().Unix()
		meeting := models.Meeting{
			ID:             uuid.New().String(),
			UserID:         userClaims.UserID,
			Type:           models.MeetingType(req.Type),
			PersonName:     req.PersonName,
			Village:        req.Village,
			Category:       req.Category,
			AttendeesCount: req.AttendeesCount,
			Lat:            req.Lat,
			Lng:            req.Lng,
			Photos:         pq.StringArray(photos),
			Notes:          req.Notes,
			Timestamp:      req.Timestamp,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if meeting.Photos == nil {
			meeting.Photos = pq.StringArray{}
		}

		_, err := db.NamedExec(`
			INSERT INTO meetings (id, user_id, type, person_name, village, category, attendees_count,
				lat, lng, photos, notes, timestamp, created_at, updated_at)
			VALUES (:id, :user_id, :type, :person_name, :village, :category, :attendees_count,
				:lat, :lng, :photos, :notes, :timestamp, :created_at, :updated_at)`,
			meeting)
		if err != nil {
			log.Printf("❌ Error inserting meeting: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save meeting")
			return
		}

		log.Printf("✅ Meeting recorded: %s (%s, %d photos)", meeting.ID, meeting.Type, len(photos))
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    meeting,
		})
	}
}

// localDayStart returns the epoch second of today's local midnight.
func localDayStart() int64 {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()
}

// GetMeetings returns the officer's meetings for today, newest first
func GetMeetings(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		meetings := []models.Meeting{}
		err := db.Select(&meetings,
			"SELECT * FROM meetings WHERE user_id = $1 AND timestamp >= $2 ORDER BY timestamp DESC",
			userClaims.UserID, localDayStart())
		if err != nil {
			log.Printf("❌ Error fetching meetings: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    meetings,
		})
	}
}

type sampleRequest struct {
	Product      string `json:"product" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	ReceiverName string `json:"receiverName" validate:"required"`
	Purpose      string `json:"purpose"`
	RecordedAt   int64  `json:"recordedAt"`
}

// AddSample records a product sample distribution
func AddSample(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/field/sample")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req sampleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.RecordedAt == 0 {
			req.RecordedAt = time.Now().Unix()
		}

		now := time.Now().Unix()
		sample := models.Sample{
			ID:           uuid.New().String(),
			UserID:       userClaims.UserID,
			Product:      req.Product,
			Quantity:     req.Quantity,
			ReceiverName: req.ReceiverName,
			Purpose:      req.Purpose,
			RecordedAt:   req.RecordedAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		_, err := db.NamedExec(`
			INSERT INTO samples (id, user_id, product, quantity, receiver_name, purpose, recorded_at, created_at, updated_at)
			VALUES (:id, :user_id, :product, :quantity, :receiver_name, :purpose, :recorded_at, :created_at, :updated_at)`,
			sample)
		if err != nil {
			log.Printf("❌ Error inserting sample: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save sample")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    sample,
		})
	}
}

// GetSamples returns the officer's sample records for today, newest first
func GetSamples(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		samples := []models.Sample{}
		err := db.Select(&samples,
			"SELECT * FROM samples WHERE user_id = $1 AND recorded_at >= $2 ORDER BY recorded_at DESC",
			userClaims.UserID, localDayStart())
		if err != nil {
			log.Printf("❌ Error fetching samples: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    samples,
		})
	}
}

type saleRequest struct {
	Product    string  `json:"product" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	Amount     float64 `json:"amount" validate:"min=0"`
	Type       string  `json:"type" validate:"required,oneof=B2C B2B"`
	BuyerName  string  `json:"buyerName" validate:"required"`
	RecordedAt int64   `json:"recordedAt"`
}

// AddSale records a sale
func AddSale(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/field/sale")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req saleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.RecordedAt == 0 {
			req.RecordedAt = time.Now().Unix()
		}

		now := time.Now().Unix()
		sale := models.Sale{
			ID:         uuid.New().String(),
			UserID:     userClaims.UserID,
			Product:    req.Product,
			Quantity:   req.Quantity,
			Amount:     req.Amount,
			Type:       req.Type,
			BuyerName:  req.BuyerName,
			RecordedAt: req.RecordedAt,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		_, err := db.NamedExec(`
			INSERT INTO sales (id, user_id, product, quantity, amount, type, buyer_name, recorded_at, created_at, updated_at)
			VALUES (:id, :user_id, :product, :quantity, :amount, :type, :buyer_name, :recorded_at, :created_at, :updated_at)`,
			sale)
		if err != nil {
			log.Printf("❌ Error inserting sale: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save sale")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    sale,
		})
	}
}

// GetSales returns the officer's sales for today, newest first
func GetSales(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		sales := []models.Sale{}
		err := db.Select(&sales,
			"SELECT * FROM sales WHERE user_id = $1 AND recorded_at >= $2 ORDER BY recorded_at DESC",
			userClaims.UserID, localDayStart())
		if err != nil {
			log.Printf("❌ Error fetching sales: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    sales,
		})
	}
}

type fcmTokenRequest struct {
	Token      string `json:"token" validate:"required"`
	DeviceType string `json:"deviceType" validate:"required,oneof=ios android"`
}

// RegisterFCMToken stores a device token for push notifications
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req fcmTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		now := time.Now().Unix()
		_, err := db.Exec(`
			INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (token) DO UPDATE SET user_id = $1, device_type = $3, updated_at = $4`,
			userClaims.UserID, req.Token, req.DeviceType, now)
		if err != nil {
			log.Printf("❌ Error registering FCM token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}

		log.Printf("✅ FCM token registered for %s (%s)", userClaims.Email, req.DeviceType)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
	}
}
