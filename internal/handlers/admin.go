package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"fieldtrack-backend/internal/models"
	"fieldtrack-backend/internal/session"
	"fieldtrack-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
)

// Dashboard returns aggregated metrics for the admin overview screen
func Dashboard(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: GET /api/admin/dashboard")

		now := time.Now()
		today := session.DateOf(now)
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()
		monthAgo := now.AddDate(0, 0, -30).Unix()
		weekAgo := now.AddDate(0, 0, -6)
		weekAgoStart := time.Date(weekAgo.Year(), weekAgo.Month(), weekAgo.Day(), 0, 0, 0, 0, now.Location()).Unix()

		var totalFieldOfficers int
		if err := db.Get(&totalFieldOfficers, "SELECT COUNT(*) FROM users WHERE role = 'field'"); err != nil {
			log.Printf("❌ Dashboard query failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		var activeToday int
		db.Get(&activeToday,
			"SELECT COUNT(DISTINCT user_id) FROM work_sessions WHERE date = $1 AND is_active", today)

		var totalMeetingsToday, totalSalesToday int
		db.Get(&totalMeetingsToday, "SELECT COUNT(*) FROM meetings WHERE timestamp >= $1", dayStart)
		db.Get(&totalSalesToday, "SELECT COUNT(*) FROM sales WHERE recorded_at >= $1", dayStart)

		var totalDistanceToday float64
		db.Get(&totalDistanceToday,
			"SELECT COALESCE(SUM(total_distance), 0) FROM work_sessions WHERE date = $1 AND NOT is_active", today)

		type salesBreakdown struct {
			Type   string  `json:"type" db:"type"`
			Count  int     `json:"count" db:"count"`
			Amount float64 `json:"amount" db:"amount"`
		}
		breakdown := []salesBreakdown{}
		db.Select(&breakdown, `
			SELECT type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount
			FROM sales
			WHERE recorded_at >= $1
			GROUP BY type`, dayStart)

		type stateActivity struct {
			State    string `json:"state" db:"state"`
			Meetings int    `json:"meetings" db:"meetings"`
			Sales    int    `json:"sales" db:"sales"`
		}
		states := []stateActivity{}
		db.Select(&states, `
			SELECT u.state,
				COUNT(DISTINCT m.id) AS meetings,
				COUNT(DISTINCT s.id) AS sales
			FROM users u
			LEFT JOIN meetings m ON m.user_id = u.id AND m.timestamp >= $1
			LEFT JOIN sales s ON s.user_id = u.id AND s.recorded_at >= $1
			WHERE u.role = 'field' AND u.state <> ''
			GROUP BY u.state
			ORDER BY meetings DESC`, monthAgo)

		type weeklyCount struct {
			Day   string `json:"day" db:"day"`
			Count int    `json:"count" db:"count"`
		}
		weekly := []weeklyCount{}
		db.Select(&weekly, `
			SELECT to_char(to_timestamp(timestamp), 'YYYY-MM-DD') AS day, COUNT(*) AS count
			FROM meetings
			WHERE timestamp >= $1
			GROUP BY day
			ORDER BY day`, weekAgoStart)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"totalFieldOfficers": totalFieldOfficers,
				"activeToday":        activeToday,
				"totalMeetingsToday": totalMeetingsToday,
				"totalSalesToday":    totalSalesToday,
				"totalDistanceToday": totalDistanceToday,
				"salesBreakdown":     breakdown,
				"stateWiseActivity":  states,
				"weeklyMeetings":     weekly,
			},
		})
	}
}

// GetUsers lists users, optionally filtered to officers with an open session today
func GetUsers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := "SELECT * FROM users ORDER BY created_at DESC"
		args := []interface{}{}

		if r.URL.Query().Get("active") == "true" {
			query = `
				SELECT u.* FROM users u
				JOIN work_sessions ws ON ws.user_id = u.id
				WHERE ws.date = $1 AND ws.is_active
				ORDER BY u.created_at DESC`
			args = append(args, session.DateOf(time.Now()))
		}

		var users []models.User
		if err := db.Select(&users, query, args...); err != nil {
			log.Printf("❌ Error fetching users: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		responses := make([]models.UserResponse, 0, len(users))
		for _, u := range users {
			responses = append(responses, u.ToUserResponse())
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    responses,
		})
	}
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	State    *string `json:"state"`
	District *string `json:"district"`
	Role     *string `json:"role" validate:"omitempty,oneof=field admin"`
}

// UpdateUser patches a user's profile fields
func UpdateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")

		var req updateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var user models.User
		if err := db.Get(&user, "SELECT * FROM users WHERE id = $1", userID); err != nil {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}

		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if req.State != nil {
			user.State = *req.State
		}
		if req.District != nil {
			user.District = *req.District
		}
		if req.Role != nil {
			user.Role = *req.Role
		}
		user.UpdatedAt = time.Now().Unix()

		_, err := db.NamedExec(`
			UPDATE users SET name = :name, phone = :phone, state = :state,
				district = :district, role = :role, updated_at = :updated_at
			WHERE id = :id`, user)
		if err != nil {
			log.Printf("❌ Error updating user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}

		log.Printf("✅ User updated: %s", user.Email)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    user.ToUserResponse(),
		})
	}
}

// DeleteUser removes a user and all their records
func DeleteUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")

		result, err := db.Exec("DELETE FROM users WHERE id = $1", userID)
		if err != nil {
			log.Printf("❌ Error deleting user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete user")
			return
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}

		log.Printf("✅ User deleted: %s", userID)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
	}
}

// reportFilters holds the optional query filters shared by report endpoints
type reportFilters struct {
	userID string
	from   int64
	to     int64
	limit  int
}

func parseReportFilters(r *http.Request) reportFilters {
	f := reportFilters{
		userID: r.URL.Query().Get("userId"),
		to:     time.Now().Unix(),
		limit:  500,
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.from = n
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.to = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 5000 {
			f.limit = n
		}
	}
	return f
}

type reportRow struct {
	ID         string  `json:"id" db:"id"`
	UserID     string  `json:"userId" db:"user_id"`
	UserName   string  `json:"userName" db:"user_name"`
	State      string  `json:"state" db:"state"`
	District   string  `json:"district" db:"district"`
	Kind       string  `json:"kind" db:"kind"`
	Detail     string  `json:"detail" db:"detail"`
	Amount     float64 `json:"amount" db:"amount"`
	RecordedAt int64   `json:"recordedAt" db:"recorded_at"`
}

const reportQuery = `
	SELECT * FROM (
		SELECT m.id, m.user_id, u.name AS user_name, u.state, u.district,
			'meeting' AS kind, m.type || ' / ' || m.village AS detail,
			0::double precision AS amount, m.timestamp AS recorded_at
		FROM meetings m JOIN users u ON u.id = m.user_id
		UNION ALL
		SELECT s.id, s.user_id, u.name AS user_name, u.state, u.district,
			'sample' AS kind, s.product || ' x' || s.quantity AS detail,
			0::double precision AS amount, s.recorded_at
		FROM samples s JOIN users u ON u.id = s.user_id
		UNION ALL
		SELECT sl.id, sl.user_id, u.name AS user_name, u.state, u.district,
			'sale' AS kind, sl.product || ' x' || sl.quantity || ' (' || sl.type || ')' AS detail,
			sl.amount, sl.recorded_at
		FROM sales sl JOIN users u ON u.id = sl.user_id
	) activity
	WHERE recorded_at >= $1 AND recorded_at <= $2
		AND ($3 = '' OR user_id = $3)
	ORDER BY recorded_at DESC
	LIMIT $4`

// Reports returns a combined activity feed across meetings, samples and sales
func Reports(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := parseReportFilters(r)

		rows := []reportRow{}
		if err := db.Select(&rows, reportQuery, f.from, f.to, f.userID, f.limit); err != nil {
			log.Printf("❌ Error fetching reports: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    rows,
		})
	}
}

// UserActivity returns one officer's sessions and activity for a date range
func UserActivity(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		f := parseReportFilters(r)

		var user models.User
		if err := db.Get(&user, "SELECT * FROM users WHERE id = $1", userID); err != nil {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}

		sessions := []models.WorkSession{}
		err := db.Select(&sessions, `
			SELECT * FROM work_sessions
			WHERE user_id = $1 AND start_time >= $2 AND start_time <= $3
			ORDER BY start_time DESC`, userID, f.from, f.to)
		if err != nil {
			log.Printf("❌ Error fetching sessions: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		sessionResponses := make([]models.WorkSessionResponse, 0, len(sessions))
		var totalDistance float64
		for _, s := range sessions {
			sessionResponses = append(sessionResponses, s.ToResponse())
			totalDistance += s.TotalDistance
		}

		var meetings, samples, sales int
		db.Get(&meetings, "SELECT COUNT(*) FROM meetings WHERE user_id = $1 AND timestamp >= $2 AND timestamp <= $3",
			userID, f.from, f.to)
		db.Get(&samples, "SELECT COUNT(*) FROM samples WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at <= $3",
			userID, f.from, f.to)
		db.Get(&sales, "SELECT COUNT(*) FROM sales WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at <= $3",
			userID, f.from, f.to)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"user":          user.ToUserResponse(),
				"sessions":      sessionResponses,
				"totalDistance": totalDistance,
				"meetingsCount": meetings,
				"samplesCount":  samples,
				"salesCount":    sales,
			},
		})
	}
}

// ExportReports streams an XLSX workbook with one sheet per record type
func ExportReports(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: GET /api/admin/reports/export")

		f := parseReportFilters(r)

		file := excelize.NewFile()
		defer file.Close()

		writeSheet := func(sheet string, headers []string, fill func(set func(row int, values []interface{})) error) error {
			if _, err := file.NewSheet(sheet); err != nil {
				return err
			}
			for i, h := range headers {
				cell, _ := excelize.CoordinatesToCellName(i+1, 1)
				file.SetCellValue(sheet, cell, h)
			}
			return fill(func(row int, values []interface{}) {
				for i, v := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, row+2)
					file.SetCellValue(sheet, cell, v)
				}
			})
		}

		err := writeSheet("Meetings",
			[]string{"ID", "Officer", "Type", "Person", "Village", "Category", "Attendees", "Date"},
			func(set func(int, []interface{})) error {
				type row struct {
					models.Meeting
					UserName string `db:"user_name"`
				}
				var rows []row
				err := db.Select(&rows, `
					SELECT m.*, u.name AS user_name FROM meetings m
					JOIN users u ON u.id = m.user_id
					WHERE m.timestamp >= $1 AND m.timestamp <= $2 AND ($3 = '' OR m.user_id = $3)
					ORDER BY m.timestamp DESC LIMIT $4`, f.from, f.to, f.userID, f.limit)
				if err != nil {
					return err
				}
				for i, m := range rows {
					set(i, []interface{}{m.ID, m.UserName, string(m.Type), m.PersonName, m.Village,
						m.Category, m.AttendeesCount, time.Unix(m.Timestamp, 0).Format("2006-01-02 15:04")})
				}
				return nil
			})
		if err == nil {
			err = writeSheet("Samples",
				[]string{"ID", "Officer", "Product", "Quantity", "Receiver", "Purpose", "Date"},
				func(set func(int, []interface{})) error {
					type row struct {
						models.Sample
						UserName string `db:"user_name"`
					}
					var rows []row
					err := db.Select(&rows, `
						SELECT s.*, u.name AS user_name FROM samples s
						JOIN users u ON u.id = s.user_id
						WHERE s.recorded_at >= $1 AND s.recorded_at <= $2 AND ($3 = '' OR s.user_id = $3)
						ORDER BY s.recorded_at DESC LIMIT $4`, f.from, f.to, f.userID, f.limit)
					if err != nil {
						return err
					}
					for i, s := range rows {
						set(i, []interface{}{s.ID, s.UserName, s.Product, s.Quantity, s.ReceiverName,
							s.Purpose, time.Unix(s.RecordedAt, 0).Format("2006-01-02 15:04")})
					}
					return nil
				})
		}
		if err == nil {
			err = writeSheet("Sales",
				[]string{"ID", "Officer", "Product", "Quantity", "Amount", "Type", "Buyer", "Date"},
				func(set func(int, []interface{})) error {
					type row struct {
						models.Sale
						UserName string `db:"user_name"`
					}
					var rows []row
					err := db.Select(&rows, `
						SELECT s.*, u.name AS user_name FROM sales s
						JOIN users u ON u.id = s.user_id
						WHERE s.recorded_at >= $1 AND s.recorded_at <= $2 AND ($3 = '' OR s.user_id = $3)
						ORDER BY s.recorded_at DESC LIMIT $4`, f.from, f.to, f.userID, f.limit)
					if err != nil {
						return err
					}
					for i, s := range rows {
						set(i, []interface{}{s.ID, s.UserName, s.Product, s.Quantity, s.Amount,
							s.Type, s.BuyerName, time.Unix(s.RecordedAt, 0).Format("2006-01-02 15:04")})
					}
					return nil
				})
		}
		if err == nil {
			err = writeSheet("DaySessions",
				[]string{"ID", "Officer", "Date", "Start", "End", "Distance (km)"},
				func(set func(int, []interface{})) error {
					type row struct {
						models.WorkSession
						UserName string `db:"user_name"`
					}
					var rows []row
					err := db.Select(&rows, `
						SELECT ws.*, u.name AS user_name FROM work_sessions ws
						JOIN users u ON u.id = ws.user_id
						WHERE ws.start_time >= $1 AND ws.start_time <= $2 AND ($3 = '' OR ws.user_id = $3)
						ORDER BY ws.start_time DESC LIMIT $4`, f.from, f.to, f.userID, f.limit)
					if err != nil {
						return err
					}
					for i, s := range rows {
						end := ""
						if s.EndTime != nil {
							end = time.Unix(*s.EndTime, 0).Format("15:04")
						}
						set(i, []interface{}{s.ID, s.UserName, s.Date,
							time.Unix(s.StartTime, 0).Format("15:04"), end, s.TotalDistance})
					}
					return nil
				})
		}
		if err != nil {
			log.Printf("❌ Error building export: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to build export")
			return
		}

		// Drop the default sheet so Meetings opens first
		file.DeleteSheet("Sheet1")

		filename := fmt.Sprintf("field-reports-%s.xlsx", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		if err := file.Write(w); err != nil {
			log.Printf("❌ Error writing export: %v", err)
		}
	}
}
