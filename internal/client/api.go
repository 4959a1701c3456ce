package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fieldtrack-backend/internal/geo"
	"fieldtrack-backend/internal/models"
	"fieldtrack-backend/internal/offline"
)

// API talks to the fieldtrack server. It implements offline.Transport so a
// queue can replay recorded actions through it.
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (a *API) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decoding response (status %d): %w", method, path, resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %s (status %d)", method, path, msg, resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decoding data: %w", method, path, err)
		}
	}
	return nil
}

// Login authenticates and returns the issued token.
func (a *API) Login(ctx context.Context, email, password string) (string, error) {
	var buf bytes.Buffer
	body := map[string]string{"email": email, "password": password}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/auth/login", &buf)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK    bool   `json:"ok"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("login: decoding response: %w", err)
	}
	if !result.OK || result.Token == "" {
		return "", fmt.Errorf("login failed (status %d)", resp.StatusCode)
	}

	a.token = result.Token
	return result.Token, nil
}

// StartDay opens today's work session at the given location.
func (a *API) StartDay(ctx context.Context, loc geo.Point) (*models.WorkSessionResponse, error) {
	var ws models.WorkSessionResponse
	if err := a.do(ctx, http.MethodPost, "/api/field/start-day", loc, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// EndDay closes today's work session at the given location.
func (a *API) EndDay(ctx context.Context, loc geo.Point) (*models.WorkSessionResponse, error) {
	var ws models.WorkSessionResponse
	if err := a.do(ctx, http.MethodPost, "/api/field/end-day", loc, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// Today fetches the current day's session, or nil if not started.
func (a *API) Today(ctx context.Context) (*models.WorkSessionResponse, error) {
	var ws models.WorkSessionResponse
	if err := a.do(ctx, http.MethodGet, "/api/field/today", nil, &ws); err != nil {
		return nil, err
	}
	if ws.ID == "" {
		return nil, nil
	}
	return &ws, nil
}

// Summary fetches today's activity counts and day state.
func (a *API) Summary(ctx context.Context) (*models.DaySummary, error) {
	var summary models.DaySummary
	if err := a.do(ctx, http.MethodGet, "/api/field/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// AddMeeting records a meeting.
func (a *API) AddMeeting(ctx context.Context, payload offline.MeetingPayload) error {
	return a.do(ctx, http.MethodPost, "/api/field/meeting", payload, nil)
}

// AddSample records a sample distribution.
func (a *API) AddSample(ctx context.Context, payload offline.SamplePayload) error {
	return a.do(ctx, http.MethodPost, "/api/field/sample", payload, nil)
}

// AddSale records a sale.
func (a *API) AddSale(ctx context.Context, payload offline.SalePayload) error {
	return a.do(ctx, http.MethodPost, "/api/field/sale", payload, nil)
}

// Deliver replays one queued action against the matching endpoint.
func (a *API) Deliver(ctx context.Context, action offline.Action) error {
	var path string
	switch action.Kind {
	case offline.KindStartDay:
		path = "/api/field/start-day"
	case offline.KindEndDay:
		path = "/api/field/end-day"
	case offline.KindAddMeeting:
		path = "/api/field/meeting"
	case offline.KindAddSample:
		path = "/api/field/sample"
	case offline.KindAddSale:
		path = "/api/field/sale"
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
	return a.do(ctx, http.MethodPost, path, action.Payload, nil)
}

// Online reports whether the server answers its health check.
func (a *API) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
