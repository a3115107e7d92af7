// Package api is the HTTP client for the Preventis backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/stark-server/preventis-desktop/pkg/models"
)

// DefaultTimeout bounds every request, health checks included.
const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// do performs one JSON request. token may be empty for public endpoints; out
// may be nil when the response body is irrelevant. Transport failures come
// back as *ConnectivityError, non-2xx statuses as *StatusError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectivityError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

// statusError surfaces the server's error field, falling back to the bare
// HTTP status when the body is not parseable JSON.
func statusError(resp *http.Response) *StatusError {
	msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	if err == nil {
		var body models.ErrorResponse
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			msg = body.Error
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

// Health pings the server and measures round-trip latency. The caller's
// context bounds the wait; a deadline hit is reported as a timeout, which is
// distinct from an HTTP error status.
func (c *Client) Health(ctx context.Context) (time.Duration, error) {
	start := time.Now()

	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &out); err != nil {
		return 0, err
	}
	if out.Status != "ok" {
		return 0, fmt.Errorf("API status not ok: %q", out.Status)
	}
	return time.Since(start), nil
}

// Auth

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	var out models.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAPIKeys(ctx context.Context, token string) ([]models.APIKey, error) {
	var out models.APIKeysResponse
	if err := c.do(ctx, http.MethodGet, "/auth/api-keys", token, nil, &out); err != nil {
		return nil, err
	}
	return out.APIKeys, nil
}

func (c *Client) CreateAPIKey(ctx context.Context, token, name string) (*models.CreateAPIKeyResponse, error) {
	var out models.CreateAPIKeyResponse
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if err := c.do(ctx, http.MethodPost, "/auth/api-keys", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAPIKey(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/auth/api-keys/"+id, token, nil, nil)
}

// Devices

func (c *Client) ListDevices(ctx context.Context, token string) ([]models.Sensor, error) {
	var out []models.Sensor
	if err := c.do(ctx, http.MethodGet, "/devices", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDevice(ctx context.Context, token string, device models.Sensor) (*models.Sensor, error) {
	var out models.Sensor
	if err := c.do(ctx, http.MethodPost, "/devices", token, device, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDevice(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/devices/"+id, token, nil, nil)
}

func (c *Client) UpdateDeviceValue(ctx context.Context, token, id string, value float64, batteryLevel *int) error {
	body := map[string]interface{}{"value": value}
	if batteryLevel != nil {
		body["batteryLevel"] = *batteryLevel
	}
	return c.do(ctx, http.MethodPut, "/devices/"+id+"/value", token, body, nil)
}

// DeviceHistory fetches the time series for one device over a fixed window.
func (c *Client) DeviceHistory(ctx context.Context, token, id string, period models.HistoryPeriod) ([]models.HistoryPoint, error) {
	var out []models.HistoryPoint
	path := "/devices/" + id + "/history?period=" + url.QueryEscape(string(period))
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Alerts

func (c *Client) ListAlerts(ctx context.Context, token string) ([]models.Alert, error) {
	var out []models.Alert
	if err := c.do(ctx, http.MethodGet, "/alerts", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ActiveAlerts(ctx context.Context, token string) ([]models.Alert, error) {
	var out []models.Alert
	if err := c.do(ctx, http.MethodGet, "/alerts/active", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AcknowledgeAlert(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPut, "/alerts/"+id+"/acknowledge", token, nil, nil)
}

func (c *Client) AcknowledgeAllAlerts(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPut, "/alerts/acknowledge-all", token, nil, nil)
}

// Zones

func (c *Client) ListZones(ctx context.Context, token string) ([]models.Zone, error) {
	var out []models.Zone
	if err := c.do(ctx, http.MethodGet, "/zones", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetZoneArmed(ctx context.Context, token, id string, isArmed bool) error {
	body := map[string]bool{"isArmed": isArmed}
	return c.do(ctx, http.MethodPut, "/zones/"+id+"/arm", token, body, nil)
}

// Alarm

func (c *Client) AlarmState(ctx context.Context, token string) (*models.AlarmState, error) {
	var out models.AlarmState
	if err := c.do(ctx, http.MethodGet, "/alarm", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetAlarmMode(ctx context.Context, token string, mode models.AlarmMode) error {
	body := map[string]string{"mode": string(mode)}
	return c.do(ctx, http.MethodPut, "/alarm/mode", token, body, nil)
}

func (c *Client) SetAlarmSiren(ctx context.Context, token string, active bool) error {
	body := map[string]bool{"active": active}
	return c.do(ctx, http.MethodPut, "/alarm/siren", token, body, nil)
}

func (c *Client) TriggerAlarm(ctx context.Context, token, reason, sensorID string) error {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	if sensorID != "" {
		body["sensorId"] = sensorID
	}
	return c.do(ctx, http.MethodPost, "/alarm/trigger", token, body, nil)
}

func (c *Client) ResetAlarm(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/alarm/reset", token, nil, nil)
}

// Stats

func (c *Client) Stats(ctx context.Context, token string) (*models.SystemStats, error) {
	var out models.SystemStats
	if err := c.do(ctx, http.MethodGet, "/stats", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
