package sim

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

// newTestServer serves the simulator over httptest and returns the desktop
// API client pointed at it. Exercising the real client keeps both sides of
// the contract honest.
func newTestServer(t *testing.T) (*api.Client, *State) {
	t.Helper()
	state := NewState()
	server := NewServer(state, "test-secret", "INVITE", zerolog.Nop())
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL), state
}

func register(t *testing.T, client *api.Client) *models.RegisterResponse {
	t.Helper()
	resp, err := client.Register(context.Background(), models.RegisterRequest{
		Email:      "owner@example.com",
		Password:   "hunter22",
		Name:       "Owner",
		SecretCode: "INVITE",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return resp
}

func TestRegisterLoginFlow(t *testing.T) {
	client, _ := newTestServer(t)
	ctx := context.Background()

	resp := register(t, client)
	if resp.Token == "" {
		t.Error("registration must return a session token")
	}
	if resp.APIKey == "" {
		t.Error("registration must return a device API key")
	}

	login, err := client.Login(ctx, "owner@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.Email != "owner@example.com" {
		t.Errorf("login user = %q", login.User.Email)
	}

	me, err := client.Me(ctx, login.Token)
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if me.ID != login.User.ID {
		t.Error("me must return the logged-in user")
	}
}

func TestRegister_RejectsBadInviteCode(t *testing.T) {
	client, _ := newTestServer(t)

	_, err := client.Register(context.Background(), models.RegisterRequest{
		Email: "x@example.com", Password: "pw", SecretCode: "WRONG",
	})
	if err == nil {
		t.Fatal("expected invite-code rejection")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	client, _ := newTestServer(t)
	register(t, client)

	_, err := client.Login(context.Background(), "owner@example.com", "wrong")
	if err == nil {
		t.Fatal("expected rejected login")
	}
	var se *api.StatusError
	if !errors.As(err, &se) || se.StatusCode != 401 {
		t.Errorf("expected 401 StatusError, got %v", err)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	client, _ := newTestServer(t)

	if _, err := client.ListDevices(context.Background(), ""); err == nil {
		t.Error("devices must require a credential")
	}
	if _, err := client.Stats(context.Background(), "garbage-token"); err == nil {
		t.Error("a bogus token must be rejected")
	}
}

func TestAPIKeyAuthenticatesDeviceIngestion(t *testing.T) {
	client, _ := newTestServer(t)
	ctx := context.Background()
	resp := register(t, client)

	// A device posts a reading using the raw API key as its credential.
	if err := client.UpdateDeviceValue(ctx, resp.APIKey, "co2-001", 1250, nil); err != nil {
		t.Fatalf("API key ingestion failed: %v", err)
	}

	sensors, err := client.ListDevices(ctx, resp.Token)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range sensors {
		if s.ID == "co2-001" {
			if s.Value != 1250 {
				t.Errorf("value = %v, want 1250", s.Value)
			}
			if s.Status != models.StatusAlert {
				t.Errorf("above-threshold reading must flag the sensor, got %s", s.Status)
			}
			return
		}
	}
	t.Fatal("seeded sensor co2-001 missing")
}

func TestThresholdRaisesAlertOnce(t *testing.T) {
	client, state := newTestServer(t)
	ctx := context.Background()
	resp := register(t, client)

	before := len(state.ActiveAlerts())
	client.UpdateDeviceValue(ctx, resp.Token, "temp-001", 80, nil)
	client.UpdateDeviceValue(ctx, resp.Token, "temp-001", 85, nil)

	active := state.ActiveAlerts()
	raised := 0
	for _, a := range active {
		if a.SensorID == "temp-001" {
			raised++
		}
	}
	if raised != 1 {
		t.Errorf("repeated threshold crossings must raise one alert, got %d (active before: %d)", raised, before)
	}
}

func TestAlertAcknowledgeFlow(t *testing.T) {
	client, _ := newTestServer(t)
	ctx := context.Background()
	resp := register(t, client)

	client.UpdateDeviceValue(ctx, resp.Token, "smoke-001", 0.9, nil)

	active, err := client.ActiveAlerts(ctx, resp.Token)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) == 0 {
		t.Fatal("expected an active alert after threshold crossing")
	}

	if err := client.AcknowledgeAlert(ctx, resp.Token, active[0].ID); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}

	remaining, _ := client.ActiveAlerts(ctx, resp.Token)
	for _, a := range remaining {
		if a.ID == active[0].ID {
			t.Error("acknowledged alert still active")
		}
	}
}

func TestZoneArmAndAlarmLifecycle(t *testing.T) {
	client, _ := newTestServer(t)
	ctx := context.Background()
	resp := register(t, client)

	if err := client.SetZoneArmed(ctx, resp.Token, "zone-1", true); err != nil {
		t.Fatalf("arm failed: %v", err)
	}
	zones, _ := client.ListZones(ctx, resp.Token)
	for _, z := range zones {
		if z.ID == "zone-1" && !z.IsArmed {
			t.Error("zone-1 should be armed")
		}
	}

	if err := client.SetAlarmMode(ctx, resp.Token, models.AlarmAway); err != nil {
		t.Fatalf("set mode failed: %v", err)
	}
	state, _ := client.AlarmState(ctx, resp.Token)
	if !state.IsArmed || state.Mode != models.AlarmAway {
		t.Errorf("alarm state = %+v", state)
	}

	if err := client.TriggerAlarm(ctx, resp.Token, "test trigger", ""); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	state, _ = client.AlarmState(ctx, resp.Token)
	if !state.Triggered || !state.SirenActive {
		t.Errorf("triggered alarm state = %+v", state)
	}

	if err := client.ResetAlarm(ctx, resp.Token); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	state, _ = client.AlarmState(ctx, resp.Token)
	if state.Triggered || state.SirenActive {
		t.Errorf("reset alarm state = %+v", state)
	}
}

func TestDeviceHistoryWindow(t *testing.T) {
	client, _ := newTestServer(t)
	ctx := context.Background()
	resp := register(t, client)

	points, err := client.DeviceHistory(ctx, resp.Token, "co2-001", models.Period15Min)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	cutoff := time.Now().Add(-15 * time.Minute)
	for _, p := range points {
		if p.CreatedAt.Before(cutoff.Add(-time.Minute)) {
			t.Errorf("point %v outside the 15m window", p.CreatedAt)
		}
	}

	if _, err := client.DeviceHistory(ctx, resp.Token, "nope", models.Period1Hour); err == nil {
		t.Error("history for an unknown device must fail")
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	client, _ := newTestServer(t)
	ctx := context.Background()
	resp := register(t, client)

	created, err := client.CreateAPIKey(ctx, resp.Token, "garage sensor")
	if err != nil {
		t.Fatalf("create key failed: %v", err)
	}
	if created.APIKey.Key == "" {
		t.Fatal("creation must return the raw key")
	}

	keys, err := client.ListAPIKeys(ctx, resp.Token)
	if err != nil {
		t.Fatal(err)
	}
	// Registration key plus the new one.
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}

	if err := client.DeleteAPIKey(ctx, resp.Token, created.APIKey.ID); err != nil {
		t.Fatalf("delete key failed: %v", err)
	}

	// The revoked key no longer authenticates.
	if err := client.UpdateDeviceValue(ctx, created.APIKey.Key, "co2-001", 500, nil); err == nil {
		t.Error("revoked key must not authenticate")
	}
}
