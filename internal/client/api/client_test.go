package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stark-server/preventis-desktop/pkg/models"
)

func TestClient_Login_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"id":"u1","email":"a@b.com"},"token":"tok-1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token != "tok-1" || resp.User.Email != "a@b.com" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_StatusError_UsesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.Message != "invalid credentials" {
		t.Errorf("expected server message, got %q", se.Message)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", se.StatusCode)
	}
}

func TestClient_StatusError_FallsBackToHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListZones(context.Background(), "tok")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Message != "HTTP 502" {
		t.Errorf("expected HTTP 502 fallback, got %q", se.Message)
	}
}

func TestClient_Health_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Never answer within the caller's deadline
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Health(ctx)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConnectivityError, got %T: %v", err, err)
	}
	if !ce.Timeout {
		t.Errorf("expected timeout classification, got %v", ce)
	}
}

func TestClient_BearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.ListDevices(context.Background(), "my-token"); err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if gotAuth != "Bearer my-token" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestClient_DeviceHistory_PeriodQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"value":420,"createdAt":"2026-01-10T12:00:00Z"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	points, err := c.DeviceHistory(context.Background(), "tok", "co2-001", models.Period6Hour)
	if err != nil {
		t.Fatalf("DeviceHistory failed: %v", err)
	}
	if gotQuery != "period=6h" {
		t.Errorf("expected period=6h, got %q", gotQuery)
	}
	if len(points) != 1 || points[0].Value != 420 {
		t.Errorf("unexpected points: %+v", points)
	}
}
