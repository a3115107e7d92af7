package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/store"
)

// postOnly emulates the "POST /path" ServeMux patterns these handlers were
// written with, which require Go 1.22; the available toolchain is older.
func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}
}

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *store.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	st := store.New(t.TempDir())
	return NewManager(api.NewClient(srv.URL), st, zerolog.Nop()), st
}

func authHandler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", postOnly(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","email":"a@b.com","name":"Alice"}}`))
	}))
	mux.HandleFunc("/auth/register", postOnly(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-2","user":{"id":"u2","email":"new@b.com"},"apiKey":"pk_raw_secret"}`))
	}))
	return mux
}

func TestLogin_PersistsAndRestores(t *testing.T) {
	m, st := newTestManager(t, authHandler(t))

	if err := m.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !m.IsAuthenticated() {
		t.Fatal("expected authenticated session after login")
	}
	if m.Token() != "tok-1" {
		t.Errorf("token = %q, want tok-1", m.Token())
	}

	// A fresh manager over the same store restores the session.
	m2 := NewManager(api.NewClient("http://unused.invalid"), st, zerolog.Nop())
	if m2.Loading() == false {
		t.Error("Loading must be true before Restore")
	}
	m2.Restore()
	if m2.Loading() {
		t.Error("Loading must be false after Restore")
	}
	if !m2.IsAuthenticated() {
		t.Fatal("restored session should be authenticated")
	}
	if u := m2.User(); u == nil || u.Email != "a@b.com" {
		t.Errorf("restored user = %+v", u)
	}
}

func TestRestore_PartialStateIsNoSession(t *testing.T) {
	st := store.New(t.TempDir())
	if err := st.Set("@preventis:token", "orphan-token"); err != nil {
		t.Fatal(err)
	}

	m := NewManager(api.NewClient("http://unused.invalid"), st, zerolog.Nop())
	m.Restore()

	if m.IsAuthenticated() {
		t.Error("token without user must not restore a session")
	}
}

func TestRestore_CorruptUserDiscardsSession(t *testing.T) {
	st := store.New(t.TempDir())
	st.Set("@preventis:token", "tok")
	st.Set("@preventis:user", "{not json")

	m := NewManager(api.NewClient("http://unused.invalid"), st, zerolog.Nop())
	m.Restore()

	if m.IsAuthenticated() {
		t.Error("corrupt user JSON must degrade to no session")
	}
	if m.Loading() {
		t.Error("Restore must complete even on corrupt state")
	}
}

func TestLogin_FailureLeavesSessionUntouched(t *testing.T) {
	calls := 0
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","email":"a@b.com"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))

	ctx := context.Background()
	if err := m.Login(ctx, "a@b.com", "pw"); err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	err := m.Login(ctx, "a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected error from rejected login")
	}
	var ae *api.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *api.AuthError, got %T", err)
	}
	if ae.Message != "invalid credentials" {
		t.Errorf("error message = %q, want server message", ae.Message)
	}
	if !m.IsAuthenticated() || m.Token() != "tok-1" {
		t.Error("failed login must leave the existing session intact")
	}
}

func TestRegister_ReturnsRawKeyOnce(t *testing.T) {
	m, _ := newTestManager(t, authHandler(t))

	key, err := m.Register(context.Background(), "new@b.com", "pw", "New", "invite")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if key != "pk_raw_secret" {
		t.Errorf("raw key = %q, want pk_raw_secret", key)
	}
	if !m.IsAuthenticated() {
		t.Error("registration must establish a session")
	}
	if m.DeviceAPIKey() != "pk_raw_secret" {
		t.Error("device key must be captured at registration")
	}
}

func TestLogout_IdempotentAndFiresEventOnce(t *testing.T) {
	m, st := newTestManager(t, authHandler(t))

	fired := 0
	m.OnSessionEnded(func() { fired++ })

	if err := m.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatal(err)
	}

	m.Logout()
	m.Logout()

	if m.IsAuthenticated() {
		t.Error("logout must clear the session")
	}
	if fired != 1 {
		t.Errorf("session-ended fired %d times, want 1", fired)
	}
	if _, ok, _ := st.Get("@preventis:token"); ok {
		t.Error("logout must clear the persisted token")
	}
}

func TestAPIKeys_RequireAuthentication(t *testing.T) {
	m, _ := newTestManager(t, authHandler(t))

	if _, err := m.ListAPIKeys(context.Background()); err == nil {
		t.Error("ListAPIKeys without a session must fail")
	}
	if _, _, err := m.CreateAPIKey(context.Background(), "device"); err == nil {
		t.Error("CreateAPIKey without a session must fail")
	}
	if err := m.DeleteAPIKey(context.Background(), "k1"); err == nil {
		t.Error("DeleteAPIKey without a session must fail")
	}
}

func TestCreateAPIKey_FirstKeyBecomesDeviceKey(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", postOnly(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","email":"a@b.com"}}`))
	}))
	created := 0
	mux.HandleFunc("/auth/api-keys", postOnly(func(w http.ResponseWriter, r *http.Request) {
		created++
		if created == 1 {
			w.Write([]byte(`{"apiKey":{"id":"k1","name":"device","key":"pk_first"},"message":"store this key"}`))
			return
		}
		w.Write([]byte(`{"apiKey":{"id":"k2","name":"spare","key":"pk_second"},"message":"store this key"}`))
	}))

	m, _ := newTestManager(t, mux)
	ctx := context.Background()
	if err := m.Login(ctx, "a@b.com", "pw"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := m.CreateAPIKey(ctx, "device"); err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}
	if m.DeviceAPIKey() != "pk_first" {
		t.Errorf("device key = %q, want pk_first", m.DeviceAPIKey())
	}

	if _, _, err := m.CreateAPIKey(ctx, "spare"); err != nil {
		t.Fatal(err)
	}
	if m.DeviceAPIKey() != "pk_first" {
		t.Error("a second key must not replace the device key")
	}
}
