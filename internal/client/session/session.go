// Package session owns the authenticated user, the session token and the
// device API key. In-memory state is the source of truth for the running
// process; the key-value store only provides restart continuity, so storage
// failures are logged and never surfaced.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/store"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

// Storage keys, each exclusively owned by this package.
const (
	keyToken  = "@preventis:token"
	keyUser   = "@preventis:user"
	keyAPIKey = "@preventis:apiKey"
)

type Manager struct {
	client *api.Client
	store  *store.Store
	log    zerolog.Logger

	mu       sync.Mutex
	user     *models.User
	token    string
	apiKey   string
	restored bool
	ended    []func()
}

func NewManager(client *api.Client, st *store.Store, log zerolog.Logger) *Manager {
	return &Manager{client: client, store: st, log: log}
}

// Restore loads a persisted session. The session is only considered valid
// when both token and user survive the round trip; a partial write (crash
// between keys) or corrupt user JSON degrades to "no session". Never fails.
func (m *Manager) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.restored = true }()

	token, ok, err := m.store.Get(keyToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to read stored token")
		return
	}
	if !ok {
		return
	}

	rawUser, ok, err := m.store.Get(keyUser)
	if err != nil || !ok {
		if err != nil {
			m.log.Warn().Err(err).Msg("failed to read stored user")
		}
		return
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.log.Warn().Err(err).Msg("stored user is corrupt, discarding session")
		return
	}

	m.token = token
	m.user = &user

	if key, ok, err := m.store.Get(keyAPIKey); err == nil && ok {
		m.apiKey = key
	}
	m.log.Debug().Str("email", user.Email).Msg("session restored")
}

// Loading reports whether Restore has not completed yet. Consumers must not
// make routing decisions while this is true.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.restored
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.token != ""
}

func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// DeviceAPIKey returns the device key captured at registration, empty when
// none was stored. This is the only secret ever persisted besides the token.
func (m *Manager) DeviceAPIKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apiKey
}

// OnSessionEnded registers a callback fired once per transition from
// authenticated to unauthenticated. The data-mode reconciler subscribes here.
func (m *Manager) OnSessionEnded(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = append(m.ended, fn)
}

// Login authenticates and replaces the session. On failure the session is
// left untouched and the returned error is an *api.AuthError carrying the
// server-provided message.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return &api.AuthError{Message: authMessage(err, "login failed")}
	}

	m.mu.Lock()
	user := resp.User
	m.user = &user
	m.token = resp.Token
	m.mu.Unlock()

	m.persist(keyToken, resp.Token)
	m.persistUser(resp.User)
	return nil
}

// Register creates the account and returns the raw device API key. The key
// is shown to the user exactly once; afterwards only metadata is available.
func (m *Manager) Register(ctx context.Context, email, password, name, secretCode string) (string, error) {
	resp, err := m.client.Register(ctx, models.RegisterRequest{
		Email:      email,
		Password:   password,
		Name:       name,
		SecretCode: secretCode,
	})
	if err != nil {
		return "", &api.AuthError{Message: authMessage(err, "registration failed")}
	}

	m.mu.Lock()
	user := resp.User
	m.user = &user
	m.token = resp.Token
	m.apiKey = resp.APIKey
	m.mu.Unlock()

	m.persist(keyToken, resp.Token)
	m.persistUser(resp.User)
	m.persist(keyAPIKey, resp.APIKey)
	return resp.APIKey, nil
}

// Logout clears the session and its persisted keys. Idempotent; storage
// errors are logged, never returned. Session-ended subscribers run once per
// actual authentication loss.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.user != nil && m.token != ""
	m.user = nil
	m.token = ""
	m.apiKey = ""
	subs := make([]func(), len(m.ended))
	copy(subs, m.ended)
	m.mu.Unlock()

	for _, key := range []string{keyToken, keyUser, keyAPIKey} {
		if err := m.store.Remove(key); err != nil {
			m.log.Warn().Err(err).Str("key", key).Msg("failed to clear stored session key")
		}
	}

	if wasAuthenticated {
		for _, fn := range subs {
			fn()
		}
	}
}

// API key management, all bearer-authenticated.

func (m *Manager) ListAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	token, err := m.requireToken()
	if err != nil {
		return nil, err
	}
	keys, err := m.client.ListAPIKeys(ctx, token)
	if err != nil {
		return nil, &api.AuthError{Message: authMessage(err, "failed to list API keys")}
	}
	return keys, nil
}

func (m *Manager) CreateAPIKey(ctx context.Context, name string) (*models.CreatedAPIKey, string, error) {
	token, err := m.requireToken()
	if err != nil {
		return nil, "", err
	}
	resp, err := m.client.CreateAPIKey(ctx, token, name)
	if err != nil {
		return nil, "", &api.AuthError{Message: authMessage(err, "failed to create API key")}
	}

	// Keep the first created key as the device key, like registration does.
	m.mu.Lock()
	if m.apiKey == "" && resp.APIKey.Key != "" {
		m.apiKey = resp.APIKey.Key
		m.mu.Unlock()
		m.persist(keyAPIKey, resp.APIKey.Key)
	} else {
		m.mu.Unlock()
	}

	return &resp.APIKey, resp.Message, nil
}

func (m *Manager) DeleteAPIKey(ctx context.Context, id string) error {
	token, err := m.requireToken()
	if err != nil {
		return err
	}
	if err := m.client.DeleteAPIKey(ctx, token, id); err != nil {
		return &api.AuthError{Message: authMessage(err, "failed to delete API key")}
	}
	return nil
}

func (m *Manager) requireToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", &api.AuthError{Message: "not authenticated"}
	}
	return m.token, nil
}

func (m *Manager) persist(key, value string) {
	if err := m.store.Set(key, value); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("failed to persist session key")
	}
}

func (m *Manager) persistUser(user models.User) {
	data, err := json.Marshal(user)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to marshal user")
		return
	}
	m.persist(keyUser, string(data))
}

// authMessage extracts a user-facing message from an API failure, preferring
// the server's error field.
func authMessage(err error, fallback string) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var ce *api.ConnectivityError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
