package sim

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stark-server/preventis-desktop/pkg/models"
)

const tokenTTL = 24 * time.Hour

var (
	errBadCredentials = errors.New("invalid email or password")
	errEmailTaken     = errors.New("email already registered")
	errBadInviteCode  = errors.New("invalid invite code")
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates session tokens with HS256.
type JWTManager struct {
	secret []byte
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{secret: []byte(secret)}
}

func (m *JWTManager) Issue(u models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString(m.secret)
}

// Validate parses a token and returns the user id it was issued for.
func (m *JWTManager) Validate(tokenString string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || c.Subject == "" {
		return "", errors.New("invalid token")
	}
	return c.Subject, nil
}

// Register creates a user when the invite code matches. The first account of
// a fresh simulator is the common case, so no roles are modeled.
func (s *State) Register(email, password, name, code, inviteCode string) (*models.User, error) {
	if inviteCode != "" && code != inviteCode {
		return nil, errBadInviteCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, errEmailTaken
	}

	u := &user{
		User:         models.User{ID: uuid.New().String(), Email: email, Name: name},
		PasswordHash: hash,
	}
	s.users[u.ID] = u
	s.byEmail[email] = u

	out := u.User
	return &out, nil
}

// Authenticate checks a password against the stored bcrypt hash.
func (s *State) Authenticate(email, password string) (*models.User, error) {
	s.mu.Lock()
	u, ok := s.byEmail[email]
	s.mu.Unlock()

	if !ok {
		// Burn comparable time so a missing account is not distinguishable
		// by response latency.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$0123456789012345678901uGZl0ZBGitDnwRbineJYUWjyLQyuqe2"), []byte(password))
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, errBadCredentials
	}

	out := u.User
	return &out, nil
}

func (s *State) UserByID(id string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	out := u.User
	return &out, true
}

// CreateAPIKey mints a device key. The raw key is returned exactly once; only
// its SHA-256 digest is retained.
func (s *State) CreateAPIKey(userID, name string) (models.CreatedAPIKey, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return models.CreatedAPIKey{}, err
	}
	key := "pk_" + hex.EncodeToString(raw)
	digest := sha256.Sum256([]byte(key))

	if name == "" {
		name = "device key"
	}

	entry := &apiKey{
		APIKey: models.APIKey{
			ID:        uuid.New().String(),
			Name:      name,
			CreatedAt: time.Now(),
		},
		UserID:  userID,
		KeyHash: hex.EncodeToString(digest[:]),
	}

	s.mu.Lock()
	s.keys[entry.ID] = entry
	s.mu.Unlock()

	return models.CreatedAPIKey{APIKey: entry.APIKey, Key: key}, nil
}

func (s *State) ListAPIKeys(userID string) []models.APIKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		if k.UserID == userID {
			out = append(out, k.APIKey)
		}
	}
	return out
}

// DeleteAPIKey removes a key owned by the user. Deleting someone else's key
// reports not found rather than forbidden, to avoid leaking key ids.
func (s *State) DeleteAPIKey(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[id]
	if !ok || k.UserID != userID {
		return false
	}
	delete(s.keys, id)
	return true
}

// AuthenticateAPIKey resolves a raw device key to its owner, updating the
// last-used timestamp.
func (s *State) AuthenticateAPIKey(raw string) (string, bool) {
	digest := sha256.Sum256([]byte(raw))
	want := hex.EncodeToString(digest[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if k.KeyHash == want {
			now := time.Now()
			k.LastUsedAt = &now
			return k.UserID, true
		}
	}
	return "", false
}
