package models

import "time"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// APIKey is the non-secret metadata of a device credential. The raw key
// string is only ever returned at creation time and never stored client side
// beyond the session that created it.
type APIKey struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// Auth API types

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name,omitempty"`
	SecretCode string `json:"secretCode,omitempty"`
}

type RegisterResponse struct {
	User    User   `json:"user"`
	Token   string `json:"token"`
	APIKey  string `json:"apiKey"`
	Message string `json:"message,omitempty"`
}

type APIKeysResponse struct {
	APIKeys []APIKey `json:"apiKeys"`
}

// CreatedAPIKey carries the raw key exactly once, at creation.
type CreatedAPIKey struct {
	APIKey
	Key string `json:"key"`
}

type CreateAPIKeyResponse struct {
	APIKey  CreatedAPIKey `json:"apiKey"`
	Message string        `json:"message"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}
