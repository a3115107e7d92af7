package sim

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/pkg/models"
)

type ctxKey int

const userIDKey ctxKey = iota

// Server is the simulated REST backend.
type Server struct {
	state      *State
	jwt        *JWTManager
	inviteCode string
	log        zerolog.Logger

	router chi.Router
	server *http.Server
}

func NewServer(state *State, jwtSecret, inviteCode string, log zerolog.Logger) *Server {
	s := &Server{
		state:      state,
		jwt:        NewJWTManager(jwtSecret),
		inviteCode: inviteCode,
		log:        log,
		router:     chi.NewRouter(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/auth/login", s.handleLogin)
	s.router.Post("/auth/register", s.handleRegister)

	s.router.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/auth/me", s.handleMe)
		r.Get("/auth/api-keys", s.handleListAPIKeys)
		r.Post("/auth/api-keys", s.handleCreateAPIKey)
		r.Delete("/auth/api-keys/{id}", s.handleDeleteAPIKey)

		r.Get("/devices", s.handleListDevices)
		r.Post("/devices", s.handleCreateDevice)
		r.Delete("/devices/{id}", s.handleDeleteDevice)
		r.Put("/devices/{id}/value", s.handleUpdateDeviceValue)
		r.Get("/devices/{id}/history", s.handleDeviceHistory)

		r.Get("/alerts", s.handleListAlerts)
		r.Get("/alerts/active", s.handleActiveAlerts)
		r.Put("/alerts/{id}/acknowledge", s.handleAcknowledgeAlert)
		r.Put("/alerts/acknowledge-all", s.handleAcknowledgeAll)

		r.Get("/zones", s.handleListZones)
		r.Put("/zones/{id}/arm", s.handleSetZoneArmed)

		r.Get("/alarm", s.handleAlarmState)
		r.Put("/alarm/mode", s.handleSetAlarmMode)
		r.Put("/alarm/siren", s.handleSetAlarmSiren)
		r.Post("/alarm/trigger", s.handleTriggerAlarm)
		r.Post("/alarm/reset", s.handleResetAlarm)

		r.Get("/stats", s.handleStats)
	})
}

// ListenAndServe starts the server and blocks until it stops.
func (s *Server) ListenAndServe(addr string) error {
	s.server.Addr = addr
	s.log.Info().Str("addr", addr).Msg("simulator listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, used by tests to serve over httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// authMiddleware accepts either a session JWT or a raw device API key as the
// bearer credential.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.respondError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.respondError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		credential := parts[1]

		userID, err := s.jwt.Validate(credential)
		if err != nil {
			var ok bool
			userID, ok = s.state.AuthenticateAPIKey(credential)
			if !ok {
				s.respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
