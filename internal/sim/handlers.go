package sim

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stark-server/preventis-desktop/pkg/models"
	"github.com/stark-server/preventis-desktop/pkg/utils"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.state.Authenticate(req.Email, req.Password)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := s.jwt.Issue(*user)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.respondJSON(w, http.StatusOK, models.LoginResponse{User: *user, Token: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !utils.IsValidEmail(req.Email) {
		s.respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	user, err := s.state.Register(req.Email, req.Password, req.Name, req.SecretCode, s.inviteCode)
	switch {
	case errors.Is(err, errBadInviteCode):
		s.respondError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, errEmailTaken):
		s.respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	token, err := s.jwt.Issue(*user)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	created, err := s.state.CreateAPIKey(user.ID, "default device key")
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create device key")
		return
	}

	s.respondJSON(w, http.StatusCreated, models.RegisterResponse{
		User:    *user,
		Token:   token,
		APIKey:  created.Key,
		Message: "Store the API key now; it will not be shown again.",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.state.UserByID(requestUserID(r))
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys := s.state.ListAPIKeys(requestUserID(r))
	s.respondJSON(w, http.StatusOK, models.APIKeysResponse{APIKeys: keys})
}

func (s *Server) handleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.state.CreateAPIKey(requestUserID(r), req.Name)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create key")
		return
	}

	s.respondJSON(w, http.StatusCreated, models.CreateAPIKeyResponse{
		APIKey:  created,
		Message: "Store the key now; it will not be shown again.",
	})
}

func (s *Server) handleDeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if !s.state.DeleteAPIKey(requestUserID(r), chi.URLParam(r, "id")) {
		s.respondError(w, http.StatusNotFound, "key not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.state.Sensors())
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req models.Sensor
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	switch req.Type {
	case models.SensorCO2, models.SensorSmoke, models.SensorInfrared, models.SensorTemperature:
	default:
		s.respondError(w, http.StatusBadRequest, "unknown sensor type")
		return
	}

	s.respondJSON(w, http.StatusCreated, s.state.CreateSensor(req))
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if !s.state.DeleteSensor(chi.URLParam(r, "id")) {
		s.respondError(w, http.StatusNotFound, "device not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleUpdateDeviceValue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value        float64 `json:"value"`
		BatteryLevel *int    `json:"batteryLevel"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	if !s.state.UpdateSensorValue(chi.URLParam(r, "id"), req.Value, req.BatteryLevel) {
		s.respondError(w, http.StatusNotFound, "device not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	period := models.HistoryPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = models.Period1Hour
	}
	if !period.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid period")
		return
	}

	points, ok := s.state.History(chi.URLParam(r, "id"), period)
	if !ok {
		s.respondError(w, http.StatusNotFound, "device not found")
		return
	}
	s.respondJSON(w, http.StatusOK, points)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.state.Alerts())
}

func (s *Server) handleActiveAlerts(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.state.ActiveAlerts())
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if !s.state.AcknowledgeAlert(chi.URLParam(r, "id")) {
		s.respondError(w, http.StatusNotFound, "alert not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (s *Server) handleAcknowledgeAll(w http.ResponseWriter, r *http.Request) {
	s.state.AcknowledgeAllAlerts()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.state.Zones())
}

func (s *Server) handleSetZoneArmed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsArmed bool `json:"isArmed"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	if !s.state.SetZoneArmed(chi.URLParam(r, "id"), req.IsArmed) {
		s.respondError(w, http.StatusNotFound, "zone not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleAlarmState(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.state.Alarm())
}

func (s *Server) handleSetAlarmMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode models.AlarmMode `json:"mode"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if !req.Mode.Valid() {
		s.respondError(w, http.StatusBadRequest, "unknown alarm mode")
		return
	}

	s.state.SetAlarmMode(req.Mode)
	s.respondJSON(w, http.StatusOK, s.state.Alarm())
}

func (s *Server) handleSetAlarmSiren(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.state.SetSiren(req.Active)
	s.respondJSON(w, http.StatusOK, s.state.Alarm())
}

func (s *Server) handleTriggerAlarm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason   string `json:"reason"`
		SensorID string `json:"sensorId"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Reason == "" {
		req.Reason = "manual trigger"
	}

	s.state.TriggerAlarm(req.Reason, req.SensorID)
	s.respondJSON(w, http.StatusOK, s.state.Alarm())
}

func (s *Server) handleResetAlarm(w http.ResponseWriter, r *http.Request) {
	s.state.ResetAlarm()
	s.respondJSON(w, http.StatusOK, s.state.Alarm())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.state.Stats())
}
