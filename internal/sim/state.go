// Package sim implements an in-memory Preventis backend for development and
// demos. It serves the same REST contract the desktop client consumes, with
// JWT-authenticated users, hashed API keys and sensors whose readings drift
// over time.
package sim

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stark-server/preventis-desktop/pkg/models"
)

// historyCap bounds the per-device series kept in memory; at one sample per
// simulation tick this covers more than the widest query window.
const historyCap = 4096

type user struct {
	models.User
	PasswordHash []byte
}

type apiKey struct {
	models.APIKey
	UserID  string
	KeyHash string
}

// State is the whole simulated installation behind one mutex. Handler load is
// interactive-scale, so a single lock is plenty.
type State struct {
	mu sync.Mutex

	users   map[string]*user // by id
	byEmail map[string]*user
	keys    map[string]*apiKey // by id

	sensors []models.Sensor
	alerts  []models.Alert
	zones   []models.Zone
	alarm   models.AlarmState
	history map[string][]models.HistoryPoint

	lastIncident time.Time

	rng *rand.Rand
}

func NewState() *State {
	now := time.Now()
	s := &State{
		users:   make(map[string]*user),
		byEmail: make(map[string]*user),
		keys:    make(map[string]*apiKey),
		history: make(map[string][]models.HistoryPoint),
		rng:     rand.New(rand.NewSource(now.UnixNano())),
	}
	s.seed(now)
	return s
}

func (s *State) seed(now time.Time) {
	battery := func(level int) *int { return &level }

	s.sensors = []models.Sensor{
		{ID: "co2-001", Name: "CO2 Living Room", Type: models.SensorCO2, Location: "Living room",
			Status: models.StatusOnline, Value: 450, Unit: "ppm", Threshold: 1000, LastUpdate: now, BatteryLevel: battery(87)},
		{ID: "co2-002", Name: "CO2 Bedroom", Type: models.SensorCO2, Location: "Bedroom",
			Status: models.StatusOnline, Value: 520, Unit: "ppm", Threshold: 1000, LastUpdate: now, BatteryLevel: battery(64)},
		{ID: "smoke-001", Name: "Smoke Kitchen", Type: models.SensorSmoke, Location: "Kitchen",
			Status: models.StatusOnline, Value: 0.02, Unit: "%/m", Threshold: 0.5, LastUpdate: now, BatteryLevel: battery(91)},
		{ID: "ir-001", Name: "Motion Hallway", Type: models.SensorInfrared, Location: "Hallway",
			Status: models.StatusOnline, Value: 0, Unit: "", Threshold: 1, LastUpdate: now, BatteryLevel: battery(78)},
		{ID: "temp-001", Name: "Temperature Garage", Type: models.SensorTemperature, Location: "Garage",
			Status: models.StatusOnline, Value: 19.5, Unit: "°C", Threshold: 60, LastUpdate: now, BatteryLevel: battery(55)},
	}

	s.zones = []models.Zone{
		{ID: "zone-1", Name: "Ground floor", Sensors: []string{"co2-001", "smoke-001", "ir-001"}, Status: models.StatusOnline, IsArmed: false},
		{ID: "zone-2", Name: "Upstairs", Sensors: []string{"co2-002"}, Status: models.StatusOnline, IsArmed: false},
		{ID: "zone-3", Name: "Garage", Sensors: []string{"temp-001"}, Status: models.StatusOnline, IsArmed: true},
	}

	s.alerts = []models.Alert{
		{ID: uuid.New().String(), Type: models.AlertSystem, Level: models.LevelInfo,
			Title: "System check completed", Message: "All sensors reported within the last hour.",
			Location: "System", Timestamp: now.Add(-2 * time.Hour), Acknowledged: true},
	}

	s.alarm = models.AlarmState{Mode: models.AlarmOff}
	s.lastIncident = now.Add(-48 * time.Hour)

	// Backfill an hour of history so charts are not empty on first query.
	for i := range s.sensors {
		sensor := &s.sensors[i]
		for t := now.Add(-time.Hour); t.Before(now); t = t.Add(30 * time.Second) {
			s.history[sensor.ID] = append(s.history[sensor.ID], models.HistoryPoint{
				Value:     s.drift(sensor.Type, sensor.Value),
				CreatedAt: t,
				Status:    string(models.StatusOnline),
			})
		}
	}
}

// Simulate advances sensor readings until ctx is done. Each tick nudges every
// sensor, appends a history point and raises an alert when a reading crosses
// its threshold.
func (s *State) Simulate(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step()
		}
	}
}

func (s *State) step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for i := range s.sensors {
		sensor := &s.sensors[i]
		sensor.Value = s.drift(sensor.Type, sensor.Value)
		sensor.LastUpdate = now

		status := models.StatusOnline
		if sensor.Threshold > 0 && sensor.Value >= sensor.Threshold {
			status = models.StatusAlert
			s.raiseThresholdAlertLocked(sensor, now)
		}
		sensor.Status = status

		s.appendHistoryLocked(sensor.ID, models.HistoryPoint{
			Value:     sensor.Value,
			CreatedAt: now,
			Status:    string(status),
		})
	}
}

// drift produces the next plausible reading for a sensor type.
func (s *State) drift(typ models.SensorType, current float64) float64 {
	switch typ {
	case models.SensorCO2:
		next := current + s.rng.Float64()*40 - 20
		return math.Max(380, math.Min(next, 1400))
	case models.SensorTemperature:
		next := current + s.rng.Float64()*0.6 - 0.3
		return math.Max(-10, math.Min(next, 70))
	case models.SensorSmoke:
		next := current + s.rng.Float64()*0.02 - 0.01
		return math.Max(0, math.Min(next, 1))
	case models.SensorInfrared:
		// Occasional motion blip.
		if s.rng.Float64() < 0.05 {
			return 1
		}
		return 0
	default:
		return current
	}
}

func (s *State) raiseThresholdAlertLocked(sensor *models.Sensor, now time.Time) {
	// One active alert per sensor is enough.
	for _, a := range s.alerts {
		if a.SensorID == sensor.ID && !a.Acknowledged {
			return
		}
	}

	alertType := models.AlertSystem
	level := models.LevelWarning
	switch sensor.Type {
	case models.SensorSmoke, models.SensorTemperature:
		alertType = models.AlertFire
		level = models.LevelCritical
	case models.SensorInfrared:
		alertType = models.AlertIntrusion
		if s.alarm.IsArmed {
			level = models.LevelCritical
		}
	}

	s.alerts = append(s.alerts, models.Alert{
		ID:        uuid.New().String(),
		Type:      alertType,
		Level:     level,
		Title:     sensor.Name + " above threshold",
		Message:   "Reading crossed the configured alert threshold.",
		SensorID:  sensor.ID,
		Location:  sensor.Location,
		Timestamp: now,
	})
	s.lastIncident = now

	if s.alarm.IsArmed && !s.alarm.Triggered {
		s.alarm.Triggered = true
		s.alarm.TriggerReason = sensor.Name
		s.alarm.SirenActive = true
	}
}

func (s *State) appendHistoryLocked(id string, point models.HistoryPoint) {
	series := append(s.history[id], point)
	if len(series) > historyCap {
		series = series[len(series)-historyCap:]
	}
	s.history[id] = series
}
