package sim

import (
	"time"

	"github.com/google/uuid"

	"github.com/stark-server/preventis-desktop/pkg/models"
)

func (s *State) Sensors() []models.Sensor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Sensor, len(s.sensors))
	copy(out, s.sensors)
	return out
}

func (s *State) CreateSensor(in models.Sensor) models.Sensor {
	if in.Threshold == 0 || in.Unit == "" {
		threshold, unit := models.SensorDefaults(in.Type)
		if in.Threshold == 0 {
			in.Threshold = threshold
		}
		if in.Unit == "" {
			in.Unit = unit
		}
	}
	in.ID = uuid.New().String()
	in.Status = models.StatusOnline
	in.LastUpdate = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sensors = append(s.sensors, in)
	return in
}

func (s *State) DeleteSensor(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sensors {
		if s.sensors[i].ID == id {
			s.sensors = append(s.sensors[:i], s.sensors[i+1:]...)
			delete(s.history, id)
			return true
		}
	}
	return false
}

// UpdateSensorValue is the ingestion path for real devices posting readings
// with their API key.
func (s *State) UpdateSensorValue(id string, value float64, batteryLevel *int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sensors {
		if s.sensors[i].ID != id {
			continue
		}
		sensor := &s.sensors[i]
		now := time.Now()

		sensor.Value = value
		sensor.LastUpdate = now
		if batteryLevel != nil {
			level := *batteryLevel
			sensor.BatteryLevel = &level
		}

		status := models.StatusOnline
		if sensor.Threshold > 0 && value >= sensor.Threshold {
			status = models.StatusAlert
			s.raiseThresholdAlertLocked(sensor, now)
		}
		sensor.Status = status

		s.appendHistoryLocked(id, models.HistoryPoint{
			Value:     value,
			CreatedAt: now,
			Status:    string(status),
		})
		return true
	}
	return false
}

// History returns the device series restricted to the requested window,
// oldest first.
func (s *State) History(id string, period models.HistoryPeriod) ([]models.HistoryPoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, sensor := range s.sensors {
		if sensor.ID == id {
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	cutoff := time.Now().Add(-period.Duration())
	series := s.history[id]

	out := make([]models.HistoryPoint, 0, len(series))
	for _, p := range series {
		if p.CreatedAt.After(cutoff) {
			out = append(out, p)
		}
	}
	return out, true
}

func (s *State) Alerts() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

func (s *State) ActiveAlerts() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if !a.Acknowledged {
			out = append(out, a)
		}
	}
	return out
}

func (s *State) AcknowledgeAlert(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Acknowledged = true
			return true
		}
	}
	return false
}

func (s *State) AcknowledgeAllAlerts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		s.alerts[i].Acknowledged = true
	}
}

func (s *State) Zones() []models.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Zone, len(s.zones))
	for i, z := range s.zones {
		sensors := make([]string, len(z.Sensors))
		copy(sensors, z.Sensors)
		z.Sensors = sensors
		out[i] = z
	}
	return out
}

func (s *State) SetZoneArmed(id string, armed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.zones {
		if s.zones[i].ID == id {
			s.zones[i].IsArmed = armed
			return true
		}
	}
	return false
}

func (s *State) Alarm() models.AlarmState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.alarm
	if s.alarm.LastArmedAt != nil {
		t := *s.alarm.LastArmedAt
		state.LastArmedAt = &t
	}
	return state
}

func (s *State) SetAlarmMode(mode models.AlarmMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarm.Mode = mode
	s.alarm.IsArmed = mode != models.AlarmOff
	if s.alarm.IsArmed {
		now := time.Now()
		s.alarm.LastArmedAt = &now
	} else {
		s.alarm.Triggered = false
		s.alarm.TriggerReason = ""
		s.alarm.SirenActive = false
	}
}

func (s *State) SetSiren(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarm.SirenActive = active
}

func (s *State) TriggerAlarm(reason, sensorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.alarm.Triggered = true
	s.alarm.TriggerReason = reason
	s.alarm.SirenActive = true
	s.lastIncident = now

	s.alerts = append(s.alerts, models.Alert{
		ID:        uuid.New().String(),
		Type:      models.AlertIntrusion,
		Level:     models.LevelCritical,
		Title:     "Alarm triggered",
		Message:   reason,
		SensorID:  sensorID,
		Location:  "System",
		Timestamp: now,
	})
}

func (s *State) ResetAlarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarm.Triggered = false
	s.alarm.TriggerReason = ""
	s.alarm.SirenActive = false
}

func (s *State) Stats() models.SystemStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.SystemStats{TotalSensors: len(s.sensors)}
	for _, sensor := range s.sensors {
		if sensor.Status != models.StatusOffline {
			stats.OnlineSensors++
		}
	}
	for _, a := range s.alerts {
		if !a.Acknowledged {
			stats.ActiveAlerts++
		}
	}
	if !s.lastIncident.IsZero() {
		t := s.lastIncident
		stats.LastIncident = &t
	}
	return stats
}
