// Package demo holds the fixture data backing demo mode. All feeds share one
// World, so acknowledging an alert on one screen is visible on every other,
// the same way a real backend would behave. Reads hand out deep copies;
// mutations go through World methods under the lock.
package demo

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stark-server/preventis-desktop/pkg/models"
)

type World struct {
	mu      sync.Mutex
	sensors []models.Sensor
	alerts  []models.Alert
	zones   []models.Zone
	alarm   models.AlarmState

	lastIncident time.Time
}

func NewWorld() *World {
	now := time.Now()
	return &World{
		sensors:      fixtureSensors(now),
		alerts:       fixtureAlerts(now),
		zones:        fixtureZones(),
		alarm:        fixtureAlarm(now),
		lastIncident: now.Add(-24 * time.Hour),
	}
}

func (w *World) Sensors() []models.Sensor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copySensors(w.sensors)
}

func (w *World) Alerts() []models.Alert {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Alert, len(w.alerts))
	copy(out, w.alerts)
	return out
}

func (w *World) Zones() []models.Zone {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Zone, len(w.zones))
	for i, z := range w.zones {
		sensors := make([]string, len(z.Sensors))
		copy(sensors, z.Sensors)
		z.Sensors = sensors
		out[i] = z
	}
	return out
}

func (w *World) Alarm() models.AlarmState {
	w.mu.Lock()
	defer w.mu.Unlock()
	state := w.alarm
	if w.alarm.LastArmedAt != nil {
		t := *w.alarm.LastArmedAt
		state.LastArmedAt = &t
	}
	return state
}

// Stats derives system statistics from the current world state instead of
// returning a frozen snapshot, so acknowledged alerts drop out of the count.
func (w *World) Stats() models.SystemStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := models.SystemStats{TotalSensors: len(w.sensors)}
	for _, s := range w.sensors {
		if s.Status == models.StatusOnline {
			stats.OnlineSensors++
		}
	}
	for _, a := range w.alerts {
		if !a.Acknowledged {
			stats.ActiveAlerts++
		}
	}
	if !w.lastIncident.IsZero() {
		t := w.lastIncident
		stats.LastIncident = &t
	}
	return stats
}

// AcknowledgeAlert marks one alert acknowledged. Unknown ids are ignored,
// matching the forgiving behavior of the backend endpoint.
func (w *World) AcknowledgeAlert(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.alerts {
		if w.alerts[i].ID == id {
			w.alerts[i].Acknowledged = true
			return
		}
	}
}

func (w *World) AcknowledgeAllAlerts() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.alerts {
		w.alerts[i].Acknowledged = true
	}
}

func (w *World) SetZoneArmed(id string, armed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.zones {
		if w.zones[i].ID == id {
			w.zones[i].IsArmed = armed
			return
		}
	}
}

func (w *World) SetAlarmMode(mode models.AlarmMode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alarm.Mode = mode
	w.alarm.IsArmed = mode != models.AlarmOff
	if w.alarm.IsArmed {
		now := time.Now()
		w.alarm.LastArmedAt = &now
	}
}

func (w *World) SetSiren(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alarm.SirenActive = active
}

// TriggerAlarm puts the alarm in the triggered state and records the
// incident.
func (w *World) TriggerAlarm(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alarm.Triggered = true
	w.alarm.TriggerReason = reason
	w.alarm.SirenActive = true
	w.lastIncident = time.Now()
}

// ResetAlarm clears a triggered alarm back to its armed mode.
func (w *World) ResetAlarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alarm.Triggered = false
	w.alarm.TriggerReason = ""
	w.alarm.SirenActive = false
}

// AddDevice creates a demo sensor with type defaults and returns it.
func (w *World) AddDevice(name string, typ models.SensorType, location string) models.Sensor {
	threshold, unit := models.SensorDefaults(typ)
	sensor := models.Sensor{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       typ,
		Location:   location,
		Status:     models.StatusOnline,
		Unit:       unit,
		Threshold:  threshold,
		LastUpdate: time.Now(),
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sensors = append(w.sensors, sensor)
	return sensor
}

func (w *World) RemoveDevice(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.sensors {
		if w.sensors[i].ID == id {
			w.sensors = append(w.sensors[:i], w.sensors[i+1:]...)
			return
		}
	}
}

func copySensors(in []models.Sensor) []models.Sensor {
	out := make([]models.Sensor, len(in))
	for i, s := range in {
		if s.BatteryLevel != nil {
			b := *s.BatteryLevel
			s.BatteryLevel = &b
		}
		out[i] = s
	}
	return out
}
