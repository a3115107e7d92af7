package demo

import (
	"time"

	"github.com/stark-server/preventis-desktop/pkg/models"
)

func intPtr(v int) *int { return &v }

func fixtureSensors(now time.Time) []models.Sensor {
	return []models.Sensor{
		{
			ID: "co2-001", Name: "CO2 Sensor - Living Room", Type: models.SensorCO2,
			Location: "Living Room", Status: models.StatusOnline,
			Value: 420, Unit: "ppm", Threshold: 1000,
			LastUpdate: now, BatteryLevel: intPtr(85),
		},
		{
			ID: "co2-002", Name: "CO2 Sensor - Kitchen", Type: models.SensorCO2,
			Location: "Kitchen", Status: models.StatusWarning,
			Value: 850, Unit: "ppm", Threshold: 1000,
			LastUpdate: now, BatteryLevel: intPtr(72),
		},
		{
			ID: "co2-003", Name: "CO2 Sensor - Bedroom", Type: models.SensorCO2,
			Location: "Bedroom", Status: models.StatusOnline,
			Value: 380, Unit: "ppm", Threshold: 1000,
			LastUpdate: now, BatteryLevel: intPtr(90),
		},
		{
			ID: "ir-001", Name: "IR Detector - Entrance", Type: models.SensorInfrared,
			Location: "Entrance", Status: models.StatusOnline,
			Value: 0, Threshold: 1,
			LastUpdate: now, BatteryLevel: intPtr(95),
		},
		{
			ID: "ir-002", Name: "IR Detector - Hallway", Type: models.SensorInfrared,
			Location: "Hallway", Status: models.StatusOnline,
			Value: 0, Threshold: 1,
			LastUpdate: now, BatteryLevel: intPtr(88),
		},
		{
			ID: "ir-003", Name: "IR Detector - Garage", Type: models.SensorInfrared,
			Location: "Garage", Status: models.StatusOffline,
			Value: 0, Threshold: 1,
			LastUpdate: now.Add(-time.Hour), BatteryLevel: intPtr(15),
		},
		{
			ID: "smoke-001", Name: "Smoke Detector - Living Room", Type: models.SensorSmoke,
			Location: "Living Room", Status: models.StatusOnline,
			Value: 0, Unit: "%", Threshold: 5,
			LastUpdate: now, BatteryLevel: intPtr(78),
		},
		{
			ID: "temp-001", Name: "Temperature Sensor - Kitchen", Type: models.SensorTemperature,
			Location: "Kitchen", Status: models.StatusOnline,
			Value: 22.5, Unit: "°C", Threshold: 45,
			LastUpdate: now, BatteryLevel: intPtr(82),
		},
	}
}

func fixtureAlerts(now time.Time) []models.Alert {
	return []models.Alert{
		{
			ID: "alert-001", Type: models.AlertFire, Level: models.LevelWarning,
			Title:   "Elevated CO2 level",
			Message: "CO2 in the kitchen is approaching the critical threshold.",
			SensorID: "co2-002", Location: "Kitchen",
			Timestamp: now.Add(-5 * time.Minute),
		},
		{
			ID: "alert-002", Type: models.AlertSystem, Level: models.LevelWarning,
			Title:   "Sensor offline",
			Message: "The garage IR detector has not responded for 1 hour.",
			SensorID: "ir-003", Location: "Garage",
			Timestamp: now.Add(-time.Hour),
		},
		{
			ID: "alert-003", Type: models.AlertIntrusion, Level: models.LevelInfo,
			Title:   "Motion detected",
			Message: "Motion detected at the main entrance.",
			SensorID: "ir-001", Location: "Entrance",
			Timestamp: now.Add(-2 * time.Hour), Acknowledged: true,
		},
		{
			ID: "alert-004", Type: models.AlertFire, Level: models.LevelCritical,
			Title:   "Smoke detected",
			Message: "Smoke alert triggered - immediate check required.",
			SensorID: "smoke-001", Location: "Living Room",
			Timestamp: now.Add(-24 * time.Hour), Acknowledged: true,
		},
	}
}

func fixtureZones() []models.Zone {
	return []models.Zone{
		{ID: "zone-1", Name: "Ground Floor", Sensors: []string{"co2-001", "ir-001", "smoke-001"}, Status: models.StatusOnline, IsArmed: true},
		{ID: "zone-2", Name: "Upstairs", Sensors: []string{"co2-003", "ir-002"}, Status: models.StatusOnline, IsArmed: true},
		{ID: "zone-3", Name: "Kitchen", Sensors: []string{"co2-002", "temp-001"}, Status: models.StatusWarning, IsArmed: true},
		{ID: "zone-4", Name: "Garage", Sensors: []string{"ir-003"}, Status: models.StatusOffline, IsArmed: false},
	}
}

func fixtureAlarm(now time.Time) models.AlarmState {
	armedAt := now.Add(-8 * time.Hour)
	return models.AlarmState{
		IsArmed:     true,
		Mode:        models.AlarmHome,
		SirenActive: false,
		LastArmedAt: &armedAt,
	}
}
