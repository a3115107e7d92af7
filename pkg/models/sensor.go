package models

import "time"

type SensorStatus string

const (
	StatusOnline  SensorStatus = "online"
	StatusOffline SensorStatus = "offline"
	StatusWarning SensorStatus = "warning"
	StatusAlert   SensorStatus = "alert"
)

type SensorType string

const (
	SensorCO2         SensorType = "co2"
	SensorInfrared    SensorType = "infrared"
	SensorSmoke       SensorType = "smoke"
	SensorTemperature SensorType = "temperature"
)

type Sensor struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         SensorType   `json:"type"`
	Location     string       `json:"location"`
	Status       SensorStatus `json:"status"`
	Value        float64      `json:"value"`
	Unit         string       `json:"unit"`
	Threshold    float64      `json:"threshold"`
	LastUpdate   time.Time    `json:"lastUpdate"`
	BatteryLevel *int         `json:"batteryLevel,omitempty"`
}

// SensorDefaults returns the alert threshold and display unit used when
// creating a device of the given type without explicit values.
func SensorDefaults(t SensorType) (threshold float64, unit string) {
	switch t {
	case SensorCO2:
		return 1000, "ppm" // standard CO2 alert level
	case SensorTemperature:
		return 60, "°C" // fire alert temperature
	case SensorInfrared:
		return 1, "" // binary: 0 or 1
	case SensorSmoke:
		return 0.5, "%/m"
	default:
		return 0, ""
	}
}

// HistoryPeriod is a fixed time window for device history queries.
type HistoryPeriod string

const (
	Period15Min  HistoryPeriod = "15m"
	Period1Hour  HistoryPeriod = "1h"
	Period6Hour  HistoryPeriod = "6h"
	Period24Hour HistoryPeriod = "24h"
	Period7Day   HistoryPeriod = "7d"
)

// HistoryPeriods lists the selectable windows in display order.
var HistoryPeriods = []HistoryPeriod{Period15Min, Period1Hour, Period6Hour, Period24Hour, Period7Day}

// Valid reports whether p is one of the supported windows.
func (p HistoryPeriod) Valid() bool {
	switch p {
	case Period15Min, Period1Hour, Period6Hour, Period24Hour, Period7Day:
		return true
	}
	return false
}

// Duration returns the wall-clock span covered by the period.
func (p HistoryPeriod) Duration() time.Duration {
	switch p {
	case Period15Min:
		return 15 * time.Minute
	case Period1Hour:
		return time.Hour
	case Period6Hour:
		return 6 * time.Hour
	case Period24Hour:
		return 24 * time.Hour
	case Period7Day:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// HistoryPoint is a single time-series sample for a device.
type HistoryPoint struct {
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status,omitempty"`
}
