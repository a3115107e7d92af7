package models

import "time"

type AlarmMode string

const (
	AlarmOff   AlarmMode = "off"
	AlarmHome  AlarmMode = "home"
	AlarmAway  AlarmMode = "away"
	AlarmNight AlarmMode = "night"
)

// Valid reports whether m is a recognized alarm mode.
func (m AlarmMode) Valid() bool {
	switch m {
	case AlarmOff, AlarmHome, AlarmAway, AlarmNight:
		return true
	}
	return false
}

type AlarmState struct {
	IsArmed       bool       `json:"isArmed"`
	Mode          AlarmMode  `json:"mode"`
	SirenActive   bool       `json:"sirenActive"`
	Triggered     bool       `json:"triggered"`
	TriggerReason string     `json:"triggerReason,omitempty"`
	LastArmedAt   *time.Time `json:"lastArmedAt,omitempty"`
}

type SystemStats struct {
	TotalSensors  int        `json:"totalSensors"`
	OnlineSensors int        `json:"onlineSensors"`
	ActiveAlerts  int        `json:"activeAlerts"`
	LastIncident  *time.Time `json:"lastIncident,omitempty"`
}
