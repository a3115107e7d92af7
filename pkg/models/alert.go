package models

import "time"

type AlertLevel string

const (
	LevelInfo     AlertLevel = "info"
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
)

type AlertType string

const (
	AlertFire      AlertType = "fire"
	AlertIntrusion AlertType = "intrusion"
	AlertSystem    AlertType = "system"
)

type Alert struct {
	ID           string     `json:"id"`
	Type         AlertType  `json:"type"`
	Level        AlertLevel `json:"level"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	SensorID     string     `json:"sensorId,omitempty"`
	Location     string     `json:"location"`
	Timestamp    time.Time  `json:"timestamp"`
	Acknowledged bool       `json:"acknowledged"`
}

type Zone struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Sensors []string     `json:"sensors"`
	Status  SensorStatus `json:"status"`
	IsArmed bool         `json:"isArmed"`
}
