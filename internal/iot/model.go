package iot

import (
	"errors"
	"time"
)

// Alert thresholds for incoming readings.
const (
	LowMoistureThreshold     = 30.0
	HighTemperatureThreshold = 35.0
	LowHumidityThreshold     = 40.0
)

// Alert messages raised by Evaluate.
const (
	AlertLowMoisture     = "Low soil moisture - irrigation recommended"
	AlertHighTemperature = "High temperature alert"
	AlertLowHumidity     = "Low humidity detected"
)

const (
	// DefaultHistoryLimit is the page size of a field's history.
	DefaultHistoryLimit = 100
	// MaxHistoryLimit caps any requested history page.
	MaxHistoryLimit = 500
	// StatsWindow is how many recent readings Stats aggregates.
	StatsWindow = 100
)

var (
	// ErrNoData is returned when a field has no readings.
	ErrNoData = errors.New("no data found for this field")
	// ErrValidation wraps input problems.
	ErrValidation = errors.New("invalid reading")
)

// Reading is one sample pushed by a field sensor.
type Reading struct {
	ID          string    `json:"id"`
	FieldID     string    `json:"field_id"`
	DeviceID    string    `json:"device_id"`
	Moisture    float64   `json:"moisture"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	RecordedAt  time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input is the payload a device submits. Timestamp is optional RFC 3339.
type Input struct {
	FieldID     string   `json:"field_id"`
	DeviceID    string   `json:"device_id"`
	Moisture    *float64 `json:"moisture"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Timestamp   string   `json:"timestamp"`
}

// Summary aggregates one metric.
type Summary struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Stats summarises a field's recent readings. All aggregates are zero when
// DataPoints is zero.
type Stats struct {
	FieldID     string  `json:"field_id"`
	DataPoints  int     `json:"data_points"`
	Moisture    Summary `json:"moisture"`
	Temperature Summary `json:"temperature"`
	Humidity    Summary `json:"humidity"`
}

// Evaluate returns the alerts a reading triggers, in a stable order.
func Evaluate(r Reading) []string {
	alerts := []string{}
	if r.Moisture < LowMoistureThreshold {
		alerts = append(alerts, AlertLowMoisture)
	}
	if r.Temperature > HighTemperatureThreshold {
		alerts = append(alerts, AlertHighTemperature)
	}
	if r.Humidity < LowHumidityThreshold {
		alerts = append(alerts, AlertLowHumidity)
	}
	return alerts
}

func summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{Min: values[0], Max: values[0]}
	var total float64
	for _, v := range values {
		total += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Avg = total / float64(len(values))
	return s
}
