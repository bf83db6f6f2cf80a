package iot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/logging"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/notification"
)

type outbox struct{ sent []notification.Message }

func (o *outbox) Send(_ context.Context, m notification.Message) error {
	o.sent = append(o.sent, m)
	return nil
}

func f(v float64) *float64 { return &v }

func sample(field string, moisture, temperature, humidity float64, at time.Time) Input {
	return Input{
		FieldID:     field,
		DeviceID:    "esp32-1",
		Moisture:    f(moisture),
		Temperature: f(temperature),
		Humidity:    f(humidity),
		Timestamp:   at.Format(time.RFC3339),
	}
}

func TestEvaluateThresholds(t *testing.T) {
	cases := []struct {
		name   string
		r      Reading
		alerts []string
	}{
		{"healthy", Reading{Moisture: 30, Temperature: 35, Humidity: 40}, []string{}},
		{"dry", Reading{Moisture: 29.9, Temperature: 25, Humidity: 60}, []string{AlertLowMoisture}},
		{"hot", Reading{Moisture: 50, Temperature: 35.1, Humidity: 60}, []string{AlertHighTemperature}},
		{"everything", Reading{Moisture: 10, Temperature: 40, Humidity: 20}, []string{AlertLowMoisture, AlertHighTemperature, AlertLowHumidity}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.alerts, Evaluate(tc.r))
		})
	}
}

func TestIngestStoresAndNotifies(t *testing.T) {
	box := &outbox{}
	svc := NewService(NewMemoryRepository(), box, logging.Discard())
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)

	reading, alerts, err := svc.Ingest(ctx, sample("field-1", 20, 38, 55, at))
	require.NoError(t, err)
	require.Equal(t, []string{AlertLowMoisture, AlertHighTemperature}, alerts)
	require.Equal(t, at, reading.RecordedAt)

	require.Len(t, box.sent, 1)
	require.Equal(t, notification.KindSensorAlert, box.sent[0].Kind)
	require.Equal(t, "field-1", box.sent[0].Destination)

	_, alerts, err = svc.Ingest(ctx, sample("field-1", 50, 25, 60, at.Add(time.Minute)))
	require.NoError(t, err)
	require.Empty(t, alerts)
	require.Len(t, box.sent, 1)
}

func TestIngestValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, logging.Discard())
	now := time.Now()

	bad := map[string]Input{
		"field":     {DeviceID: "d", Moisture: f(1), Temperature: f(1), Humidity: f(1)},
		"device":    {FieldID: "x", Moisture: f(1), Temperature: f(1), Humidity: f(1)},
		"missing":   {FieldID: "x", DeviceID: "d", Moisture: f(1)},
		"moisture":  sample("x", 101, 20, 50, now),
		"humidity":  sample("x", 50, 20, -1, now),
		"timestamp": {FieldID: "x", DeviceID: "d", Moisture: f(1), Temperature: f(1), Humidity: f(1), Timestamp: "yesterday"},
	}
	for name, in := range bad {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Ingest(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestHistoryLatestAndStats(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, logging.Discard())
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Latest(ctx, "field-1")
	require.ErrorIs(t, err, ErrNoData)

	empty, err := svc.Stats(ctx, "field-1")
	require.NoError(t, err)
	require.Zero(t, empty.DataPoints)
	require.Equal(t, Summary{}, empty.Moisture)

	for i, m := range []float64{40, 20, 60} {
		_, _, err := svc.Ingest(ctx, sample("field-1", m, 20+float64(i), 50, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	_, _, err = svc.Ingest(ctx, sample("field-2", 90, 30, 90, base))
	require.NoError(t, err)

	latest, err := svc.Latest(ctx, "field-1")
	require.NoError(t, err)
	require.Equal(t, 60.0, latest.Moisture)

	history, err := svc.History(ctx, "field-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 60.0, history[0].Moisture)
	require.Equal(t, 20.0, history[1].Moisture)

	stats, err := svc.Stats(ctx, "field-1")
	require.NoError(t, err)
	require.Equal(t, 3, stats.DataPoints)
	require.Equal(t, Summary{Avg: 40, Min: 20, Max: 60}, stats.Moisture)
	require.Equal(t, Summary{Avg: 21, Min: 20, Max: 22}, stats.Temperature)
}

func TestStatsUsesRecentWindow(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, logging.Discard())
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, _, err := svc.Ingest(ctx, sample("field-1", 0, 20, 50, base))
	require.NoError(t, err)
	for i := 1; i <= StatsWindow; i++ {
		_, _, err := svc.Ingest(ctx, sample("field-1", 50, 20, 50, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, "field-1")
	require.NoError(t, err)
	require.Equal(t, StatsWindow, stats.DataPoints)
	require.Equal(t, 50.0, stats.Moisture.Min)
}
