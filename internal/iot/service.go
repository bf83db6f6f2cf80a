package iot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/notification"
)

// Service ingests sensor readings and answers field queries.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds an IoT service. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// Ingest validates and stores a reading and returns it with the alerts it raised.
func (s *Service) Ingest(ctx context.Context, in Input) (Reading, []string, error) {
	reading, err := s.toReading(in)
	if err != nil {
		return Reading{}, nil, err
	}
	if err := s.repo.Insert(ctx, reading); err != nil {
		return Reading{}, nil, err
	}

	alerts := Evaluate(reading)
	if len(alerts) > 0 && s.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindSensorAlert,
			Destination: reading.FieldID,
			Body:        strings.Join(alerts, "; "),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("sensor alert notification failed", slog.String("field_id", reading.FieldID), slog.Any("error", err))
		}
	}
	return reading, alerts, nil
}

// History returns up to limit readings for fieldID, newest first.
func (s *Service) History(ctx context.Context, fieldID string, limit int) ([]Reading, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.repo.ListByField(ctx, fieldID, limit)
}

// Latest returns the most recent reading for fieldID or ErrNoData.
func (s *Service) Latest(ctx context.Context, fieldID string) (Reading, error) {
	readings, err := s.repo.ListByField(ctx, fieldID, 1)
	if err != nil {
		return Reading{}, err
	}
	if len(readings) == 0 {
		return Reading{}, ErrNoData
	}
	return readings[0], nil
}

// Stats aggregates the most recent StatsWindow readings of fieldID.
func (s *Service) Stats(ctx context.Context, fieldID string) (Stats, error) {
	readings, err := s.repo.ListByField(ctx, fieldID, StatsWindow)
	if err != nil {
		return Stats{}, err
	}
	moisture := make([]float64, 0, len(readings))
	temperature := make([]float64, 0, len(readings))
	humidity := make([]float64, 0, len(readings))
	for _, r := range readings {
		moisture = append(moisture, r.Moisture)
		temperature = append(temperature, r.Temperature)
		humidity = append(humidity, r.Humidity)
	}
	return Stats{
		FieldID:     fieldID,
		DataPoints:  len(readings),
		Moisture:    summarize(moisture),
		Temperature: summarize(temperature),
		Humidity:    summarize(humidity),
	}, nil
}

func (s *Service) toReading(in Input) (Reading, error) {
	in.FieldID = strings.TrimSpace(in.FieldID)
	in.DeviceID = strings.TrimSpace(in.DeviceID)
	switch {
	case in.FieldID == "":
		return Reading{}, invalid("field_id is required")
	case in.DeviceID == "":
		return Reading{}, invalid("device_id is required")
	case in.Moisture == nil || in.Temperature == nil || in.Humidity == nil:
		return Reading{}, invalid("moisture, temperature and humidity are required")
	case *in.Moisture < 0 || *in.Moisture > 100:
		return Reading{}, invalid("moisture must be between 0 and 100")
	case *in.Humidity < 0 || *in.Humidity > 100:
		return Reading{}, invalid("humidity must be between 0 and 100")
	}

	now := s.now().UTC()
	recordedAt := now
	if ts := strings.TrimSpace(in.Timestamp); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return Reading{}, invalid("timestamp must be RFC 3339")
		}
		recordedAt = parsed.UTC()
	}

	return Reading{
		ID:          uuid.NewString(),
		FieldID:     in.FieldID,
		DeviceID:    in.DeviceID,
		Moisture:    *in.Moisture,
		Temperature: *in.Temperature,
		Humidity:    *in.Humidity,
		RecordedAt:  recordedAt,
		CreatedAt:   now,
	}, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
