package notification

import (
	"context"
	"errors"
	"log/slog"
)

const (
	// KindWelcome is sent once an account is created.
	KindWelcome = "welcome"
	// KindListingCreated confirms a marketplace listing went live.
	KindListingCreated = "listing_created"
	// KindSensorAlert carries threshold alerts raised by field sensors.
	KindSensorAlert = "sensor_alert"
)

// Message describes a notification payload. UserID is empty for messages that
// are not addressed to an account, such as alerts from unowned sensors.
type Message struct {
	UserID      string `json:"user_id,omitempty"`
	Kind        string `json:"kind"`
	Destination string `json:"destination,omitempty"`
	Body        string `json:"body"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("user_id", message.UserID),
		slog.String("destination", message.Destination),
		slog.String("body", message.Body),
	)
	return nil
}

// Fanout sends every message to each notifier and joins their errors.
type Fanout []Notifier

// Send delivers message to all sinks, continuing past failures.
func (f Fanout) Send(ctx context.Context, message Message) error {
	var errs []error
	for _, n := range f {
		if err := n.Send(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
