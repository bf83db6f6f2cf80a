package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryLimit caps how many records History returns.
const HistoryLimit = 50

// Service records addressed notifications and forwards every message to a sink.
type Service struct {
	repo Repository
	sink Notifier
	now  func() time.Time
}

// NewService builds a notification service. sink may be nil to only keep history.
func NewService(repo Repository, sink Notifier) *Service {
	return &Service{repo: repo, sink: sink, now: time.Now}
}

// Send persists messages that carry a user id, then hands the message to the sink.
func (s *Service) Send(ctx context.Context, message Message) error {
	if message.UserID != "" {
		rec := Record{
			ID:          uuid.NewString(),
			UserID:      message.UserID,
			Kind:        message.Kind,
			Destination: message.Destination,
			Body:        message.Body,
			CreatedAt:   s.now().UTC(),
		}
		if err := s.repo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("store notification: %w", err)
		}
	}
	if s.sink == nil {
		return nil
	}
	return s.sink.Send(ctx, message)
}

// History returns the user's most recent notifications, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Record, error) {
	return s.repo.ListByUser(ctx, userID, HistoryLimit)
}
