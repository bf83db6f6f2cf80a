package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// event is the wire format published to the notification topic.
type event struct {
	Message
	SentAt time.Time `json:"sent_at"`
}

// KafkaNotifier publishes notifications as JSON events.
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
	now     func() time.Time
}

// NewKafkaNotifier wraps a configured kafka writer.
func NewKafkaNotifier(w *kafka.Writer) *KafkaNotifier {
	return newKafkaNotifier(w)
}

func newKafkaNotifier(w messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w, timeout: 5 * time.Second, now: time.Now}
}

// Send publishes message keyed by user id, or destination when unaddressed,
// so events for one recipient stay ordered within a partition.
func (n *KafkaNotifier) Send(ctx context.Context, message Message) error {
	payload, err := json.Marshal(event{Message: message, SentAt: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	key := message.UserID
	if key == "" {
		key = message.Destination
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  n.now(),
	}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
