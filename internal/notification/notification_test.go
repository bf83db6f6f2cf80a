package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/logging"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type recordingNotifier struct {
	sent []Message
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, m Message) error {
	n.sent = append(n.sent, m)
	return n.err
}

func TestKafkaNotifierPublishesJSON(t *testing.T) {
	w := &fakeWriter{}
	n := newKafkaNotifier(w)
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	err := n.Send(context.Background(), Message{UserID: "u-1", Kind: KindWelcome, Body: "hello"})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	require.Equal(t, "u-1", string(w.messages[0].Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	require.Equal(t, KindWelcome, decoded["kind"])
	require.Equal(t, "hello", decoded["body"])
	require.Equal(t, "2024-06-01T09:00:00Z", decoded["sent_at"])

	require.NoError(t, n.Close())
	require.True(t, w.closed)
}

func TestKafkaNotifierKeysUnaddressedByDestination(t *testing.T) {
	w := &fakeWriter{}
	n := newKafkaNotifier(w)

	require.NoError(t, n.Send(context.Background(), Message{Kind: KindSensorAlert, Destination: "field-7", Body: "dry"}))
	require.Equal(t, "field-7", string(w.messages[0].Key))
}

func TestKafkaNotifierWrapsWriteError(t *testing.T) {
	n := newKafkaNotifier(&fakeWriter{err: errors.New("broker down")})
	err := n.Send(context.Background(), Message{Kind: KindWelcome})
	require.ErrorContains(t, err, "broker down")
}

func TestFanoutContinuesPastFailures(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("boom")}
	ok := &recordingNotifier{}

	err := Fanout{failing, ok, NewLoggerNotifier(logging.Discard())}.Send(context.Background(), Message{Kind: KindWelcome})
	require.ErrorContains(t, err, "boom")
	require.Len(t, ok.sent, 1)
}

func TestServiceStoresAddressedMessages(t *testing.T) {
	sink := &recordingNotifier{}
	svc := NewService(NewMemoryRepository(), sink)
	ctx := context.Background()
	userID := uuid.NewString()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < HistoryLimit+5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		require.NoError(t, svc.Send(ctx, Message{UserID: userID, Kind: KindListingCreated, Body: at.Format(time.RFC3339)}))
	}
	require.NoError(t, svc.Send(ctx, Message{Kind: KindSensorAlert, Destination: "field-1", Body: "hot"}))
	require.Len(t, sink.sent, HistoryLimit+6)

	history, err := svc.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, HistoryLimit)
	require.True(t, history[0].CreatedAt.After(history[1].CreatedAt))
	require.Equal(t, base.Add(time.Duration(HistoryLimit+4)*time.Minute), history[0].CreatedAt)

	empty, err := svc.History(ctx, uuid.NewString())
	require.NoError(t, err)
	require.Empty(t, empty)
}
