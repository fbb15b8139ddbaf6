package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestVerifyEmailPublisher_Handle(t *testing.T) {
	w := &fakeWriter{}
	p := NewVerifyEmailPublisher(w, time.Second, zap.NewNop())
	userID := uuid.New()
	expires := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
	ev := identity.NewVerificationTokenIssuedEvent(userID, "a@b.com", "tok-123", expires)

	require.NoError(t, p.Handle(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, userID.String(), string(msg.Key))
	assert.Equal(t, ev.EventID().String(), header(msg, HeaderEventID))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, map[string]any{
		"user_id":    userID.String(),
		"email":      "a@b.com",
		"token":      "tok-123",
		"expires_at": "2026-05-01T10:30:00Z",
	}, body)
}

func TestVerifyEmailPublisher_WriteFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("no brokers")}
	p := NewVerifyEmailPublisher(w, time.Second, zap.NewNop())
	ev := identity.NewVerificationTokenIssuedEvent(uuid.New(), "a@b.com", "tok", time.Now())

	assert.ErrorContains(t, p.Handle(context.Background(), ev), "no brokers")
	assert.Equal(t, []string{identity.EventTypeVerificationTokenIssued}, p.EventTypes())
}

// fakeReader serves queued messages, then blocks until ctx is cancelled
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{queue: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	close(r.drained)
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func message(t *testing.T, offset int64, eventID string, payload VerifyEmailMessage) kafka.Message {
	t.Helper()
	value, err := json.Marshal(payload)
	require.NoError(t, err)
	return kafka.Message{
		Offset:  offset,
		Value:   value,
		Headers: []kafka.Header{{Key: HeaderEventID, Value: []byte(eventID)}},
	}
}

func runConsumer(t *testing.T, c *Consumer[VerifyEmailMessage], r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-r.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain the reader")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestConsumer_HandlesDedupsAndCommits(t *testing.T) {
	r := newFakeReader(
		message(t, 1, "evt-1", VerifyEmailMessage{Email: "a@b.com", Token: "t1"}),
		message(t, 2, "evt-1", VerifyEmailMessage{Email: "a@b.com", Token: "t1"}),
		kafka.Message{Offset: 3, Value: []byte("{broken")},
		message(t, 4, "evt-2", VerifyEmailMessage{Email: "c@d.com", Token: "t2"}),
	)
	var handled []string
	handler := func(_ context.Context, m VerifyEmailMessage) error {
		handled = append(handled, m.Token)
		return nil
	}
	c := NewConsumer(r, handler, cache.NewMemoryIdempotencyStore(), DefaultConsumerConfig(), zap.NewNop())

	runConsumer(t, c, r)

	assert.Equal(t, []string{"t1", "t2"}, handled)
	assert.Equal(t, []int64{1, 2, 3, 4}, r.committed)
}

func TestConsumer_RetriesThenGivesUp(t *testing.T) {
	r := newFakeReader(message(t, 7, "evt-9", VerifyEmailMessage{Token: "t"}))
	attempts := 0
	handler := func(context.Context, VerifyEmailMessage) error {
		attempts++
		return errors.New("smtp unavailable")
	}
	c := NewConsumer(r, handler, nil, ConsumerConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}, zap.NewNop())

	runConsumer(t, c, r)

	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int64{7}, r.committed)
}
