package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// HeaderEventID carries the domain event ID so consumers can drop redeliveries
const HeaderEventID = "event_id"

// VerifyEmailMessage is the payload on the verify-email topic
type VerifyEmailMessage struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MessageWriter is the subset of *kafka.Writer the publisher uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// VerifyEmailPublisher forwards VerificationTokenIssued events to Kafka.
// It is an event bus handler, so a broker outage never fails registration.
type VerifyEmailPublisher struct {
	writer  MessageWriter
	timeout time.Duration
	logger  *zap.Logger
}

func NewVerifyEmailPublisher(writer MessageWriter, timeout time.Duration, logger *zap.Logger) *VerifyEmailPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &VerifyEmailPublisher{writer: writer, timeout: timeout, logger: logger}
}

func (p *VerifyEmailPublisher) EventTypes() []string {
	return []string{identity.EventTypeVerificationTokenIssued}
}

func (p *VerifyEmailPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*identity.VerificationTokenIssuedEvent)
	if !ok {
		return nil
	}
	value, err := json.Marshal(VerifyEmailMessage{
		UserID:    ev.AggregateID(),
		Email:     ev.Email,
		Token:     ev.Token,
		ExpiresAt: ev.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal verify email message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(ev.AggregateID().String()),
		Value:   value,
		Time:    ev.OccurredAt(),
		Headers: []kafka.Header{{Key: HeaderEventID, Value: []byte(ev.EventID().String())}},
	})
	if err != nil {
		return fmt.Errorf("publish verify email message: %w", err)
	}
	p.logger.Debug("Verify email message published", zap.String("user_id", ev.AggregateID().String()))
	return nil
}

func (p *VerifyEmailPublisher) Close() error {
	return p.writer.Close()
}

var _ shared.EventHandler = (*VerifyEmailPublisher)(nil)
