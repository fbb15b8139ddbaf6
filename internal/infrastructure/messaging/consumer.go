package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafka.Reader the consumer uses
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one decoded message
type Handler[T any] func(ctx context.Context, msg T) error

// ConsumerConfig tunes retries and deduplication
type ConsumerConfig struct {
	// MaxAttempts bounds handler attempts per message; the message is then
	// committed and logged as dropped
	MaxAttempts uint64
	// InitialBackoff is the first retry delay; later delays grow exponentially
	InitialBackoff time.Duration
	// DedupTTL is how long processed event IDs are remembered
	DedupTTL time.Duration
}

func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		MaxAttempts:    5,
		InitialBackoff: 500 * time.Millisecond,
		DedupTTL:       24 * time.Hour,
	}
}

// Consumer reads JSON messages of type T, hands them to a Handler with
// retries and commits each one after it is handled or given up on
type Consumer[T any] struct {
	reader    MessageReader
	handler   Handler[T]
	processed cache.IdempotencyStore
	cfg       ConsumerConfig
	logger    *zap.Logger
}

func NewConsumer[T any](reader MessageReader, handler Handler[T], processed cache.IdempotencyStore, cfg ConsumerConfig, logger *zap.Logger) *Consumer[T] {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultConsumerConfig().MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultConsumerConfig().InitialBackoff
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = DefaultConsumerConfig().DedupTTL
	}
	return &Consumer[T]{reader: reader, handler: handler, processed: processed, cfg: cfg, logger: logger}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation and
// the fetch or commit error otherwise.
func (c *Consumer[T]) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}
		c.process(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg kafka.Message) {
	log := c.logger.With(
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset))

	var payload T
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		log.Error("Dropping undecodable message", zap.Error(err))
		return
	}

	if id := header(msg, HeaderEventID); id != "" && c.processed != nil {
		fresh, err := c.processed.MarkProcessed(ctx, id, c.cfg.DedupTTL)
		if err != nil {
			log.Warn("Idempotency check failed, processing anyway", zap.Error(err))
		} else if !fresh {
			log.Info("Skipping redelivered message", zap.String("event_id", id))
			return
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(c.backoff(), c.cfg.MaxAttempts-1), ctx)
	err := backoff.RetryNotify(func() error {
		return c.handler(ctx, payload)
	}, policy, func(err error, wait time.Duration) {
		log.Warn("Message handler failed, retrying", zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil {
		log.Error("Dropping message after retries", zap.Error(err))
	}
}

func (c *Consumer[T]) backoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxElapsedTime = 0
	return b
}

func (c *Consumer[T]) Close() error {
	return c.reader.Close()
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
