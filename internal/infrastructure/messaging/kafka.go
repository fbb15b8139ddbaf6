package messaging

import (
	"time"

	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
)

// NewWriter builds a synchronous writer for topic that waits for every
// in-sync replica
func NewWriter(cfg config.KafkaConfig, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
}

// NewReader builds a consumer-group reader for topic. Offsets are committed
// explicitly after each message is handled.
func NewReader(cfg config.KafkaConfig, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
}
