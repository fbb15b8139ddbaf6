// Command mailer consumes verification events from Kafka and sends the
// verification mail over SMTP.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/bizhub/backend/internal/infrastructure/logger"
	"github.com/bizhub/backend/internal/infrastructure/mail"
	"github.com/bizhub/backend/internal/infrastructure/messaging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}).Named("mailer")
	defer func() {
		_ = log.Sync()
	}()

	if !cfg.Kafka.Enabled() {
		log.Fatal("Kafka brokers not configured")
	}
	if cfg.SMTP.Host == "" {
		log.Fatal("SMTP host not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redelivered events are skipped. Redis shares the record between
	// replicas; a single replica can keep it in memory.
	var processed cache.IdempotencyStore = cache.NewMemoryIdempotencyStore()
	if cfg.Redis.Host != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, deduplicating in memory", zap.Error(err))
		} else {
			defer client.Close()
			processed = cache.NewRedisIdempotencyStore(client, "bizhub:mailer:processed:")
		}
	}

	mailer := mail.NewMailer(cfg.SMTP, mail.NewSMTPTransport(cfg.SMTP), log)
	handle := func(ctx context.Context, msg messaging.VerifyEmailMessage) error {
		return mailer.SendVerification(ctx, msg.Email, msg.Token, msg.ExpiresAt)
	}

	reader := messaging.NewReader(cfg.Kafka, cfg.Kafka.VerifyEmailTopic, cfg.Kafka.MailerGroupID)
	consumer := messaging.NewConsumer[messaging.VerifyEmailMessage](reader, handle, processed, messaging.DefaultConsumerConfig(), log)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Error("Error closing Kafka reader", zap.Error(err))
		}
	}()

	log.Info("Mailer consuming",
		zap.String("topic", cfg.Kafka.VerifyEmailTopic),
		zap.String("group", cfg.Kafka.MailerGroupID),
	)
	if err := consumer.Run(ctx); err != nil {
		log.Error("Consumer stopped", zap.Error(err))
		return
	}
	log.Info("Mailer stopped")
}
