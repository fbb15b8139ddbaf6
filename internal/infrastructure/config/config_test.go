package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "bizhub-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "bizhub", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "", cfg.Redis.Host)
		assert.False(t, cfg.Kafka.Enabled())
		assert.Equal(t, "user.verify_email", cfg.Kafka.VerifyEmailTopic)
		assert.Equal(t, 4, cfg.Notification.MaxVisible)
		assert.Equal(t, 50, cfg.Notification.MaxQueued)
		assert.Equal(t, 5*time.Second, cfg.Notification.DedupWindow)
		assert.Equal(t, 30*time.Minute, cfg.Registration.TokenTTL)
		assert.Equal(t, "memory", cfg.Cache.Backend)
		assert.Equal(t, "@every 5m", cfg.Scheduler.ToastSweepSpec)
	})

	t.Run("loads values from environment variables with BIZHUB prefix", func(t *testing.T) {
		t.Setenv("BIZHUB_APP_PORT", "9000")
		t.Setenv("BIZHUB_DATABASE_HOST", "testdb.local")
		t.Setenv("BIZHUB_DATABASE_PORT", "5433")
		t.Setenv("BIZHUB_DATABASE_PASSWORD", "testpass")
		t.Setenv("BIZHUB_REDIS_HOST", "cache.local")
		t.Setenv("BIZHUB_KAFKA_BROKERS", "kafka:9092")
		t.Setenv("BIZHUB_NOTIFICATION_MAX_VISIBLE", "6")
		t.Setenv("BIZHUB_CACHE_BACKEND", "redis")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.True(t, cfg.Kafka.Enabled())
		assert.Equal(t, 6, cfg.Notification.MaxVisible)
		assert.Equal(t, "redis", cfg.Cache.Backend)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("BIZHUB_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("BIZHUB_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects out of range toast bound", func(t *testing.T) {
		t.Setenv("BIZHUB_NOTIFICATION_MAX_VISIBLE", "11")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notification.max_visible")
	})

	t.Run("rejects unknown cache backend", func(t *testing.T) {
		t.Setenv("BIZHUB_CACHE_BACKEND", "memcached")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	prod := func(t *testing.T) {
		t.Setenv("BIZHUB_APP_ENV", "production")
		t.Setenv("BIZHUB_JWT_SECRET", "a-very-long-secret-key-that-is-at-least-32-chars")
		t.Setenv("BIZHUB_DATABASE_PASSWORD", "secure-password")
		t.Setenv("BIZHUB_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		prod(t)
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		prod(t)
		t.Setenv("BIZHUB_JWT_SECRET", "short")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		prod(t)
		t.Setenv("BIZHUB_DATABASE_PASSWORD", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		prod(t)
		t.Setenv("BIZHUB_DATABASE_SSLMODE", "disable")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "bizhub", SSLMode: "disable"}
		assert.Equal(t, "postgres://u:p@localhost:5432/bizhub?sslmode=disable", cfg.DSN())
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
