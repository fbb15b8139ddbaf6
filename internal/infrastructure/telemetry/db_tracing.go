package telemetry

import (
	"fmt"

	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dbName = "bizhub"

// InstrumentDB registers the otelgorm tracing plugin. Query variables are
// never attached to spans. Slow queries are logged by the GORM logger.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}
	logger.Info("Database tracing enabled")
	return nil
}
