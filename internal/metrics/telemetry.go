package metrics

import (
	"SecretKeeper/internal/events"
	"context"

	"go.uber.org/zap"
)

// Telemetry принимает события телеметрии: счётчик в Prometheus и debug-лог.
type Telemetry struct {
	collector *Collector
	logger    *zap.SugaredLogger
}

func NewTelemetry(c *Collector, logger *zap.SugaredLogger) *Telemetry {
	return &Telemetry{collector: c, logger: logger}
}

// Capture учитывает событие. Имя пользователя и workspace в метки не попадают.
func (t *Telemetry) Capture(_ context.Context, ev events.TelemetryEvent) error {
	t.collector.telemetryEvents.WithLabelValues(ev.Event, ev.Properties.Channel).Inc()
	t.logger.Debugw("Telemetry event",
		"event", ev.Event,
		"distinctId", ev.DistinctID,
		"numberOfSecrets", ev.Properties.NumberOfSecrets,
		"environment", ev.Properties.Environment,
		"workspaceId", ev.Properties.WorkspaceID,
		"channel", ev.Properties.Channel,
		"userAgent", ev.Properties.UserAgent,
	)
	return nil
}
