package events

import (
	"context"
	"log/slog"
)

// LogSink records events to the structured log only. It backs deployments
// without a Kafka feed so event emission stays observable without growing
// any in-process buffer.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink builds a sink that writes events to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "pass event",
		"event_id", event.ID,
		"event_type", event.Type,
		"serial_number", event.Serial,
		"device_id", event.DeviceID,
	)
	return nil
}
