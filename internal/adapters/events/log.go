package events

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// LogPublisher writes events to a logger. It is the publisher used when no
// broker is configured.
type LogPublisher struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogPublisher logs events at info level.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogPublisher{
		logger: logger.With(slog.String("component", "events.log")),
		level:  slog.LevelInfo,
	}
}

// Publish logs the event type and payload.
func (p *LogPublisher) Publish(ctx context.Context, event ports.Event) error {
	p.logger.Log(ctx, p.level, "event published",
		slog.String("type", event.EventType()),
		slog.Any("payload", event.Payload()),
	)

	return nil
}
