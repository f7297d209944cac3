package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// DefaultSubject is the subject prefix events are published under; the
// event type is appended, e.g. "quoterotator.events.quote.changed".
const DefaultSubject = "quoterotator.events"

// natsConn is the subset of *nats.Conn the publisher uses.
type natsConn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	IsConnected() bool
	Drain() error
}

// NATSPublisher publishes event envelopes to NATS core subjects.
type NATSPublisher struct {
	conn    natsConn
	subject string
	now     func() time.Time
	logger  *slog.Logger
}

// NATSConfig configures NewNATSPublisher.
type NATSConfig struct {
	URL     string
	Subject string
	Name    string
	Logger  *slog.Logger
}

// NewNATSPublisher connects to the server at cfg.URL. The connection
// reconnects on its own; publishes made while disconnected are buffered by
// the client library.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "events.nats"))

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", cfg.URL, err)
	}

	logger.Info("nats publisher connected", slog.String("url", cfg.URL), slog.String("subject", cfg.Subject))

	return newNATSPublisher(conn, cfg.Subject, logger), nil
}

func newNATSPublisher(conn natsConn, subject string, logger *slog.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}

	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		now:     time.Now,
		logger:  logger,
	}
}

// Publish sends event on <subject>.<event type>. The envelope ID doubles as
// the JetStream de-duplication header for consumers that persist events.
func (p *NATSPublisher) Publish(ctx context.Context, event ports.Event) error {
	env := NewEnvelope(event, p.now())

	data, err := env.Marshal()
	if err != nil {
		return err
	}

	msg := nats.NewMsg(p.subject + "." + env.Type)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, env.ID)

	if err := p.conn.PublishMsg(msg); err != nil {
		if errors.Is(err, nats.ErrConnectionClosed) {
			return domain.NewUnavailableError("nats", err.Error())
		}

		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}

	p.logger.DebugContext(ctx, "event published", slog.String("subject", msg.Subject), slog.String("id", env.ID))

	return nil
}

// Name implements ports.HealthChecker.
func (p *NATSPublisher) Name() string { return "events.nats" }

// Check round-trips a flush to the server.
func (p *NATSPublisher) Check(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return domain.NewUnavailableError("nats", "not connected")
	}

	return p.conn.FlushWithContext(ctx)
}

// Optional marks the broker as non-critical for readiness.
func (p *NATSPublisher) Optional() bool { return true }

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

var (
	_ ports.EventPublisher  = (*NATSPublisher)(nil)
	_ ports.OptionalChecker = (*NATSPublisher)(nil)
)
