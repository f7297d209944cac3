package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

type testEvent struct {
	payload map[string]any
}

func (e testEvent) EventType() string { return "quote.changed" }
func (e testEvent) Payload() any      { return e.payload }

type fakeConn struct {
	published  []*nats.Msg
	publishErr error
	connected  bool
	flushErr   error
	drained    bool
}

func (f *fakeConn) PublishMsg(msg *nats.Msg) error {
	if f.publishErr != nil {
		return f.publishErr
	}

	f.published = append(f.published, msg)

	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) IsConnected() bool                      { return f.connected }

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

type recordingPublisher struct {
	events []ports.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e ports.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestNewEnvelope(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))

	env := NewEnvelope(testEvent{payload: map[string]any{"quote": "A"}}, now)

	_, err := uuid.Parse(env.ID)
	require.NoError(t, err)
	assert.Equal(t, "quote.changed", env.Type)
	assert.Equal(t, time.UTC, env.OccurredAt.Location())
	assert.True(t, env.OccurredAt.Equal(now))

	data, err := env.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payload":{"quote":"A"}`)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := p.Publish(context.Background(), testEvent{payload: map[string]any{"quote": "A"}})

	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "event published", entry["msg"])
	assert.Equal(t, "quote.changed", entry["type"])
	assert.Equal(t, "events.log", entry["component"])
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{connected: true}
	p := newNATSPublisher(conn, "", slog.Default())
	p.now = func() time.Time { return time.Unix(100, 0) }

	err := p.Publish(context.Background(), testEvent{payload: map[string]any{"index": 2}})

	require.NoError(t, err)
	require.Len(t, conn.published, 1)

	msg := conn.published[0]
	assert.Equal(t, DefaultSubject+".quote.changed", msg.Subject)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, "quote.changed", env.Type)
	assert.Equal(t, env.ID, msg.Header.Get(nats.MsgIdHdr))
	assert.True(t, env.OccurredAt.Equal(time.Unix(100, 0)))
}

func TestNATSPublisher_PublishErrors(t *testing.T) {
	t.Run("closed connection is unavailable", func(t *testing.T) {
		p := newNATSPublisher(&fakeConn{publishErr: nats.ErrConnectionClosed}, "s", slog.Default())

		err := p.Publish(context.Background(), testEvent{})

		assert.True(t, domain.IsUnavailable(err))
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		p := newNATSPublisher(&fakeConn{publishErr: nats.ErrMaxPayload}, "s", slog.Default())

		err := p.Publish(context.Background(), testEvent{})

		require.ErrorIs(t, err, nats.ErrMaxPayload)
		assert.Contains(t, err.Error(), "s.quote.changed")
	})
}

func TestNATSPublisher_Health(t *testing.T) {
	conn := &fakeConn{connected: false}
	p := newNATSPublisher(conn, "s", slog.Default())

	assert.True(t, domain.IsUnavailable(p.Check(context.Background())))
	assert.True(t, p.Optional())
	assert.Equal(t, "events.nats", p.Name())

	conn.connected = true
	assert.NoError(t, p.Check(context.Background()))

	conn.flushErr = nats.ErrTimeout
	assert.ErrorIs(t, p.Check(context.Background()), nats.ErrTimeout)

	require.NoError(t, p.Close())
	assert.True(t, conn.drained)
}

func TestFanout(t *testing.T) {
	first := &recordingPublisher{err: errors.New("first down")}
	second := &recordingPublisher{}

	err := Fanout{first, nil, second}.Publish(context.Background(), testEvent{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "first down")
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1, "a failing publisher must not block the others")

	assert.NoError(t, Fanout{}.Publish(context.Background(), testEvent{}))
}
