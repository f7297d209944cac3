package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-rotator/internal/app"
	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

const (
	streamSendBuffer = 16
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// ViewSource renders the current quote for new subscribers.
type ViewSource interface {
	View() domain.View
}

// ViewSourceFunc adapts a function to ViewSource, for wiring a hub before
// the rotator that publishes to it exists.
type ViewSourceFunc func() domain.View

// View implements ViewSource.
func (f ViewSourceFunc) View() domain.View { return f() }

// StreamHub pushes quote changes to websocket subscribers. It is an
// EventPublisher, so the rotator publishes to it directly.
//
// Publish never blocks: a subscriber whose buffer is full is dropped.
type StreamHub struct {
	source   ViewSource
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	clients map[*streamClient]struct{}
	closed  bool
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *streamClient) close() {
	c.once.Do(func() { close(c.send) })
}

// StreamHubConfig configures NewStreamHub.
type StreamHubConfig struct {
	Source ViewSource

	// AllowedOrigins lists browser origins allowed to connect. Empty means
	// same-origin only.
	AllowedOrigins []string

	Logger *slog.Logger
}

// NewStreamHub creates a hub with no subscribers.
func NewStreamHub(cfg StreamHubConfig) *StreamHub {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &StreamHub{
		source:  cfg.Source,
		logger:  logger.With(slog.String("component", "http.StreamHub")),
		now:     time.Now,
		clients: make(map[*streamClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	if len(cfg.AllowedOrigins) > 0 {
		origins := slices.Clone(cfg.AllowedOrigins)
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, origin)
		}
	}

	return h
}

// Subscribers returns the number of connected subscribers.
func (h *StreamHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Publish implements ports.EventPublisher.
func (h *StreamHub) Publish(_ context.Context, event ports.Event) error {
	msg := dto.StreamMessage{Type: event.EventType(), At: h.now().UTC()}

	if changed, ok := event.(app.QuoteChanged); ok {
		view := dto.NewViewResponse(changed.View)
		msg.Trigger = string(changed.Trigger)
		msg.View = &view
		msg.At = changed.At.UTC()
	} else {
		msg.Payload = event.Payload()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.broadcast(data)

	return nil
}

func (h *StreamHub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("dropping slow stream subscriber")
			delete(h.clients, client)
			client.close()
		}
	}
}

// ServeStream handles GET /api/v1/quote/stream. The first frame is a
// snapshot of the current view.
func (h *StreamHub) ServeStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("stream upgrade failed", slog.Any("error", err))
		return
	}

	client := &streamClient{conn: conn, send: make(chan []byte, streamSendBuffer)}

	snapshot, err := h.snapshot()
	if err != nil {
		_ = conn.Close()
		return
	}

	client.send <- snapshot

	if !h.register(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(streamWriteWait))
		_ = conn.Close()

		return
	}

	go h.writePump(client)
	h.readPump(client)
}

func (h *StreamHub) snapshot() ([]byte, error) {
	view := dto.NewViewResponse(h.source.View())

	return json.Marshal(dto.StreamMessage{Type: dto.StreamSnapshot, View: &view, At: h.now().UTC()})
}

func (h *StreamHub) register(client *streamClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[client] = struct{}{}

	return true
}

func (h *StreamHub) unregister(client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
	}
}

// readPump discards client frames and notices when the peer goes away.
func (h *StreamHub) readPump(client *streamClient) {
	defer func() {
		h.unregister(client)
		_ = client.conn.Close()
	}()

	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) writePump(client *streamClient) {
	ticker := time.NewTicker(streamPingPeriod)

	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))

			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}

			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))

			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every subscriber and refuses new ones.
func (h *StreamHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for client := range h.clients {
		delete(h.clients, client)
		client.close()
	}

	return nil
}

// RegisterRoutes registers the stream route.
func (h *StreamHub) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quote/stream", h.ServeStream)
}

var _ ports.EventPublisher = (*StreamHub)(nil)
