package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-rotator/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds API requests when RouterConfig.Timeout is unset.
const DefaultRequestTimeout = 5 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is used for request logs outside a request-scoped logger.
	Logger *slog.Logger

	// ServiceName names the server spans.
	ServiceName string

	// Tracing enables otelgin spans and the request metrics.
	Tracing bool

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler

	// StreamHub serves GET /api/v1/quote/stream. Optional.
	StreamHub *handlers.StreamHub

	// Timeout is the per-request deadline under /api/v1.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - group related requests
//  4. OpenTelemetry - tracing and metrics, when enabled
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline, /api/v1 only
//
// Route groups:
//   - /-/      probes, build info and Prometheus metrics
//   - /api/v1/ the quote API and its websocket stream
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	if cfg.Tracing {
		engine.Use(
			telemetry.TracingMiddleware(cfg.ServiceName),
			telemetry.Middleware(),
		)
	}

	engine.Use(middleware.Logging(cfg.Logger))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(engine.Group("/-"))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.Timeout(timeout, "/stream"))

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterRoutes(apiV1)
	}

	if cfg.StreamHub != nil {
		cfg.StreamHub.RegisterRoutes(apiV1)
	}
}
