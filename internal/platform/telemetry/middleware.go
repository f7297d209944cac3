package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-rotator/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-rotator/telemetry"

	// TraceIDHeader carries the active trace ID back to the caller.
	TraceIDHeader = "X-Trace-ID"

	streamSuffix = "/stream"
)

// Metrics holds HTTP server instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	var (
		m   Metrics
		err error
	)

	m.requestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.requestTotal, err = meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.activeRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests, websocket streams included"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// Middleware returns Gin middleware recording request metrics and echoing
// the active trace ID in X-Trace-ID and on the request logger. Mount it after TracingMiddleware so a
// span exists. Long-lived stream connections count as active but are left
// out of the duration histogram.
func Middleware() gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			id := sc.TraceID().String()
			c.Header(TraceIDHeader, id)
			c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), id))
		}

		if metrics == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.request.method", c.Request.Method)
		start := time.Now()

		metrics.activeRequests.Add(ctx, 1, metric.WithAttributes(method, route))
		defer metrics.activeRequests.Add(ctx, -1, metric.WithAttributes(method, route))

		c.Next()

		attrs := metric.WithAttributes(method, route, attribute.Int("http.response.status_code", c.Writer.Status()))
		metrics.requestTotal.Add(ctx, 1, attrs)

		if !isStream(c.Request) {
			metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
	}
}

// TracingMiddleware starts a server span per request. The websocket stream
// is excluded because its span would last as long as the connection.
func TracingMiddleware(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	opts = append(opts, otelgin.WithFilter(func(r *http.Request) bool {
		return !isStream(r)
	}))

	return otelgin.Middleware(serviceName, opts...)
}

func isStream(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, streamSuffix)
}
