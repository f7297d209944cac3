package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-rotator/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected func(t *testing.T, got string)
	}{
		{
			name: "generates a UUID when absent",
			expected: func(t *testing.T, got string) {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			},
		},
		{
			name:   "propagates the caller's ID",
			header: "req-123",
			expected: func(t *testing.T, got string) {
				assert.Equal(t, "req-123", got)
			},
		},
		{
			name:   "replaces an oversized ID",
			header: strings.Repeat("x", maxIDLength+1),
			expected: func(t *testing.T, got string) {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			},
		},
		{
			name:   "replaces an ID with spaces",
			header: "req 1 injected=true",
			expected: func(t *testing.T, got string) {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string

			router := gin.New()
			router.Use(RequestID())
			router.GET("/test", func(c *gin.Context) {
				seen = GetRequestID(c)
				c.Status(http.StatusOK)
			})

			header := http.Header{}
			if tt.header != "" {
				header.Set(HeaderRequestID, tt.header)
			}

			w := serve(router, http.MethodGet, "/test", header)

			tt.expected(t, w.Header().Get(HeaderRequestID))
			assert.Equal(t, w.Header().Get(HeaderRequestID), seen)
		})
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	var seen string

	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/test", func(c *gin.Context) {
		seen = GetCorrelationID(c)
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodGet, "/test", http.Header{HeaderCorrelationID: {"corr-9"}})

	assert.Equal(t, "corr-9", w.Header().Get(HeaderCorrelationID))
	assert.Equal(t, "corr-9", seen)

	w = serve(router, http.MethodGet, "/test", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderCorrelationID))
}

func TestIDsReachTheRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), base))
		c.Next()
	}, RequestID(), CorrelationID())
	router.GET("/test", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside")
		c.Status(http.StatusOK)
	})

	serve(router, http.MethodGet, "/test", http.Header{
		HeaderRequestID:     {"req-1"},
		HeaderCorrelationID: {"corr-1"},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "corr-1", entry["correlation_id"])
}

func TestGetIDs_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, GetRequestID(c))
	assert.Empty(t, GetCorrelationID(c))
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		status    int
		wantLevel string
		skipped   bool
	}{
		{name: "successful read logs at debug", method: http.MethodGet, path: "/api/v1/quote", status: http.StatusOK, wantLevel: "DEBUG"},
		{name: "successful write logs at info", method: http.MethodPost, path: "/api/v1/quote/next", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error logs at warn", method: http.MethodGet, path: "/api/v1/quote", status: http.StatusBadRequest, wantLevel: "WARN"},
		{name: "server error logs at error", method: http.MethodGet, path: "/api/v1/quote", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "probe paths are skipped", method: http.MethodGet, path: "/-/live", status: http.StatusOK, skipped: true},
		{name: "configured paths are skipped", method: http.MethodGet, path: "/favicon.ico", status: http.StatusOK, skipped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			router := gin.New()
			router.Use(Logging(logger, "/favicon.ico"))
			router.Handle(tt.method, tt.path, func(c *gin.Context) { c.Status(tt.status) })

			serve(router, tt.method, tt.path+"?x=1", nil)

			if tt.skipped {
				assert.Empty(t, buf.String())
				return
			}

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, tt.path+"?x=1", entry["path"])
			assert.Equal(t, tt.path, entry["route"])
			assert.EqualValues(t, tt.status, entry["status"])
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Run("returns the error envelope", func(t *testing.T) {
		var buf bytes.Buffer

		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewJSONHandler(&buf, nil))))
		router.GET("/panic", func(*gin.Context) { panic("test panic") })

		w := serve(router, http.MethodGet, "/panic", nil)

		require.Equal(t, http.StatusInternalServerError, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
		assert.Contains(t, buf.String(), "panic recovered")
		assert.Contains(t, buf.String(), "test panic")
	})

	t.Run("calls the panic handler", func(t *testing.T) {
		var got any
		var stack []byte

		router := gin.New()
		router.Use(RecoveryWithHandler(slog.New(slog.DiscardHandler), func(err any, s []byte) {
			got = err
			stack = s
		}))
		router.GET("/panic", func(*gin.Context) { panic("handled") })

		serve(router, http.MethodGet, "/panic", nil)

		assert.Equal(t, "handled", got)
		assert.NotEmpty(t, stack)
	})

	t.Run("keeps a response already written", func(t *testing.T) {
		router := gin.New()
		router.Use(Recovery(slog.New(slog.DiscardHandler)))
		router.GET("/panic", func(c *gin.Context) {
			c.String(http.StatusAccepted, "partial")
			panic("late")
		})

		w := serve(router, http.MethodGet, "/panic", nil)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "partial", w.Body.String())
	})

	t.Run("re-panics http.ErrAbortHandler", func(t *testing.T) {
		router := gin.New()
		router.Use(Recovery(slog.New(slog.DiscardHandler)))
		router.GET("/abort", func(*gin.Context) { panic(http.ErrAbortHandler) })

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			serve(router, http.MethodGet, "/abort", nil)
		})
	})
}

func TestTimeout(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		hasDeadline bool
	}{
		{name: "sets a deadline", path: "/api/v1/quote", hasDeadline: true},
		{name: "skips matching suffix", path: "/api/v1/quote/stream", hasDeadline: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deadline time.Time
			var ok bool

			router := gin.New()
			router.Use(Timeout(time.Minute, "/stream"))
			router.GET(tt.path, func(c *gin.Context) {
				deadline, ok = c.Request.Context().Deadline()
				c.Status(http.StatusOK)
			})

			serve(router, http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.hasDeadline, ok)
			if tt.hasDeadline {
				assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
			}
		})
	}
}
