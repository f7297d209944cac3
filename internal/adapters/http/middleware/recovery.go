package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-rotator/internal/platform/logging"
)

// Recovery turns a handler panic into a 500 error envelope and logs the
// stack. Mount it first so it covers every other middleware.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return RecoveryWithHandler(logger, nil)
}

// RecoveryWithHandler is Recovery with onPanic called, after logging, for
// each recovered value.
func RecoveryWithHandler(logger *slog.Logger, onPanic func(err any, stack []byte)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			stack := debug.Stack()
			traceID := dto.GetTraceID(c)

			logging.FromContextOr(c.Request.Context(), logger).Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(stack)),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			if onPanic != nil {
				onPanic(r, stack)
			}

			if c.Writer.Written() {
				c.Abort()
				return
			}

			resp := dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred")
			if traceID != "" {
				resp = resp.WithTraceID(traceID)
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
		}()

		c.Next()
	}
}
