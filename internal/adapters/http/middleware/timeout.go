package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout bounds the request context with a deadline. Handlers see it
// through ctx.Done(); a rotation that observes an expired context reports
// a timeout error which the error mapping turns into 504.
//
// Requests whose path ends in one of skipSuffixes, such as the websocket
// stream, keep an unbounded context.
func Timeout(timeout time.Duration, skipSuffixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, suffix := range skipSuffixes {
			if strings.HasSuffix(c.Request.URL.Path, suffix) {
				c.Next()
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
