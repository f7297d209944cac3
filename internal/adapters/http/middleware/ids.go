// Package middleware holds the Gin middleware mounted in front of the
// quote API: identifiers, request logging, panic recovery and deadlines.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-rotator/internal/platform/logging"
)

const (
	// HeaderRequestID carries the per-request ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID lets a client group several requests, such as an
	// edit followed by a refresh, under one ID in the logs.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin.Context key holding the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin.Context key holding the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength bounds caller-supplied IDs before they reach logs.
const maxIDLength = 128

// propagatedID is an identifier echoed from request to response and
// attached to the request logger.
type propagatedID struct {
	header string
	key    string
	tag    func(context.Context, string) context.Context
}

func (p propagatedID) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(p.header)
		if !usableID(id) {
			id = uuid.NewString()
		}

		c.Set(p.key, id)
		c.Header(p.header, id)
		c.Request = c.Request.WithContext(p.tag(c.Request.Context(), id))

		c.Next()
	}
}

// usableID rejects empty, oversized and non-printable IDs.
func usableID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}

// RequestID tags every request with an ID, taken from X-Request-ID or
// generated, and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return propagatedID{
		header: HeaderRequestID,
		key:    ContextKeyRequestID,
		tag:    logging.WithRequestID,
	}.middleware()
}

// CorrelationID propagates X-Correlation-ID the way RequestID propagates
// X-Request-ID.
func CorrelationID() gin.HandlerFunc {
	return propagatedID{
		header: HeaderCorrelationID,
		key:    ContextKeyCorrelationID,
		tag:    logging.WithCorrelationID,
	}.middleware()
}

// GetRequestID returns the request ID, or "" outside RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID, or "" outside CorrelationID.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}
