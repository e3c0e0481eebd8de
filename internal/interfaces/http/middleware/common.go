package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/interfaces/http/dto"
	"go.opentelemetry.io/otel/attribute"
)

// RequestIDKey is the header and gin.Context key of the request id
const RequestIDKey = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or generates one, and puts it
// on the response, the gin context and the request context for logging
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDKey, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		annotateSpan(c, attribute.String("request_id", requestID))
		c.Next()
	}
}

// GetRequestID returns the request id from the gin context or header
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID("ERR_REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size", GetRequestID(c)))
			return
		}

		// streaming bodies without Content-Length are capped while read
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
