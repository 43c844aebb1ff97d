// Package middleware holds gin middleware shared by the UI routes.
package middleware

import (
	"errors"
	"net/http"

	"fininsight/domain/core"

	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an identifier, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = core.NewID().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LimitBody caps request bodies at limit bytes. Requests that announce a larger body are
// rejected with 413 and message before any of it is read; streamed bodies are cut off by
// http.MaxBytesReader and detected with IsTooLarge.
func LimitBody(limit int64, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.Header("Connection", "close")
			c.String(http.StatusRequestEntityTooLarge, message)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// IsTooLarge reports whether err came from a body cut off by LimitBody
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
