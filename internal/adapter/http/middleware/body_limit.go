package middleware

import (
	"net/http"

	"personal-ledger/pkg/apperror"
	"personal-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes bounds request bodies, ledger imports included.
const DefaultMaxBodyBytes int64 = 1 << 20

// MaxBodySize returns middleware that limits the request body size. A
// declared Content-Length over the limit is rejected up front with 413.
// Otherwise the reader fails once the limit is exceeded.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, apperror.ErrPayloadTooLarge())
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
