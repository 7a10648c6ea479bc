// internal/interfaces/http/middleware/timeout.go
package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout bounds the request context so storage calls give up after timeout.
// Long-lived paths such as the websocket endpoint are exempt.
func Timeout(timeout time.Duration, exempt ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range exempt {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
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
