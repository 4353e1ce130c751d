package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request and recovers from handler
// panics, turning them into the standard JSON error envelope.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Handlers read the logger back via zerolog.Ctx.
		ctx := logger.WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Dur("latency", time.Since(start)).
					Str("panic", fmt.Sprintf("%v", recovered)).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "internal server error",
					},
				})
				return
			}

			evt := logger.Info()
			if c.Writer.Status() >= http.StatusInternalServerError {
				evt = logger.Error()
			} else if c.Writer.Status() >= http.StatusBadRequest {
				evt = logger.Warn()
			}
			evt.
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Str("client_ip", c.ClientIP()).
				Dur("latency", time.Since(start)).
				Msg("request")
		}()

		c.Next()
	}
}
