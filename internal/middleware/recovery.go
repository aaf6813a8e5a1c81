package middleware

import (
	"fmt"
	"runtime"

	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns panics into a 500 envelope and logs the stack.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				logger.Error().
					Str("request_id", c.GetString(requestIDKey)).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				utils.InternalServerError(c, "Internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
