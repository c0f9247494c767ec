package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"planreview-backend/internal/shared/server/respond"
	"planreview-backend/internal/shared/telemetry"
)

// Recovery converts panics into a 500 error envelope so the process stays up.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				telemetry.Error("http.panic", map[string]any{
					"requestId": RequestIDFromContext(c),
					"path":      c.FullPath(),
					"panic":     r,
					"stack":     string(debug.Stack()),
				})
				respond.Error(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
			}
		}()
		c.Next()
	}
}
