package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"planreview-backend/internal/shared/telemetry"
)

// Logging emits one structured line per request after completion.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]any{
			"requestId":  RequestIDFromContext(c),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		}
		if user := UserIDFromContext(c); user != "" {
			fields["userId"] = user
		}
		if planID := c.Param("planId"); planID != "" {
			fields["planId"] = planID
		}
		if commentID := c.Param("commentId"); commentID != "" {
			fields["commentId"] = commentID
		}
		if jobID := c.Param("jobId"); jobID != "" {
			fields["jobId"] = jobID
		}
		telemetry.Info("http.request", fields)
	}
}
