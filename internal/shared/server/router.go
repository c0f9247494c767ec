package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planreview-backend/internal/bootstrap"
	"planreview-backend/internal/shared/metrics"
	"planreview-backend/internal/shared/server/middleware"
	"planreview-backend/internal/shared/server/respond"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	groupFor := func(c *gin.Context) string {
		if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/jobs/:jobId" {
			return middleware.RateGroupPolling
		}
		return middleware.RateGroupDefault
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(app.Config.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: groupFor,
			Rules: map[string]middleware.RateLimitRule{
				middleware.RateGroupDefault: {Rate: 5, Burst: 20},
				middleware.RateGroupPolling: {Rate: 10, Burst: 30},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	app.GoogleAuth.RegisterRoutes(api)
	app.PlansHandler.RegisterRoutes(api)
	app.VersionsHandler.RegisterRoutes(api)
	app.CommentsHandler.RegisterRoutes(api)
	app.JobsHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
