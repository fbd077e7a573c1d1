package v1

import (
	"api/config"
	"api/handlers/guesses"
	"api/handlers/share"
	"api/handlers/stats"
	"api/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups the constructed handler sets the v1 API exposes
type Handlers struct {
	Guesses *guesses.Handler
	Share   *share.Handler
	Stats   *stats.Handler
}

// Register the endpoints for the v1 API
func Register(r *gin.Engine, h Handlers) {
	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	rateLimiter := middleware.NewRateLimiter(config.DefaultAPIRateLimit.Rate, config.DefaultAPIRateLimit.Burst)
	v1.Use(middleware.RateLimiterMiddleware(rateLimiter))

	RegisterPingRoutes(v1)
	guesses.RegisterRoutes(v1, h.Guesses)
	share.RegisterRoutes(v1, h.Share)
	stats.RegisterRoutes(v1, h.Stats)

	// Register metrics endpoint
	RegisterMetricsRoutes(v1)
}
