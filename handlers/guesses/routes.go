package guesses

import (
	"api/config"
	"api/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes related to guessing
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	// Judge-backed endpoints are the expensive ones; keep their budget tight
	guessRateLimiter := middleware.NewRateLimiter(config.GuessRateLimit.Rate, config.GuessRateLimit.Burst)

	g := r.Group("/guesses")
	{
		g.GET("", h.ReadAttempt)
		g.POST("", middleware.RateLimiterMiddleware(guessRateLimiter), h.SubmitGuess)
		g.POST("/give-up", h.GiveUp)
		g.POST("/sync", middleware.RateLimiterMiddleware(guessRateLimiter), h.Sync)
	}
}
