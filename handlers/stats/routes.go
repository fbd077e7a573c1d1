package stats

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes related to solve statistics
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	s := r.Group("/stats")
	{
		s.GET("", h.GetDistribution)
		s.GET("/live", h.LiveSolvesWebSocket)
	}
}
