package share

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes related to sharing results
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	s := r.Group("/share")
	{
		s.POST("", h.CreateShareCode)
		s.GET("/:code", h.GetShareSummary)
	}
}
