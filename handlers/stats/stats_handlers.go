package stats

import (
	"log"
	"net/http"

	"api/services"
	"api/utils/response"

	"github.com/gin-gonic/gin"
)

const errInternal = "Something went wrong. Try again."

// Handler serves the daily solve statistics
type Handler struct {
	stats *services.StatsService
}

func NewHandler(stats *services.StatsService) *Handler {
	return &Handler{stats: stats}
}

// GetDistribution returns the cross-player solve distribution for a day
// @Summary Solve statistics for a day
// @Description Aggregates solved attempts for the day's puzzle across every day that ran it
// @Tags Stats
// @Produce json
// @Param dateKey query string false "Day key (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} services.DistributionOutcome
// @Failure 500 {object} map[string]string
// @Router /stats [get]
func (h *Handler) GetDistribution(c *gin.Context) {
	dateKey := services.SanitizeDateKey(c.Query("dateKey"))

	outcome, err := h.stats.Distribution(dateKey)
	if err != nil {
		log.Printf("Failed to aggregate stats for %s: %v", dateKey, err)
		response.Error(c, http.StatusInternalServerError, errInternal)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
