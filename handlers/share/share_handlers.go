package share

import (
	"errors"
	"log"
	"net/http"

	"api/middleware"
	"api/services"
	"api/utils/response"

	"github.com/gin-gonic/gin"
)

// Error message constants
const (
	ErrSignInRequired = "You must be signed in to create a share link."
	ErrNotEligible    = "Solve today's puzzle before generating a share link."
	ErrCodeExhausted  = "Could not generate a unique share link. Try again."
	ErrCodeNotFound   = "Share link not found."
	ErrInternal       = "Something went wrong. Try again."
)

// CreateShareRequest may carry a client-only completion for players who
// solved before their first sync
type CreateShareRequest struct {
	DateKey     string `json:"dateKey"`
	LocalSolved bool   `json:"localSolved"`
	LocalTries  int    `json:"localTries"`
}

// ShareResponse is the issued share code
type ShareResponse struct {
	ShareID string `json:"shareId"`
	Tries   int    `json:"tries"`
	DateKey string `json:"dateKey"`
}

// ShareSummaryResponse is the public view behind a share code
type ShareSummaryResponse struct {
	DateKey string `json:"dateKey"`
	Tries   int    `json:"tries"`
	Solved  bool   `json:"solved"`
	GaveUp  bool   `json:"gaveUp"`
}

// Handler serves share-code issuance and public share lookups
type Handler struct {
	players *services.PlayerService
	shares  *services.ShareService
}

func NewHandler(players *services.PlayerService, shares *services.ShareService) *Handler {
	return &Handler{players: players, shares: shares}
}

// CreateShareCode issues (or returns) the caller's share code for a day
// @Summary Create a share link for a finished attempt
// @Description Returns the attempt's share code, assigning a new unique one when needed
// @Tags Share
// @Accept json
// @Produce json
// @Param request body CreateShareRequest true "Share request"
// @Success 200 {object} ShareResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /share [post]
// @Security Bearer
func (h *Handler) CreateShareCode(c *gin.Context) {
	session, ok := middleware.PlayerFromRequest(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, ErrSignInRequired)
		return
	}

	var request CreateShareRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		request = CreateShareRequest{}
	}
	dateKey := services.SanitizeDateKey(request.DateKey)

	player, err := h.players.GetOrCreate(session.ExternalID, session.DisplayName)
	if err != nil {
		log.Printf("Failed to resolve player %s: %v", session.ExternalID, err)
		response.Error(c, http.StatusInternalServerError, ErrInternal)
		return
	}

	outcome, err := h.shares.EnsureForPlayerDay(player.ID, dateKey, request.LocalSolved, request.LocalTries)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEligible):
			response.Error(c, http.StatusBadRequest, ErrNotEligible)
		case errors.Is(err, services.ErrCodeExhausted):
			response.Error(c, http.StatusInternalServerError, ErrCodeExhausted)
		default:
			log.Printf("Failed to ensure share code: %v", err)
			response.Error(c, http.StatusInternalServerError, ErrInternal)
		}
		return
	}

	c.JSON(http.StatusOK, ShareResponse{
		ShareID: outcome.ShareCode,
		Tries:   outcome.Tries,
		DateKey: outcome.DateKey,
	})
}

// GetShareSummary resolves a share code into its public summary
// @Summary Look up a shared result
// @Description Returns the summarized outcome behind a share code, without guess details
// @Tags Share
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} ShareSummaryResponse
// @Failure 404 {object} map[string]string
// @Router /share/{code} [get]
func (h *Handler) GetShareSummary(c *gin.Context) {
	outcome, err := h.shares.Resolve(c.Param("code"))
	if err != nil {
		log.Printf("Failed to resolve share code: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrInternal)
		return
	}
	if outcome == nil {
		response.Error(c, http.StatusNotFound, ErrCodeNotFound)
		return
	}

	c.JSON(http.StatusOK, ShareSummaryResponse{
		DateKey: outcome.DateKey,
		Tries:   outcome.Tries,
		Solved:  outcome.Solved,
		GaveUp:  outcome.GaveUp,
	})
}
