package guesses

import (
	"log"
	"net/http"

	"api/middleware"
	"api/services"
	"api/utils/response"

	"github.com/gin-gonic/gin"
)

// Sync folds the caller's anonymous attempt into their player attempt and
// replays guesses they only hold locally
// @Summary Reconcile local state after sign-in
// @Description Claims or merges the anonymous attempt for the day, then replays unsubmitted local guesses
// @Tags Guesses
// @Accept json
// @Produce json
// @Param request body SyncRequest true "Local attempt state"
// @Success 200 {object} AttemptResponse
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /guesses/sync [post]
// @Security Bearer
func (h *Handler) Sync(c *gin.Context) {
	session, ok := middleware.PlayerFromRequest(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, ErrSignInRequired)
		return
	}

	var request SyncRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.Error(c, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	dateKey := services.SanitizeDateKey(request.DateKey)
	anonymousID := services.SanitizeAnonymousID(request.AnonymousID)

	player, err := h.players.GetOrCreate(session.ExternalID, session.DisplayName)
	if err != nil {
		log.Printf("Failed to resolve player %s: %v", session.ExternalID, err)
		response.Error(c, http.StatusInternalServerError, ErrInternal)
		return
	}

	outcome, err := h.sync.Sync(c.Request.Context(), player.ID, dateKey, anonymousID, request.Guesses)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, AttemptResponse{
		Results:     guessResultsFrom(outcome.Attempt),
		TriesUsed:   outcome.TriesUsed,
		IsSolved:    outcome.IsSolved,
		GaveUp:      outcome.GaveUp,
		NoTriesLeft: outcome.NoTriesLeft,
	})
}
