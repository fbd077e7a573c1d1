package guesses

import (
	"errors"
	"log"
	"net/http"

	"api/judge"
	"api/middleware"
	"api/realtime"
	"api/services"
	"api/utils/response"

	"github.com/gin-gonic/gin"
)

// Handler serves the guess, read, give-up and sync routes over the
// injected services
type Handler struct {
	players  *services.PlayerService
	attempts *services.AttemptService
	puzzles  *services.PuzzleService
	sync     *services.SyncService
	tryLimit int
}

func NewHandler(players *services.PlayerService, attempts *services.AttemptService, puzzles *services.PuzzleService, sync *services.SyncService, tryLimit int) *Handler {
	return &Handler{
		players:  players,
		attempts: attempts,
		puzzles:  puzzles,
		sync:     sync,
		tryLimit: tryLimit,
	}
}

// resolveIdentity maps the request onto an attempt owner: the signed-in
// player when a session token is present, otherwise the anonymous token
func (h *Handler) resolveIdentity(c *gin.Context, anonymousID string) (services.Identity, bool) {
	if session, ok := middleware.PlayerFromRequest(c); ok {
		player, err := h.players.GetOrCreate(session.ExternalID, session.DisplayName)
		if err != nil {
			log.Printf("Failed to resolve player %s: %v", session.ExternalID, err)
			response.Error(c, http.StatusInternalServerError, ErrInternal)
			return services.Identity{}, false
		}
		return services.PlayerIdentity(player.ID), true
	}

	anonymousID = services.SanitizeAnonymousID(anonymousID)
	if anonymousID == "" {
		response.Error(c, http.StatusBadRequest, ErrAnonymousIDNeeded)
		return services.Identity{}, false
	}
	return services.AnonymousIdentity(anonymousID), true
}

func mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyGuess):
		response.Error(c, http.StatusBadRequest, ErrGuessRequired)
	case errors.Is(err, services.ErrGuessTooLong):
		response.Error(c, http.StatusBadRequest, ErrGuessTooLong)
	case errors.Is(err, services.ErrAlreadyGaveUp):
		response.Error(c, http.StatusConflict, ErrAlreadyGaveUp)
	case errors.Is(err, services.ErrAlreadySolved):
		response.Error(c, http.StatusConflict, ErrAlreadySolved)
	case errors.Is(err, services.ErrPuzzleNotConfigured):
		response.Error(c, http.StatusServiceUnavailable, ErrNoPuzzle)
	case errors.Is(err, judge.ErrUnavailable):
		response.Error(c, http.StatusBadGateway, ErrJudgeUnavailable)
	default:
		log.Printf("Unexpected service error: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrInternal)
	}
}

// SubmitGuess judges and records one guess
// @Summary Submit a guess for the day's puzzle
// @Description Judges the guess against the hidden dataset and appends it to the caller's attempt
// @Tags Guesses
// @Accept json
// @Produce json
// @Param request body GuessRequest true "Guess submission"
// @Success 200 {object} GuessResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /guesses [post]
func (h *Handler) SubmitGuess(c *gin.Context) {
	var request GuessRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.Error(c, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	dateKey := services.SanitizeDateKey(request.DateKey)
	identity, ok := h.resolveIdentity(c, request.AnonymousID)
	if !ok {
		return
	}

	outcome, err := h.attempts.SubmitGuess(c.Request.Context(), identity, dateKey, request.Guess)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	if outcome.Correct {
		realtime.BroadcastSolveUpdate(realtime.SolveUpdate{
			DateKey: dateKey,
			Tries:   outcome.TriesUsed,
			Solved:  true,
		})
	}

	c.JSON(http.StatusOK, GuessResponse{
		Correct:   outcome.Correct,
		Score:     outcome.Judgment.Score,
		Verdict:   string(outcome.Judgment.Verdict),
		Reason:    outcome.Judgment.Reason,
		TriesUsed: outcome.TriesUsed,
		GaveUp:    false,
		Saved:     true,
	})
}

// ReadAttempt returns the caller's current attempt state without mutating it
// @Summary Read the caller's attempt for a day
// @Description Returns judged guesses, tries used and terminal flags; reveals the answer only after a give-up
// @Tags Guesses
// @Produce json
// @Param dateKey query string false "Day key (YYYY-MM-DD, defaults to today)"
// @Param anonymousId query string false "Anonymous identity token"
// @Success 200 {object} AttemptResponse
// @Router /guesses [get]
func (h *Handler) ReadAttempt(c *gin.Context) {
	dateKey := services.SanitizeDateKey(c.Query("dateKey"))

	var identity services.Identity
	if session, ok := middleware.PlayerFromRequest(c); ok {
		player, err := h.players.GetOrCreate(session.ExternalID, session.DisplayName)
		if err != nil {
			log.Printf("Failed to resolve player %s: %v", session.ExternalID, err)
			response.Error(c, http.StatusInternalServerError, ErrInternal)
			return
		}
		identity = services.PlayerIdentity(player.ID)
	} else {
		anonymousID := services.SanitizeAnonymousID(c.Query("anonymousId"))
		if anonymousID == "" {
			c.JSON(http.StatusOK, emptyAttemptResponse())
			return
		}
		identity = services.AnonymousIdentity(anonymousID)
	}

	attempt, err := h.attempts.ReadAttempt(identity, dateKey)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	if attempt == nil {
		c.JSON(http.StatusOK, emptyAttemptResponse())
		return
	}

	resp := AttemptResponse{
		Results:     guessResultsFrom(attempt),
		TriesUsed:   len(attempt.Guesses),
		IsSolved:    attempt.IsSolved(),
		GaveUp:      attempt.GaveUp,
		NoTriesLeft: len(attempt.Guesses) >= h.tryLimit,
	}
	if attempt.GaveUp {
		if puzzle, err := h.puzzles.Lookup(dateKey); err == nil && puzzle != nil {
			resp.RevealedAnswer = &puzzle.SolutionLabel
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GiveUp closes the day's attempt and reveals the answer
// @Summary Give up on the day's puzzle
// @Description Marks the signed-in player's attempt as given up; repeat calls are idempotent
// @Tags Guesses
// @Accept json
// @Produce json
// @Param request body GiveUpRequest true "Give-up request"
// @Success 200 {object} GiveUpResponse
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /guesses/give-up [post]
// @Security Bearer
func (h *Handler) GiveUp(c *gin.Context) {
	session, ok := middleware.PlayerFromRequest(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, ErrSignInRequired)
		return
	}

	var request GiveUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		request = GiveUpRequest{}
	}
	dateKey := services.SanitizeDateKey(request.DateKey)

	player, err := h.players.GetOrCreate(session.ExternalID, session.DisplayName)
	if err != nil {
		log.Printf("Failed to resolve player %s: %v", session.ExternalID, err)
		response.Error(c, http.StatusInternalServerError, ErrInternal)
		return
	}

	outcome, err := h.attempts.GiveUp(services.PlayerIdentity(player.ID), dateKey)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	realtime.BroadcastSolveUpdate(realtime.SolveUpdate{
		DateKey: dateKey,
		GaveUp:  true,
	})

	c.JSON(http.StatusOK, GiveUpResponse{
		GaveUp:         true,
		IsSolved:       false,
		RevealedAnswer: outcome.RevealedAnswer,
	})
}

func emptyAttemptResponse() AttemptResponse {
	return AttemptResponse{
		Results: []GuessResult{},
	}
}
