package guesses

import "api/models"

// Error message constants
const (
	ErrInvalidBody       = "Invalid request body."
	ErrGuessRequired     = "Guess is required."
	ErrGuessTooLong      = "Guess is too long."
	ErrAnonymousIDNeeded = "anonymousId is required for anonymous guesses."
	ErrAlreadySolved     = "You already solved today's puzzle."
	ErrAlreadyGaveUp     = "You already gave up today's puzzle."
	ErrNoPuzzle          = "No puzzle is configured for that date yet."
	ErrJudgeUnavailable  = "Unable to judge guess right now. Try again."
	ErrSignInRequired    = "You must be signed in for this action."
	ErrInternal          = "Something went wrong. Try again."
)

// GuessRequest is the body of a guess submission
type GuessRequest struct {
	Guess       string `json:"guess"`
	DateKey     string `json:"dateKey"`
	AnonymousID string `json:"anonymousId"`
}

// GiveUpRequest is the body of a give-up call
type GiveUpRequest struct {
	DateKey string `json:"dateKey"`
}

// SyncRequest carries the client's locally accumulated state after sign-in
type SyncRequest struct {
	DateKey     string   `json:"dateKey"`
	AnonymousID string   `json:"anonymousId"`
	Guesses     []string `json:"guesses"`
}

// GuessResult mirrors one judged guess in responses
type GuessResult struct {
	Guess    string `json:"guess"`
	Score    int    `json:"score"`
	Verdict  string `json:"verdict"`
	Reason   string `json:"reason"`
	Correct  bool   `json:"correct"`
	Position int    `json:"position"`
}

// GuessResponse is the outcome of a single judged guess
type GuessResponse struct {
	Correct   bool   `json:"correct"`
	Score     int    `json:"score"`
	Verdict   string `json:"verdict"`
	Reason    string `json:"reason"`
	TriesUsed int    `json:"triesUsed"`
	GaveUp    bool   `json:"gaveUp"`
	Saved     bool   `json:"saved"`
}

// AttemptResponse is the full attempt state used by reads and sync
type AttemptResponse struct {
	Results        []GuessResult `json:"results"`
	TriesUsed      int           `json:"triesUsed"`
	IsSolved       bool          `json:"isSolved"`
	GaveUp         bool          `json:"gaveUp"`
	RevealedAnswer *string       `json:"revealedAnswer"`
	NoTriesLeft    bool          `json:"noTriesLeft"`
}

// GiveUpResponse reveals the answer once an attempt is abandoned
type GiveUpResponse struct {
	GaveUp         bool   `json:"gaveUp"`
	IsSolved       bool   `json:"isSolved"`
	RevealedAnswer string `json:"revealedAnswer"`
}

func guessResultsFrom(attempt *models.GameAttempt) []GuessResult {
	if attempt == nil {
		return []GuessResult{}
	}
	results := make([]GuessResult, 0, len(attempt.Guesses))
	for _, entry := range attempt.Guesses {
		results = append(results, GuessResult{
			Guess:    entry.Guess,
			Score:    entry.Score,
			Verdict:  entry.Verdict,
			Reason:   entry.Reason,
			Correct:  entry.Correct,
			Position: entry.Position,
		})
	}
	return results
}
