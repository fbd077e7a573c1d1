package services

import "errors"

// Sentinel errors surfaced to the request layer. Handlers map these onto
// HTTP statuses; everything else is treated as an internal failure.
var (
	ErrEmptyGuess          = errors.New("guess text is required")
	ErrGuessTooLong        = errors.New("guess text is too long")
	ErrAlreadySolved       = errors.New("puzzle is already solved")
	ErrAlreadyGaveUp       = errors.New("puzzle was already given up")
	ErrPuzzleNotConfigured = errors.New("no puzzle is configured for that date")
	ErrNotEligible         = errors.New("attempt is not eligible for a share code")
	ErrCodeExhausted       = errors.New("could not allocate a unique share code")
)
