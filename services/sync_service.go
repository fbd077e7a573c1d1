package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"api/metrics"
	"api/models"

	"gorm.io/gorm"
)

// SyncOutcome summarizes the attempt of record after reconciliation
type SyncOutcome struct {
	Attempt     *models.GameAttempt
	TriesUsed   int
	IsSolved    bool
	GaveUp      bool
	NoTriesLeft bool
}

// SyncService folds a pre-authentication anonymous attempt into the
// authenticated attempt for the same day, at most once per sign-in, then
// replays any guesses the client still holds only locally
type SyncService struct {
	db             *gorm.DB
	attempts       *AttemptService
	tryLimit       int
	maxGuessLength int
}

func NewSyncService(db *gorm.DB, attempts *AttemptService, tryLimit int, maxGuessLength int) *SyncService {
	return &SyncService{
		db:             db,
		attempts:       attempts,
		tryLimit:       tryLimit,
		maxGuessLength: maxGuessLength,
	}
}

// Sync reconciles ownership of the day's attempt and replays local guesses.
// It is safe to call twice: the claim steps are read-then-compare with no
// effect once the anonymous row is gone, and the replay slices the client
// list by the already-persisted guess count.
func (s *SyncService) Sync(ctx context.Context, playerID string, dateKey string, anonymousID string, localGuesses []string) (*SyncOutcome, error) {
	incoming := s.sanitizeLocalGuesses(localGuesses)

	attempt, err := s.claimAnonymousAttempt(playerID, dateKey, anonymousID)
	if err != nil {
		return nil, err
	}

	if attempt == nil && len(incoming) == 0 {
		return &SyncOutcome{}, nil
	}

	identity := PlayerIdentity(playerID)
	if attempt == nil {
		attempt, _, err = s.attempts.GetOrCreate(identity, dateKey)
		if err != nil {
			return nil, err
		}
	}

	if attempt.GaveUp {
		return s.outcomeFrom(attempt), nil
	}
	if len(attempt.Guesses) >= s.tryLimit {
		return s.outcomeFrom(attempt), nil
	}

	solved := attempt.IsSolved()
	count := len(attempt.Guesses)
	if !solved && len(incoming) > count {
		for _, text := range incoming[count:] {
			if count >= s.tryLimit {
				break
			}
			outcome, err := s.attempts.SubmitGuess(ctx, identity, dateKey, text)
			if err != nil {
				// A concurrent request may have closed the attempt mid-replay
				if errors.Is(err, ErrAlreadySolved) || errors.Is(err, ErrAlreadyGaveUp) {
					break
				}
				return nil, err
			}
			count = outcome.TriesUsed
			if outcome.Correct {
				break
			}
		}
	}

	final, err := s.attempts.ReadAttempt(identity, dateKey)
	if err != nil {
		return nil, err
	}
	if final == nil {
		return &SyncOutcome{}, nil
	}
	return s.outcomeFrom(final), nil
}

func (s *SyncService) sanitizeLocalGuesses(localGuesses []string) []string {
	sanitized := make([]string, 0, len(localGuesses))
	for _, entry := range localGuesses {
		text := strings.TrimSpace(entry)
		if text == "" || len(text) > s.maxGuessLength {
			continue
		}
		sanitized = append(sanitized, text)
	}
	return sanitized
}

func (s *SyncService) outcomeFrom(attempt *models.GameAttempt) *SyncOutcome {
	return &SyncOutcome{
		Attempt:     attempt,
		TriesUsed:   len(attempt.Guesses),
		IsSolved:    attempt.IsSolved(),
		GaveUp:      attempt.GaveUp,
		NoTriesLeft: len(attempt.Guesses) >= s.tryLimit,
	}
}

// claimAnonymousAttempt resolves which row is the attempt of record for the
// player and day. It may re-stamp an already-linked row, re-parent an
// unclaimed anonymous row, or merge both sides and delete the anonymous one.
// Returns nil when the player ends up with no attempt at all.
func (s *SyncService) claimAnonymousAttempt(playerID string, dateKey string, anonymousID string) (*models.GameAttempt, error) {
	playerAttempt, err := s.attempts.ReadAttempt(PlayerIdentity(playerID), dateKey)
	if err != nil {
		return nil, err
	}
	if anonymousID == "" {
		return playerAttempt, nil
	}

	anonymousAttempt, err := s.attempts.ReadAttempt(AnonymousIdentity(anonymousID), dateKey)
	if err != nil {
		return nil, err
	}
	if anonymousAttempt == nil {
		return playerAttempt, nil
	}

	if anonymousAttempt.PlayerID != nil && *anonymousAttempt.PlayerID == playerID {
		// Already linked by a prior sync; clear a leftover anonymous id so the
		// token cannot be claimed again
		if anonymousAttempt.AnonymousID != nil {
			err := s.db.Model(&models.GameAttempt{}).
				Where("id = ?", anonymousAttempt.ID).
				Update("anonymous_id", nil).Error
			if err != nil {
				return nil, fmt.Errorf("failed to clear anonymous id: %w", err)
			}
			anonymousAttempt.AnonymousID = nil
		}
		return anonymousAttempt, nil
	}

	if anonymousAttempt.PlayerID != nil {
		// Another account claimed this anonymous token first; leave it alone
		return playerAttempt, nil
	}

	if playerAttempt == nil {
		// Pure ownership transfer, no guess data is rewritten
		updates := map[string]interface{}{
			"player_id":    playerID,
			"anonymous_id": nil,
		}
		err := s.db.Model(&models.GameAttempt{}).
			Where("id = ?", anonymousAttempt.ID).
			Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("failed to claim anonymous attempt: %w", err)
		}
		claimedPlayerID := playerID
		anonymousAttempt.PlayerID = &claimedPlayerID
		anonymousAttempt.AnonymousID = nil
		return anonymousAttempt, nil
	}

	// Both sides exist: merge deterministically, then delete the anonymous row
	merged := mergeAttemptStates(playerAttempt, anonymousAttempt)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", playerAttempt.ID).Delete(&models.Guess{}).Error; err != nil {
			return fmt.Errorf("failed to clear linked guesses: %w", err)
		}
		for index, entry := range merged.guesses {
			row := models.Guess{
				AttemptID: playerAttempt.ID,
				Position:  index + 1,
				Guess:     entry.Guess,
				Score:     entry.Score,
				Verdict:   entry.Verdict,
				Reason:    entry.Reason,
				Correct:   entry.Correct,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to copy merged guess: %w", err)
			}
		}

		updates := map[string]interface{}{
			"solved":  merged.solved,
			"gave_up": merged.gaveUp,
		}
		if merged.solved && merged.solvedIn != nil {
			updates["solved_in"] = *merged.solvedIn
		} else {
			updates["solved_in"] = nil
		}
		if err := tx.Model(&models.GameAttempt{}).Where("id = ?", playerAttempt.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update merged attempt: %w", err)
		}

		if err := tx.Where("attempt_id = ?", anonymousAttempt.ID).Delete(&models.Guess{}).Error; err != nil {
			return fmt.Errorf("failed to delete anonymous guesses: %w", err)
		}
		if err := tx.Delete(&models.GameAttempt{}, "id = ?", anonymousAttempt.ID).Error; err != nil {
			return fmt.Errorf("failed to delete anonymous attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AttemptsMerged.Inc()
	return s.attempts.ReadAttempt(PlayerIdentity(playerID), dateKey)
}

type attemptSummary struct {
	solved   bool
	solvedIn *int
	gaveUp   bool
}

// summarizeAttempt reads the effective state of one side. The per-guess
// verdicts win over the summary flags when they disagree.
func summarizeAttempt(attempt *models.GameAttempt) attemptSummary {
	position := attempt.FirstCorrectPosition()
	solved := attempt.Solved || position > 0
	var solvedIn *int
	if solved {
		if position > 0 {
			solvedIn = &position
		} else {
			solvedIn = attempt.SolvedIn
		}
	}
	return attemptSummary{solved: solved, solvedIn: solvedIn, gaveUp: attempt.GaveUp}
}

type mergedState struct {
	guesses  []*models.Guess
	solved   bool
	gaveUp   bool
	solvedIn *int
}

// mergeAttemptStates picks the winning guess list: a solved side beats an
// unsolved one, fewer tries beats more when both are solved, more progress
// beats less when neither is, and every tie keeps the authenticated side.
func mergeAttemptStates(linked *models.GameAttempt, anonymous *models.GameAttempt) mergedState {
	linkedSummary := summarizeAttempt(linked)
	anonymousSummary := summarizeAttempt(anonymous)

	selected := linked.Guesses
	switch {
	case anonymousSummary.solved && !linkedSummary.solved:
		selected = anonymous.Guesses
	case anonymousSummary.solved && linkedSummary.solved:
		linkedSolvedIn := math.MaxInt
		if linkedSummary.solvedIn != nil {
			linkedSolvedIn = *linkedSummary.solvedIn
		}
		anonymousSolvedIn := math.MaxInt
		if anonymousSummary.solvedIn != nil {
			anonymousSolvedIn = *anonymousSummary.solvedIn
		}
		if anonymousSolvedIn < linkedSolvedIn {
			selected = anonymous.Guesses
		}
	case !linkedSummary.solved && !anonymousSummary.solved && len(anonymous.Guesses) > len(linked.Guesses):
		selected = anonymous.Guesses
	}

	solved := linkedSummary.solved || anonymousSummary.solved
	var solvedIn *int
	if solved {
		position := 0
		for _, entry := range selected {
			if entry.Correct {
				position = entry.Position
				break
			}
		}
		if position > 0 {
			solvedIn = &position
		} else if linkedSummary.solvedIn != nil {
			// Inconsistent legacy data: the winning list has no correct guess
			// but a summary says solved; keep the recorded position
			solvedIn = linkedSummary.solvedIn
		} else {
			solvedIn = anonymousSummary.solvedIn
		}
	}

	gaveUp := false
	if !solved {
		gaveUp = linkedSummary.gaveUp || anonymousSummary.gaveUp
	}

	return mergedState{
		guesses:  selected,
		solved:   solved,
		gaveUp:   gaveUp,
		solvedIn: solvedIn,
	}
}
