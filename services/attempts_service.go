package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"api/judge"
	"api/metrics"
	"api/models"

	"gorm.io/gorm"
)

// GuessOutcome is the result of a judged and persisted guess
type GuessOutcome struct {
	Judgment  judge.Judgment
	Correct   bool
	TriesUsed int
}

// GiveUpOutcome carries the revealed answer after a give-up
type GiveUpOutcome struct {
	GaveUp         bool
	RevealedAnswer string
}

// AttemptService owns the one-attempt-per-(identity, day) invariant: guess
// appends, solve/give-up transitions, and the terminal-state guards
type AttemptService struct {
	db             *gorm.DB
	judge          judge.Judge
	puzzles        *PuzzleService
	maxGuessLength int
}

func NewAttemptService(db *gorm.DB, j judge.Judge, puzzles *PuzzleService, maxGuessLength int) *AttemptService {
	return &AttemptService{
		db:             db,
		judge:          j,
		puzzles:        puzzles,
		maxGuessLength: maxGuessLength,
	}
}

func (i Identity) scope(db *gorm.DB, dateKey string) *gorm.DB {
	if i.PlayerID != "" {
		return db.Where("player_id = ? AND puzzle_date = ?", i.PlayerID, dateKey)
	}
	return db.Where("anonymous_id = ? AND puzzle_date = ?", i.AnonymousID, dateKey)
}

// find loads the attempt with its guesses in position order, or nil when the
// identity has no attempt for the day
func (s *AttemptService) find(tx *gorm.DB, identity Identity, dateKey string) (*models.GameAttempt, error) {
	var attempt models.GameAttempt
	err := identity.scope(tx, dateKey).
		Preload("Guesses", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempt: %w", err)
	}
	return &attempt, nil
}

// GetOrCreate returns the identity's attempt for the day, creating an empty
// one when none exists. The second return value reports whether the row was
// created by this call.
func (s *AttemptService) GetOrCreate(identity Identity, dateKey string) (*models.GameAttempt, bool, error) {
	attempt, err := s.find(s.db, identity, dateKey)
	if err != nil {
		return nil, false, err
	}
	if attempt != nil {
		return attempt, false, nil
	}

	newAttempt := models.GameAttempt{PuzzleDate: dateKey}
	if identity.PlayerID != "" {
		playerID := identity.PlayerID
		newAttempt.PlayerID = &playerID
	} else {
		anonymousID := identity.AnonymousID
		newAttempt.AnonymousID = &anonymousID
	}

	startTime := time.Now()
	err = s.db.Create(&newAttempt).Error
	metrics.RecordDBOperation("create", "game_attempts", startTime)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a create race; the winner's row is the attempt of record
			attempt, err = s.find(s.db, identity, dateKey)
			if err != nil {
				return nil, false, err
			}
			if attempt != nil {
				return attempt, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create attempt: %w", err)
	}

	newAttempt.Guesses = []*models.Guess{}
	return &newAttempt, true, nil
}

// ReadAttempt is a pure read: it never creates rows and never calls the judge
func (s *AttemptService) ReadAttempt(identity Identity, dateKey string) (*models.GameAttempt, error) {
	return s.find(s.db, identity, dateKey)
}

// SubmitGuess validates the text, judges it against the day's puzzle and
// appends the judged guess inside a single transaction. The judge call runs
// outside the transaction so no lock is held across the network round trip;
// the terminal-state guards are re-checked once the transaction opens.
func (s *AttemptService) SubmitGuess(ctx context.Context, identity Identity, dateKey string, rawText string) (*GuessOutcome, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, ErrEmptyGuess
	}
	if s.maxGuessLength > 0 && len(text) > s.maxGuessLength {
		return nil, ErrGuessTooLong
	}

	puzzle, err := s.puzzles.Required(dateKey)
	if err != nil {
		return nil, err
	}

	attempt, _, err := s.GetOrCreate(identity, dateKey)
	if err != nil {
		return nil, err
	}
	if attempt.GaveUp {
		return nil, ErrAlreadyGaveUp
	}
	if attempt.IsSolved() {
		return nil, ErrAlreadySolved
	}

	judgment, err := s.judge.Score(ctx, text, puzzle)
	if err != nil {
		return nil, err
	}

	correct := judgment.Correct()
	var triesUsed int
	err = s.db.Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx, identity, dateKey)
		if err != nil {
			return err
		}
		if current == nil {
			return gorm.ErrRecordNotFound
		}
		// A concurrent writer may have closed the attempt between the judge
		// call and this transaction
		if current.GaveUp {
			return ErrAlreadyGaveUp
		}
		if current.IsSolved() {
			return ErrAlreadySolved
		}

		triesUsed = len(current.Guesses) + 1
		row := models.Guess{
			AttemptID: current.ID,
			Position:  triesUsed,
			Guess:     text,
			Score:     judgment.Score,
			Verdict:   string(judgment.Verdict),
			Reason:    judgment.Reason,
			Correct:   correct,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to append guess: %w", err)
		}

		updates := map[string]interface{}{
			"gave_up": false,
			"solved":  correct,
		}
		if correct {
			updates["solved_in"] = triesUsed
		} else {
			updates["solved_in"] = nil
		}
		if err := tx.Model(&models.GameAttempt{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.GuessesJudged.WithLabelValues(string(judgment.Verdict)).Inc()
	return &GuessOutcome{
		Judgment:  judgment,
		Correct:   correct,
		TriesUsed: triesUsed,
	}, nil
}

// GiveUp marks the attempt as given up and reveals the day's answer label.
// Calling it again on an already-given-up attempt is an idempotent success.
func (s *AttemptService) GiveUp(identity Identity, dateKey string) (*GiveUpOutcome, error) {
	puzzle, err := s.puzzles.Lookup(dateKey)
	if err != nil {
		return nil, err
	}
	revealedAnswer := ""
	if puzzle != nil {
		revealedAnswer = puzzle.SolutionLabel
	}

	attempt, err := s.find(s.db, identity, dateKey)
	if err != nil {
		return nil, err
	}
	if attempt != nil {
		if attempt.IsSolved() {
			return nil, ErrAlreadySolved
		}
		if attempt.GaveUp {
			return &GiveUpOutcome{GaveUp: true, RevealedAnswer: revealedAnswer}, nil
		}

		updates := map[string]interface{}{
			"gave_up":   true,
			"solved":    false,
			"solved_in": nil,
		}
		if err := s.db.Model(&models.GameAttempt{}).Where("id = ?", attempt.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to mark attempt as given up: %w", err)
		}
		return &GiveUpOutcome{GaveUp: true, RevealedAnswer: revealedAnswer}, nil
	}

	// Giving up without a single guess still records a terminal attempt
	newAttempt := models.GameAttempt{PuzzleDate: dateKey, GaveUp: true}
	if identity.PlayerID != "" {
		playerID := identity.PlayerID
		newAttempt.PlayerID = &playerID
	} else {
		anonymousID := identity.AnonymousID
		newAttempt.AnonymousID = &anonymousID
	}
	if err := s.db.Create(&newAttempt).Error; err != nil {
		return nil, fmt.Errorf("failed to create given-up attempt: %w", err)
	}
	return &GiveUpOutcome{GaveUp: true, RevealedAnswer: revealedAnswer}, nil
}
