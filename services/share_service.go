package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"api/models"

	"gorm.io/gorm"
)

const (
	shareCodeLength     = 9
	shareCodeAlphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxShareCodeRetries = 8
)

var shareCodePattern = regexp.MustCompile(`^[a-z0-9]{9}$`)

// ShareOutcome is the issued code with the summary the share page shows
type ShareOutcome struct {
	ShareCode string
	DateKey   string
	Tries     int
	Solved    bool
	GaveUp    bool
}

// ShareService issues collision-free share codes, one per attempt. The code
// generator is injectable so collision handling can be tested
// deterministically.
type ShareService struct {
	db       *gorm.DB
	generate func(length int) string
}

func NewShareService(db *gorm.DB) *ShareService {
	return &ShareService{db: db, generate: randomShareCode}
}

func randomShareCode(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic("share code entropy unavailable: " + err.Error())
	}
	for index, value := range buf {
		buf[index] = shareCodeAlphabet[int(value)%len(shareCodeAlphabet)]
	}
	return string(buf)
}

// NormalizeShareCode returns the canonical lowercase code, or an empty
// string when the input is not a valid code
func NormalizeShareCode(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if shareCodePattern.MatchString(normalized) {
		return normalized
	}
	return ""
}

// EnsureShareCode returns the attempt's code, assigning one first when
// needed. The attempt must be terminal with at least one recorded try.
func (s *ShareService) EnsureShareCode(attemptID string) (*ShareOutcome, error) {
	attempt, err := s.loadAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil || !attempt.Terminal() {
		return nil, ErrNotEligible
	}

	tries := len(attempt.Guesses)
	if attempt.SolvedIn != nil {
		tries = *attempt.SolvedIn
	}
	if tries < 1 {
		return nil, ErrNotEligible
	}

	if attempt.ShareCode != nil {
		if code := NormalizeShareCode(*attempt.ShareCode); code != "" {
			return s.outcomeFrom(attempt, code, tries), nil
		}
	}

	code, err := s.assignShareCode(attempt.ID)
	if err != nil {
		return nil, err
	}
	return s.outcomeFrom(attempt, code, tries), nil
}

// EnsureForPlayerDay resolves the player's attempt for the day and issues
// its code. When no terminal server-side attempt exists, a client-reported
// completion (solved locally before ever syncing) may back-fill one.
func (s *ShareService) EnsureForPlayerDay(playerID string, dateKey string, localSolved bool, localTries int) (*ShareOutcome, error) {
	var attempt models.GameAttempt
	err := s.db.Where("player_id = ? AND puzzle_date = ?", playerID, dateKey).
		Preload("Guesses").
		First(&attempt).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch attempt: %w", err)
	}

	missing := errors.Is(err, gorm.ErrRecordNotFound)
	if missing || !attempt.Terminal() {
		if !localSolved || localTries < 1 {
			return nil, ErrNotEligible
		}

		if missing {
			attempt = models.GameAttempt{
				PlayerID:   &playerID,
				PuzzleDate: dateKey,
				Solved:     true,
				SolvedIn:   &localTries,
			}
			if err := s.db.Create(&attempt).Error; err != nil {
				return nil, fmt.Errorf("failed to back-fill attempt: %w", err)
			}
		} else {
			updates := map[string]interface{}{
				"solved":    true,
				"gave_up":   false,
				"solved_in": localTries,
			}
			if err := s.db.Model(&models.GameAttempt{}).Where("id = ?", attempt.ID).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("failed to back-fill attempt: %w", err)
			}
			attempt.Solved = true
			attempt.GaveUp = false
			attempt.SolvedIn = &localTries
		}
	}

	return s.EnsureShareCode(attempt.ID)
}

// Resolve returns the public summary behind a share code, or nil when the
// code does not exist
func (s *ShareService) Resolve(code string) (*ShareOutcome, error) {
	normalized := NormalizeShareCode(code)
	if normalized == "" {
		return nil, nil
	}

	var attempt models.GameAttempt
	err := s.db.Where("share_code = ?", normalized).
		Preload("Guesses").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve share code: %w", err)
	}

	tries := len(attempt.Guesses)
	if attempt.SolvedIn != nil {
		tries = *attempt.SolvedIn
	}
	return s.outcomeFrom(&attempt, normalized, tries), nil
}

func (s *ShareService) loadAttempt(attemptID string) (*models.GameAttempt, error) {
	var attempt models.GameAttempt
	err := s.db.Preload("Guesses").First(&attempt, "id = ?", attemptID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempt: %w", err)
	}
	return &attempt, nil
}

func (s *ShareService) assignShareCode(attemptID string) (string, error) {
	for attempt := 0; attempt < maxShareCodeRetries; attempt++ {
		code := s.generate(shareCodeLength)
		err := s.db.Model(&models.GameAttempt{}).
			Where("id = ?", attemptID).
			Update("share_code", code).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to assign share code: %w", err)
		}
		return code, nil
	}
	return "", ErrCodeExhausted
}

func (s *ShareService) outcomeFrom(attempt *models.GameAttempt, code string, tries int) *ShareOutcome {
	return &ShareOutcome{
		ShareCode: code,
		DateKey:   attempt.PuzzleDate,
		Tries:     tries,
		Solved:    attempt.IsSolved(),
		GaveUp:    attempt.GaveUp,
	}
}
