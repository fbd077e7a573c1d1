package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"api/models"

	"gorm.io/gorm"
)

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CurrentDateKey returns today's day key in the server's local time
func CurrentDateKey() string {
	return time.Now().Format("2006-01-02")
}

// SanitizeDateKey returns the given key when well-formed, otherwise today's
func SanitizeDateKey(input string) string {
	if dateKeyPattern.MatchString(input) {
		return input
	}
	return CurrentDateKey()
}

// PuzzleService is the read-only catalog of day -> puzzle assignments
type PuzzleService struct {
	db *gorm.DB
}

func NewPuzzleService(db *gorm.DB) *PuzzleService {
	return &PuzzleService{db: db}
}

// Lookup returns the puzzle assigned to the given day, or nil when the day
// has no assignment
func (s *PuzzleService) Lookup(dateKey string) (*models.DailyPuzzle, error) {
	var puzzle models.DailyPuzzle
	err := s.db.First(&puzzle, "date_key = ?", dateKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch puzzle for %s: %w", dateKey, err)
	}
	return &puzzle, nil
}

// Required is Lookup with a missing assignment reported as
// ErrPuzzleNotConfigured
func (s *PuzzleService) Required(dateKey string) (*models.DailyPuzzle, error) {
	puzzle, err := s.Lookup(dateKey)
	if err != nil {
		return nil, err
	}
	if puzzle == nil {
		return nil, ErrPuzzleNotConfigured
	}
	return puzzle, nil
}
