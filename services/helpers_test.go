package services

import (
	"context"
	"path/filepath"
	"testing"

	"api/judge"
	"api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Player{},
		&models.GameAttempt{},
		&models.Guess{},
		&models.DailyPuzzle{},
	)
	require.NoError(t, err)
	return db
}

func seedPuzzle(t *testing.T, db *gorm.DB, dateKey string, puzzleID string, answer string) {
	t.Helper()

	puzzle := models.DailyPuzzle{
		DateKey:         dateKey,
		PuzzleID:        puzzleID,
		Answer:          answer,
		AcceptedAnswers: models.StringList{},
		Preview:         models.PreviewPayload{"31": 7},
		SolutionLabel:   "Test dataset",
	}
	require.NoError(t, db.Create(&puzzle).Error)
}

// fakeJudge marks a guess correct iff it equals the puzzle answer, or fails
// every call when err is set
type fakeJudge struct {
	err   error
	calls int
}

func (f *fakeJudge) Score(_ context.Context, guess string, puzzle *models.DailyPuzzle) (judge.Judgment, error) {
	f.calls++
	if f.err != nil {
		return judge.Judgment{}, f.err
	}
	if guess == puzzle.Answer {
		return judge.Judgment{Score: 100, Verdict: judge.VerdictCorrect, Reason: "That matches the intended dataset."}, nil
	}
	return judge.Judgment{Score: 40, Verdict: judge.VerdictIncorrect, Reason: "Not close yet. Try a different domain or measurement."}, nil
}

func newTestAttemptService(db *gorm.DB, j judge.Judge) *AttemptService {
	return NewAttemptService(db, j, NewPuzzleService(db), 200)
}

func intPtr(value int) *int {
	return &value
}

func strPtr(value string) *string {
	return &value
}
