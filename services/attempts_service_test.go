package services

import (
	"context"
	"strings"
	"testing"

	"api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDateKey = "2026-08-31"

func TestGetOrCreate(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAttemptService(db, &fakeJudge{})

	t.Run("creates once per identity and day", func(t *testing.T) {
		identity := AnonymousIdentity("anon-token-1")

		first, created, err := svc.GetOrCreate(identity, testDateKey)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Empty(t, first.Guesses)

		second, created, err := svc.GetOrCreate(identity, testDateKey)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("player and anonymous scopes are distinct", func(t *testing.T) {
		player := models.Player{ExternalID: "ext-1"}
		require.NoError(t, db.Create(&player).Error)

		fromPlayer, created, err := svc.GetOrCreate(PlayerIdentity(player.ID), testDateKey)
		require.NoError(t, err)
		assert.True(t, created)

		fromAnon, _, err := svc.GetOrCreate(AnonymousIdentity("anon-token-1"), testDateKey)
		require.NoError(t, err)
		assert.NotEqual(t, fromPlayer.ID, fromAnon.ID)
	})

	t.Run("days do not share attempts", func(t *testing.T) {
		identity := AnonymousIdentity("anon-token-1")

		today, _, err := svc.GetOrCreate(identity, testDateKey)
		require.NoError(t, err)
		tomorrow, created, err := svc.GetOrCreate(identity, "2026-09-01")
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, today.ID, tomorrow.ID)
	})
}

func TestSubmitGuessValidation(t *testing.T) {
	db := openTestDB(t)
	seedPuzzle(t, db, testDateKey, "puzzle-1", "days in each month")
	svc := newTestAttemptService(db, &fakeJudge{})
	identity := AnonymousIdentity("anon-token-1")

	t.Run("rejects empty guess", func(t *testing.T) {
		_, err := svc.SubmitGuess(context.Background(), identity, testDateKey, "   ")
		assert.ErrorIs(t, err, ErrEmptyGuess)
	})

	t.Run("rejects overlong guess", func(t *testing.T) {
		_, err := svc.SubmitGuess(context.Background(), identity, testDateKey, strings.Repeat("a", 201))
		assert.ErrorIs(t, err, ErrGuessTooLong)
	})

	t.Run("rejects a day without a puzzle", func(t *testing.T) {
		_, err := svc.SubmitGuess(context.Background(), identity, "2026-01-01", "anything")
		assert.ErrorIs(t, err, ErrPuzzleNotConfigured)
	})

	t.Run("validation failures persist nothing", func(t *testing.T) {
		attempt, err := svc.ReadAttempt(identity, testDateKey)
		require.NoError(t, err)
		assert.Nil(t, attempt)
	})
}

func TestSubmitGuessFlow(t *testing.T) {
	db := openTestDB(t)
	seedPuzzle(t, db, testDateKey, "puzzle-1", "days in each month")
	svc := newTestAttemptService(db, &fakeJudge{})
	identity := AnonymousIdentity("anon-token-1")

	t.Run("incorrect guesses append in order", func(t *testing.T) {
		first, err := svc.SubmitGuess(context.Background(), identity, testDateKey, "wrong one")
		require.NoError(t, err)
		assert.False(t, first.Correct)
		assert.Equal(t, 1, first.TriesUsed)

		second, err := svc.SubmitGuess(context.Background(), identity, testDateKey, "wrong two")
		require.NoError(t, err)
		assert.Equal(t, 2, second.TriesUsed)

		attempt, err := svc.ReadAttempt(identity, testDateKey)
		require.NoError(t, err)
		require.Len(t, attempt.Guesses, 2)
		assert.Equal(t, 1, attempt.Guesses[0].Position)
		assert.Equal(t, "wrong one", attempt.Guesses[0].Guess)
		assert.Equal(t, 2, attempt.Guesses[1].Position)
		assert.False(t, attempt.IsSolved())
	})

	t.Run("correct guess solves and records the position", func(t *testing.T) {
		outcome, err := svc.SubmitGuess(context.Background(), identity, testDateKey, "days in each month")
		require.NoError(t, err)
		assert.True(t, outcome.Correct)
		assert.Equal(t, 3, outcome.TriesUsed)

		attempt, err := svc.ReadAttempt(identity, testDateKey)
		require.NoError(t, err)
		assert.True(t, attempt.Solved)
		require.NotNil(t, attempt.SolvedIn)
		assert.Equal(t, 3, *attempt.SolvedIn)
	})

	t.Run("solved attempts reject further guesses", func(t *testing.T) {
		_, err := svc.SubmitGuess(context.Background(), identity, testDateKey, "one more")
		assert.ErrorIs(t, err, ErrAlreadySolved)

		attempt, err := svc.ReadAttempt(identity, testDateKey)
		require.NoError(t, err)
		assert.Len(t, attempt.Guesses, 3)
	})
}

func TestSubmitGuessJudgeFailure(t *testing.T) {
	db := openTestDB(t)
	seedPuzzle(t, db, testDateKey, "puzzle-1", "days in each month")
	scorer := &fakeJudge{err: assert.AnError}
	svc := newTestAttemptService(db, scorer)
	identity := AnonymousIdentity("anon-token-1")

	_, err := svc.SubmitGuess(context.Background(), identity, testDateKey, "some guess")
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, scorer.calls)

	// The empty attempt row may exist but no guess was recorded and no try
	// was consumed
	attempt, err := svc.ReadAttempt(identity, testDateKey)
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Empty(t, attempt.Guesses)
	assert.False(t, attempt.Terminal())
}

func TestGiveUp(t *testing.T) {
	db := openTestDB(t)
	seedPuzzle(t, db, testDateKey, "puzzle-1", "days in each month")
	svc := newTestAttemptService(db, &fakeJudge{})

	t.Run("closes the attempt and reveals the answer", func(t *testing.T) {
		identity := AnonymousIdentity("quitter-1")
		_, err := svc.SubmitGuess(context.Background(), identity, testDateKey, "wrong")
		require.NoError(t, err)

		outcome, err := svc.GiveUp(identity, testDateKey)
		require.NoError(t, err)
		assert.True(t, outcome.GaveUp)
		assert.Equal(t, "Test dataset", outcome.RevealedAnswer)

		_, err = svc.SubmitGuess(context.Background(), identity, testDateKey, "too late")
		assert.ErrorIs(t, err, ErrAlreadyGaveUp)
	})

	t.Run("repeat give-up is an idempotent success", func(t *testing.T) {
		identity := AnonymousIdentity("quitter-1")
		outcome, err := svc.GiveUp(identity, testDateKey)
		require.NoError(t, err)
		assert.True(t, outcome.GaveUp)
	})

	t.Run("giving up without guessing records a terminal attempt", func(t *testing.T) {
		identity := AnonymousIdentity("quitter-2")
		outcome, err := svc.GiveUp(identity, testDateKey)
		require.NoError(t, err)
		assert.True(t, outcome.GaveUp)

		attempt, err := svc.ReadAttempt(identity, testDateKey)
		require.NoError(t, err)
		require.NotNil(t, attempt)
		assert.True(t, attempt.GaveUp)
		assert.Empty(t, attempt.Guesses)
	})

	t.Run("solved attempts cannot give up", func(t *testing.T) {
		identity := AnonymousIdentity("winner-1")
		_, err := svc.SubmitGuess(context.Background(), identity, testDateKey, "days in each month")
		require.NoError(t, err)

		_, err = svc.GiveUp(identity, testDateKey)
		assert.ErrorIs(t, err, ErrAlreadySolved)
	})
}
