package guesses

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"api/config"
	"api/judge"
	"api/middleware"
	"api/models"
	"api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testDateKey = "2026-08-31"

// scriptedJudge marks a guess correct iff it equals the puzzle answer, or
// fails every call when err is set
type scriptedJudge struct {
	err error
}

func (s *scriptedJudge) Score(_ context.Context, guess string, puzzle *models.DailyPuzzle) (judge.Judgment, error) {
	if s.err != nil {
		return judge.Judgment{}, s.err
	}
	if guess == puzzle.Answer {
		return judge.Judgment{Score: 100, Verdict: judge.VerdictCorrect, Reason: "That matches the intended dataset."}, nil
	}
	return judge.Judgment{Score: 40, Verdict: judge.VerdictIncorrect, Reason: "Not close yet."}, nil
}

func setupRouter(t *testing.T, scorer judge.Judge) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Player{}, &models.GameAttempt{}, &models.Guess{}, &models.DailyPuzzle{}))

	require.NoError(t, db.Create(&models.DailyPuzzle{
		DateKey:         testDateKey,
		PuzzleID:        "puzzle-1",
		Answer:          "days in each month",
		AcceptedAnswers: models.StringList{},
		Preview:         models.PreviewPayload{"31": 7},
		SolutionLabel:   "Days in each month",
	}).Error)

	puzzles := services.NewPuzzleService(db)
	players := services.NewPlayerService(db)
	attempts := services.NewAttemptService(db, scorer, puzzles, 200)
	syncSvc := services.NewSyncService(db, attempts, 6, 200)

	r := gin.New()
	r.Use(middleware.IdentityMiddleware())
	group := r.Group("")
	RegisterRoutes(group, NewHandler(players, attempts, puzzles, syncSvc, 6))
	return r
}

func sessionToken(t *testing.T, externalID string) string {
	t.Helper()
	config.SessionSecret = "test-secret"

	claims := SessionTestClaims{
		Name: "Tester",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.SessionSecret))
	require.NoError(t, err)
	return token
}

type SessionTestClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func doJSON(t *testing.T, r *gin.Engine, method string, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	return recorder
}

func TestSubmitGuessRoute(t *testing.T) {
	t.Run("anonymous guess is judged and saved", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{})

		recorder := doJSON(t, r, http.MethodPost, "/guesses", GuessRequest{
			Guess: "wrong one", DateKey: testDateKey, AnonymousID: "anon-token-1",
		}, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp GuessResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.False(t, resp.Correct)
		assert.Equal(t, 1, resp.TriesUsed)
		assert.True(t, resp.Saved)
	})

	t.Run("missing anonymous id is rejected", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{})

		recorder := doJSON(t, r, http.MethodPost, "/guesses", GuessRequest{
			Guess: "wrong one", DateKey: testDateKey,
		}, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unconfigured day maps to service unavailable", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{})

		recorder := doJSON(t, r, http.MethodPost, "/guesses", GuessRequest{
			Guess: "wrong one", DateKey: "2026-01-01", AnonymousID: "anon-token-1",
		}, "")
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})

	t.Run("judge outage maps to bad gateway", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{err: judge.ErrUnavailable})

		recorder := doJSON(t, r, http.MethodPost, "/guesses", GuessRequest{
			Guess: "wrong one", DateKey: testDateKey, AnonymousID: "anon-token-1",
		}, "")
		assert.Equal(t, http.StatusBadGateway, recorder.Code)
	})

	t.Run("signed in players do not need an anonymous id", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{})
		token := sessionToken(t, "ext-1")

		recorder := doJSON(t, r, http.MethodPost, "/guesses", GuessRequest{
			Guess: "days in each month", DateKey: testDateKey,
		}, token)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp GuessResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Correct)
	})
}

func TestReadAttemptRoute(t *testing.T) {
	r := setupRouter(t, &scriptedJudge{})

	t.Run("no identity yields an empty attempt", func(t *testing.T) {
		recorder := doJSON(t, r, http.MethodGet, "/guesses?dateKey="+testDateKey, nil, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp AttemptResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Empty(t, resp.Results)
		assert.False(t, resp.IsSolved)
	})

	t.Run("returns judged guesses in order", func(t *testing.T) {
		doJSON(t, r, http.MethodPost, "/guesses", GuessRequest{
			Guess: "wrong one", DateKey: testDateKey, AnonymousID: "anon-token-1",
		}, "")
		doJSON(t, r, http.MethodPost, "/guesses", GuessRequest{
			Guess: "wrong two", DateKey: testDateKey, AnonymousID: "anon-token-1",
		}, "")

		recorder := doJSON(t, r, http.MethodGet, "/guesses?dateKey="+testDateKey+"&anonymousId=anon-token-1", nil, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp AttemptResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "wrong one", resp.Results[0].Guess)
		assert.Equal(t, 2, resp.TriesUsed)
		assert.Nil(t, resp.RevealedAnswer)
	})
}

func TestGiveUpRoute(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{})

		recorder := doJSON(t, r, http.MethodPost, "/guesses/give-up", GiveUpRequest{DateKey: testDateKey}, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("closes the attempt and reveals the answer", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{})
		token := sessionToken(t, "ext-1")

		recorder := doJSON(t, r, http.MethodPost, "/guesses/give-up", GiveUpRequest{DateKey: testDateKey}, token)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp GiveUpResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.GaveUp)
		assert.Equal(t, "Days in each month", resp.RevealedAnswer)

		second := doJSON(t, r, http.MethodPost, "/guesses/give-up", GiveUpRequest{DateKey: testDateKey}, token)
		assert.Equal(t, http.StatusOK, second.Code)
	})
}

func TestSyncRoute(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{})

		recorder := doJSON(t, r, http.MethodPost, "/guesses/sync", SyncRequest{DateKey: testDateKey}, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("claims the anonymous attempt and replays local guesses", func(t *testing.T) {
		r := setupRouter(t, &scriptedJudge{})
		token := sessionToken(t, "ext-1")

		doJSON(t, r, http.MethodPost, "/guesses", GuessRequest{
			Guess: "wrong one", DateKey: testDateKey, AnonymousID: "anon-token-1",
		}, "")

		recorder := doJSON(t, r, http.MethodPost, "/guesses/sync", SyncRequest{
			DateKey:     testDateKey,
			AnonymousID: "anon-token-1",
			Guesses:     []string{"wrong one", "wrong two"},
		}, token)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp AttemptResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.TriesUsed)
		assert.False(t, resp.IsSolved)
	})
}
