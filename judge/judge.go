package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"api/metrics"
	"api/models"
)

// Verdict is the binary classification of a guess
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// ErrUnavailable is returned for timeouts, transport failures and malformed
// upstream payloads. Callers must treat it as retryable and persist nothing.
var ErrUnavailable = errors.New("judge service unavailable")

// Judgment is the normalized outcome of scoring one guess.
// Invariant: Verdict == correct <=> Score == 100; incorrect scores are <= 99.
type Judgment struct {
	Score   int     `json:"score"`
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason"`
}

func (j Judgment) Correct() bool {
	return j.Verdict == VerdictCorrect
}

// Judge scores a guess against a puzzle within a bounded deadline
type Judge interface {
	Score(ctx context.Context, guess string, puzzle *models.DailyPuzzle) (Judgment, error)
}

// HTTPJudge scores guesses through an external cosine-similarity service
type HTTPJudge struct {
	client    *http.Client
	url       string
	threshold float64
}

type similarityRequest struct {
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

type similarityResponse struct {
	CosineSimilarity *float64 `json:"cosine_similarity"`
}

// NewHTTPJudge builds a judge client. endpoint may be absolute or relative
// to baseURL; threshold is the similarity above which a guess is correct.
func NewHTTPJudge(baseURL string, endpoint string, threshold float64, timeout time.Duration) *HTTPJudge {
	url := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		url = strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
	}

	return &HTTPJudge{
		client:    &http.Client{Timeout: timeout},
		url:       url,
		threshold: threshold,
	}
}

// Score calls the similarity service and normalizes the result. The score of
// a correct verdict is always written as 100 and an incorrect one is clamped
// to 99, so the score/verdict invariant holds regardless of upstream values.
func (j *HTTPJudge) Score(ctx context.Context, guess string, puzzle *models.DailyPuzzle) (Judgment, error) {
	startTime := time.Now()

	similarity, err := j.fetchSimilarity(ctx, guess, puzzle.Answer)
	metrics.RecordJudgeCall(startTime, err)
	if err != nil {
		return Judgment{}, err
	}

	rawScore := clamp(int(similarity*100+0.5), 0, 100)
	verdict := VerdictIncorrect
	if exactMatch(guess, puzzle) || similarity >= j.threshold {
		verdict = VerdictCorrect
	}

	score := rawScore
	if verdict == VerdictCorrect {
		score = 100
	} else if score > 99 {
		score = 99
	}

	judgment := Judgment{
		Score:   score,
		Verdict: verdict,
		Reason:  buildHint(score, verdict),
	}
	if judgment.Reason == "" {
		return Judgment{}, fmt.Errorf("%w: empty hint", ErrUnavailable)
	}

	return judgment, nil
}

func (j *HTTPJudge) fetchSimilarity(ctx context.Context, guess string, answer string) (float64, error) {
	body, err := json.Marshal(similarityRequest{Text1: guess, Text2: answer})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var payload similarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if payload.CosineSimilarity == nil {
		return 0, fmt.Errorf("%w: malformed payload", ErrUnavailable)
	}

	return *payload.CosineSimilarity, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)
var whitespace = regexp.MustCompile(`\s+`)

// NormalizeText lowercases and strips punctuation so textual comparisons
// ignore formatting differences
func NormalizeText(text string) string {
	normalized := strings.ToLower(text)
	normalized = nonAlphanumeric.ReplaceAllString(normalized, " ")
	normalized = whitespace.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

func exactMatch(guess string, puzzle *models.DailyPuzzle) bool {
	normalizedGuess := NormalizeText(guess)
	if normalizedGuess == "" {
		return false
	}

	candidates := append([]string{puzzle.Answer}, puzzle.AcceptedAnswers...)
	for _, candidate := range candidates {
		if NormalizeText(candidate) == normalizedGuess {
			return true
		}
	}
	return false
}

func buildHint(score int, verdict Verdict) string {
	if verdict == VerdictCorrect {
		return "That matches the intended dataset."
	}

	switch {
	case score >= 80:
		return "Very close. Be a bit more specific."
	case score >= 65:
		return "Close. Focus on the exact metric, region, or timeframe."
	case score >= 45:
		return "Partially related. Try a tighter interpretation of the dataset."
	default:
		return "Not close yet. Try a different domain or measurement."
	}
}

func clamp(value int, min int, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
