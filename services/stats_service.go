package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"api/models"

	"gorm.io/gorm"
)

const defaultDistributionSpan = 6

// DistributionBucket counts attempts solved in exactly Tries guesses
type DistributionBucket struct {
	Tries int `json:"tries"`
	Count int `json:"count"`
}

// DistributionOutcome is the cross-player solve summary for one day
type DistributionOutcome struct {
	DateKey      string               `json:"dateKey"`
	TotalSolves  int                  `json:"totalSolves"`
	Average      *float64             `json:"average"`
	Median       *float64             `json:"median"`
	Distribution []DistributionBucket `json:"distribution"`
}

// StatsService derives solve statistics over closed attempts. Pure reads;
// any caching is the caller's concern.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Distribution aggregates solved attempts for the puzzle assigned to the
// given day, across every day that ran the same puzzle
func (s *StatsService) Distribution(dateKey string) (*DistributionOutcome, error) {
	var assignment models.DailyPuzzle
	err := s.db.First(&assignment, "date_key = ?", dateKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &DistributionOutcome{
			DateKey:      dateKey,
			Distribution: buildDistribution(nil),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve puzzle assignment: %w", err)
	}

	var dateKeys []string
	err = s.db.Model(&models.DailyPuzzle{}).
		Where("puzzle_id = ?", assignment.PuzzleID).
		Pluck("date_key", &dateKeys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list puzzle dates: %w", err)
	}

	var rawValues []int
	err = s.db.Model(&models.GameAttempt{}).
		Where("solved = ? AND solved_in IS NOT NULL AND puzzle_date IN ?", true, dateKeys).
		Pluck("solved_in", &rawValues).Error
	if err != nil {
		return nil, fmt.Errorf("failed to collect solve counts: %w", err)
	}

	values := make([]int, 0, len(rawValues))
	for _, value := range rawValues {
		if value >= 1 {
			values = append(values, value)
		}
	}

	return &DistributionOutcome{
		DateKey:      dateKey,
		TotalSolves:  len(values),
		Average:      computeAverage(values),
		Median:       computeMedian(values),
		Distribution: buildDistribution(values),
	}, nil
}

func buildDistribution(values []int) []DistributionBucket {
	maxTries := defaultDistributionSpan
	if len(values) > 0 {
		maxTries = values[0]
		for _, value := range values {
			if value > maxTries {
				maxTries = value
			}
		}
	}

	counts := make([]int, maxTries)
	for _, value := range values {
		counts[value-1]++
	}

	buckets := make([]DistributionBucket, maxTries)
	for index, count := range counts {
		buckets[index] = DistributionBucket{Tries: index + 1, Count: count}
	}
	return buckets
}

func computeAverage(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, value := range values {
		sum += value
	}
	average := roundTwoDecimals(float64(sum) / float64(len(values)))
	return &average
}

func computeMedian(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median := float64(sorted[middle])
		return &median
	}
	median := roundTwoDecimals(float64(sorted[middle-1]+sorted[middle]) / 2)
	return &median
}

func roundTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
