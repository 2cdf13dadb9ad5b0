// Package leaderboard sorts and aggregates persisted quiz results. The sort
// policy is configurable: score always ranks first, the tie-break chain is a
// deployment choice.
package leaderboard

import (
	"math"
	"sort"
	"strings"

	"trivia-quiz-service/internal/domain"
)

// Tie-break keys understood by ParsePolicy.
const (
	KeyScore       = "score"
	KeyDuration    = "duration"
	KeyCompletedAt = "completed_at"
)

// Policy is an ordered list of sort keys. Score is compared descending,
// duration ascending (faster finishers rank higher), completion time
// descending (recent first).
type Policy struct {
	Keys []string
}

// DefaultPolicy ranks by score, then elapsed duration, then completion time.
func DefaultPolicy() Policy {
	return Policy{Keys: []string{KeyScore, KeyDuration, KeyCompletedAt}}
}

// ParsePolicy reads a comma-separated key list such as "score,duration".
// Unknown keys are dropped; an empty or all-unknown spec yields the default.
func ParsePolicy(spec string) Policy {
	var keys []string
	for _, part := range strings.Split(spec, ",") {
		switch strings.TrimSpace(part) {
		case KeyScore, KeyDuration, KeyCompletedAt:
			keys = append(keys, strings.TrimSpace(part))
		}
	}
	if len(keys) == 0 {
		return DefaultPolicy()
	}
	return Policy{Keys: keys}
}

// Sort returns a new slice ordered by the policy. The input is not mutated.
func Sort(results []domain.Result, policy Policy) []domain.Result {
	sorted := append([]domain.Result(nil), results...)
	keys := policy.Keys
	if len(keys) == 0 {
		keys = DefaultPolicy().Keys
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		for _, key := range keys {
			switch key {
			case KeyScore:
				if sorted[i].Score != sorted[j].Score {
					return sorted[i].Score > sorted[j].Score
				}
			case KeyDuration:
				if sorted[i].DurationSeconds != sorted[j].DurationSeconds {
					return sorted[i].DurationSeconds < sorted[j].DurationSeconds
				}
			case KeyCompletedAt:
				if !sorted[i].CompletedAt.Equal(sorted[j].CompletedAt) {
					return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
				}
			}
		}
		return false
	})
	return sorted
}

// Stats aggregates a result list: entry count, rounded mean percentage, top
// score, and the number of perfect runs.
func Stats(results []domain.Result) domain.LeaderboardStats {
	stats := domain.LeaderboardStats{Count: len(results)}
	if len(results) == 0 {
		return stats
	}
	var ratioSum float64
	for _, r := range results {
		if r.TotalQuestions > 0 {
			ratioSum += float64(r.Score) / float64(r.TotalQuestions)
		}
		if r.Score > stats.TopScore {
			stats.TopScore = r.Score
		}
		if r.TotalQuestions > 0 && r.Score == r.TotalQuestions {
			stats.PerfectCount++
		}
	}
	stats.AveragePercentage = int(math.Round(ratioSum / float64(len(results)) * 100))
	return stats
}
