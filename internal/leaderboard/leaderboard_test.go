package leaderboard

import (
	"reflect"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestParsePolicy(t *testing.T) {
	if got := ParsePolicy("score,duration"); !reflect.DeepEqual(got.Keys, []string{"score", "duration"}) {
		t.Fatalf("unexpected keys %v", got.Keys)
	}
	if got := ParsePolicy(" score , completed_at "); !reflect.DeepEqual(got.Keys, []string{"score", "completed_at"}) {
		t.Fatalf("whitespace should be tolerated, got %v", got.Keys)
	}
	if got := ParsePolicy("bogus,unknown"); !reflect.DeepEqual(got, DefaultPolicy()) {
		t.Fatalf("unknown keys should fall back to the default, got %v", got.Keys)
	}
	if got := ParsePolicy(""); !reflect.DeepEqual(got, DefaultPolicy()) {
		t.Fatalf("empty spec should fall back to the default, got %v", got.Keys)
	}
}

func TestSortOrdersByPolicy(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	results := []domain.Result{
		{ID: 1, PlayerName: "slow", Score: 7, TotalQuestions: 10, DurationSeconds: 120, CompletedAt: base},
		{ID: 2, PlayerName: "top", Score: 9, TotalQuestions: 10, DurationSeconds: 90, CompletedAt: base},
		{ID: 3, PlayerName: "fast", Score: 7, TotalQuestions: 10, DurationSeconds: 45, CompletedAt: base.Add(time.Hour)},
	}

	sorted := Sort(results, DefaultPolicy())
	if names(sorted) != "top,fast,slow" {
		t.Fatalf("default policy order wrong: %s", names(sorted))
	}

	// Score-only policy keeps tied entries in input order.
	scoreOnly := Sort(results, Policy{Keys: []string{KeyScore}})
	if names(scoreOnly) != "top,slow,fast" {
		t.Fatalf("score-only order wrong: %s", names(scoreOnly))
	}

	// Completion-time tie-break ranks the recent run first.
	recent := Sort(results, Policy{Keys: []string{KeyScore, KeyCompletedAt}})
	if names(recent) != "top,fast,slow" {
		t.Fatalf("completed_at order wrong: %s", names(recent))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	results := []domain.Result{
		{ID: 1, Score: 1, TotalQuestions: 3},
		{ID: 2, Score: 3, TotalQuestions: 3},
	}
	before := append([]domain.Result(nil), results...)
	_ = Sort(results, DefaultPolicy())
	if !reflect.DeepEqual(results, before) {
		t.Fatalf("input slice was mutated: %+v", results)
	}
}

func TestStats(t *testing.T) {
	results := []domain.Result{
		{Score: 7, TotalQuestions: 10},
		{Score: 10, TotalQuestions: 10},
		{Score: 5, TotalQuestions: 10},
	}
	stats := Stats(results)
	if stats.Count != 3 {
		t.Fatalf("count = %d", stats.Count)
	}
	// mean(0.7, 1.0, 0.5) = 0.7333 -> 73
	if stats.AveragePercentage != 73 {
		t.Fatalf("average = %d", stats.AveragePercentage)
	}
	if stats.TopScore != 10 {
		t.Fatalf("top = %d", stats.TopScore)
	}
	if stats.PerfectCount != 1 {
		t.Fatalf("perfect = %d", stats.PerfectCount)
	}
}

func TestStatsEmpty(t *testing.T) {
	stats := Stats(nil)
	if stats != (domain.LeaderboardStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func names(results []domain.Result) string {
	out := ""
	for i, r := range results {
		if i > 0 {
			out += ","
		}
		out += r.PlayerName
	}
	return out
}
