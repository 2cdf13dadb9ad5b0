package memory

import (
	"context"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/leaderboard"
)

func TestResultStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	submitted := domain.Result{
		PlayerName:      "Anna",
		Score:           7,
		TotalQuestions:  10,
		Percentage:      70,
		Answers:         []bool{true, true, true, true, true, true, true, false, false, false},
		DurationSeconds: 95,
		CompletedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	id, err := store.Submit(ctx, submitted)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected an assigned id")
	}

	results, err := store.List(ctx, leaderboard.DefaultPolicy())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.Score != 7 || got.TotalQuestions != 10 || got.Percentage != 70 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestResultStorePhotoAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	id, err := store.Submit(ctx, domain.Result{PlayerName: "Bob", Score: 5, TotalQuestions: 10, Percentage: 50})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := store.SetPhotoURL(ctx, id, "https://photos.example/p.jpg"); err != nil {
		t.Fatalf("set photo url: %v", err)
	}
	if err := store.SetPhotoURL(ctx, id+99, "x"); err == nil {
		t.Fatalf("expected error for unknown id")
	}

	results, _ := store.List(ctx, leaderboard.DefaultPolicy())
	if results[0].PhotoURL != "https://photos.example/p.jpg" {
		t.Fatalf("photo url not applied: %+v", results[0])
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	results, _ = store.List(ctx, leaderboard.DefaultPolicy())
	if len(results) != 0 {
		t.Fatalf("expected empty store after clear, got %d", len(results))
	}
}
