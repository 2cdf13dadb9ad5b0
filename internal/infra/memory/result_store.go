package memory

import (
	"context"
	"fmt"
	"sync"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/leaderboard"
)

// ResultStore keeps results in memory: the simplest quiz.ResultSink, used in
// demo wiring and tests.
type ResultStore struct {
	mu      sync.RWMutex
	nextID  int64
	results []domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{nextID: 1}
}

func (s *ResultStore) Submit(_ context.Context, result domain.Result) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.ID = s.nextID
	s.nextID++
	s.results = append(s.results, result)
	return result.ID, nil
}

func (s *ResultStore) SetPhotoURL(_ context.Context, id int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.results {
		if s.results[i].ID == id {
			s.results[i].PhotoURL = url
			return nil
		}
	}
	return fmt.Errorf("result %d not found", id)
}

func (s *ResultStore) List(_ context.Context, policy leaderboard.Policy) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return leaderboard.Sort(s.results, policy), nil
}

func (s *ResultStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	return nil
}
