// Package file backs the quiz with plain JSON files: a question file read
// once at startup and a result file holding the leaderboard as an encoded
// list. It is the degraded, non-networked mode; sorting happens client-side
// and there are no server-side ordering guarantees.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/leaderboard"
)

// ResultStore persists results as a JSON-encoded list in a single file.
type ResultStore struct {
	path string

	mu      sync.Mutex
	loaded  bool
	nextID  int64
	results []domain.Result
}

func NewResultStore(path string) *ResultStore {
	return &ResultStore{path: path, nextID: 1}
}

func (s *ResultStore) Submit(_ context.Context, result domain.Result) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	result.ID = s.nextID
	s.nextID++
	s.results = append(s.results, result)
	if err := s.flushLocked(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	return result.ID, nil
}

func (s *ResultStore) SetPhotoURL(_ context.Context, id int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	for i := range s.results {
		if s.results[i].ID == id {
			s.results[i].PhotoURL = url
			return s.flushLocked()
		}
	}
	return fmt.Errorf("result %d not found", id)
}

func (s *ResultStore) List(_ context.Context, policy leaderboard.Policy) ([]domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	return leaderboard.Sort(s.results, policy), nil
}

func (s *ResultStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.results = nil
	s.nextID = 1
	return s.flushLocked()
}

func (s *ResultStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read results file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.results); err != nil {
			return fmt.Errorf("decode results file: %w", err)
		}
	}
	for _, r := range s.results {
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	s.loaded = true
	return nil
}

func (s *ResultStore) flushLocked() error {
	data, err := json.MarshalIndent(s.results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	// write-then-rename keeps the file readable if the process dies mid-write
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace results file: %w", err)
	}
	return nil
}
