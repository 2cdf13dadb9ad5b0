package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/leaderboard"
)

// ResultStore persists quiz results in Postgres. Inserts happen once per
// session; the photo URL is applied by a single later update with
// last-write-wins semantics.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Submit(ctx context.Context, result domain.Result) (int64, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO quiz_results (player_name, score, total_questions, percentage, answers, duration_seconds, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		result.PlayerName, result.Score, result.TotalQuestions, result.Percentage,
		answers, result.DurationSeconds, result.CompletedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	return id, nil
}

func (s *ResultStore) SetPhotoURL(ctx context.Context, id int64, url string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE quiz_results SET photo_url=$1 WHERE id=$2`, url, id)
	if err != nil {
		return fmt.Errorf("update photo url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("result %d not found", id)
	}
	return nil
}

func (s *ResultStore) List(ctx context.Context, policy leaderboard.Policy) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, player_name, score, total_questions, percentage, answers, duration_seconds, completed_at, photo_url
		 FROM quiz_results ORDER BY `+orderClause(policy))
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var (
			r        domain.Result
			answers  []byte
			photoURL *string
		)
		if err := rows.Scan(&r.ID, &r.PlayerName, &r.Score, &r.TotalQuestions, &r.Percentage,
			&answers, &r.DurationSeconds, &r.CompletedAt, &photoURL); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(answers, &r.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		if photoURL != nil {
			r.PhotoURL = *photoURL
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *ResultStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM quiz_results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

// orderClause maps policy keys onto fixed column expressions. Keys outside the
// known set never reach SQL; ParsePolicy already drops them.
func orderClause(policy leaderboard.Policy) string {
	keys := policy.Keys
	if len(keys) == 0 {
		keys = leaderboard.DefaultPolicy().Keys
	}
	var parts []string
	for _, key := range keys {
		switch key {
		case leaderboard.KeyScore:
			parts = append(parts, "score DESC")
		case leaderboard.KeyDuration:
			parts = append(parts, "duration_seconds ASC")
		case leaderboard.KeyCompletedAt:
			parts = append(parts, "completed_at DESC")
		}
	}
	if len(parts) == 0 {
		parts = []string{"score DESC"}
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", ")
}
