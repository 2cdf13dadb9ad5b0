package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Question is a multiple-choice question. Options are kept in display order;
// CorrectIndex points into Options and is the canonical correct-answer form.
type Question struct {
	ID           int      `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// UnmarshalJSON accepts both question encodings found in the wild: a numeric
// correctIndex, or a correctAnswer holding the literal option text. Either way
// the decoded question carries the index form.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            int      `json:"id"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectIndex  *int     `json:"correctIndex"`
		CorrectAnswer *string  `json:"correctAnswer"`
		Explanation   string   `json:"explanation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.ID = raw.ID
	q.Text = raw.Text
	q.Options = raw.Options
	q.Explanation = raw.Explanation

	switch {
	case raw.CorrectIndex != nil:
		if *raw.CorrectIndex < 0 || *raw.CorrectIndex >= len(raw.Options) {
			return fmt.Errorf("question %d: correctIndex %d out of range", raw.ID, *raw.CorrectIndex)
		}
		q.CorrectIndex = *raw.CorrectIndex
	case raw.CorrectAnswer != nil:
		idx := -1
		for i, opt := range raw.Options {
			if opt == *raw.CorrectAnswer {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("question %d: correctAnswer %q not among options", raw.ID, *raw.CorrectAnswer)
		}
		q.CorrectIndex = idx
	default:
		return fmt.Errorf("question %d: missing correctIndex or correctAnswer", raw.ID)
	}
	return nil
}

// SessionState is the progression phase of a quiz attempt.
type SessionState string

const (
	StateNotStarted     SessionState = "not_started"
	StateInProgress     SessionState = "in_progress"
	StateAwaitingReveal SessionState = "awaiting_reveal"
	StateCompleted      SessionState = "completed"
	StateAbandoned      SessionState = "abandoned"
)

// SessionSnapshot is a read-only view of a running session.
type SessionSnapshot struct {
	ID            string       `json:"id"`
	PlayerName    string       `json:"playerName"`
	State         SessionState `json:"state"`
	CurrentIndex  int          `json:"currentIndex"`
	QuestionCount int          `json:"questionCount"`
	Score         int          `json:"score"`
	Answers       []bool       `json:"answers"`
	ResultID      int64        `json:"resultId,omitempty"`
	StartedAt     time.Time    `json:"startedAt"`
	CompletedAt   time.Time    `json:"completedAt,omitempty"`
}

// Reveal is what the player sees between submitting an answer and the next
// question: whether they were right, which option was, and for how long the
// explanation stays up.
type Reveal struct {
	Correct      bool          `json:"correct"`
	CorrectIndex int           `json:"correctIndex"`
	Explanation  string        `json:"explanation,omitempty"`
	Duration     time.Duration `json:"-"`
}

// Result is one persisted quiz attempt.
type Result struct {
	ID              int64     `json:"id"`
	PlayerName      string    `json:"playerName"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"totalQuestions"`
	Percentage      int       `json:"percentage"`
	Answers         []bool    `json:"answers"`
	DurationSeconds int       `json:"durationSeconds"`
	CompletedAt     time.Time `json:"completedAt"`
	PhotoURL        string    `json:"photoUrl,omitempty"`
}

// Percentage computes the rounded score percentage for a result.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// LeaderboardStats aggregates a result list for display.
type LeaderboardStats struct {
	Count             int `json:"count"`
	AveragePercentage int `json:"averagePercentage"`
	TopScore          int `json:"topScore"`
	PerfectCount      int `json:"perfectCount"`
}
