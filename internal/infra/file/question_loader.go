package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"trivia-quiz-service/internal/domain"
)

// QuestionLoader reads the question set from a JSON file. Both observed
// encodings of the correct answer (index or literal option text) are
// accepted; domain.Question normalizes them to the index form on decode.
type QuestionLoader struct {
	path string
}

func NewQuestionLoader(path string) *QuestionLoader {
	return &QuestionLoader{path: path}
}

func (l *QuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode questions file: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}
