package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestQuestionLoaderNormalizesBothForms(t *testing.T) {
	path := writeQuestions(t, `[
		{"id":1,"text":"2+2?","options":["3","4"],"correctAnswer":"4"},
		{"id":2,"text":"3+3?","options":["5","6"],"correctIndex":1,"explanation":"six"}
	]`)

	questions, err := NewQuestionLoader(path).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].CorrectIndex != 1 || questions[1].CorrectIndex != 1 {
		t.Fatalf("normalization failed: %+v", questions)
	}
	if questions[1].Explanation != "six" {
		t.Fatalf("explanation lost: %+v", questions[1])
	}
}

func TestQuestionLoaderRejectsEmptyAndBroken(t *testing.T) {
	if _, err := NewQuestionLoader(writeQuestions(t, `[]`)).LoadQuestions(context.Background()); err == nil {
		t.Fatalf("expected error for empty question set")
	}
	if _, err := NewQuestionLoader(writeQuestions(t, `[{"id":1,"text":"?","options":["a"],"correctAnswer":"b"}]`)).LoadQuestions(context.Background()); err == nil {
		t.Fatalf("expected error for unresolvable answer")
	}
	if _, err := NewQuestionLoader(filepath.Join(t.TempDir(), "missing.json")).LoadQuestions(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func writeQuestions(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	return path
}
