package quiz_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/leaderboard"
	"trivia-quiz-service/internal/quiz"
)

func TestSessionFlowSubmitsResultOnce(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultStore()
	service := newTestService(sink, &fakePhotoStore{})

	snapshot, err := service.StartSession(ctx, "Anna")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	playThrough(t, ctx, service, snapshot.ID, []int{0, 0, 1})

	final := waitForResultID(t, ctx, service, snapshot.ID)
	if final.Score != 2 || final.State != domain.StateCompleted {
		t.Fatalf("expected completed with score 2, got %+v", final)
	}

	results, stats, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one persisted result, got %d", len(results))
	}
	r := results[0]
	if r.PlayerName != "Anna" || r.Score != 2 || r.TotalQuestions != 3 || r.Percentage != 67 {
		t.Fatalf("unexpected persisted result %+v", r)
	}
	if stats.Count != 1 || stats.TopScore != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestListIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultStore()
	seedResults(t, ctx, sink)
	service := newTestService(sink, &fakePhotoStore{})

	first, _, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	second, _, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("list is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestSubmissionFailureKeepsSessionCompleted(t *testing.T) {
	ctx := context.Background()
	sink := &failingSink{submitErr: fmt.Errorf("%w: connection refused", domain.ErrSubmissionFailed)}
	service := newTestService(sink, &fakePhotoStore{})

	snapshot, err := service.StartSession(ctx, "Bob")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	playThrough(t, ctx, service, snapshot.ID, []int{0, 0, 0})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := service.GetSession(ctx, snapshot.ID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if got.State == domain.StateCompleted {
			if got.Score != 3 {
				t.Fatalf("score must survive a failed insert, got %+v", got)
			}
			if got.ResultID != 0 {
				t.Fatalf("no result id should be assigned on failure, got %d", got.ResultID)
			}
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("session never completed")
}

func TestAttachPhotoLinksUploadedURL(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultStore()
	photos := &fakePhotoStore{}
	service := newTestService(sink, photos)

	id, err := sink.Submit(ctx, sampleResult("Anna", 7, 10))
	if err != nil {
		t.Fatalf("seed result: %v", err)
	}

	url, err := service.AttachPhoto(ctx, id, []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("attach photo: %v", err)
	}
	if url == "" || photos.uploads != 1 {
		t.Fatalf("expected one upload with a url, got %q uploads=%d", url, photos.uploads)
	}

	results, _, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if results[0].PhotoURL != url {
		t.Fatalf("expected linked photo url %q, got %q", url, results[0].PhotoURL)
	}
}

func TestAttachPhotoUploadFailure(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultStore()
	photos := &fakePhotoStore{fail: true}
	service := newTestService(sink, photos)

	id, err := sink.Submit(ctx, sampleResult("Anna", 7, 10))
	if err != nil {
		t.Fatalf("seed result: %v", err)
	}

	_, err = service.AttachPhoto(ctx, id, []byte("jpeg-bytes"))
	if !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected upload failure, got %v", err)
	}
	if errors.Is(err, domain.ErrLinkFailed) {
		t.Fatalf("upload failure must not read as a link failure")
	}
}

func TestAttachPhotoLinkFailureIsDistinct(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewResultStore()
	sink := &failingSink{ResultSink: backing, linkErr: errors.New("update rejected")}
	photos := &fakePhotoStore{}
	service := newTestService(sink, photos)

	id, err := backing.Submit(ctx, sampleResult("Anna", 7, 10))
	if err != nil {
		t.Fatalf("seed result: %v", err)
	}

	_, err = service.AttachPhoto(ctx, id, []byte("jpeg-bytes"))
	if !errors.Is(err, domain.ErrLinkFailed) {
		t.Fatalf("expected link failure, got %v", err)
	}
	if errors.Is(err, domain.ErrSubmissionFailed) || errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("link failure must stay distinct, got %v", err)
	}
	if photos.uploads != 1 {
		t.Fatalf("the image should have been uploaded before the link failed")
	}

	results, _, err := backing.List(ctx, leaderboard.DefaultPolicy())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if results[0].PhotoURL != "" {
		t.Fatalf("photo url must remain unset after a failed link, got %q", results[0].PhotoURL)
	}
}

func TestClearResults(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultStore()
	seedResults(t, ctx, sink)
	service := newTestService(sink, &fakePhotoStore{})

	if err := service.ClearResults(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	results, stats, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(results) != 0 || stats.Count != 0 {
		t.Fatalf("expected empty leaderboard after clear, got %d results", len(results))
	}
}

func TestSubscribeChangesFiresOnCompletion(t *testing.T) {
	ctx := context.Background()
	service := newTestService(memory.NewResultStore(), &fakePhotoStore{})

	changed := make(chan struct{}, 4)
	cancel, err := service.SubscribeChanges(ctx, func() {
		changed <- struct{}{}
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	snapshot, err := service.StartSession(ctx, "Anna")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	playThrough(t, ctx, service, snapshot.ID, []int{0, 0, 0})

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("no change notification after completion")
	}
}

// playThrough selects and submits each choice in order, waiting out the
// reveal window between questions.
func playThrough(t *testing.T, ctx context.Context, service *quiz.QuizService, sessionID string, choices []int) {
	t.Helper()
	for i, choice := range choices {
		if _, err := service.SelectAnswer(ctx, sessionID, choice); err != nil {
			t.Fatalf("select q%d: %v", i, err)
		}
		if _, err := service.SubmitAnswer(ctx, sessionID); err != nil {
			t.Fatalf("submit q%d: %v", i, err)
		}
		if i == len(choices)-1 {
			break
		}
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			got, err := service.GetSession(ctx, sessionID)
			if err != nil {
				t.Fatalf("get session: %v", err)
			}
			if got.State == domain.StateInProgress && got.CurrentIndex == i+1 {
				break
			}
			time.Sleep(2 * time.Millisecond)
		}
	}
}

func waitForResultID(t *testing.T, ctx context.Context, service *quiz.QuizService, sessionID string) domain.SessionSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := service.GetSession(ctx, sessionID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if got.State == domain.StateCompleted && got.ResultID != 0 {
			return got
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("session never completed with a result id")
	return domain.SessionSnapshot{}
}

func newTestService(sink quiz.ResultSink, photos quiz.PhotoStore) *quiz.QuizService {
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(makeQuestions(3)), time.Minute)
	return quiz.NewQuizService(memory.NewSessionStore(), questions, sink, photos, memory.NewNotifier(), testRevealDelay, leaderboard.DefaultPolicy())
}

func seedResults(t *testing.T, ctx context.Context, sink quiz.ResultSink) {
	t.Helper()
	for _, r := range []domain.Result{
		sampleResult("Anna", 7, 10),
		sampleResult("Bob", 9, 10),
		sampleResult("Cleo", 7, 10),
	} {
		if _, err := sink.Submit(ctx, r); err != nil {
			t.Fatalf("seed result: %v", err)
		}
	}
}

func sampleResult(name string, score, total int) domain.Result {
	return domain.Result{
		PlayerName:      name,
		Score:           score,
		TotalQuestions:  total,
		Percentage:      domain.Percentage(score, total),
		Answers:         make([]bool, total),
		DurationSeconds: 60,
		CompletedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// fakePhotoStore counts uploads and optionally fails them.
type fakePhotoStore struct {
	fail    bool
	uploads int
}

func (s *fakePhotoStore) Upload(_ context.Context, key string, _ []byte) (string, error) {
	if s.fail {
		return "", errors.New("bucket unreachable")
	}
	s.uploads++
	return "https://photos.example/" + key, nil
}

// failingSink wraps a real sink and fails selected operations.
type failingSink struct {
	quiz.ResultSink
	submitErr error
	linkErr   error
}

func (s *failingSink) Submit(ctx context.Context, r domain.Result) (int64, error) {
	if s.submitErr != nil {
		return 0, s.submitErr
	}
	return s.ResultSink.Submit(ctx, r)
}

func (s *failingSink) SetPhotoURL(ctx context.Context, id int64, url string) error {
	if s.linkErr != nil {
		return s.linkErr
	}
	return s.ResultSink.SetPhotoURL(ctx, id, url)
}
