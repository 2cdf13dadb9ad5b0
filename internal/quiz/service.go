package quiz

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/leaderboard"
)

// SessionRepository abstracts how running sessions are tracked.
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// QuestionRepository loads the question set (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context) ([]domain.Question, error)
}

// ResultSink persists completed attempts and serves the leaderboard.
type ResultSink interface {
	Submit(ctx context.Context, result domain.Result) (int64, error)
	SetPhotoURL(ctx context.Context, id int64, url string) error
	List(ctx context.Context, policy leaderboard.Policy) ([]domain.Result, error)
	Clear(ctx context.Context) error
}

// PhotoStore uploads image payloads under caller-generated keys and returns
// durable public URLs.
type PhotoStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// Notifier fans out "results changed, re-query" signals. Delivery is
// at-least-once and unordered relative to the write that caused it.
type Notifier interface {
	NotifyChanged(ctx context.Context)
	Subscribe(ctx context.Context, fn func()) (func(), error)
}

// QuizService contains the quiz use cases: session progression, result
// submission, photo attachment, and the leaderboard read side.
type QuizService struct {
	sessions    SessionRepository
	questions   QuestionRepository
	sink        ResultSink
	photos      PhotoStore
	notifier    Notifier
	revealDelay time.Duration
	policy      leaderboard.Policy
}

func NewQuizService(sessions SessionRepository, questions QuestionRepository, sink ResultSink, photos PhotoStore, notifier Notifier, revealDelay time.Duration, policy leaderboard.Policy) *QuizService {
	if revealDelay <= 0 {
		revealDelay = DefaultRevealDelay
	}
	return &QuizService{
		sessions:    sessions,
		questions:   questions,
		sink:        sink,
		photos:      photos,
		notifier:    notifier,
		revealDelay: revealDelay,
		policy:      policy,
	}
}

// StartSession validates the player name, loads the question set, and begins
// a new attempt at question zero.
func (s *QuizService) StartSession(ctx context.Context, playerName string) (domain.SessionSnapshot, error) {
	questions, err := s.questions.GetQuestions(ctx)
	if err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("load questions: %w", err)
	}

	session, err := NewSession(playerName, questions, s.revealDelay, nil)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	session.onComplete = func(result domain.Result) {
		s.persistResult(session, result)
	}
	s.sessions.Put(session)
	return session.Snapshot(), nil
}

// SelectAnswer records the pending choice for the session's current question.
func (s *QuizService) SelectAnswer(_ context.Context, sessionID string, choice int) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	if err := session.Select(choice); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// SubmitAnswer scores the pending choice and opens the reveal window. On the
// final question the session completes once the window elapses and the result
// is submitted to the sink exactly once.
func (s *QuizService) SubmitAnswer(_ context.Context, sessionID string) (domain.Reveal, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Reveal{}, domain.ErrSessionNotFound
	}
	return session.Submit()
}

// GetSession returns the session's observable state.
func (s *QuizService) GetSession(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// CurrentQuestion returns the question the session is positioned on.
func (s *QuizService) CurrentQuestion(_ context.Context, sessionID string) (domain.Question, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Question{}, domain.ErrSessionNotFound
	}
	return session.Question()
}

// AbandonSession invalidates the reveal timer and drops the session. A
// pending continuation against it becomes a no-op.
func (s *QuizService) AbandonSession(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Abandon()
	s.sessions.Delete(sessionID)
}

// AttachPhoto uploads the captured image under a collision-resistant key and
// links the resulting URL to the persisted result. Upload and link failures
// are distinguishable; a failed upload never attempts the link, a failed link
// leaves the image uploaded but unreferenced.
func (s *QuizService) AttachPhoto(ctx context.Context, resultID int64, jpegData []byte) (string, error) {
	key := PhotoKey(resultID, time.Now())
	url, err := s.photos.Upload(ctx, key, jpegData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if err := s.sink.SetPhotoURL(ctx, resultID, url); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLinkFailed, err)
	}
	if s.notifier != nil {
		s.notifier.NotifyChanged(ctx)
	}
	return url, nil
}

// Leaderboard fetches all results in policy order plus their aggregate stats.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.Result, domain.LeaderboardStats, error) {
	results, err := s.sink.List(ctx, s.policy)
	if err != nil {
		return nil, domain.LeaderboardStats{}, err
	}
	return results, leaderboard.Stats(results), nil
}

// ClearResults deletes every persisted result. Confirmation is the caller's
// responsibility; the sink applies the delete unconditionally.
func (s *QuizService) ClearResults(ctx context.Context) error {
	if err := s.sink.Clear(ctx); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyChanged(ctx)
	}
	return nil
}

// SubscribeChanges registers fn to run whenever the result set changes.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) SubscribeChanges(ctx context.Context, fn func()) (func(), error) {
	if s.notifier == nil {
		return func() {}, nil
	}
	return s.notifier.Subscribe(ctx, fn)
}

// persistResult runs from the reveal timer goroutine when a session
// completes. Persistence is best-effort: a failed insert is logged and the
// completed session keeps its score.
func (s *QuizService) persistResult(session *Session, result domain.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := s.sink.Submit(ctx, result)
	if err != nil {
		log.Printf("result submission for %q failed: %v", result.PlayerName, err)
		return
	}
	session.setResultID(id)
	if s.notifier != nil {
		s.notifier.NotifyChanged(ctx)
	}
}

// PhotoKey builds a unique object-storage key for a result's photo.
func PhotoKey(resultID int64, now time.Time) string {
	return fmt.Sprintf("quiz-photo-%d-%s-%d.jpg", resultID, uuid.NewString()[:8], now.Unix())
}
