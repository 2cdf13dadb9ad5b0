package quiz

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
)

// DefaultRevealDelay is how long the correct answer and explanation stay on
// screen before the session advances.
const DefaultRevealDelay = 3 * time.Second

// Session is the in-memory state machine for one quiz attempt. It moves
// through in_progress -> awaiting_reveal for every question and ends in
// completed, which is terminal: replaying means creating a new Session.
type Session struct {
	id          string
	playerName  string
	questions   []domain.Question
	revealDelay time.Duration
	now         func() time.Time
	onComplete  func(domain.Result)

	mu           sync.Mutex
	state        domain.SessionState
	currentIndex int
	pending      int // -1 when nothing is selected
	answers      []bool
	score        int
	startedAt    time.Time
	completedAt  time.Time
	resultID     int64
	timer        *time.Timer
}

// NewSession validates the player name and question set and starts the
// attempt at question zero. onComplete fires exactly once, after the reveal
// delay of the final question elapses.
func NewSession(playerName string, questions []domain.Question, revealDelay time.Duration, onComplete func(domain.Result)) (*Session, error) {
	return newSessionWithClock(playerName, questions, revealDelay, onComplete, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(playerName string, questions []domain.Question, revealDelay time.Duration, onComplete func(domain.Result), now func() time.Time) (*Session, error) {
	return newSessionWithClock(playerName, questions, revealDelay, onComplete, now)
}

func newSessionWithClock(playerName string, questions []domain.Question, revealDelay time.Duration, onComplete func(domain.Result), now func() time.Time) (*Session, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, domain.ErrEmptyPlayerName
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if revealDelay <= 0 {
		revealDelay = DefaultRevealDelay
	}
	return &Session{
		id:          uuid.NewString(),
		playerName:  name,
		questions:   questions,
		revealDelay: revealDelay,
		now:         now,
		onComplete:  onComplete,
		state:       domain.StateInProgress,
		pending:     -1,
		answers:     make([]bool, 0, len(questions)),
		startedAt:   now(),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Select records the pending choice for the current question. Selecting again
// before submitting overwrites the previous choice. During the reveal window
// the call is ignored so a double-tap cannot answer the next question early.
func (s *Session) Select(choice int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case domain.StateAwaitingReveal:
		return nil
	case domain.StateInProgress:
	default:
		return domain.ErrSessionCompleted
	}
	if choice < 0 || choice >= len(s.questions[s.currentIndex].Options) {
		return domain.ErrInvalidChoice
	}
	s.pending = choice
	return nil
}

// Submit scores the pending choice against the current question, appends the
// correctness to the answer log, and enters the reveal window. The reveal
// timer is single-shot; once armed it either advances the session or, if the
// session was abandoned meanwhile, does nothing.
func (s *Session) Submit() (domain.Reveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateInProgress {
		if s.state == domain.StateAwaitingReveal {
			return domain.Reveal{}, domain.ErrNotInProgress
		}
		return domain.Reveal{}, domain.ErrSessionCompleted
	}
	if s.pending < 0 {
		return domain.Reveal{}, domain.ErrNoAnswerSelected
	}

	question := s.questions[s.currentIndex]
	correct := s.pending == question.CorrectIndex
	s.answers = append(s.answers, correct)
	if correct {
		s.score++
	}
	s.pending = -1
	s.state = domain.StateAwaitingReveal
	s.timer = time.AfterFunc(s.revealDelay, s.advance)

	return domain.Reveal{
		Correct:      correct,
		CorrectIndex: question.CorrectIndex,
		Explanation:  question.Explanation,
		Duration:     s.revealDelay,
	}, nil
}

// advance runs when the reveal delay elapses. Completion happens on the single
// awaiting_reveal -> completed transition, so the result is emitted once even
// if the timer and an Abandon race.
func (s *Session) advance() {
	s.mu.Lock()
	if s.state != domain.StateAwaitingReveal {
		s.mu.Unlock()
		return
	}

	if s.currentIndex+1 < len(s.questions) {
		s.currentIndex++
		s.state = domain.StateInProgress
		s.mu.Unlock()
		return
	}

	s.state = domain.StateCompleted
	s.completedAt = s.now()
	result := domain.Result{
		PlayerName:      s.playerName,
		Score:           s.score,
		TotalQuestions:  len(s.questions),
		Percentage:      domain.Percentage(s.score, len(s.questions)),
		Answers:         append([]bool(nil), s.answers...),
		DurationSeconds: int(s.completedAt.Sub(s.startedAt) / time.Second),
		CompletedAt:     s.completedAt,
	}
	onComplete := s.onComplete
	s.mu.Unlock()

	if onComplete != nil {
		onComplete(result)
	}
}

// Abandon stops the reveal timer and marks the session abandoned so the
// scheduled continuation becomes a no-op. Completed sessions are left as-is.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateCompleted || s.state == domain.StateAbandoned {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = domain.StateAbandoned
}

// Question returns the question at the session's current position.
func (s *Session) Question() (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateInProgress && s.state != domain.StateAwaitingReveal {
		return domain.Question{}, domain.ErrSessionCompleted
	}
	return s.questions[s.currentIndex], nil
}

func (s *Session) setResultID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resultID = id
}

// Snapshot returns a copy of the observable session state.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionSnapshot{
		ID:            s.id,
		PlayerName:    s.playerName,
		State:         s.state,
		CurrentIndex:  s.currentIndex,
		QuestionCount: len(s.questions),
		Score:         s.score,
		Answers:       append([]bool(nil), s.answers...),
		ResultID:      s.resultID,
		StartedAt:     s.startedAt,
		CompletedAt:   s.completedAt,
	}
}
