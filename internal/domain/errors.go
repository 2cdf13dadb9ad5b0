package domain

import "errors"

var (
	// ErrEmptyPlayerName is returned when a session is started with a blank name.
	ErrEmptyPlayerName = errors.New("player name must not be empty")
	// ErrNoAnswerSelected is returned when an answer is submitted without a selection.
	ErrNoAnswerSelected = errors.New("no answer selected")
	// ErrInvalidChoice indicates the selected option index is out of range.
	ErrInvalidChoice = errors.New("answer choice out of range")
	// ErrNoQuestions indicates the question source produced an empty set.
	ErrNoQuestions = errors.New("no questions configured")
	// ErrQuestionsNotFound indicates the question set could not be loaded at all.
	ErrQuestionsNotFound = errors.New("question set not found")

	// ErrSessionNotFound is returned when acting on an unknown session ID.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted is returned when acting on a finished session; a new
	// session must be started to play again.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrNotInProgress is returned for answer input outside the in-progress phase,
	// including during the reveal window.
	ErrNotInProgress = errors.New("quiz session not accepting answers")

	// ErrPermissionDenied is surfaced when the camera device refuses access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrDeviceUnavailable is surfaced when no usable camera device exists.
	ErrDeviceUnavailable = errors.New("camera device unavailable")
	// ErrNotAcquired is returned for capture calls before acquire or after release.
	ErrNotAcquired = errors.New("camera not acquired")

	// ErrSubmissionFailed wraps a failed result insert. The session stays
	// completed; the score is never invalidated by a persistence failure.
	ErrSubmissionFailed = errors.New("result submission failed")
	// ErrUploadFailed wraps a failed photo upload; no link is attempted after it.
	ErrUploadFailed = errors.New("photo upload failed")
	// ErrLinkFailed wraps a failed photo-URL update. The photo is uploaded but
	// unlinked, which is a distinct condition from a failed upload.
	ErrLinkFailed = errors.New("photo link failed")
)
