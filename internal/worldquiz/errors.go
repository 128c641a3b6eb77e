package worldquiz

import "errors"

var (
	// ErrQuestionNotFound indicates a submitted question ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUpstreamUnavailable means the reference-data source failed and no
	// cached fallback exists.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrWrongPassword is returned when a leaderboard submission names an
	// existing username with a non-matching password.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrSessionNotFound is returned for operations on an unknown or
	// cleared session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionFinished is returned when a finished session is asked to
	// accept further play.
	ErrSessionFinished = errors.New("session already finished")
)

// ValidationError carries a user-facing message for a client error.
// It is surfaced verbatim and never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError with a fixed message.
func Validation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
