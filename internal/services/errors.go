package services

import "errors"

// Error kinds. Every domain error below wraps exactly one of them, so
// callers can branch with errors.Is on the kind or on the specific error.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrCapacity        = errors.New("capacity exceeded")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrSessionIDRequired     = newDomainError(ErrInvalidInput, "session_id is required")
	ErrInvalidScheduledStart = newDomainError(ErrInvalidInput, "scheduled_start must be a valid timestamp")
	ErrInvalidStatusFilter   = newDomainError(ErrInvalidInput, "status must be scheduled, ongoing or completed")

	ErrSubscriptionRequired = newDomainError(ErrForbidden, "active subscription required")
	ErrNotSessionOwner      = newDomainError(ErrForbidden, "not your session")
	ErrSessionHidden        = newDomainError(ErrForbidden, "session is not visible to this account")

	ErrSessionNotFound = newDomainError(ErrNotFound, "session not found")

	ErrSessionNotOpen      = newDomainError(ErrInvalidState, "session is not open for students")
	ErrSessionNotStartable = newDomainError(ErrInvalidState, "session cannot be started")
	ErrNoStudentsReady     = newDomainError(ErrInvalidState, "no students ready")
	ErrTooEarly            = newDomainError(ErrInvalidState, "session can only be started 15 minutes before schedule")
	ErrSessionNotOngoing   = newDomainError(ErrInvalidState, "session is not ongoing")
	ErrSessionNotStarted   = newDomainError(ErrInvalidState, "session has not started")
	ErrPayoutNotPending    = newDomainError(ErrInvalidState, "no pending payout for session")

	ErrSessionFull = newDomainError(ErrCapacity, "session is full (max 6 students)")

	ErrAlreadyReady = newDomainError(ErrConflict, "student already marked as ready")
)

type domainError struct {
	kind    error
	message string
}

func newDomainError(kind error, message string) error {
	return &domainError{kind: kind, message: message}
}

func (e *domainError) Error() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.kind
}
