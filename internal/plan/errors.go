package plan

import (
	"errors"
	"fmt"
)

// Sentinel errors for the expected, recoverable failure classes. Callers
// match them with errors.Is; the typed wrappers below carry the context
// needed to act on a failure (plan id, operation, versions).
var (
	ErrNotFound          = errors.New("plan not found")
	ErrVersionConflict   = errors.New("version conflict")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrValidation        = errors.New("preflight validation failed")
)

// ConflictError reports a lost optimistic-lock race: the on-disk version no
// longer matched the version the update was based on. It is retryable —
// re-read, re-apply, re-attempt.
type ConflictError struct {
	ID       string
	Expected int
	Actual   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("plan %s: %v: expected version %d, found %d on disk",
		e.ID, ErrVersionConflict, e.Expected, e.Actual)
}

func (e *ConflictError) Unwrap() error { return ErrVersionConflict }

// TransitionError reports a lifecycle guard violation. No write occurred.
type TransitionError struct {
	ID        string
	Operation string
	Status    Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("plan %s: cannot %s: plan is in %s status",
		e.ID, e.Operation, e.Status)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// Preflight failure sub-reasons.
const (
	ReasonStaleVersion = "stale_version"
	ReasonMissingTool  = "missing_tool"
	ReasonStatus       = "status"
)

// ValidationError reports a failed preflight check. Execution must not start.
type ValidationError struct {
	ID     string
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan %s: %v (%s): %s", e.ID, ErrValidation, e.Reason, e.Detail)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func notFound(id string) error {
	return fmt.Errorf("plan %s: %w", id, ErrNotFound)
}
