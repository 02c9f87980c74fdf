package scheduler

import (
	"fmt"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

// ValidationError reports a structurally invalid draft or patch. It is not
// retryable; the caller must fix the input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConflictError reports that a candidate event overlaps a stored
// non-recurring event of the same owner. It carries the colliding event so
// callers can surface its identity and span.
type ConflictError struct {
	Conflicting *storage.Event
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("event time conflicts with existing event %s (%q, %s to %s)",
		e.Conflicting.ID, e.Conflicting.Title,
		e.Conflicting.Start.Format("2006-01-02T15:04:05Z07:00"),
		e.Conflicting.End.Format("2006-01-02T15:04:05Z07:00"))
}

// NotFoundError reports that the target event does not exist for the calling
// owner. Events of other owners surface identically, so existence never
// leaks across owners.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event %s not found", e.ID)
}

// RecurringMutationError reports an attempt to edit the schedule fields of a
// recurring parent directly.
type RecurringMutationError struct {
	ID string
}

func (e *RecurringMutationError) Error() string {
	return fmt.Sprintf("cannot modify the schedule of recurring series %s directly: create a modified instance and add the original start to the parent's exception dates", e.ID)
}
