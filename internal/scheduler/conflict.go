package scheduler

import (
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/interval"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

// findConflict returns the first stored event whose span overlaps the
// candidate's, or nil if the candidate is clear.
//
// Recurring parents are skipped on purpose: the system does not expand
// recurrence for conflict checking, trading strict correctness for
// simplicity. Only standalone events and already-materialized modified
// instances participate. The candidate's own identity is skipped so updates
// do not collide with their prior selves.
func findConflict(candidate *storage.Event, existing []*storage.Event) *storage.Event {
	span := interval.Span{Start: candidate.Start, End: candidate.End}
	for _, ev := range existing {
		if ev.IsRecurring || ev.ID == candidate.ID {
			continue
		}
		if span.Overlaps(interval.Span{Start: ev.Start, End: ev.End}) {
			return ev
		}
	}
	return nil
}
