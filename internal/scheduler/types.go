package scheduler

import (
	"sort"
	"time"

	"github.com/samber/mo"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

// Draft is the caller-supplied shape of a new event. A modified instance of
// a recurring series sets ParentID and OriginalStart; the service records the
// original instant in the parent's exception dates so the base occurrence is
// suppressed.
type Draft struct {
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Start          time.Time   `json:"start"`
	End            time.Time   `json:"end"`
	IsRecurring    bool        `json:"isRecurring"`
	RecurrenceRule string      `json:"recurrenceRule,omitempty"`
	ExceptionDates []time.Time `json:"exceptionDates,omitempty"`
	ParentID       string      `json:"parentId,omitempty"`
	OriginalStart  *time.Time  `json:"originalStart,omitempty"`

	GoogleCalendarID string `json:"googleCalendarId,omitempty"`
}

// Patch is a partial update. Absent fields leave the stored value untouched.
// IsRecurring has no patch field: the flag is immutable after creation, and
// changing a series' cadence class means deleting and recreating it.
type Patch struct {
	Title          mo.Option[string]
	Description    mo.Option[string]
	Start          mo.Option[time.Time]
	End            mo.Option[time.Time]
	RecurrenceRule mo.Option[string]
	ExceptionDates mo.Option[[]time.Time]
}

// apply merges the patch into ev in place.
func (p Patch) apply(ev *storage.Event) {
	if v, ok := p.Title.Get(); ok {
		ev.Title = v
	}
	if v, ok := p.Description.Get(); ok {
		ev.Description = v
	}
	if v, ok := p.Start.Get(); ok {
		ev.Start = v
	}
	if v, ok := p.End.Get(); ok {
		ev.End = v
	}
	if v, ok := p.RecurrenceRule.Get(); ok {
		ev.RecurrenceRule = v
	}
	if v, ok := p.ExceptionDates.Get(); ok {
		ev.ExceptionDates = v
	}
}

// touchesSchedule reports whether the patch edits start or end.
func (p Patch) touchesSchedule() bool {
	return p.Start.IsPresent() || p.End.IsPresent()
}

// Occurrence is one concrete calendar entry returned to callers: either a
// stored event or a synthetic instance derived from a recurring series.
type Occurrence struct {
	storage.Event
	// IsExpanded is true for recurrence-derived instances that exist only in
	// the expansion, false for concretely stored events.
	IsExpanded bool `json:"isExpanded"`
}

// sortOccurrences orders by start instant, breaking ties by event ID so
// repeated listings are byte-for-byte identical.
func sortOccurrences(occurrences []Occurrence) {
	sort.Slice(occurrences, func(i, j int) bool {
		a, b := occurrences[i], occurrences[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return !a.IsExpanded && b.IsExpanded
	})
}
