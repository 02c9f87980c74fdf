// Package scheduler orchestrates event creation, mutation and occurrence
// listing while enforcing the per-owner no-overlap invariant.
package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/interval"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/recurrence"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

// Mirror pushes event changes to an external calendar. Implementations are
// best-effort; the service logs mirror failures and never fails the source
// operation on them.
type Mirror interface {
	// Push creates or updates the external copy and returns its external ID.
	Push(ctx context.Context, event *storage.Event) (string, error)
	// Remove deletes the external copy.
	Remove(ctx context.Context, event *storage.Event) error
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	Engine *recurrence.Engine // defaults to recurrence.NewEngine()
	Logger *slog.Logger       // defaults to slog.Default()
	Mirror Mirror             // nil disables external mirroring
}

// Service implements the scheduling operations over a caller-supplied store.
type Service struct {
	store  storage.Store
	engine *recurrence.Engine
	logger *slog.Logger
	mirror Mirror
	locks  ownerLocks
}

// NewService creates a scheduling service backed by store.
func NewService(store storage.Store, opts Options) *Service {
	engine := opts.Engine
	if engine == nil {
		engine = recurrence.NewEngine()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		engine: engine,
		logger: logger,
		mirror: opts.Mirror,
		locks:  ownerLocks{locks: make(map[string]*sync.Mutex)},
	}
}

// ownerLocks serializes create/update/delete per owner. Conflict checking is
// check-then-act: without serialization two candidates could both validate
// against the same snapshot and land overlapping. Different owners are fully
// independent.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *ownerLocks) acquire(ownerID string) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}

// Create validates the draft and persists it. Non-recurring drafts are
// checked for overlap against the owner's stored non-recurring events;
// recurring drafts skip the conflict check by design but must carry a
// parseable rule.
func (s *Service) Create(ctx context.Context, ownerID string, draft Draft) (*storage.Event, error) {
	event, err := draftToEvent(ownerID, draft)
	if err != nil {
		return nil, err
	}
	if event.IsRecurring {
		if _, err := recurrence.ParseRule(event.RecurrenceRule); err != nil {
			return nil, err
		}
	}

	mu := s.locks.acquire(ownerID)
	defer mu.Unlock()

	var parent *storage.Event
	if event.ParentID != "" {
		parent, err = s.loadOwned(ctx, ownerID, event.ParentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsRecurring {
			return nil, &ValidationError{Reason: "parentId must reference a recurring event"}
		}
	}

	if !event.IsRecurring {
		existing, err := s.store.FindByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if colliding := findConflict(event, existing); colliding != nil {
			return nil, &ConflictError{Conflicting: colliding}
		}
	}

	// Cancellation is honored up to here; once the writes start the
	// operation runs to completion.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, event)
	if err != nil {
		return nil, err
	}

	if parent != nil {
		if err := s.addParentException(ctx, parent, *event.OriginalStart); err != nil {
			// Keep the store consistent: without the parent exception the
			// modified instance would duplicate the base occurrence.
			if rmErr := s.store.Remove(ctx, ownerID, created.ID); rmErr != nil {
				s.logger.Error("failed to roll back modified instance",
					"event_id", created.ID, "err", rmErr)
			}
			return nil, err
		}
	}

	s.logger.Info("event created",
		"owner_id", ownerID, "event_id", created.ID, "recurring", created.IsRecurring)

	return s.mirrorUpsert(ctx, created), nil
}

// Update loads the stored event, merges the patch and re-validates. Start and
// end edits on a recurring parent are rejected; callers must use the
// modified-instance pattern instead.
func (s *Service) Update(ctx context.Context, ownerID, id string, patch Patch) (*storage.Event, error) {
	mu := s.locks.acquire(ownerID)
	defer mu.Unlock()

	current, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if current.IsRecurring && patch.touchesSchedule() {
		return nil, &RecurringMutationError{ID: id}
	}
	if !current.IsRecurring {
		if patch.RecurrenceRule.IsPresent() {
			return nil, &ValidationError{Reason: "recurrenceRule only applies to recurring events"}
		}
		if patch.ExceptionDates.IsPresent() {
			return nil, &ValidationError{Reason: "exceptionDates only apply to recurring events"}
		}
	}

	merged := current.Clone()
	patch.apply(merged)

	if strings.TrimSpace(merged.Title) == "" {
		return nil, &ValidationError{Reason: "title must not be empty"}
	}
	if !merged.Start.Before(merged.End) {
		return nil, &ValidationError{Reason: "end must be after start"}
	}

	if merged.IsRecurring {
		if _, err := recurrence.ParseRule(merged.RecurrenceRule); err != nil {
			return nil, err
		}
	} else {
		existing, err := s.store.FindByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if colliding := findConflict(merged, existing); colliding != nil {
			return nil, &ConflictError{Conflicting: colliding}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	updated, err := s.store.Replace(ctx, id, merged)
	if err != nil {
		return nil, err
	}

	s.logger.Info("event updated", "owner_id", ownerID, "event_id", id)

	return s.mirrorUpsert(ctx, updated), nil
}

// Delete removes the stored event unconditionally. Deleting a recurring
// parent does not cascade to its modified-instance children; they remain
// standalone events. Deleting a modified instance releases its original
// instant from the parent's exception set so the base occurrence reappears.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	mu := s.locks.acquire(ownerID)
	defer mu.Unlock()

	current, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, ownerID, id); err != nil {
		return err
	}

	if current.ParentID != "" && current.OriginalStart != nil {
		if err := s.removeParentException(ctx, ownerID, current.ParentID, *current.OriginalStart); err != nil {
			s.logger.Error("failed to release parent exception",
				"event_id", id, "parent_id", current.ParentID, "err", err)
		}
	}

	s.logger.Info("event deleted", "owner_id", ownerID, "event_id", id)

	if s.mirror != nil && current.GoogleEventID != "" {
		if err := s.mirror.Remove(ctx, current); err != nil {
			s.logger.Warn("google mirror remove failed", "event_id", id, "err", err)
		}
	}

	return nil
}

// Get returns a single stored event.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*storage.Event, error) {
	return s.loadOwned(ctx, ownerID, id)
}

// ListOccurrences returns the owner's calendar entries for the window: stored
// standalone events whose span intersects it, plus synthetic occurrences
// expanded from recurring parents. A zero window defaults to
// now .. now+horizon. The call is read-only and freely cancellable.
func (s *Service) ListOccurrences(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	if windowStart.IsZero() && windowEnd.IsZero() {
		now := time.Now().UTC()
		windowStart, windowEnd = now, now.Add(s.engine.Config().DefaultHorizon)
	}
	if !windowStart.Before(windowEnd) {
		return nil, &ValidationError{Reason: "window end must be after window start"}
	}

	events, err := s.store.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	window := interval.Span{Start: windowStart, End: windowEnd}
	occurrences := make([]Occurrence, 0, len(events))

	for _, event := range events {
		if !event.IsRecurring {
			if window.Overlaps(interval.Span{Start: event.Start, End: event.End}) {
				occurrences = append(occurrences, Occurrence{Event: *event})
			}
			continue
		}

		series := recurrence.Series{
			Start:          event.Start,
			End:            event.End,
			Rule:           event.RecurrenceRule,
			ExceptionDates: event.ExceptionDates,
		}
		expanded, err := s.engine.Expand(series, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		for _, occ := range expanded {
			instance := *event.Clone()
			instance.Start = occ.Start
			instance.End = occ.End
			occurrences = append(occurrences, Occurrence{Event: instance, IsExpanded: true})
		}
	}

	sortOccurrences(occurrences)
	return occurrences, nil
}

// loadOwned fetches an event scoped to the owner, translating storage
// not-found into the domain error.
func (s *Service) loadOwned(ctx context.Context, ownerID, id string) (*storage.Event, error) {
	event, err := s.store.FindByID(ctx, ownerID, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	return event, nil
}

func (s *Service) addParentException(ctx context.Context, parent *storage.Event, instant time.Time) error {
	for _, ex := range parent.ExceptionDates {
		if ex.Equal(instant) {
			return nil
		}
	}
	updated := parent.Clone()
	updated.ExceptionDates = append(updated.ExceptionDates, instant)
	_, err := s.store.Replace(ctx, parent.ID, updated)
	return err
}

func (s *Service) removeParentException(ctx context.Context, ownerID, parentID string, instant time.Time) error {
	parent, err := s.store.FindByID(ctx, ownerID, parentID)
	if err != nil {
		if storage.IsNotFound(err) {
			// Parent deleted first; nothing to release.
			return nil
		}
		return err
	}

	kept := parent.ExceptionDates[:0]
	for _, ex := range parent.ExceptionDates {
		if !ex.Equal(instant) {
			kept = append(kept, ex)
		}
	}
	if len(kept) == len(parent.ExceptionDates) {
		return nil
	}
	parent.ExceptionDates = kept
	_, err = s.store.Replace(ctx, parentID, parent)
	return err
}

// mirrorUpsert pushes the event to the external mirror and records the sync
// metadata. Failures are logged only.
func (s *Service) mirrorUpsert(ctx context.Context, event *storage.Event) *storage.Event {
	if s.mirror == nil {
		return event
	}

	externalID, err := s.mirror.Push(ctx, event)
	if err != nil {
		s.logger.Warn("google mirror push failed", "event_id", event.ID, "err", err)
		return event
	}

	now := time.Now().UTC()
	synced := event.Clone()
	synced.GoogleEventID = externalID
	synced.LastGoogleSync = &now
	updated, err := s.store.Replace(ctx, event.ID, synced)
	if err != nil {
		s.logger.Warn("failed to record sync metadata", "event_id", event.ID, "err", err)
		return event
	}
	return updated
}

// draftToEvent validates the draft and materializes a new stored event.
func draftToEvent(ownerID string, draft Draft) (*storage.Event, error) {
	if ownerID == "" {
		return nil, &ValidationError{Reason: "ownerId is required"}
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, &ValidationError{Reason: "title must not be empty"}
	}
	if draft.Start.IsZero() || draft.End.IsZero() {
		return nil, &ValidationError{Reason: "start and end are required"}
	}
	if !draft.Start.Before(draft.End) {
		return nil, &ValidationError{Reason: "end must be after start"}
	}
	if draft.IsRecurring {
		if draft.RecurrenceRule == "" {
			return nil, &ValidationError{Reason: "recurrenceRule is required for a recurring event"}
		}
		if draft.ParentID != "" {
			return nil, &ValidationError{Reason: "a modified instance cannot itself be recurring"}
		}
	} else {
		if draft.RecurrenceRule != "" {
			return nil, &ValidationError{Reason: "recurrenceRule only applies to recurring events"}
		}
		if len(draft.ExceptionDates) > 0 {
			return nil, &ValidationError{Reason: "exceptionDates only apply to recurring events"}
		}
	}
	if draft.ParentID != "" && draft.OriginalStart == nil {
		return nil, &ValidationError{Reason: "originalStart is required for a modified instance"}
	}
	if draft.ParentID == "" && draft.OriginalStart != nil {
		return nil, &ValidationError{Reason: "originalStart requires parentId"}
	}

	return &storage.Event{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Title:            strings.TrimSpace(draft.Title),
		Description:      draft.Description,
		Start:            draft.Start,
		End:              draft.End,
		IsRecurring:      draft.IsRecurring,
		RecurrenceRule:   draft.RecurrenceRule,
		ExceptionDates:   draft.ExceptionDates,
		ParentID:         draft.ParentID,
		OriginalStart:    draft.OriginalStart,
		GoogleCalendarID: draft.GoogleCalendarID,
	}, nil
}
