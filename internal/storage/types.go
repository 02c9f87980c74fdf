// Package storage defines the event model and the store contract the
// scheduling engine is written against.
package storage

import (
	"context"
	"fmt"
	"time"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
	ErrInternal      ErrorType = "internal"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a storage not-found error.
func IsNotFound(err error) bool {
	se, ok := err.(*Error)
	return ok && se.Type == ErrNotFound
}

// Event is a calendar event owned by exactly one user. A recurring parent
// carries a recurrence rule and exception dates; a modified instance of a
// series is a standalone non-recurring event linked back via ParentID.
type Event struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`

	IsRecurring    bool        `json:"isRecurring"`
	RecurrenceRule string      `json:"recurrenceRule,omitempty"`
	ExceptionDates []time.Time `json:"exceptionDates,omitempty"`

	// ParentID links a modified instance to its recurring parent.
	// OriginalStart is the instant the instance originally occupied in the
	// series before being moved or rewritten.
	ParentID      string     `json:"parentId,omitempty"`
	OriginalStart *time.Time `json:"originalStart,omitempty"`

	// Google Calendar sync metadata.
	GoogleCalendarID string     `json:"googleCalendarId,omitempty"`
	GoogleEventID    string     `json:"googleEventId,omitempty"`
	LastGoogleSync   *time.Time `json:"lastGoogleSync,omitempty"`

	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// Clone returns a deep copy so callers can mutate freely.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	cp := *e
	if e.ExceptionDates != nil {
		cp.ExceptionDates = make([]time.Time, len(e.ExceptionDates))
		copy(cp.ExceptionDates, e.ExceptionDates)
	}
	if e.OriginalStart != nil {
		t := *e.OriginalStart
		cp.OriginalStart = &t
	}
	if e.LastGoogleSync != nil {
		t := *e.LastGoogleSync
		cp.LastGoogleSync = &t
	}
	return &cp
}

// Store is the persistence contract. Every lookup is scoped by owner; a store
// must never return another owner's events, and FindByID on a foreign event
// reports not-found rather than revealing its existence.
type Store interface {
	FindByOwner(ctx context.Context, ownerID string) ([]*Event, error)
	FindByID(ctx context.Context, ownerID, id string) (*Event, error)
	Insert(ctx context.Context, event *Event) (*Event, error)
	Replace(ctx context.Context, id string, event *Event) (*Event, error)
	Remove(ctx context.Context, ownerID, id string) error
}
