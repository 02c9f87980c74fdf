// Package postgres implements the event store on PostgreSQL using pgx
// directly (no ORM).
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

// Schema creates the events table. Exception dates live in a timestamptz
// array; there are few per series and they are always read with the event.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id                 TEXT PRIMARY KEY,
	owner_id           TEXT NOT NULL,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	start_at           TIMESTAMPTZ NOT NULL,
	end_at             TIMESTAMPTZ NOT NULL,
	is_recurring       BOOLEAN NOT NULL DEFAULT FALSE,
	recurrence_rule    TEXT NOT NULL DEFAULT '',
	exception_dates    TIMESTAMPTZ[] NOT NULL DEFAULT '{}',
	parent_id          TEXT NOT NULL DEFAULT '',
	original_start     TIMESTAMPTZ,
	google_calendar_id TEXT NOT NULL DEFAULT '',
	google_event_id    TEXT NOT NULL DEFAULT '',
	last_google_sync   TIMESTAMPTZ,
	created            TIMESTAMPTZ NOT NULL DEFAULT now(),
	modified           TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_at < end_at)
);
CREATE INDEX IF NOT EXISTS events_owner_idx ON events (owner_id, start_at);
`

const eventColumns = `id, owner_id, title, description, start_at, end_at,
	is_recurring, recurrence_rule, exception_dates, parent_id, original_start,
	google_calendar_id, google_event_id, last_google_sync, created, modified`

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	db *pgxpool.Pool
}

// New constructs a Store.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the events table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*storage.Event, error) {
	var ev storage.Event
	err := row.Scan(
		&ev.ID, &ev.OwnerID, &ev.Title, &ev.Description, &ev.Start, &ev.End,
		&ev.IsRecurring, &ev.RecurrenceRule, &ev.ExceptionDates, &ev.ParentID,
		&ev.OriginalStart, &ev.GoogleCalendarID, &ev.GoogleEventID,
		&ev.LastGoogleSync, &ev.Created, &ev.Modified,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *Store) FindByOwner(ctx context.Context, ownerID string) ([]*storage.Event, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE owner_id = $1
		 ORDER BY start_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, &storage.Error{Type: storage.ErrInternal, Message: "list events", Err: err}
	}
	defer rows.Close()

	var events []*storage.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, &storage.Error{Type: storage.ErrInternal, Message: "scan event", Err: err}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.Error{Type: storage.ErrInternal, Message: "list events", Err: err}
	}
	return events, nil
}

func (s *Store) FindByID(ctx context.Context, ownerID, id string) (*storage.Event, error) {
	ev, err := scanEvent(s.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &storage.Error{Type: storage.ErrNotFound, Message: "event not found"}
		}
		return nil, &storage.Error{Type: storage.ErrInternal, Message: "get event", Err: err}
	}
	return ev, nil
}

func (s *Store) Insert(ctx context.Context, event *storage.Event) (*storage.Event, error) {
	ev, err := scanEvent(s.db.QueryRow(ctx,
		`INSERT INTO events (id, owner_id, title, description, start_at, end_at,
			is_recurring, recurrence_rule, exception_dates, parent_id, original_start,
			google_calendar_id, google_event_id, last_google_sync)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+eventColumns,
		event.ID, event.OwnerID, event.Title, event.Description, event.Start, event.End,
		event.IsRecurring, event.RecurrenceRule, event.ExceptionDates, event.ParentID,
		event.OriginalStart, event.GoogleCalendarID, event.GoogleEventID, event.LastGoogleSync,
	))
	if err != nil {
		return nil, &storage.Error{Type: storage.ErrInternal, Message: "insert event", Err: err}
	}
	return ev, nil
}

func (s *Store) Replace(ctx context.Context, id string, event *storage.Event) (*storage.Event, error) {
	ev, err := scanEvent(s.db.QueryRow(ctx,
		`UPDATE events SET
			title = $3, description = $4, start_at = $5, end_at = $6,
			recurrence_rule = $7, exception_dates = $8,
			google_calendar_id = $9, google_event_id = $10, last_google_sync = $11,
			modified = now()
		 WHERE owner_id = $1 AND id = $2
		 RETURNING `+eventColumns,
		event.OwnerID, id, event.Title, event.Description, event.Start, event.End,
		event.RecurrenceRule, event.ExceptionDates,
		event.GoogleCalendarID, event.GoogleEventID, event.LastGoogleSync,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &storage.Error{Type: storage.ErrNotFound, Message: "event not found"}
		}
		return nil, &storage.Error{Type: storage.ErrInternal, Message: "replace event", Err: err}
	}
	return ev, nil
}

func (s *Store) Remove(ctx context.Context, ownerID, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM events WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)
	if err != nil {
		return &storage.Error{Type: storage.ErrInternal, Message: "remove event", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &storage.Error{Type: storage.ErrNotFound, Message: "event not found"}
	}
	return nil
}
