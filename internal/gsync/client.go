// Package gsync mirrors calendar events to Google Calendar. Pushes are
// best-effort: the scheduling service treats this as an external collaborator
// and never fails an operation on a sync error.
package gsync

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

// Mirror wraps the Google Calendar API service.
type Mirror struct {
	service *calendar.Service
}

// NewMirror creates a Google Calendar mirror. The HTTP client must already
// carry credentials (see NewAuthenticatedClient). An endpoint override may be
// supplied for testing with mock servers.
func NewMirror(ctx context.Context, httpClient *http.Client, endpoint ...string) (*Mirror, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if len(endpoint) > 0 && endpoint[0] != "" {
		opts = append(opts, option.WithEndpoint(endpoint[0]))
	}

	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	return &Mirror{service: srv}, nil
}

func calendarID(event *storage.Event) string {
	if event.GoogleCalendarID != "" {
		return event.GoogleCalendarID
	}
	return "primary"
}

// Push creates or updates the event's Google Calendar copy and returns the
// remote event ID.
func (m *Mirror) Push(ctx context.Context, event *storage.Event) (string, error) {
	mapped := mapEvent(event)

	if event.GoogleEventID != "" {
		updated, err := m.service.Events.Update(calendarID(event), event.GoogleEventID, mapped).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to update event: %w", err)
		}
		return updated.Id, nil
	}

	created, err := m.service.Events.Insert(calendarID(event), mapped).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create event: %w", err)
	}
	return created.Id, nil
}

// Remove deletes the event's Google Calendar copy.
func (m *Mirror) Remove(ctx context.Context, event *storage.Event) error {
	if event.GoogleEventID == "" {
		return nil
	}
	if err := m.service.Events.Delete(calendarID(event), event.GoogleEventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete event: %w", err)
	}
	return nil
}
