package gsync

import (
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

const utcDateTime = "20060102T150405Z"

// mapEvent converts a stored event to a Google Calendar event. The rule
// grammar is a subset of RRULE, so it is forwarded verbatim; exception dates
// become an EXDATE line.
func mapEvent(event *storage.Event) *calendar.Event {
	mapped := &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}

	if event.IsRecurring {
		recurrence := []string{"RRULE:" + event.RecurrenceRule}
		if len(event.ExceptionDates) > 0 {
			stamps := make([]string, len(event.ExceptionDates))
			for i, ex := range event.ExceptionDates {
				stamps[i] = ex.UTC().Format(utcDateTime)
			}
			recurrence = append(recurrence, "EXDATE:"+strings.Join(stamps, ","))
		}
		mapped.Recurrence = recurrence
	}

	return mapped
}
