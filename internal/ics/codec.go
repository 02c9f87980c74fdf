// Package ics converts events to and from single-VEVENT iCalendar documents.
package ics

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

const prodID = "-//CustomEventCalendar//Go Scheduler//EN"

// utcDateTime is the iCalendar basic UTC date-time layout.
const utcDateTime = "20060102T150405Z"

// Encode renders the event as an iCalendar document with one VEVENT.
// Recurrence rules are emitted verbatim; the FREQ/INTERVAL/BYDAY grammar is a
// subset of RRULE, so the output round-trips through other calendar tools.
func Encode(event *storage.Event) (string, error) {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, event.ID)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	vevent.Props.SetText(ical.PropSummary, event.Title)
	if event.Description != "" {
		vevent.Props.SetText(ical.PropDescription, event.Description)
	}
	vevent.Props.SetDateTime(ical.PropDateTimeStart, event.Start.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.End.UTC())

	if event.IsRecurring {
		rule := ical.NewProp(ical.PropRecurrenceRule)
		rule.Value = event.RecurrenceRule
		vevent.Props.Set(rule)

		for _, ex := range event.ExceptionDates {
			exdate := ical.NewProp(ical.PropExceptionDates)
			exdate.Value = ex.UTC().Format(utcDateTime)
			vevent.Props.Add(exdate)
		}
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Children = append(cal.Children, vevent.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}

// Decode parses an iCalendar document containing exactly one VEVENT into an
// event. Only the fields this system models are read; everything else in the
// document is ignored.
func Decode(document string) (*storage.Event, error) {
	cal, err := ical.NewDecoder(strings.NewReader(document)).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return nil, fmt.Errorf("no events found in calendar")
	}
	if len(events) > 1 {
		return nil, fmt.Errorf("multiple events found in calendar")
	}
	vevent := events[0]

	out := &storage.Event{}
	if prop := vevent.Props.Get(ical.PropUID); prop != nil {
		out.ID = prop.Value
	}
	if out.Title, err = vevent.Props.Text(ical.PropSummary); err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	if desc, err := vevent.Props.Text(ical.PropDescription); err == nil {
		out.Description = desc
	}
	if out.Start, err = vevent.DateTimeStart(time.UTC); err != nil {
		return nil, fmt.Errorf("read start: %w", err)
	}
	if out.End, err = vevent.DateTimeEnd(time.UTC); err != nil {
		return nil, fmt.Errorf("read end: %w", err)
	}

	if prop := vevent.Props.Get(ical.PropRecurrenceRule); prop != nil {
		out.IsRecurring = true
		out.RecurrenceRule = prop.Value
		for _, exdate := range vevent.Props.Values(ical.PropExceptionDates) {
			t, err := exdate.DateTime(time.UTC)
			if err != nil {
				return nil, fmt.Errorf("read exception date: %w", err)
			}
			out.ExceptionDates = append(out.ExceptionDates, t)
		}
	}

	return out, nil
}
