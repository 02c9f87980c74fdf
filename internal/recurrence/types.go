package recurrence

import (
	"time"
)

// Series describes a recurring event as far as expansion is concerned: the
// first occurrence's span, the rule string and the cancelled instants.
type Series struct {
	Start          time.Time   // Start of the first occurrence
	End            time.Time   // End of the first occurrence
	Rule           string      // Rule string in the FREQ/INTERVAL/BYDAY grammar
	ExceptionDates []time.Time // Occurrence starts excluded from the series
}

// TimeOccurrence represents a single occurrence of an event in time
type TimeOccurrence struct {
	Start time.Time
	End   time.Time
}
