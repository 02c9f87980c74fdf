package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// InvalidRuleError reports a recurrence rule string that cannot be parsed.
type InvalidRuleError struct {
	Rule   string
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid recurrence rule %q: %s", e.Rule, e.Reason)
}

// Frequency is the cadence of a recurrence rule.
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Monthly
	Yearly
)

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "DAILY"
	case Weekly:
		return "WEEKLY"
	case Monthly:
		return "MONTHLY"
	case Yearly:
		return "YEARLY"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

var frequencies = map[string]Frequency{
	"DAILY":   Daily,
	"WEEKLY":  Weekly,
	"MONTHLY": Monthly,
	"YEARLY":  Yearly,
}

var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// Rule is the structured form of a recurrence rule string: a frequency, an
// interval multiplier and, for weekly cadences, a set of weekdays.
type Rule struct {
	Freq     Frequency
	Interval int
	ByDay    []time.Weekday
}

// ParseRule parses the semicolon-separated KEY=VALUE rule grammar.
// FREQ is required; INTERVAL defaults to 1; BYDAY is a comma-separated list
// of two-letter weekday codes. Unrecognized keys are ignored for forward
// compatibility.
func ParseRule(s string) (Rule, error) {
	rule := Rule{Interval: 1}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return rule, &InvalidRuleError{Rule: s, Reason: "empty rule"}
	}

	seenFreq := false
	for _, part := range strings.Split(trimmed, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, found := strings.Cut(part, "=")
		if !found {
			return rule, &InvalidRuleError{Rule: s, Reason: fmt.Sprintf("malformed component %q", part)}
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "FREQ":
			freq, ok := frequencies[strings.ToUpper(value)]
			if !ok {
				return rule, &InvalidRuleError{Rule: s, Reason: fmt.Sprintf("unknown frequency %q", value)}
			}
			rule.Freq = freq
			seenFreq = true
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return rule, &InvalidRuleError{Rule: s, Reason: fmt.Sprintf("interval must be a positive integer, got %q", value)}
			}
			rule.Interval = n
		case "BYDAY":
			for _, code := range strings.Split(value, ",") {
				day, ok := weekdayCodes[strings.ToUpper(strings.TrimSpace(code))]
				if !ok {
					return rule, &InvalidRuleError{Rule: s, Reason: fmt.Sprintf("unknown weekday code %q", code)}
				}
				rule.ByDay = append(rule.ByDay, day)
			}
		default:
			// Ignored for forward compatibility.
		}
	}

	if !seenFreq {
		return rule, &InvalidRuleError{Rule: s, Reason: "missing FREQ"}
	}

	return rule, nil
}

var rruleFrequencies = map[Frequency]rrule.Frequency{
	Daily:   rrule.DAILY,
	Weekly:  rrule.WEEKLY,
	Monthly: rrule.MONTHLY,
	Yearly:  rrule.YEARLY,
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// options converts the rule to rrule options anchored at dtstart.
// BYDAY only shapes weekly cadences; for other frequencies the anchor date
// already determines the pattern.
func (r Rule) options(dtstart time.Time) rrule.ROption {
	opt := rrule.ROption{
		Freq:     rruleFrequencies[r.Freq],
		Interval: r.Interval,
		Dtstart:  dtstart,
	}
	if r.Freq == Weekly {
		for _, day := range r.ByDay {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[day])
		}
	}
	return opt
}
