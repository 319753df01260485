// Package recurrence expands a recurrence rule into the concrete dates of a
// series. Dates are wall-clock days; callers are expected to pass midnight-UTC
// values and get midnight-UTC values back.
package recurrence

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// Frequency selects the week stride between generated occurrences.
type Frequency int

const (
	FreqWeekly Frequency = iota
	FreqBiweekly
	// FreqMonthly is approximated as a fixed 4-week stride, not true
	// calendar-month stepping. Long series drift relative to the calendar.
	FreqMonthly
)

// WeekInterval returns the number of weeks between generated weeks.
func (f Frequency) WeekInterval() int {
	switch f {
	case FreqBiweekly:
		return 2
	case FreqMonthly:
		return 4
	default:
		return 1
	}
}

// String provides a human-readable representation of the Frequency.
func (f Frequency) String() string {
	switch f {
	case FreqWeekly:
		return "weekly"
	case FreqBiweekly:
		return "biweekly"
	case FreqMonthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// Rule describes how a series repeats. Weekdays must be non-empty. An absent
// Until means the engine picks a default horizon (DefaultHorizonDays from the
// anchor date).
type Rule struct {
	Weekdays  []time.Weekday
	Frequency Frequency
	Until     mo.Option[time.Time]
}

// Validate checks the rule against the anchor date of the event it is attached
// to. It returns every problem found, not just the first.
func (r Rule) Validate(anchor time.Time) []string {
	var problems []string
	if len(r.Weekdays) == 0 {
		problems = append(problems, "recurrence rule needs at least one weekday")
	}
	if until, ok := r.Until.Get(); ok && until.Before(anchor) {
		problems = append(problems,
			fmt.Sprintf("recurrence end date %s is before the event date %s",
				until.Format("2006-01-02"), anchor.Format("2006-01-02")))
	}
	return problems
}

// Contains reports whether the rule's weekday set includes wd.
func (r Rule) Contains(wd time.Weekday) bool {
	for _, d := range r.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}
