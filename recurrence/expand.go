package recurrence

import (
	"sort"
	"time"
)

const (
	// DefaultHorizonDays bounds expansion when the rule has no Until date.
	DefaultHorizonDays = 365

	// maxWeekIterations caps the week walk so a malformed rule can never
	// generate unbounded output.
	maxWeekIterations = 52
)

// Expand materializes the rule into a sorted, duplicate-free list of dates.
// The list never contains a date before anchor or after the rule's Until
// (or the default horizon when Until is absent). If the rule matches nothing
// in range, the anchor date alone is returned: an event always has at least
// one occurrence.
func Expand(anchor time.Time, rule Rule) []time.Time {
	return ExpandHorizon(anchor, rule, DefaultHorizonDays)
}

// ExpandHorizon is Expand with a caller-chosen default horizon, used when the
// embedding application tunes how far an open-ended series reaches.
func ExpandHorizon(anchor time.Time, rule Rule, horizonDays int) []time.Time {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	anchor = truncateDay(anchor)
	until := truncateDay(rule.Until.OrElse(anchor.AddDate(0, 0, horizonDays)))
	interval := rule.Frequency.WeekInterval()

	seen := make(map[time.Time]struct{})
	var dates []time.Time

	base := startOfWeek(anchor)
	for i := 0; i < maxWeekIterations; i++ {
		weekStart := base.AddDate(0, 0, i*interval*7)
		if weekStart.After(until) {
			break
		}
		for _, wd := range rule.Weekdays {
			d := weekStart.AddDate(0, 0, weekdayOffset(wd))
			if d.Before(anchor) || d.After(until) {
				continue
			}
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}

	if len(dates) == 0 {
		return []time.Time{anchor}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// startOfWeek returns the Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// weekdayOffset maps a weekday to its distance from Monday.
func weekdayOffset(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
