// Package schedule holds the domain records and the abstract store contract of
// the band scheduling engine. The engine itself lives in the series, poll,
// recurrence, eventcache and feed packages; this package is what they all
// exchange.
package schedule

import (
	"fmt"
	"time"

	"github.com/samber/mo"

	"github.com/bandroom/schedule/recurrence"
)

// Wall-clock formats used throughout the engine. No timezone handling is
// performed; dates and times are the organization's local wall clock.
const (
	DateFormat  = "2006-01-02"
	TimeFormat  = "15:04"
	MonthFormat = "2006-01"
)

// EventKind distinguishes the two kinds of scheduled events.
type EventKind string

const (
	KindRehearsal EventKind = "rehearsal"
	KindGig       EventKind = "gig"
)

// Response is one member's answer for one occurrence. ResponseNone is the
// default state and is distinct from an explicit ResponseNo.
type Response string

const (
	ResponseYes  Response = "yes"
	ResponseNo   Response = "no"
	ResponseNone Response = ""
)

// Event is one scheduled occurrence. Recurrence attributes are stored
// redundantly on every occurrence of a series (parent and children alike) so
// read paths never need a second fetch to render a child.
type Event struct {
	ID             string
	OrganizationID string
	Kind           EventKind
	Title          string
	Date           time.Time // midnight UTC, wall-clock day
	StartTime      string    // TimeFormat
	EndTime        string    // TimeFormat
	Location       string
	Notes          string
	SetlistID      mo.Option[string]
	Fee            mo.Option[int] // smallest currency unit, gigs only
	IsPoll         bool
	// RequiredMembers lists who must respond to a poll gig. Empty means the
	// whole organization.
	RequiredMembers []string

	// ParentID links a series child to its parent. Empty on standalone
	// events and series parents.
	ParentID string
	// Rule is set on every record of a recurring series.
	Rule *recurrence.Rule

	Created  time.Time
	Modified time.Time
}

// IsStandalone reports whether the event belongs to no series.
func (e *Event) IsStandalone() bool { return e.ParentID == "" && e.Rule == nil }

// IsSeriesParent reports whether the event heads a recurring series.
func (e *Event) IsSeriesParent() bool { return e.ParentID == "" && e.Rule != nil }

// IsSeriesChild reports whether the event was generated from a parent.
func (e *Event) IsSeriesChild() bool { return e.ParentID != "" }

// Month returns the event's calendar month in MonthFormat, the cache key
// granularity.
func (e *Event) Month() string { return e.Date.Format(MonthFormat) }

// CandidateDate is one additional proposed date for a poll gig beyond its
// primary date. Records are never mutated in place; changing a date is a
// delete-then-create through the reconciler.
type CandidateDate struct {
	ID             string
	OrganizationID string
	EventID        string
	Date           time.Time
	Created        time.Time
}

// AvailabilityResponse is one member's answer for one occurrence. The
// occurrence id is the event id for the primary date, or a CandidateDate id.
// Re-submission overwrites; responses are never deleted individually.
type AvailabilityResponse struct {
	OrganizationID string
	OccurrenceID   string
	MemberID       string
	Response       Response
	Modified       time.Time
}

// Durations enumerates the allowed event lengths: 15-minute steps up to 8
// hours.
func Durations() []time.Duration {
	var out []time.Duration
	for d := 15 * time.Minute; d <= 8*time.Hour; d += 15 * time.Minute {
		out = append(out, d)
	}
	return out
}

// ValidDuration reports whether d is on the 15-minute grid and within range.
func ValidDuration(d time.Duration) bool {
	return d >= 15*time.Minute && d <= 8*time.Hour && d%(15*time.Minute) == 0
}

// EndTime computes the wall-clock end of an event starting at start (in
// TimeFormat) and lasting d.
func EndTime(start string, d time.Duration) (string, error) {
	t, err := time.Parse(TimeFormat, start)
	if err != nil {
		return "", fmt.Errorf("invalid start time %q: %w", start, err)
	}
	return t.Add(d).Format(TimeFormat), nil
}

// Day normalizes t to midnight UTC, the canonical representation of a
// wall-clock date in this engine.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
