package schedule

import (
	"fmt"
	"time"

	"github.com/samber/mo"

	"github.com/bandroom/schedule/recurrence"
)

// EventInput is the desired-state bundle an editor hands to the lifecycle
// manager. It describes what the event should look like after the operation,
// not a patch.
type EventInput struct {
	OrganizationID string
	Kind           EventKind
	Title          string
	Date           time.Time
	StartTime      string // TimeFormat
	Duration       time.Duration
	Location       string
	Notes          string
	SetlistID      mo.Option[string]
	Fee            mo.Option[int]

	// IsRecurring drives the standalone<->recurring state machine. When
	// true, Rule must be set.
	IsRecurring bool
	Rule        *recurrence.Rule

	// Poll gig fields. CandidateDates are the proposed dates beyond Date.
	IsPoll          bool
	RequiredMembers []string
	CandidateDates  []time.Time

	// ActingMemberID and Responses carry the editing member's own answers,
	// keyed by date in DateFormat. Persisted after the event records exist.
	ActingMemberID string
	Responses      map[string]Response
}

// Validate collects every problem with the input. The organization id is not
// checked here; its absence is ErrMissingOrganization, raised separately by
// the manager before validation.
func (in *EventInput) Validate() error {
	var problems []string

	if in.Kind != KindRehearsal && in.Kind != KindGig {
		problems = append(problems, fmt.Sprintf("unknown event kind %q", in.Kind))
	}
	if in.Date.IsZero() {
		problems = append(problems, "event date is required")
	}
	if _, err := time.Parse(TimeFormat, in.StartTime); err != nil {
		problems = append(problems, fmt.Sprintf("invalid start time %q", in.StartTime))
	}
	if !ValidDuration(in.Duration) {
		problems = append(problems, "duration must be a 15-minute step between 15 minutes and 8 hours")
	}

	if in.Kind == KindGig {
		if in.Title == "" {
			problems = append(problems, "a gig needs a title")
		}
		if in.Location == "" {
			problems = append(problems, "a gig needs a location")
		}
	}

	if in.IsPoll {
		if len(in.RequiredMembers) == 0 {
			problems = append(problems, "a poll gig needs at least one member to ask")
		}
		if len(in.CandidateDates) == 0 {
			problems = append(problems, "a poll gig needs at least one candidate date beyond the primary date")
		}
		if in.IsRecurring {
			problems = append(problems, "a poll gig cannot also recur")
		}
	}

	if in.IsRecurring {
		if in.Rule == nil {
			problems = append(problems, "recurring events need a recurrence rule")
		} else {
			problems = append(problems, in.Rule.Validate(Day(in.Date))...)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Apply copies the input's attributes onto an event record, leaving identity
// and linkage fields untouched. The recurrence rule is written (or cleared)
// according to IsRecurring; linkage stays with the caller.
func (in *EventInput) Apply(e *Event) error {
	end, err := EndTime(in.StartTime, in.Duration)
	if err != nil {
		return err
	}
	e.OrganizationID = in.OrganizationID
	e.Kind = in.Kind
	e.Title = in.Title
	e.Date = Day(in.Date)
	e.StartTime = in.StartTime
	e.EndTime = end
	e.Location = in.Location
	e.Notes = in.Notes
	e.SetlistID = in.SetlistID
	e.Fee = in.Fee
	e.IsPoll = in.IsPoll
	e.RequiredMembers = append([]string(nil), in.RequiredMembers...)
	if in.IsRecurring {
		rule := *in.Rule
		e.Rule = &rule
	} else {
		e.Rule = nil
	}
	return nil
}
