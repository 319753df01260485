package poll

import (
	"context"

	"github.com/bandroom/schedule"
)

// Availability is the three-state classification of one member's answer for
// one occurrence.
type Availability int

const (
	NotResponded Availability = iota
	Available
	Unavailable
)

// String provides a human-readable representation of the Availability.
func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "not responded"
	}
}

// Classify maps a stored response to its availability state. The mapping is
// total: an absent record is ResponseNone and classifies as NotResponded,
// which is distinct from an explicit no.
func Classify(r schedule.Response) Availability {
	switch r {
	case schedule.ResponseYes:
		return Available
	case schedule.ResponseNo:
		return Unavailable
	default:
		return NotResponded
	}
}

// Aggregator tracks per-occurrence, per-member responses in memory and
// detects whether the acting member's in-progress edits differ from the
// last-loaded baseline. It touches the store only in LoadResponses and Save.
type Aggregator struct {
	store          schedule.Store
	orgID          string
	actingMemberID string

	// current holds every known response, keyed occurrence -> member.
	current map[string]map[string]schedule.Response
	// baseline holds the acting member's responses as of the last load or
	// save, keyed by occurrence.
	baseline map[string]schedule.Response
	tracked  []string
}

// NewAggregator creates an aggregator for one organization and one acting
// member (the member whose edits gate the save action).
func NewAggregator(store schedule.Store, orgID, actingMemberID string) *Aggregator {
	return &Aggregator{
		store:          store,
		orgID:          orgID,
		actingMemberID: actingMemberID,
		current:        make(map[string]map[string]schedule.Response),
		baseline:       make(map[string]schedule.Response),
	}
}

// LoadResponses reads every stored answer for the given occurrences and
// resets the baseline to the acting member's loaded answers. Members without
// a record are simply absent from the result and read as ResponseNone.
func (a *Aggregator) LoadResponses(ctx context.Context, occurrenceIDs []string) error {
	if a.orgID == "" {
		return schedule.ErrMissingOrganization
	}
	records, err := a.store.ListResponses(ctx, a.orgID, occurrenceIDs)
	if err != nil {
		return err
	}

	a.current = make(map[string]map[string]schedule.Response, len(occurrenceIDs))
	a.baseline = make(map[string]schedule.Response, len(occurrenceIDs))
	a.tracked = append([]string(nil), occurrenceIDs...)
	for _, id := range occurrenceIDs {
		a.current[id] = make(map[string]schedule.Response)
	}
	for _, r := range records {
		byMember, ok := a.current[r.OccurrenceID]
		if !ok {
			continue
		}
		byMember[r.MemberID] = r.Response
		if r.MemberID == a.actingMemberID {
			a.baseline[r.OccurrenceID] = r.Response
		}
	}
	return nil
}

// SetResponse records an answer in memory only. Save persists.
func (a *Aggregator) SetResponse(occurrenceID, memberID string, r schedule.Response) {
	byMember, ok := a.current[occurrenceID]
	if !ok {
		byMember = make(map[string]schedule.Response)
		a.current[occurrenceID] = byMember
		a.tracked = append(a.tracked, occurrenceID)
	}
	byMember[memberID] = r
}

// Response returns the tracked answer for one member, defaulting to
// ResponseNone.
func (a *Aggregator) Response(occurrenceID, memberID string) schedule.Response {
	if byMember, ok := a.current[occurrenceID]; ok {
		return byMember[memberID]
	}
	return schedule.ResponseNone
}

// HasChanges reports whether the acting member's answers differ from the
// baseline on any tracked occurrence. A not-responded to yes/no transition
// counts.
func (a *Aggregator) HasChanges() bool {
	for _, occ := range a.tracked {
		if a.Response(occ, a.actingMemberID) != a.baseline[occ] {
			return true
		}
	}
	return false
}

// Save persists the acting member's answers for every tracked occurrence
// where they differ from the baseline, then adopts the saved state as the new
// baseline.
func (a *Aggregator) Save(ctx context.Context) error {
	if a.orgID == "" {
		return schedule.ErrMissingOrganization
	}
	for _, occ := range a.tracked {
		r := a.Response(occ, a.actingMemberID)
		if r == a.baseline[occ] {
			continue
		}
		err := a.store.UpsertResponse(ctx, &schedule.AvailabilityResponse{
			OrganizationID: a.orgID,
			OccurrenceID:   occ,
			MemberID:       a.actingMemberID,
			Response:       r,
		})
		if err != nil {
			return err
		}
		a.baseline[occ] = r
	}
	return nil
}

// Summary counts the members of one occurrence by availability. members is
// the set expected to respond; answers from anyone else are ignored.
func (a *Aggregator) Summary(occurrenceID string, members []string) (available, unavailable, pending int) {
	for _, m := range members {
		switch Classify(a.Response(occurrenceID, m)) {
		case Available:
			available++
		case Unavailable:
			unavailable++
		default:
			pending++
		}
	}
	return available, unavailable, pending
}

// AllAvailable reports whether every listed member answered yes for the
// occurrence, the condition under which a candidate date can be confirmed.
func (a *Aggregator) AllAvailable(occurrenceID string, members []string) bool {
	available, _, _ := a.Summary(occurrenceID, members)
	return len(members) > 0 && available == len(members)
}
