package series_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bandroom/schedule"
	"github.com/bandroom/schedule/eventcache"
	"github.com/bandroom/schedule/memory"
	"github.com/bandroom/schedule/poll"
	"github.com/bandroom/schedule/recurrence"
	"github.com/bandroom/schedule/series"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newManager(t *testing.T, store schedule.Store) (*series.Manager, *eventcache.Cache) {
	t.Helper()
	cache := eventcache.New(eventcache.DefaultTTL)
	m, err := series.NewManager(store, cache, nil)
	require.NoError(t, err)
	return m, cache
}

func rehearsalInput(org string, date time.Time) *schedule.EventInput {
	return &schedule.EventInput{
		OrganizationID: org,
		Kind:           schedule.KindRehearsal,
		Date:           date,
		StartTime:      "19:00",
		Duration:       2 * time.Hour,
	}
}

func gigInput(org string, date time.Time) *schedule.EventInput {
	in := rehearsalInput(org, date)
	in.Kind = schedule.KindGig
	in.Title = "Club night"
	in.Location = "Marquee"
	return in
}

func TestManager_CreateStandalone(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	event, err := m.Create(ctx, rehearsalInput("org1", day(2026, time.February, 4)))
	require.NoError(t, err)
	assert.True(t, event.IsStandalone())
	assert.Equal(t, "21:00", event.EndTime)

	events, err := store.ListEvents(ctx, "org1", schedule.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestManager_CreateRequiresOrganization(t *testing.T) {
	m, _ := newManager(t, memory.New())
	_, err := m.Create(context.Background(), rehearsalInput("", day(2026, time.February, 4)))
	assert.ErrorIs(t, err, schedule.ErrMissingOrganization)
}

func TestManager_ValidationMakesNoStoreCalls(t *testing.T) {
	store := &schedule.MockStore{}
	m, err := series.NewManager(store, nil, nil)
	require.NoError(t, err)

	in := gigInput("org1", day(2026, time.February, 4))
	in.Title = ""
	in.Location = ""

	_, err = m.Create(context.Background(), in)
	var verr *schedule.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2)

	// No expectations were registered; any store call would have failed
	// the mock.
	store.AssertExpectations(t)
}

func TestManager_CreateRecurringSeries(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	anchor := day(2026, time.January, 7) // Wednesday
	in := rehearsalInput("org1", anchor)
	in.IsRecurring = true
	in.Rule = &recurrence.Rule{
		Weekdays:  []time.Weekday{time.Wednesday},
		Frequency: recurrence.FreqWeekly,
		Until:     mo.Some(anchor.AddDate(0, 0, 21)),
	}

	parent, err := m.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, parent.IsSeriesParent())
	assert.Equal(t, anchor, parent.Date)

	events, err := store.ListEvents(ctx, "org1", schedule.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 4)
	for _, e := range events {
		require.NotNil(t, e.Rule, "every series record carries the rule")
		if e.ID == parent.ID {
			assert.Empty(t, e.ParentID)
		} else {
			assert.Equal(t, parent.ID, e.ParentID)
		}
	}
}

func TestManager_CreatePollGig(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	primary := day(2026, time.June, 5)
	d2 := day(2026, time.June, 12)
	in := gigInput("org1", primary)
	in.IsPoll = true
	in.RequiredMembers = []string{"alice", "bob"}
	in.CandidateDates = []time.Time{d2}
	in.ActingMemberID = "alice"
	in.Responses = map[string]schedule.Response{
		primary.Format(schedule.DateFormat): schedule.ResponseYes,
		d2.Format(schedule.DateFormat):      schedule.ResponseNo,
	}

	event, err := m.Create(ctx, in)
	require.NoError(t, err)

	candidates, err := store.ListCandidateDates(ctx, "org1", event.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, d2, candidates[0].Date)

	responses, err := store.ListResponses(ctx, "org1", []string{event.ID, candidates[0].ID})
	require.NoError(t, err)
	require.Len(t, responses, 2)
	byOccurrence := make(map[string]schedule.Response)
	for _, r := range responses {
		require.Equal(t, "alice", r.MemberID)
		byOccurrence[r.OccurrenceID] = r.Response
	}
	assert.Equal(t, poll.Available, poll.Classify(byOccurrence[event.ID]))
	assert.Equal(t, poll.Unavailable, poll.Classify(byOccurrence[candidates[0].ID]))
}

// Transitioning a standalone event into a weekly series over three further
// weeks creates exactly three children, all linked to the original record.
func TestManager_UpdateStandaloneToRecurring(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	anchor := day(2026, time.January, 7) // Wednesday
	original, err := m.Create(ctx, rehearsalInput("org1", anchor))
	require.NoError(t, err)

	in := rehearsalInput("org1", anchor)
	in.IsRecurring = true
	in.Rule = &recurrence.Rule{
		Weekdays:  []time.Weekday{time.Wednesday},
		Frequency: recurrence.FreqWeekly,
		Until:     mo.Some(anchor.AddDate(0, 0, 21)),
	}

	parent, err := m.Update(ctx, original.ID, in)
	require.NoError(t, err)
	assert.Equal(t, original.ID, parent.ID, "the existing record becomes the parent in place")
	assert.True(t, parent.IsSeriesParent())

	children, err := store.ListEvents(ctx, "org1", schedule.EventFilter{ParentID: mo.Some(original.ID)})
	require.NoError(t, err)
	require.Len(t, children, 3)
	for _, c := range children {
		assert.Equal(t, original.ID, c.ParentID)
		assert.NotEqual(t, anchor, c.Date)
	}
}

func TestManager_UpdateRecurringToStandalone(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	anchor := day(2026, time.January, 7)
	in := rehearsalInput("org1", anchor)
	in.IsRecurring = true
	in.Rule = &recurrence.Rule{
		Weekdays:  []time.Weekday{time.Wednesday},
		Frequency: recurrence.FreqWeekly,
		Until:     mo.Some(anchor.AddDate(0, 0, 21)),
	}
	parent, err := m.Create(ctx, in)
	require.NoError(t, err)

	updated, err := m.Update(ctx, parent.ID, rehearsalInput("org1", anchor))
	require.NoError(t, err)
	assert.True(t, updated.IsStandalone())

	events, err := store.ListEvents(ctx, "org1", schedule.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1, "every child must be gone")
	assert.Equal(t, parent.ID, events[0].ID)
}

// A poll gig with persisted candidates {D1, D2} edited to desire {D2, D3}
// creates D3 and deletes D1, leaving D2's record untouched.
func TestManager_UpdateReconcilesCandidateDates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	primary := day(2026, time.June, 5)
	d1 := day(2026, time.June, 12)
	d2 := day(2026, time.June, 19)
	d3 := day(2026, time.June, 26)

	in := gigInput("org1", primary)
	in.IsPoll = true
	in.RequiredMembers = []string{"alice"}
	in.CandidateDates = []time.Time{d1, d2}
	event, err := m.Create(ctx, in)
	require.NoError(t, err)

	before, err := store.ListCandidateDates(ctx, "org1", event.ID)
	require.NoError(t, err)
	require.Len(t, before, 2)
	var keptID string
	for _, c := range before {
		if c.Date.Equal(d2) {
			keptID = c.ID
		}
	}

	in.CandidateDates = []time.Time{d2, d3}
	_, err = m.Update(ctx, event.ID, in)
	require.NoError(t, err)

	after, err := store.ListCandidateDates(ctx, "org1", event.ID)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, d2, after[0].Date)
	assert.Equal(t, keptID, after[0].ID, "a kept date keeps its record")
	assert.Equal(t, d3, after[1].Date)
}

func TestManager_UpdatePollToPlainDeletesCandidates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	in := gigInput("org1", day(2026, time.June, 5))
	in.IsPoll = true
	in.RequiredMembers = []string{"alice"}
	in.CandidateDates = []time.Time{day(2026, time.June, 12)}
	event, err := m.Create(ctx, in)
	require.NoError(t, err)

	_, err = m.Update(ctx, event.ID, gigInput("org1", day(2026, time.June, 5)))
	require.NoError(t, err)

	candidates, err := store.ListCandidateDates(ctx, "org1", event.ID)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestManager_DeleteThisOnlyLeavesSiblings(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	anchor := day(2026, time.January, 7)
	in := rehearsalInput("org1", anchor)
	in.IsRecurring = true
	in.Rule = &recurrence.Rule{
		Weekdays:  []time.Weekday{time.Wednesday},
		Frequency: recurrence.FreqWeekly,
		Until:     mo.Some(anchor.AddDate(0, 0, 21)),
	}
	parent, err := m.Create(ctx, in)
	require.NoError(t, err)

	children, err := store.ListEvents(ctx, "org1", schedule.EventFilter{ParentID: mo.Some(parent.ID)})
	require.NoError(t, err)
	require.Len(t, children, 3)

	require.NoError(t, m.Delete(ctx, "org1", children[0].ID, series.ScopeThisOnly))

	remaining, err := store.ListEvents(ctx, "org1", schedule.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 3, "only the targeted occurrence goes")
}

func TestManager_DeleteEntireSeriesFromChild(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	anchor := day(2026, time.January, 7)
	in := rehearsalInput("org1", anchor)
	in.IsRecurring = true
	in.Rule = &recurrence.Rule{
		Weekdays:  []time.Weekday{time.Wednesday},
		Frequency: recurrence.FreqWeekly,
		Until:     mo.Some(anchor.AddDate(0, 0, 21)),
	}
	parent, err := m.Create(ctx, in)
	require.NoError(t, err)

	children, err := store.ListEvents(ctx, "org1", schedule.EventFilter{ParentID: mo.Some(parent.ID)})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, "org1", children[1].ID, series.ScopeEntireSeries))

	remaining, err := store.ListEvents(ctx, "org1", schedule.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

// A properly linked series is removed through its linkage alone: the only
// list the manager may issue is the children-of-parent query. The mock fails
// the test if the pattern-matching fallback runs any other query.
func TestManager_DeleteLinkedSeriesSkipsPatternMatching(t *testing.T) {
	ctx := context.Background()
	store := &schedule.MockStore{}
	m, err := series.NewManager(store, nil, nil)
	require.NoError(t, err)

	rule := &recurrence.Rule{Weekdays: []time.Weekday{time.Friday}, Frequency: recurrence.FreqWeekly}
	parent := &schedule.Event{ID: "p1", OrganizationID: "org1", Date: day(2026, time.March, 6), Rule: rule}
	children := []*schedule.Event{
		{ID: "c1", OrganizationID: "org1", ParentID: "p1", Date: day(2026, time.March, 13), Rule: rule},
		{ID: "c2", OrganizationID: "org1", ParentID: "p1", Date: day(2026, time.March, 20), Rule: rule},
	}

	store.On("FindEvent", mock.Anything, "org1", "p1").Return(parent, nil)
	store.On("ListEvents", mock.Anything, "org1", schedule.EventFilter{ParentID: mo.Some("p1")}).Return(children, nil)
	store.On("DeleteEvent", mock.Anything, "org1", "c1").Return(nil)
	store.On("DeleteEvent", mock.Anything, "org1", "c2").Return(nil)
	store.On("DeleteEvent", mock.Anything, "org1", "p1").Return(nil)

	require.NoError(t, m.Delete(ctx, "org1", "p1", series.ScopeEntireSeries))
	store.AssertExpectations(t)
}

func TestManager_DeleteLegacySeriesByPattern(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	// Unlinked recurring records, as persisted before parent/child linkage
	// existed. Dates sit far in the future so the date floor keeps them.
	rule := &recurrence.Rule{Weekdays: []time.Weekday{time.Friday}, Frequency: recurrence.FreqWeekly}
	mkLegacy := func(date time.Time, location string) *schedule.Event {
		e, err := store.InsertEvent(ctx, &schedule.Event{
			OrganizationID: "org1",
			Kind:           schedule.KindRehearsal,
			Date:           date,
			StartTime:      "19:00",
			EndTime:        "21:00",
			Location:       location,
			Rule:           rule,
		})
		require.NoError(t, err)
		return e
	}

	target := mkLegacy(day(2099, time.January, 2), "Studio A")  // Friday
	mkLegacy(day(2099, time.January, 9), "Studio A")            // Friday, same series
	mkLegacy(day(2099, time.January, 16), "Studio A")           // Friday, same series
	other := mkLegacy(day(2099, time.January, 8), "Studio A")   // Thursday, different weekday
	elsewhere := mkLegacy(day(2099, time.January, 9), "Loft 3") // Friday, different location

	require.NoError(t, m.Delete(ctx, "org1", target.ID, series.ScopeEntireSeries))

	remaining, err := store.ListEvents(ctx, "org1", schedule.EventFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	ids := []string{remaining[0].ID, remaining[1].ID}
	assert.ElementsMatch(t, []string{other.ID, elsewhere.ID}, ids)
}

func TestManager_EventsReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m, _ := newManager(t, store)

	created, err := m.Create(ctx, rehearsalInput("org1", day(2026, time.February, 4)))
	require.NoError(t, err)

	events, err := m.Events(ctx, "org1", "2026-02")
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Writes that bypass the manager are invisible until the entry ages
	// out or a mutation invalidates it.
	_, err = store.InsertEvent(ctx, &schedule.Event{OrganizationID: "org1", Date: day(2026, time.February, 18)})
	require.NoError(t, err)

	cached, err := m.Events(ctx, "org1", "2026-02")
	require.NoError(t, err)
	assert.Len(t, cached, 1, "second read must be served from cache")

	require.NoError(t, m.Delete(ctx, "org1", created.ID, series.ScopeThisOnly))

	fresh, err := m.Events(ctx, "org1", "2026-02")
	require.NoError(t, err)
	assert.Len(t, fresh, 1, "mutation must invalidate and re-fetch")
	assert.NotEqual(t, created.ID, fresh[0].ID)
}

func TestManager_PartialFailureStillInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := &schedule.MockStore{}
	cache := eventcache.New(eventcache.DefaultTTL)
	m, err := series.NewManager(store, cache, nil)
	require.NoError(t, err)

	cache.Put("org1", "2026-01", []*schedule.Event{{ID: "stale"}})

	anchor := day(2026, time.January, 7)
	in := rehearsalInput("org1", anchor)
	in.IsRecurring = true
	in.Rule = &recurrence.Rule{
		Weekdays:  []time.Weekday{time.Wednesday},
		Frequency: recurrence.FreqWeekly,
		Until:     mo.Some(anchor.AddDate(0, 0, 14)),
	}

	parent := &schedule.Event{ID: "p1", OrganizationID: "org1", Date: anchor, Rule: in.Rule}
	boom := errors.New("store went away")
	store.On("InsertEvent", mock.Anything, mock.Anything).Return(parent, nil).Once()
	store.On("InsertEvent", mock.Anything, mock.Anything).Return(nil, boom).Once()

	_, err = m.Create(ctx, in)
	require.ErrorIs(t, err, boom)

	_, ok := cache.Get("org1", "2026-01")
	assert.False(t, ok, "partial failure must still invalidate the organization's cache")
	store.AssertExpectations(t)
}
