// Command example wires the engine against the in-memory store and walks
// through the main flows: a weekly rehearsal series, a poll gig with
// candidate dates and member responses, and an iCalendar feed of the result.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samber/mo"

	"github.com/bandroom/schedule"
	"github.com/bandroom/schedule/config"
	"github.com/bandroom/schedule/eventcache"
	"github.com/bandroom/schedule/feed"
	"github.com/bandroom/schedule/memory"
	"github.com/bandroom/schedule/poll"
	"github.com/bandroom/schedule/recurrence"
	"github.com/bandroom/schedule/series"

	"github.com/emersion/go-ical"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts := config.Default()
	store := memory.New()
	cache := eventcache.New(opts.CacheTTL)
	manager, err := series.NewManager(store, cache, logger)
	if err != nil {
		return err
	}
	manager.SetHorizon(opts.HorizonDays)

	const org = "the-midnight-ramblers"
	anchor := schedule.Day(time.Now().AddDate(0, 0, 7))

	// A weekly rehearsal series, eight weeks out.
	parent, err := manager.Create(ctx, &schedule.EventInput{
		OrganizationID: org,
		Kind:           schedule.KindRehearsal,
		Date:           anchor,
		StartTime:      "19:30",
		Duration:       2 * time.Hour,
		Location:       "Studio A",
		IsRecurring:    true,
		Rule: &recurrence.Rule{
			Weekdays:  []time.Weekday{anchor.Weekday()},
			Frequency: recurrence.FreqWeekly,
			Until:     mo.Some(anchor.AddDate(0, 0, 8*7)),
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("created rehearsal series %s starting %s\n", parent.ID, parent.Date.Format(schedule.DateFormat))

	// A poll gig: one primary date plus two candidates, and the drummer's
	// own answers recorded on the spot.
	primary := anchor.AddDate(0, 1, 0)
	alt := primary.AddDate(0, 0, 7)
	gig, err := manager.Create(ctx, &schedule.EventInput{
		OrganizationID:  org,
		Kind:            schedule.KindGig,
		Title:           "Festival slot",
		Date:            primary,
		StartTime:       "21:00",
		Duration:        90 * time.Minute,
		Location:        "Riverside stage",
		Fee:             mo.Some(45000),
		IsPoll:          true,
		RequiredMembers: []string{"drums", "bass", "keys"},
		CandidateDates:  []time.Time{alt},
		ActingMemberID:  "drums",
		Responses: map[string]schedule.Response{
			primary.Format(schedule.DateFormat): schedule.ResponseYes,
		},
	})
	if err != nil {
		return err
	}

	candidates, err := store.ListCandidateDates(ctx, org, gig.ID)
	if err != nil {
		return err
	}
	occurrences := []string{gig.ID}
	for _, c := range candidates {
		occurrences = append(occurrences, c.ID)
	}

	agg := poll.NewAggregator(store, org, "bass")
	if err := agg.LoadResponses(ctx, occurrences); err != nil {
		return err
	}
	agg.SetResponse(gig.ID, "bass", schedule.ResponseYes)
	if err := agg.Save(ctx); err != nil {
		return err
	}
	available, unavailable, pending := agg.Summary(gig.ID, []string{"drums", "bass", "keys"})
	fmt.Printf("gig %s on %s: %d yes, %d no, %d pending\n",
		gig.Title, gig.Date.Format(schedule.DateFormat), available, unavailable, pending)

	// Feed of everything in the anchor month.
	events, err := manager.Events(ctx, org, anchor.Format(schedule.MonthFormat))
	if err != nil {
		return err
	}
	cal, err := feed.Build("The Midnight Ramblers", events)
	if err != nil {
		return err
	}
	return ical.NewEncoder(os.Stdout).Encode(cal)
}
