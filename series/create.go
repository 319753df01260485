package series

import (
	"context"
	"fmt"
	"time"

	"github.com/bandroom/schedule"
	"github.com/bandroom/schedule/recurrence"
)

// Create persists a new event from the input: a standalone event, a poll gig
// with its candidate dates, or a whole recurring series. For a series the
// parent is created first so every child carries a valid parent reference;
// the returned event is the parent.
func (m *Manager) Create(ctx context.Context, in *schedule.EventInput) (*schedule.Event, error) {
	if in.OrganizationID == "" {
		return nil, schedule.ErrMissingOrganization
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	defer m.invalidate(in.OrganizationID)

	base := &schedule.Event{}
	if err := in.Apply(base); err != nil {
		return nil, err
	}

	if !in.IsRecurring {
		event, err := m.store.InsertEvent(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("create event: %w", err)
		}
		if in.IsPoll {
			if err := m.createCandidates(ctx, event, in.CandidateDates); err != nil {
				return nil, err
			}
		}
		if err := m.persistResponses(ctx, event, in); err != nil {
			return nil, err
		}
		m.logger.Debug("event created", "org", event.OrganizationID, "event", event.ID, "kind", event.Kind)
		return event, nil
	}

	dates := recurrence.ExpandHorizon(base.Date, *in.Rule, m.horizonDays)

	// The first generated date's record becomes the parent; its id must
	// exist before any child insert.
	base.Date = dates[0]
	parent, err := m.store.InsertEvent(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("create series parent: %w", err)
	}
	if err := m.createChildren(ctx, parent, dates[1:]); err != nil {
		return nil, err
	}
	m.logger.Debug("series created", "org", parent.OrganizationID, "parent", parent.ID, "occurrences", len(dates))
	return parent, nil
}

// createChildren inserts one child per date, all referencing the parent. The
// recurrence rule is written on every child so read paths never need the
// parent record.
func (m *Manager) createChildren(ctx context.Context, parent *schedule.Event, dates []time.Time) error {
	for _, date := range dates {
		child := *parent
		child.ID = ""
		child.Date = date
		child.ParentID = parent.ID
		if parent.Rule != nil {
			rule := *parent.Rule
			child.Rule = &rule
		}
		if _, err := m.store.InsertEvent(ctx, &child); err != nil {
			return fmt.Errorf("create series child for %s: %w", date.Format(schedule.DateFormat), err)
		}
	}
	return nil
}

func (m *Manager) createCandidates(ctx context.Context, event *schedule.Event, dates []time.Time) error {
	for _, date := range dates {
		_, err := m.store.InsertCandidateDate(ctx, &schedule.CandidateDate{
			OrganizationID: event.OrganizationID,
			EventID:        event.ID,
			Date:           schedule.Day(date),
		})
		if err != nil {
			return fmt.Errorf("create candidate date %s: %w", date.Format(schedule.DateFormat), err)
		}
	}
	return nil
}
