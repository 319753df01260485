package series

import (
	"context"
	"fmt"
	"time"

	"github.com/bandroom/schedule"
	"github.com/bandroom/schedule/poll"
	"github.com/bandroom/schedule/recurrence"
)

// Update applies the desired state in the input to an existing event, driving
// the standalone<->recurring state machine on the input's IsRecurring flag
// and reconciling a poll gig's candidate dates against what is persisted.
func (m *Manager) Update(ctx context.Context, eventID string, in *schedule.EventInput) (*schedule.Event, error) {
	if in.OrganizationID == "" {
		return nil, schedule.ErrMissingOrganization
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := m.store.FindEvent(ctx, in.OrganizationID, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}
	defer m.invalidate(in.OrganizationID)

	wasPoll := existing.IsPoll

	var updated *schedule.Event
	switch {
	case existing.IsStandalone() && in.IsRecurring:
		updated, err = m.makeRecurring(ctx, existing, in)
	case existing.IsSeriesParent() && !in.IsRecurring:
		updated, err = m.makeStandalone(ctx, existing, in)
	default:
		// No lifecycle transition: plain in-place update. A series child
		// keeps its parent reference.
		if err = in.Apply(existing); err != nil {
			return nil, err
		}
		updated, err = m.store.UpdateEvent(ctx, existing)
		if err != nil {
			err = fmt.Errorf("update event %s: %w", eventID, err)
		}
	}
	if err != nil {
		return nil, err
	}

	if wasPoll || in.IsPoll {
		if err := m.reconcileCandidates(ctx, updated, in); err != nil {
			return nil, err
		}
	}
	if err := m.persistResponses(ctx, updated, in); err != nil {
		return nil, err
	}
	return updated, nil
}

// makeRecurring turns a standalone event into a series parent: the record is
// updated in place with the rule attached, then one child is created for
// every generated date except the parent's own.
func (m *Manager) makeRecurring(ctx context.Context, existing *schedule.Event, in *schedule.EventInput) (*schedule.Event, error) {
	if err := in.Apply(existing); err != nil {
		return nil, err
	}
	parent, err := m.store.UpdateEvent(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("promote event %s to series parent: %w", existing.ID, err)
	}

	dates := recurrence.ExpandHorizon(parent.Date, *in.Rule, m.horizonDays)
	var childDates []time.Time
	for _, d := range dates {
		if !d.Equal(parent.Date) {
			childDates = append(childDates, d)
		}
	}
	if err := m.createChildren(ctx, parent, childDates); err != nil {
		return nil, err
	}
	m.logger.Debug("event promoted to series", "org", parent.OrganizationID, "parent", parent.ID, "children", len(childDates))
	return parent, nil
}

// makeStandalone dismantles a series: every child referencing the parent is
// deleted first, then the parent record drops its rule.
func (m *Manager) makeStandalone(ctx context.Context, existing *schedule.Event, in *schedule.EventInput) (*schedule.Event, error) {
	children, err := m.store.ListEvents(ctx, existing.OrganizationID, childFilter(existing.ID))
	if err != nil {
		return nil, fmt.Errorf("list series children of %s: %w", existing.ID, err)
	}
	for _, child := range children {
		if err := m.store.DeleteEvent(ctx, existing.OrganizationID, child.ID); err != nil {
			return nil, fmt.Errorf("delete series child %s: %w", child.ID, err)
		}
	}

	if err := in.Apply(existing); err != nil {
		return nil, err
	}
	existing.Rule = nil
	updated, err := m.store.UpdateEvent(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("demote series parent %s: %w", existing.ID, err)
	}
	m.logger.Debug("series demoted to standalone", "org", updated.OrganizationID, "event", updated.ID, "children_removed", len(children))
	return updated, nil
}

// reconcileCandidates executes the diff between the input's desired candidate
// dates and the persisted set. When the event is no longer a poll gig the
// desired set is empty, which degenerates to deleting every record.
func (m *Manager) reconcileCandidates(ctx context.Context, event *schedule.Event, in *schedule.EventInput) error {
	existing, err := m.store.ListCandidateDates(ctx, event.OrganizationID, event.ID)
	if err != nil {
		return fmt.Errorf("list candidate dates of %s: %w", event.ID, err)
	}

	var desired []time.Time
	if in.IsPoll {
		desired = in.CandidateDates
	}
	toCreate, toDelete := poll.Reconcile(desired, poll.ExistingByDate(existing))

	for _, id := range toDelete {
		if err := m.store.DeleteCandidateDate(ctx, event.OrganizationID, id); err != nil {
			return fmt.Errorf("delete candidate date %s: %w", id, err)
		}
	}
	if err := m.createCandidates(ctx, event, toCreate); err != nil {
		return err
	}
	return nil
}
