package series

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/mo"

	"github.com/bandroom/schedule"
)

// DeleteScope selects how much of a series a delete removes.
type DeleteScope int

const (
	// ScopeThisOnly removes exactly the targeted record. Deleting a parent
	// this way leaves its children orphaned; the legacy fallback can still
	// collect them later.
	ScopeThisOnly DeleteScope = iota
	// ScopeEntireSeries removes the targeted record and everything linked
	// to it, falling back to attribute matching for records that predate
	// parent/child linkage.
	ScopeEntireSeries
)

// Delete removes an event, or its whole series. Child deletes are issued
// before the parent delete so a concurrent reader never observes a child
// whose parent reference points at nothing.
func (m *Manager) Delete(ctx context.Context, orgID, eventID string, scope DeleteScope) error {
	if orgID == "" {
		return schedule.ErrMissingOrganization
	}
	target, err := m.store.FindEvent(ctx, orgID, eventID)
	if err != nil {
		return fmt.Errorf("load event %s: %w", eventID, err)
	}
	defer m.invalidate(orgID)

	if scope == ScopeThisOnly {
		return m.deleteOne(ctx, target)
	}
	return m.deleteSeries(ctx, target)
}

// deleteOne removes one record plus its candidate dates.
func (m *Manager) deleteOne(ctx context.Context, target *schedule.Event) error {
	if target.IsPoll {
		if err := m.deleteCandidates(ctx, target); err != nil {
			return err
		}
	}
	if err := m.store.DeleteEvent(ctx, target.OrganizationID, target.ID); err != nil {
		return fmt.Errorf("delete event %s: %w", target.ID, err)
	}
	m.logger.Debug("event deleted", "org", target.OrganizationID, "event", target.ID)
	return nil
}

// deleteSeries removes every record of the target's series. Linked deletion
// is tried first; records created before parent/child linkage existed fall
// back to attribute-pattern matching.
func (m *Manager) deleteSeries(ctx context.Context, target *schedule.Event) error {
	parentID := target.ID
	if target.ParentID != "" {
		parentID = target.ParentID
	}

	children, err := m.store.ListEvents(ctx, target.OrganizationID, childFilter(parentID))
	if err != nil {
		return fmt.Errorf("list series children of %s: %w", parentID, err)
	}

	if target.ParentID != "" || len(children) > 0 {
		return m.deleteLinked(ctx, target, parentID, children)
	}
	if target.Rule == nil {
		// Not recurring and not linked: nothing beyond the record itself.
		return m.deleteOne(ctx, target)
	}
	return m.deleteByPattern(ctx, target)
}

// deleteLinked removes a properly linked series: children first, then the
// parent, then any stray target record.
func (m *Manager) deleteLinked(ctx context.Context, target *schedule.Event, parentID string, children []*schedule.Event) error {
	for _, child := range children {
		if err := m.store.DeleteEvent(ctx, target.OrganizationID, child.ID); err != nil {
			return fmt.Errorf("delete series child %s: %w", child.ID, err)
		}
	}
	if err := m.store.DeleteEvent(ctx, target.OrganizationID, parentID); err != nil && !schedule.IsNotFound(err) {
		return fmt.Errorf("delete series parent %s: %w", parentID, err)
	}
	if target.ID != parentID {
		// The target is a child and was deleted with its siblings above;
		// a second delete is only needed if it somehow was not listed.
		if err := m.store.DeleteEvent(ctx, target.OrganizationID, target.ID); err != nil && !schedule.IsNotFound(err) {
			return fmt.Errorf("delete event %s: %w", target.ID, err)
		}
	}
	m.logger.Debug("series deleted", "org", target.OrganizationID, "parent", parentID, "children", len(children))
	return nil
}

// deleteByPattern is the legacy path for series persisted before parent/child
// linkage existed: every still-recurring record in the organization with the
// same start time, end time, location and weekday, dated today or later, is
// treated as part of the series. The heuristic can over- or under-match when
// two series share time and place; it is logged so unlinked data can be found
// and migrated.
func (m *Manager) deleteByPattern(ctx context.Context, target *schedule.Event) error {
	now := schedule.Day(time.Now())
	candidates, err := m.store.ListEvents(ctx, target.OrganizationID, schedule.EventFilter{
		RecurringOnly: true,
		From:          mo.Some(now),
	})
	if err != nil {
		return fmt.Errorf("list recurring events: %w", err)
	}

	matched := 0
	for _, e := range candidates {
		if e.ID == target.ID {
			continue
		}
		if e.StartTime != target.StartTime || e.EndTime != target.EndTime || e.Location != target.Location {
			continue
		}
		if e.Date.Weekday() != target.Date.Weekday() {
			continue
		}
		if err := m.store.DeleteEvent(ctx, target.OrganizationID, e.ID); err != nil {
			return fmt.Errorf("delete matched event %s: %w", e.ID, err)
		}
		matched++
	}

	// The targeted record goes too, even when its date is in the past.
	if err := m.store.DeleteEvent(ctx, target.OrganizationID, target.ID); err != nil && !schedule.IsNotFound(err) {
		return fmt.Errorf("delete event %s: %w", target.ID, err)
	}

	m.logger.Warn("series deleted via legacy pattern match",
		"org", target.OrganizationID, "event", target.ID, "matched", matched)
	return nil
}

func (m *Manager) deleteCandidates(ctx context.Context, event *schedule.Event) error {
	candidates, err := m.store.ListCandidateDates(ctx, event.OrganizationID, event.ID)
	if err != nil {
		return fmt.Errorf("list candidate dates of %s: %w", event.ID, err)
	}
	for _, c := range candidates {
		if err := m.store.DeleteCandidateDate(ctx, event.OrganizationID, c.ID); err != nil && !schedule.IsNotFound(err) {
			return fmt.Errorf("delete candidate date %s: %w", c.ID, err)
		}
	}
	return nil
}
