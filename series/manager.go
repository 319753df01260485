// Package series owns the lifecycle of events and recurring series: creation,
// the standalone<->recurring transitions, deletion, and the candidate-date
// and response bookkeeping of poll gigs. It is the only writer of series
// linkage.
package series

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/mo"

	"github.com/bandroom/schedule"
	"github.com/bandroom/schedule/eventcache"
	"github.com/bandroom/schedule/recurrence"
)

// Manager orchestrates the store, the recurrence expander and the event
// cache. Multi-record operations are sequences of independent store calls;
// partial failures are reported to the caller and never rolled back, but the
// organization's cache is always invalidated so a retry observes true state.
type Manager struct {
	store       schedule.Store
	cache       *eventcache.Cache
	logger      *slog.Logger
	horizonDays int
}

// NewManager creates a manager. cache may be nil when the embedding
// application does not cache reads; logger nil falls back to slog.Default().
func NewManager(store schedule.Store, cache *eventcache.Cache, logger *slog.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:       store,
		cache:       cache,
		logger:      logger,
		horizonDays: recurrence.DefaultHorizonDays,
	}, nil
}

// SetHorizon overrides how far an open-ended series is expanded.
func (m *Manager) SetHorizon(days int) {
	if days > 0 {
		m.horizonDays = days
	}
}

// Events is the read path: cached events for one organization-month,
// re-fetched from the store on a miss or an expired entry.
func (m *Manager) Events(ctx context.Context, orgID, month string) ([]*schedule.Event, error) {
	if orgID == "" {
		return nil, schedule.ErrMissingOrganization
	}
	if m.cache != nil {
		if events, ok := m.cache.Get(orgID, month); ok {
			return events, nil
		}
	}
	events, err := m.store.ListEvents(ctx, orgID, monthFilter(month))
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", month, err)
	}
	if m.cache != nil {
		m.cache.Put(orgID, month, events)
	}
	return events, nil
}

func monthFilter(month string) schedule.EventFilter {
	return schedule.EventFilter{Month: mo.Some(month)}
}

func childFilter(parentID string) schedule.EventFilter {
	return schedule.EventFilter{ParentID: mo.Some(parentID)}
}

func (m *Manager) invalidate(orgID string) {
	if m.cache != nil {
		m.cache.Invalidate(orgID)
	}
}

// persistResponses writes the acting member's answers supplied with the
// input. Dates that do not belong to the event are skipped.
func (m *Manager) persistResponses(ctx context.Context, event *schedule.Event, in *schedule.EventInput) error {
	if len(in.Responses) == 0 || in.ActingMemberID == "" {
		return nil
	}

	occurrenceByDate := map[string]string{
		event.Date.Format(schedule.DateFormat): event.ID,
	}
	if event.IsPoll {
		candidates, err := m.store.ListCandidateDates(ctx, event.OrganizationID, event.ID)
		if err != nil {
			return fmt.Errorf("list candidate dates: %w", err)
		}
		for _, c := range candidates {
			occurrenceByDate[c.Date.Format(schedule.DateFormat)] = c.ID
		}
	}

	for date, response := range in.Responses {
		occurrenceID, ok := occurrenceByDate[date]
		if !ok {
			m.logger.Debug("dropping response for unknown date", "event", event.ID, "date", date)
			continue
		}
		err := m.store.UpsertResponse(ctx, &schedule.AvailabilityResponse{
			OrganizationID: event.OrganizationID,
			OccurrenceID:   occurrenceID,
			MemberID:       in.ActingMemberID,
			Response:       response,
		})
		if err != nil {
			return fmt.Errorf("save response for %s: %w", date, err)
		}
	}
	return nil
}
