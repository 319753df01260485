package schedule

import (
	"context"
	"time"

	"github.com/samber/mo"
)

// Store connects the engine with a backend. Implementations should return
// *Error with the appropriate ErrorType; absent records are ErrNotFound.
// Every call is independently atomic; the engine never asks for multi-record
// transactions.
type Store interface {
	// InsertEvent persists a new event and returns the record with its
	// assigned id.
	InsertEvent(ctx context.Context, event *Event) (*Event, error)
	// UpdateEvent replaces an existing event's attributes.
	UpdateEvent(ctx context.Context, event *Event) (*Event, error)
	// DeleteEvent removes one event record.
	DeleteEvent(ctx context.Context, orgID, eventID string) error
	// FindEvent retrieves one event by id within an organization.
	FindEvent(ctx context.Context, orgID, eventID string) (*Event, error)
	// ListEvents retrieves events matching the filter, ordered by date.
	ListEvents(ctx context.Context, orgID string, filter EventFilter) ([]*Event, error)

	// InsertCandidateDate persists one proposed date for a poll gig.
	InsertCandidateDate(ctx context.Context, cd *CandidateDate) (*CandidateDate, error)
	// DeleteCandidateDate removes one candidate-date record.
	DeleteCandidateDate(ctx context.Context, orgID, id string) error
	// ListCandidateDates retrieves all candidate dates of one event,
	// ordered by date.
	ListCandidateDates(ctx context.Context, orgID, eventID string) ([]*CandidateDate, error)

	// UpsertResponse creates or overwrites one member's answer for one
	// occurrence.
	UpsertResponse(ctx context.Context, r *AvailabilityResponse) error
	// ListResponses retrieves every stored answer for the given
	// occurrences.
	ListResponses(ctx context.Context, orgID string, occurrenceIDs []string) ([]*AvailabilityResponse, error)
}

// EventFilter narrows ListEvents. Zero value matches everything in the
// organization.
type EventFilter struct {
	// Month restricts to events whose date falls in the given MonthFormat
	// month.
	Month mo.Option[string]
	// ParentID restricts to children of the given series parent.
	ParentID mo.Option[string]
	// RecurringOnly keeps only records carrying a recurrence rule.
	RecurringOnly bool
	// From keeps only events on or after the given day.
	From mo.Option[time.Time]
}

// Matches reports whether the event passes the filter. Store implementations
// may use it directly.
func (f EventFilter) Matches(e *Event) bool {
	if month, ok := f.Month.Get(); ok && e.Month() != month {
		return false
	}
	if parent, ok := f.ParentID.Get(); ok && e.ParentID != parent {
		return false
	}
	if f.RecurringOnly && e.Rule == nil {
		return false
	}
	if from, ok := f.From.Get(); ok && e.Date.Before(Day(from)) {
		return false
	}
	return true
}
