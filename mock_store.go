package schedule

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore implements the Store interface for testing.
type MockStore struct {
	mock.Mock
}

// InsertEvent implements the Store interface.
func (m *MockStore) InsertEvent(ctx context.Context, event *Event) (*Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

// UpdateEvent implements the Store interface.
func (m *MockStore) UpdateEvent(ctx context.Context, event *Event) (*Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

// DeleteEvent implements the Store interface.
func (m *MockStore) DeleteEvent(ctx context.Context, orgID, eventID string) error {
	args := m.Called(ctx, orgID, eventID)
	return args.Error(0)
}

// FindEvent implements the Store interface.
func (m *MockStore) FindEvent(ctx context.Context, orgID, eventID string) (*Event, error) {
	args := m.Called(ctx, orgID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

// ListEvents implements the Store interface.
func (m *MockStore) ListEvents(ctx context.Context, orgID string, filter EventFilter) ([]*Event, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Event), args.Error(1)
}

// InsertCandidateDate implements the Store interface.
func (m *MockStore) InsertCandidateDate(ctx context.Context, cd *CandidateDate) (*CandidateDate, error) {
	args := m.Called(ctx, cd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CandidateDate), args.Error(1)
}

// DeleteCandidateDate implements the Store interface.
func (m *MockStore) DeleteCandidateDate(ctx context.Context, orgID, id string) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// ListCandidateDates implements the Store interface.
func (m *MockStore) ListCandidateDates(ctx context.Context, orgID, eventID string) ([]*CandidateDate, error) {
	args := m.Called(ctx, orgID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*CandidateDate), args.Error(1)
}

// UpsertResponse implements the Store interface.
func (m *MockStore) UpsertResponse(ctx context.Context, r *AvailabilityResponse) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// ListResponses implements the Store interface.
func (m *MockStore) ListResponses(ctx context.Context, orgID string, occurrenceIDs []string) ([]*AvailabilityResponse, error) {
	args := m.Called(ctx, orgID, occurrenceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*AvailabilityResponse), args.Error(1)
}
