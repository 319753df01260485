// Package memory provides an in-memory Store for tests and for embedding
// applications that bring no backend of their own.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bandroom/schedule"
)

// Store implements schedule.Store using in-memory maps.
type Store struct {
	mu         sync.RWMutex
	events     map[string]*schedule.Event         // key: orgID/eventID
	candidates map[string]*schedule.CandidateDate // key: orgID/candidateID
	responses  map[string]*schedule.AvailabilityResponse
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		events:     make(map[string]*schedule.Event),
		candidates: make(map[string]*schedule.CandidateDate),
		responses:  make(map[string]*schedule.AvailabilityResponse),
	}
}

func key(orgID, id string) string { return orgID + "/" + id }

func responseKey(orgID, occurrenceID, memberID string) string {
	return orgID + "/" + occurrenceID + "/" + memberID
}

func (s *Store) InsertEvent(_ context.Context, event *schedule.Event) (*schedule.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.OrganizationID == "" {
		return nil, &schedule.Error{Type: schedule.ErrInvalidInput, Message: "event has no organization"}
	}
	e := *event
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, exists := s.events[key(e.OrganizationID, e.ID)]; exists {
		return nil, &schedule.Error{Type: schedule.ErrAlreadyExists, Message: "event already exists"}
	}
	now := time.Now()
	e.Created = now
	e.Modified = now
	s.events[key(e.OrganizationID, e.ID)] = &e

	out := e
	return &out, nil
}

func (s *Store) UpdateEvent(_ context.Context, event *schedule.Event) (*schedule.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(event.OrganizationID, event.ID)
	existing, ok := s.events[k]
	if !ok {
		return nil, &schedule.Error{Type: schedule.ErrNotFound, Message: "event not found"}
	}
	e := *event
	e.Created = existing.Created
	e.Modified = time.Now()
	s.events[k] = &e

	out := e
	return &out, nil
}

func (s *Store) DeleteEvent(_ context.Context, orgID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(orgID, eventID)
	if _, ok := s.events[k]; !ok {
		return &schedule.Error{Type: schedule.ErrNotFound, Message: "event not found"}
	}
	delete(s.events, k)
	return nil
}

func (s *Store) FindEvent(_ context.Context, orgID, eventID string) (*schedule.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[key(orgID, eventID)]
	if !ok {
		return nil, &schedule.Error{Type: schedule.ErrNotFound, Message: "event not found"}
	}
	out := *e
	return &out, nil
}

func (s *Store) ListEvents(_ context.Context, orgID string, filter schedule.EventFilter) ([]*schedule.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*schedule.Event
	for _, e := range s.events {
		if e.OrganizationID != orgID || !filter.Matches(e) {
			continue
		}
		out := *e
		events = append(events, &out)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (s *Store) InsertCandidateDate(_ context.Context, cd *schedule.CandidateDate) (*schedule.CandidateDate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cd.OrganizationID == "" || cd.EventID == "" {
		return nil, &schedule.Error{Type: schedule.ErrInvalidInput, Message: "candidate date needs an organization and event"}
	}
	c := *cd
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Created = time.Now()
	s.candidates[key(c.OrganizationID, c.ID)] = &c

	out := c
	return &out, nil
}

func (s *Store) DeleteCandidateDate(_ context.Context, orgID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(orgID, id)
	if _, ok := s.candidates[k]; !ok {
		return &schedule.Error{Type: schedule.ErrNotFound, Message: "candidate date not found"}
	}
	delete(s.candidates, k)
	return nil
}

func (s *Store) ListCandidateDates(_ context.Context, orgID, eventID string) ([]*schedule.CandidateDate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*schedule.CandidateDate
	for _, c := range s.candidates {
		if c.OrganizationID == orgID && c.EventID == eventID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) UpsertResponse(_ context.Context, r *schedule.AvailabilityResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.OrganizationID == "" || r.OccurrenceID == "" || r.MemberID == "" {
		return &schedule.Error{Type: schedule.ErrInvalidInput, Message: "response needs organization, occurrence and member"}
	}
	cp := *r
	cp.Modified = time.Now()
	s.responses[responseKey(r.OrganizationID, r.OccurrenceID, r.MemberID)] = &cp
	return nil
}

func (s *Store) ListResponses(_ context.Context, orgID string, occurrenceIDs []string) ([]*schedule.AvailabilityResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(occurrenceIDs))
	for _, id := range occurrenceIDs {
		wanted[id] = struct{}{}
	}
	var out []*schedule.AvailabilityResponse
	for _, r := range s.responses {
		if r.OrganizationID != orgID {
			continue
		}
		if _, ok := wanted[r.OccurrenceID]; !ok {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurrenceID != out[j].OccurrenceID {
			return out[i].OccurrenceID < out[j].OccurrenceID
		}
		return out[i].MemberID < out[j].MemberID
	})
	return out, nil
}
