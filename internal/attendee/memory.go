package attendee

import (
	"context"
	"sync"
)

// MemoryStore keeps attendees in process memory.
//
// Thread-safety: MemoryStore is safe for concurrent use via internal mutex.
type MemoryStore struct {
	mu   sync.Mutex
	data []Attendee
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding the Seed records.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: Seed()}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, firstname, lastname string) (*Attendee, error) {
	if err := checkName(firstname, lastname); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(firstname, lastname)
	if i < 0 {
		return nil, nil
	}
	a := s.data[i]
	return &a, nil
}

// find returns the index of the matching record or -1. Caller holds s.mu.
func (s *MemoryStore) find(firstname, lastname string) int {
	first, last := Fold(firstname), Fold(lastname)
	for i, a := range s.data {
		if Fold(a.Firstname) == first && Fold(a.Lastname) == last {
			return i
		}
	}
	return -1
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, a Attendee, mode ConflictMode) (*Attendee, error) {
	if err := checkRecord(a); err != nil {
		return nil, err
	}
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(a.Firstname, a.Lastname)
	if i < 0 {
		next := 0
		for _, old := range s.data {
			next = max(next, old.ID)
		}
		a.ID = next + 1
		s.data = append(s.data, a)
		return &a, nil
	}

	switch mode {
	case ConflictOverwrite:
		s.data[i].Attending = a.Attending
	case ConflictSkip:
	default:
		return nil, ErrAlreadyRegistered
	}
	stored := s.data[i]
	return &stored, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Attendee, len(s.data))
	copy(out, s.data)
	return out, nil
}
