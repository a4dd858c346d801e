package attendee

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/roach88/cts/internal/database"
)

// Document fields of a stored attendee. The *_key fields hold Fold of the
// name and make lookups a plain equality filter.
const (
	fieldFirstname = "firstname"
	fieldLastname  = "lastname"
	fieldAttending = "attending"
	fieldFirstKey  = "first_key"
	fieldLastKey   = "last_key"
)

// AdapterStore keeps attendees in a database.Adapter collection.
// The adapter must be connected before use.
type AdapterStore struct {
	// mu serializes Save so id allocation and the name check stay atomic.
	mu sync.Mutex
	db database.Adapter
}

var _ Store = (*AdapterStore)(nil)

// NewAdapterStore wraps db.
func NewAdapterStore(db database.Adapter) *AdapterStore {
	return &AdapterStore{db: db}
}

// SeedDefaults saves the Seed records unless their names already exist.
func SeedDefaults(ctx context.Context, s Store) error {
	for _, a := range Seed() {
		if _, err := s.Save(ctx, a, ConflictSkip); err != nil {
			return fmt.Errorf("seed %s %s: %w", a.Firstname, a.Lastname, err)
		}
	}
	return nil
}

// Get implements Store.
func (s *AdapterStore) Get(ctx context.Context, firstname, lastname string) (*Attendee, error) {
	if err := checkName(firstname, lastname); err != nil {
		return nil, err
	}
	return s.get(ctx, firstname, lastname)
}

func (s *AdapterStore) get(ctx context.Context, firstname, lastname string) (*Attendee, error) {
	docs, err := s.db.FindItems(ctx, database.Document{
		fieldFirstKey: Fold(firstname),
		fieldLastKey:  Fold(lastname),
	}, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("find attendee: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	a, err := fromDocument(docs[0])
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Save implements Store.
func (s *AdapterStore) Save(ctx context.Context, a Attendee, mode ConflictMode) (*Attendee, error) {
	if err := checkRecord(a); err != nil {
		return nil, err
	}
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.get(ctx, a.Firstname, a.Lastname)
	if err != nil {
		return nil, err
	}

	if old == nil {
		all, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		next := 0
		for _, o := range all {
			next = max(next, o.ID)
		}
		a.ID = next + 1
		if _, err := s.db.AddItem(ctx, strconv.Itoa(a.ID), toDocument(a), database.ConflictError); err != nil {
			return nil, fmt.Errorf("add attendee: %w", err)
		}
		return &a, nil
	}

	switch mode {
	case ConflictOverwrite:
		old.Attending = a.Attending
		if _, err := s.db.UpdateItem(ctx, strconv.Itoa(old.ID), toDocument(*old), database.ConflictError); err != nil {
			return nil, fmt.Errorf("update attendee: %w", err)
		}
	case ConflictSkip:
	default:
		return nil, ErrAlreadyRegistered
	}
	return old, nil
}

// List implements Store.
func (s *AdapterStore) List(ctx context.Context) ([]Attendee, error) {
	docs, err := s.db.FindItems(ctx, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	out := make([]Attendee, 0, len(docs))
	for _, doc := range docs {
		a, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func toDocument(a Attendee) database.Document {
	return database.Document{
		fieldFirstname: a.Firstname,
		fieldLastname:  a.Lastname,
		fieldAttending: a.Attending,
		fieldFirstKey:  Fold(a.Firstname),
		fieldLastKey:   Fold(a.Lastname),
	}
}

func fromDocument(doc database.Document) (Attendee, error) {
	rawID, _ := doc["id"].(string)
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return Attendee{}, fmt.Errorf("attendee document id %q: %w", rawID, err)
	}
	str := func(key string) string {
		v, _ := doc[key].(string)
		return v
	}
	return Attendee{
		ID:        id,
		Firstname: str(fieldFirstname),
		Lastname:  str(fieldLastname),
		Attending: str(fieldAttending),
	}, nil
}
