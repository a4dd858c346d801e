package attendee

import "sync"

// DefaultStoreID names the store used when no id is given.
const DefaultStoreID = "default"

// Registry hands out one Store per id, created on first use.
type Registry struct {
	mu     sync.Mutex
	stores map[string]Store
	create func(id string) Store
}

// NewRegistry creates a registry. A nil create makes a MemoryStore per id.
func NewRegistry(create func(id string) Store) *Registry {
	if create == nil {
		create = func(string) Store { return NewMemoryStore() }
	}
	return &Registry{stores: make(map[string]Store), create: create}
}

// Instance returns the store for id, creating it if needed.
// An empty id means DefaultStoreID.
func (r *Registry) Instance(id string) Store {
	if id == "" {
		id = DefaultStoreID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		s = r.create(id)
		r.stores[id] = s
	}
	return s
}
