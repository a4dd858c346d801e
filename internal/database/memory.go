package database

import (
	"context"
	"reflect"
	"sync"
)

// Memory keeps a collection in process memory.
type Memory struct {
	base

	mu        sync.RWMutex
	connected bool
	docs      map[string]memoryDoc
	seq       int64
	revision  int64
}

type memoryDoc struct {
	seq  int64
	data string
}

var _ Adapter = (*Memory)(nil)

// NewMemory creates an in-memory adapter for collection.
func NewMemory(collection string, ids IDGenerator) *Memory {
	m := &Memory{docs: make(map[string]memoryDoc)}
	m.base.init(collection, ids)
	return m
}

// Connect implements Adapter.
func (m *Memory) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

// Close implements Adapter.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *Memory) ready() error {
	if !m.connected {
		return &Error{Code: ErrCodeNotConnected, Message: "no connection to database", Collection: m.collection}
	}
	return nil
}

// CheckItem implements Adapter.
func (m *Memory) CheckItem(ctx context.Context, id string) (bool, error) {
	if err := m.checkID(id); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ready(); err != nil {
		return false, err
	}
	_, ok := m.docs[id]
	return ok, nil
}

// CountItems implements Adapter.
func (m *Memory) CountItems(ctx context.Context, filter Document) (int, error) {
	docs, err := m.FindItems(ctx, filter, 0, 0)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// FindItems implements Adapter.
func (m *Memory) FindItems(ctx context.Context, filter Document, offset, limit int) ([]Document, error) {
	if err := m.checkFilter(filter); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, invalidArgument(m.collection, "negative offset %d", offset)
	}
	want, err := normalize(filter)
	if err != nil {
		return nil, invalidArgument(m.collection, "filter: %v", err)
	}
	wantFields, _ := want.(map[string]any)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ready(); err != nil {
		return nil, err
	}

	ids := m.orderedIDs()
	out := []Document{}
	skipped := 0
	for _, id := range ids {
		doc, err := decode(id, m.docs[id].data)
		if err != nil {
			return nil, err
		}
		if !matches(doc, wantFields) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, doc)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func matches(doc Document, filter map[string]any) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

// orderedIDs returns ids sorted by seq. Caller holds m.mu.
func (m *Memory) orderedIDs() []string {
	bySeq := make(map[int64]string, len(m.docs))
	for id, d := range m.docs {
		bySeq[d.seq] = id
	}
	out := make([]string, 0, len(m.docs))
	for seq := int64(1); seq <= m.seq; seq++ {
		if id, ok := bySeq[seq]; ok {
			out = append(out, id)
		}
	}
	return out
}

// GetItem implements Adapter.
func (m *Memory) GetItem(ctx context.Context, id string) (Document, bool, error) {
	if err := m.checkID(id); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ready(); err != nil {
		return nil, false, err
	}

	caching := m.enabled(FeatureCache)
	if caching {
		if doc, ok := m.cached(id, m.revision); ok {
			return doc, true, nil
		}
	}

	d, ok := m.docs[id]
	if !ok {
		return nil, false, nil
	}
	doc, err := decode(id, d.data)
	if err != nil {
		return nil, false, err
	}
	if caching {
		m.remember(id, m.revision, doc)
	}
	return doc, true, nil
}

// AddItem implements Adapter.
func (m *Memory) AddItem(ctx context.Context, id string, data Document, mode ConflictMode) (string, error) {
	if err := m.checkWrite(data, mode); err != nil {
		return "", err
	}
	raw, err := encode(data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(); err != nil {
		return "", err
	}

	if id == "" {
		id = m.ids.Generate()
	}
	if old, exists := m.docs[id]; exists {
		switch mode {
		case ConflictSkip:
			return "", nil
		case ConflictIgnore:
			m.docs[id] = memoryDoc{seq: old.seq, data: raw}
			m.revision++
			return id, nil
		default:
			return "", &Error{Code: ErrCodeIDInUse, Message: "adding item failed - id already in use", Collection: m.collection, ID: id}
		}
	}

	m.insert(id, raw)
	return id, nil
}

// insert stores a new document. Caller holds m.mu.
func (m *Memory) insert(id, raw string) {
	m.seq++
	m.docs[id] = memoryDoc{seq: m.seq, data: raw}
	m.revision++
}

// UpdateItem implements Adapter.
func (m *Memory) UpdateItem(ctx context.Context, id string, data Document, mode ConflictMode) (bool, error) {
	if err := m.checkID(id); err != nil {
		return false, err
	}
	if err := m.checkWrite(data, mode); err != nil {
		return false, err
	}
	raw, err := encode(data)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(); err != nil {
		return false, err
	}

	old, exists := m.docs[id]
	if exists {
		m.docs[id] = memoryDoc{seq: old.seq, data: raw}
		m.revision++
		return true, nil
	}
	switch mode {
	case ConflictSkip:
		return false, nil
	case ConflictIgnore:
		m.insert(id, raw)
		return true, nil
	default:
		return false, &Error{Code: ErrCodeNotFound, Message: "updating item failed - no such id", Collection: m.collection, ID: id}
	}
}

// RemoveItem implements Adapter.
func (m *Memory) RemoveItem(ctx context.Context, id string, mode ConflictMode) (bool, error) {
	if err := m.checkID(id); err != nil {
		return false, err
	}
	if mode != ConflictError && mode != ConflictSkip {
		return false, invalidArgument(m.collection, "invalid conflict mode %q", mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(); err != nil {
		return false, err
	}

	if _, exists := m.docs[id]; !exists {
		if mode == ConflictSkip {
			return false, nil
		}
		return false, &Error{Code: ErrCodeNotFound, Message: "removing item failed - no such id", Collection: m.collection, ID: id}
	}
	delete(m.docs, id)
	m.revision++
	return true, nil
}

// Revision implements Adapter.
func (m *Memory) Revision(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ready(); err != nil {
		return 0, err
	}
	return m.revision, nil
}

// EnableFeature implements Adapter.
func (m *Memory) EnableFeature(feature Feature, mode ConflictMode) error {
	return m.enableFeature(feature, mode)
}
