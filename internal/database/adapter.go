package database

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Document is a stored record.
type Document map[string]any

// ConflictMode decides how writes react to an id conflict.
type ConflictMode string

const (
	ConflictError  ConflictMode = "error"
	ConflictIgnore ConflictMode = "ignore"
	ConflictSkip   ConflictMode = "skip"
)

// Feature names an optional adapter capability.
type Feature string

// FeatureCache caches GetItem results keyed by collection revision.
const FeatureCache Feature = "cache"

// Adapter is the common API of all backends.
type Adapter interface {
	// Collection returns the name of the managed collection.
	Collection() string

	// Connect prepares the backend. Calling it again is a no-op.
	Connect(ctx context.Context) error

	// Close releases the backend.
	Close() error

	// CheckItem reports whether a document with id exists.
	CheckItem(ctx context.Context, id string) (bool, error)

	// CountItems counts the documents matching filter.
	CountItems(ctx context.Context, filter Document) (int, error)

	// FindItems returns matching documents in insertion order, skipping
	// offset documents. A limit <= 0 means no limit.
	FindItems(ctx context.Context, filter Document, offset, limit int) ([]Document, error)

	// GetItem returns the document with id.
	GetItem(ctx context.Context, id string) (Document, bool, error)

	// AddItem stores data under id, or under a generated id if id is empty.
	// It returns the id used, or "" when skipped.
	AddItem(ctx context.Context, id string, data Document, mode ConflictMode) (string, error)

	// UpdateItem replaces the document with id. It reports whether data was
	// stored.
	UpdateItem(ctx context.Context, id string, data Document, mode ConflictMode) (bool, error)

	// RemoveItem deletes the document with id. It reports whether a document
	// was deleted. Only ConflictError and ConflictSkip are valid.
	RemoveItem(ctx context.Context, id string, mode ConflictMode) (bool, error)

	// Revision returns the collection's revision number, 0 if never changed.
	Revision(ctx context.Context) (int64, error)

	// HasFeature reports whether the backend supports feature.
	HasFeature(feature Feature) bool

	// EnableFeature switches feature on. With ConflictSkip an unsupported
	// feature is silently ignored.
	EnableFeature(feature Feature, mode ConflictMode) error
}

// Options configures adapters created by Init.
type Options struct {
	// Path is the SQLite file. Ignored by the memory backend.
	Path string

	// IDs generates ids for AddItem without id. Defaults to UUIDv7Generator.
	IDs IDGenerator
}

// Init creates the adapter called adapterName for collection.
// Known names: "sqlite" (or "DatabaseAdapterSQLite") and "memory".
func Init(adapterName, collection string, opts Options) (Adapter, error) {
	if adapterName == "" {
		return nil, invalidArgument(collection, "empty adapter name")
	}
	if collection == "" {
		return nil, invalidArgument("", "empty collection name")
	}

	switch adapterName {
	case "sqlite", "SQLite", "DatabaseAdapterSQLite":
		if opts.Path == "" {
			return nil, invalidArgument(collection, "sqlite adapter needs a path")
		}
		return NewSQLite(opts.Path, collection, opts.IDs), nil
	case "memory", "DatabaseAdapterMemory":
		return NewMemory(collection, opts.IDs), nil
	default:
		return nil, &Error{
			Code:    ErrCodeUnknownAdapter,
			Message: fmt.Sprintf("unknown database adapter %q", adapterName),
		}
	}
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// base holds what every backend shares: collection name, id generation,
// feature switches and the revision cache.
type base struct {
	collection string
	ids        IDGenerator

	mu       sync.Mutex
	features map[Feature]bool
	cache    map[string]cachedDocument
}

type cachedDocument struct {
	revision int64
	doc      Document
}

func (b *base) init(collection string, ids IDGenerator) {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	b.collection = collection
	b.ids = ids
	b.features = map[Feature]bool{FeatureCache: false}
	b.cache = make(map[string]cachedDocument)
}

// Collection implements Adapter.
func (b *base) Collection() string {
	return b.collection
}

// HasFeature implements Adapter. Both backends keep revisions, so both can
// cache.
func (b *base) HasFeature(feature Feature) bool {
	return feature == FeatureCache
}

func (b *base) enableFeature(feature Feature, mode ConflictMode) error {
	if mode != ConflictError && mode != ConflictSkip {
		return invalidArgument(b.collection, "invalid conflict mode %q", mode)
	}
	if !b.HasFeature(feature) {
		if mode == ConflictSkip {
			return nil
		}
		return &Error{
			Code:       ErrCodeUnsupportedFeature,
			Message:    fmt.Sprintf("feature %q is not supported", feature),
			Collection: b.collection,
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.features[feature] = true
	return nil
}

func (b *base) enabled(feature Feature) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.features[feature]
}

func (b *base) cached(id string, revision int64) (Document, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cache[id]
	if !ok || c.revision != revision {
		delete(b.cache, id)
		return nil, false
	}
	return cloneDocument(c.doc), true
}

func (b *base) remember(id string, revision int64, doc Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache[id] = cachedDocument{revision: revision, doc: cloneDocument(doc)}
}

func (b *base) checkID(id string) error {
	if id == "" {
		return invalidArgument(b.collection, "empty id")
	}
	return nil
}

func (b *base) checkFilter(filter Document) error {
	for key := range filter {
		if !fieldName.MatchString(key) {
			return invalidArgument(b.collection, "invalid filter field %q", key)
		}
	}
	return nil
}

func (b *base) checkWrite(data Document, mode ConflictMode) error {
	if data == nil {
		return invalidArgument(b.collection, "nil data")
	}
	switch mode {
	case ConflictError, ConflictIgnore, ConflictSkip:
		return nil
	default:
		return invalidArgument(b.collection, "invalid conflict mode %q", mode)
	}
}

// encode serializes data without its "id" field.
func encode(data Document) (string, error) {
	stored := make(Document, len(data))
	for k, v := range data {
		if k == "id" {
			continue
		}
		stored[k] = v
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

// decode parses stored JSON and adds the id.
func decode(id, raw string) (Document, error) {
	doc := Document{}
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc["id"] = id
	return doc, nil
}

// normalize gives a value the shape it has after a JSON round trip, so that
// filters compare numbers and nested values consistently.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
