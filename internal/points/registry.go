package points

import "fmt"

// DefaultCursor is the cursor used when an empty cursor name is given.
const DefaultCursor = "default"

// MaxGenerations bounds how often a single coordinate may be appended.
// Real layouts stay in single digits; the cap turns a runaway caller into a
// contract violation instead of an endless probe.
const MaxGenerations = 1024

// Point is a coordinate pair. It is comparable and used directly as a map key.
type Point struct {
	X, Y int
}

// Entry is one stored point.
type Entry struct {
	X          int
	Y          int
	Generation int
	Payload    any
}

// Point returns the coordinates of the entry.
func (e Entry) Point() Point {
	return Point{X: e.X, Y: e.Y}
}

// Stats summarizes the generation-1 entries of a registry.
// The bounds are zero while Count is zero.
type Stats struct {
	Count int
	MinX  int
	MaxX  int
	MinY  int
	MaxY  int
}

type genKey struct {
	x, y, generation int
}

// Registry is an append-only, insertion-ordered list of points.
type Registry struct {
	entries []Entry
	index   map[genKey]int
	tags    map[Point]any
	cursors map[string]int
	stats   Stats
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		index:   make(map[genKey]int),
		tags:    make(map[Point]any),
		cursors: make(map[string]int),
	}
}

// Append adds a point to the end of the list and returns the stored entry.
//
// If (x, y) is already stored, the new entry gets the lowest generation that
// is not yet in use for that coordinate. Cursors and marks are not touched.
func (r *Registry) Append(x, y int, payload any) Entry {
	generation := 1
	for {
		if _, ok := r.index[genKey{x, y, generation}]; !ok {
			break
		}
		generation++
		if generation > MaxGenerations {
			panic(&ContractError{
				Code:    ErrCodeTooManyGenerations,
				Message: fmt.Sprintf("coordinate appended more than %d times", MaxGenerations),
				Point:   Point{X: x, Y: y},
			})
		}
	}

	entry := Entry{X: x, Y: y, Generation: generation, Payload: payload}
	r.index[genKey{x, y, generation}] = len(r.entries)
	r.entries = append(r.entries, entry)

	if generation == 1 {
		r.track(x, y)
	}

	return entry
}

// track folds a first-generation point into the statistics.
func (r *Registry) track(x, y int) {
	if r.stats.Count == 0 {
		r.stats = Stats{Count: 1, MinX: x, MaxX: x, MinY: y, MaxY: y}
		return
	}
	r.stats.Count++
	r.stats.MinX = min(r.stats.MinX, x)
	r.stats.MaxX = max(r.stats.MaxX, x)
	r.stats.MinY = min(r.stats.MinY, y)
	r.stats.MaxY = max(r.stats.MaxY, y)
}

// FirstGeneration returns the generation-1 entry stored at (x, y).
func (r *Registry) FirstGeneration(x, y int) (Entry, bool) {
	idx, ok := r.index[genKey{x, y, 1}]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// Len returns the number of entries across all generations.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Each calls fn for every entry in insertion order until fn returns false.
// It does not use or move any cursor.
func (r *Registry) Each(fn func(Entry) bool) {
	for _, e := range r.entries {
		if !fn(e) {
			return
		}
	}
}

func cursorName(name string) string {
	if name == "" {
		return DefaultCursor
	}
	return name
}

// seek moves the cursor to idx and returns the entry there.
func (r *Registry) seek(name string, idx int) (Entry, bool) {
	r.cursors[name] = idx
	return r.entries[idx], true
}

// unset removes the cursor. It always reports false so callers can return it.
func (r *Registry) unset(name string) (Entry, bool) {
	delete(r.cursors, name)
	return Entry{}, false
}

// First moves the cursor to the entry appended first.
// On an empty registry the cursor is unset.
func (r *Registry) First(cursor string) (Entry, bool) {
	name := cursorName(cursor)
	if len(r.entries) == 0 {
		return r.unset(name)
	}
	return r.seek(name, 0)
}

// Last moves the cursor to the entry appended last.
// On an empty registry the cursor is unset.
func (r *Registry) Last(cursor string) (Entry, bool) {
	name := cursorName(cursor)
	if len(r.entries) == 0 {
		return r.unset(name)
	}
	return r.seek(name, len(r.entries)-1)
}

// HasPrev reports whether Prev would land on an entry.
func (r *Registry) HasPrev(cursor string) bool {
	idx, ok := r.cursors[cursorName(cursor)]
	return ok && idx > 0
}

// HasNext reports whether Next would land on an entry.
func (r *Registry) HasNext(cursor string) bool {
	idx, ok := r.cursors[cursorName(cursor)]
	return ok && idx+1 < len(r.entries)
}

// Prev moves the cursor one entry back.
// Without a predecessor the cursor is unset and false is returned.
func (r *Registry) Prev(cursor string) (Entry, bool) {
	name := cursorName(cursor)
	if !r.HasPrev(name) {
		return r.unset(name)
	}
	return r.seek(name, r.cursors[name]-1)
}

// Next moves the cursor one entry forward.
// Without a successor the cursor is unset and false is returned.
func (r *Registry) Next(cursor string) (Entry, bool) {
	name := cursorName(cursor)
	if !r.HasNext(name) {
		return r.unset(name)
	}
	return r.seek(name, r.cursors[name]+1)
}

// Current returns the entry under the cursor without moving it.
func (r *Registry) Current(cursor string) (Entry, bool) {
	idx, ok := r.cursors[cursorName(cursor)]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// SetMark tags the coordinate (x, y), replacing any earlier tag.
// A nil tag is stored as true.
func (r *Registry) SetMark(x, y int, tag any) {
	if tag == nil {
		tag = true
	}
	r.tags[Point{X: x, Y: y}] = tag
}

// Mark returns the tag stored for (x, y).
func (r *Registry) Mark(x, y int) (any, bool) {
	tag, ok := r.tags[Point{X: x, Y: y}]
	return tag, ok
}

// Unmark removes the tag of (x, y) if there is one.
func (r *Registry) Unmark(x, y int) {
	delete(r.tags, Point{X: x, Y: y})
}

// UnmarkAll removes every tag.
func (r *Registry) UnmarkAll() {
	clear(r.tags)
}

// Marked returns the number of tagged coordinates.
func (r *Registry) Marked() int {
	return len(r.tags)
}

// Stats returns a snapshot of the statistics.
func (r *Registry) Stats() Stats {
	return r.stats
}
