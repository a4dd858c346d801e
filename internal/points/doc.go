// Package points implements the ordered point registry behind the dot-matrix
// logo.
//
// A Registry stores two-dimensional integer points in insertion order. Each
// point carries an opaque payload supplied by the caller.
//
// ARCHITECTURE:
//
// Append-only sequence:
// Entries are never updated, reordered or removed. The index of an entry is
// its insertion position for the lifetime of the registry.
//
// Generations:
// Appending a coordinate that is already stored does not replace the old
// entry. The new entry receives the next free generation for that coordinate,
// starting at 1 and counting up without gaps.
//
// Cursors:
// Traversal happens through named cursors. Any number of cursors can walk the
// same sequence independently; the renderer and the animation each use their
// own. The empty name selects DefaultCursor.
//
// Marks:
// A side table maps coordinates to arbitrary tags. Marks ignore generations:
// a mark on (x, y) applies to every entry stored at (x, y).
//
// Statistics:
// Count and bounding box cover generation-1 entries only.
//
// The registry is not safe for concurrent mutation. Hosts that share it
// between goroutines serialise access themselves.
package points
