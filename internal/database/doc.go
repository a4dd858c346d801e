// Package database provides an exchangeable API to keep documents in a
// collection-oriented datasource.
//
// An Adapter manages exactly one collection. Documents are JSON-like maps
// addressed by a string id; the id is never part of the stored data and is
// added as "id" when documents are read back.
//
// # Backends
//
//   - "sqlite": documents in a SQLite file (github.com/mattn/go-sqlite3)
//   - "memory": documents in process memory, for tests and demos
//
// Use Init to create an adapter by name.
//
// # Conflicts
//
// Writes take a ConflictMode that decides what happens when the target id is
// already taken (AddItem) or missing (UpdateItem, RemoveItem):
//
//   - ConflictError: fail with an *Error
//   - ConflictIgnore: go ahead anyway (replace, or insert)
//   - ConflictSkip: leave the collection unchanged and report it
//
// # Revisions and caching
//
// Every mutation increments the collection's revision number. With
// FeatureCache enabled, GetItem serves repeated reads from memory for as long
// as the revision is unchanged.
//
// # Ordering
//
// FindItems returns documents in insertion order (seq ASC, id ASC).
package database
