package database

import (
	"github.com/google/uuid"
)

// IDGenerator creates ids for documents added without one.
// Implemented by UUIDv7Generator (production) and testutil.FixedIDGenerator.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 document ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsUUID reports whether id is a hyphenated UUID such as
// "a342bdef-8319-20de-bf23-291c23180a1d".
func IsUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
