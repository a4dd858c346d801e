package attendee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Attending answers.
const (
	Yes   = "yes"
	No    = "no"
	Maybe = "maybe"
)

// Attendee is one stored answer.
type Attendee struct {
	ID        int    `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Attending string `json:"attending"`
}

// ConflictMode decides what Save does when the name is already registered.
type ConflictMode string

const (
	// ConflictError fails with ErrAlreadyRegistered.
	ConflictError ConflictMode = "error"
	// ConflictOverwrite replaces the stored Attending answer.
	ConflictOverwrite ConflictMode = "overwrite"
	// ConflictSkip keeps the stored record and returns it.
	ConflictSkip ConflictMode = "skip"
)

var (
	// ErrAlreadyRegistered is returned by Save in ConflictError mode.
	ErrAlreadyRegistered = errors.New("can't save record - name is already registered")

	// ErrInvalidConflictMode is returned by Save for unknown modes.
	ErrInvalidConflictMode = errors.New("invalid conflict mode")
)

// Store is the attendee storage API.
type Store interface {
	// Get finds the attendee by name. It returns nil when nobody matches.
	Get(ctx context.Context, firstname, lastname string) (*Attendee, error)

	// Save stores a new attendee, or resolves a name conflict per mode.
	// It returns the record as stored.
	Save(ctx context.Context, a Attendee, mode ConflictMode) (*Attendee, error)

	// List returns all attendees in the order they were first saved.
	List(ctx context.Context) ([]Attendee, error)
}

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Seed lists the records a fresh store starts with.
func Seed() []Attendee {
	return []Attendee{
		{ID: 1, Firstname: "Alexander", Lastname: "Urban", Attending: Yes},
		{ID: 2, Firstname: "Johnny", Lastname: "Puma", Attending: No},
	}
}

// Fold returns the form of a name used for comparison: NFC-normalized and
// lower-cased with Swedish rules.
func Fold(name string) string {
	// A Caser is stateful; one per call keeps Fold safe for concurrent use.
	return cases.Lower(language.Swedish).String(norm.NFC.String(name))
}

func checkName(firstname, lastname string) error {
	if strings.TrimSpace(firstname) == "" {
		return &ValidationError{Field: "firstname", Message: "must not be empty"}
	}
	if strings.TrimSpace(lastname) == "" {
		return &ValidationError{Field: "lastname", Message: "must not be empty"}
	}
	return nil
}

func checkRecord(a Attendee) error {
	if err := checkName(a.Firstname, a.Lastname); err != nil {
		return err
	}
	if strings.TrimSpace(a.Attending) == "" {
		return &ValidationError{Field: "attending", Message: "must not be empty"}
	}
	return nil
}

func checkMode(mode ConflictMode) error {
	switch mode {
	case ConflictError, ConflictOverwrite, ConflictSkip:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrInvalidConflictMode, mode)
	}
}
