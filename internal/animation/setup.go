package animation

import (
	"errors"
	"fmt"
	"strings"
)

// ModeRunningPoint lights one point after the other.
const ModeRunningPoint = "running-point"

// DefaultColor is used when the setup string names no colour.
const DefaultColor = "red"

// ErrInvalidSetup is returned for malformed or unknown animation setups.
var ErrInvalidSetup = errors.New("invalid animation setup")

// Highlight is the mark a Stepper puts on the lit point.
type Highlight struct {
	Color string
}

// Setup is a parsed animation description.
type Setup struct {
	Mode      string
	Highlight Highlight
}

// ParseSetup parses "<mode>[:<option>]", e.g. "running-point:#09f".
func ParseSetup(setup string) (Setup, error) {
	if setup == "" {
		return Setup{}, fmt.Errorf("%w: empty setup", ErrInvalidSetup)
	}
	mode, option, _ := strings.Cut(setup, ":")
	if mode == "" {
		return Setup{}, fmt.Errorf("%w: missing mode in %q", ErrInvalidSetup, setup)
	}

	switch mode {
	case ModeRunningPoint:
		if option == "" {
			option = DefaultColor
		}
		return Setup{Mode: mode, Highlight: Highlight{Color: option}}, nil
	default:
		return Setup{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidSetup, mode)
	}
}
