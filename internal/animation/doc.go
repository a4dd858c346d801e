// Package animation drives the "running point" effect of the dot-matrix logo.
//
// A Stepper walks a points.Registry with its own cursor and keeps exactly one
// coordinate marked at a time. After each step it calls an injected render
// function and schedules the next step after a fixed interval.
//
// STATES:
//
//	Idle  -- Start, registry has a drawable point --> Lit
//	Lit   -- Step, next drawable point            --> Lit
//	Lit   -- Step, end of sequence, wrap to first --> Lit
//	Lit   -- Step, nothing drawable               --> Idle
//	any   -- Stop                                 --> Idle
//
// Only generation-1 entries are drawable, so one cycle lights every distinct
// coordinate exactly once in insertion order.
//
// At most one step is pending at any time. A new step is scheduled only after
// the previous one has finished.
package animation
