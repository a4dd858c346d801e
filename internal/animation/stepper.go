package animation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roach88/cts/internal/points"
)

// Cursor is the registry cursor owned by the animation.
const Cursor = "animation"

// DefaultInterval is the delay between two steps.
const DefaultInterval = 150 * time.Millisecond

// ErrNothingToAnimate is returned by Run when the registry holds no point.
var ErrNothingToAnimate = errors.New("nothing to animate")

// Timer is a pending scheduled callback.
type Timer = interface{ Stop() bool }

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules with time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State is the state of a Stepper.
type State int

const (
	// Idle means no point is lit and nothing is scheduled.
	Idle State = iota
	// Lit means one point is marked and the next step is pending.
	Lit
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Lit:
		return "lit"
	default:
		return "unknown"
	}
}

// Option configures a Stepper.
type Option func(*Stepper)

// WithInterval sets the delay between steps.
func WithInterval(d time.Duration) Option {
	return func(s *Stepper) {
		s.interval = d
	}
}

// WithScheduler replaces the timer source (tests use a manual scheduler).
func WithScheduler(sched Scheduler) Option {
	return func(s *Stepper) {
		s.scheduler = sched
	}
}

// Stepper animates a running point over a registry.
//
// Start, Step and Stop may be called from any goroutine. The render function
// is called while the Stepper holds its lock and must not call back into it.
// The registry must not be mutated by others while the animation runs.
type Stepper struct {
	mu        sync.Mutex
	setup     Setup
	reg       *points.Registry
	render    func()
	interval  time.Duration
	scheduler Scheduler

	state State
	timer Timer
	epoch uint64
	steps int
}

// New creates a Stepper for the given setup string. All marks of the
// registry are cleared.
func New(setup string, reg *points.Registry, render func(), opts ...Option) (*Stepper, error) {
	parsed, err := ParseSetup(setup)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, errors.New("animation: nil registry")
	}
	if render == nil {
		render = func() {}
	}

	s := &Stepper{
		setup:     parsed,
		reg:       reg,
		render:    render,
		interval:  DefaultInterval,
		scheduler: RealScheduler{},
	}
	for _, opt := range opts {
		opt(s)
	}

	reg.UnmarkAll()
	return s, nil
}

// Setup returns the parsed setup.
func (s *Stepper) Setup() Setup {
	return s.setup
}

// State returns the current state.
func (s *Stepper) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Steps returns how many points have been lit so far.
func (s *Stepper) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// Start lights the first point. It reports whether the animation is running.
// Calling Start while already running does nothing.
func (s *Stepper) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Lit {
		return true
	}

	e, ok := s.firstDrawable()
	if !ok {
		return false
	}
	s.light(e)
	return true
}

// Step moves the light to the next point, wrapping around at the end.
// It reports whether the animation is still running.
func (s *Stepper) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step()
}

func (s *Stepper) step() bool {
	if s.state != Lit {
		return false
	}

	if cur, ok := s.reg.Current(Cursor); ok {
		s.reg.Unmark(cur.X, cur.Y)
	}

	e, ok := s.nextDrawable()
	if !ok {
		e, ok = s.firstDrawable()
	}
	if !ok {
		s.state = Idle
		s.timer = nil
		return false
	}

	s.light(e)
	return true
}

// Stop cancels the pending step. Marks are left as they are.
func (s *Stepper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = Idle
	s.epoch++
}

// Run starts the animation and blocks until ctx is done.
func (s *Stepper) Run(ctx context.Context) error {
	if !s.Start() {
		return ErrNothingToAnimate
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// light marks e, renders and schedules the next step. Caller holds s.mu.
func (s *Stepper) light(e points.Entry) {
	s.reg.SetMark(e.X, e.Y, s.setup.Highlight)
	s.state = Lit
	s.steps++
	s.render()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.epoch++
	epoch := s.epoch
	s.timer = s.scheduler.AfterFunc(s.interval, func() {
		s.tick(epoch)
	})
}

// tick runs a scheduled step unless it was superseded or stopped meanwhile.
func (s *Stepper) tick(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.timer = nil
	s.step()
}

func (s *Stepper) firstDrawable() (points.Entry, bool) {
	e, ok := s.reg.First(Cursor)
	for ok && e.Generation != 1 {
		e, ok = s.reg.Next(Cursor)
	}
	return e, ok
}

func (s *Stepper) nextDrawable() (points.Entry, bool) {
	e, ok := s.reg.Next(Cursor)
	for ok && e.Generation != 1 {
		e, ok = s.reg.Next(Cursor)
	}
	return e, ok
}
