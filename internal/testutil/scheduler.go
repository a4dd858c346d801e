package testutil

import (
	"sync"
	"time"
)

// ManualScheduler is a deterministic stand-in for time.AfterFunc.
//
// Callbacks are never run by a timer. A test fires the pending callback
// explicitly with Fire, which makes animation steps reproducible without
// sleeping.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*ManualTimer
	delays  []time.Duration
}

// ManualTimer is the handle returned by ManualScheduler.AfterFunc.
type ManualTimer struct {
	s       *ManualScheduler
	f       func()
	stopped bool
}

// NewManualScheduler creates a scheduler with nothing pending.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc records f as pending. The delay is remembered for assertions.
// The returned value is a *ManualTimer.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) interface{ Stop() bool } {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &ManualTimer{s: s, f: f}
	s.pending = append(s.pending, t)
	s.delays = append(s.delays, d)
	return t
}

// Stop cancels the timer. Reports whether the callback was still pending.
func (t *ManualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, p := range t.s.pending {
		if p == t {
			t.s.pending = append(t.s.pending[:i], t.s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns the number of callbacks waiting to be fired.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Delays returns every delay passed to AfterFunc, in call order.
func (s *ManualScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.delays))
	copy(out, s.delays)
	return out
}

// Fire runs the oldest pending callback and reports whether there was one.
//
// The callback is removed before it runs, so it may schedule a successor.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return false
	}
	t := s.pending[0]
	s.pending = s.pending[1:]
	t.stopped = true
	s.mu.Unlock()

	t.f()
	return true
}

// FireN calls Fire up to n times and returns how many callbacks ran.
func (s *ManualScheduler) FireN(n int) int {
	fired := 0
	for i := 0; i < n && s.Fire(); i++ {
		fired++
	}
	return fired
}
