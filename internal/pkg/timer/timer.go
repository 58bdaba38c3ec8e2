// Package timer provides a cancellable one-shot timer abstraction.
//
// Offer expiry is driven by timers whose lifetime is tied to the offer:
// resolving an offer cancels its timer, and a timer that loses the race with
// a concurrent resolution fires into an idempotent handler. The Scheduler
// interface exists so tests can substitute a manual implementation and fire
// timers deterministically.
package timer

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled one-shot callback.
type Timer interface {
	// Cancel prevents the callback from firing. It is safe to call Cancel
	// multiple times and after the callback has already fired.
	// Returns true if the callback was prevented from running.
	Cancel() bool
}

// Scheduler schedules one-shot callbacks after a delay.
type Scheduler interface {
	// AfterFunc runs fn in its own goroutine after d has elapsed, unless the
	// returned Timer is cancelled first.
	AfterFunc(d time.Duration, fn func()) Timer
}

// WallClockScheduler schedules callbacks on the process wall clock.
type WallClockScheduler struct{}

// NewWallClockScheduler creates a Scheduler backed by time.AfterFunc.
func NewWallClockScheduler() WallClockScheduler {
	return WallClockScheduler{}
}

// AfterFunc implements Scheduler.
func (WallClockScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return &wallClockTimer{timer: time.AfterFunc(d, fn)}
}

type wallClockTimer struct {
	timer *time.Timer
}

func (t *wallClockTimer) Cancel() bool {
	return t.timer.Stop()
}

// ManualScheduler is a Scheduler for tests. Timers never fire on their own;
// call Fire to run all pending callbacks synchronously.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler. The delay is recorded but not waited on.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &manualTimer{fn: fn, delay: d}
	s.pending = append(s.pending, t)
	return t
}

// Fire runs every pending callback that has not been cancelled and returns
// the number of callbacks that ran.
func (s *ManualScheduler) Fire() int {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	fired := 0
	for _, t := range pending {
		if t.fire() {
			fired++
		}
	}
	return fired
}

// Pending returns the number of scheduled, uncancelled callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.pending {
		if !t.cancelled() {
			n++
		}
	}
	return n
}

type manualTimer struct {
	mu        sync.Mutex
	fn        func()
	delay     time.Duration
	stopped   bool
	completed bool
}

func (t *manualTimer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.completed {
		return false
	}
	t.stopped = true
	return true
}

func (t *manualTimer) cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *manualTimer) fire() bool {
	t.mu.Lock()
	if t.stopped || t.completed {
		t.mu.Unlock()
		return false
	}
	t.completed = true
	fn := t.fn
	t.mu.Unlock()

	fn()
	return true
}
