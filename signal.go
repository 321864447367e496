package watchkeeper

import (
	"sync"
	"time"
)

// StopSignal is a single-transition cancellation latch. It starts clear;
// Set moves it to the set state exactly once (further Set calls are no-ops).
// One writer (the supervisor) sets it, any number of readers (the worker
// body) observe it without additional locking via the closed channel.
type StopSignal struct {
	once sync.Once
	done chan struct{}
}

// NewStopSignal returns a clear StopSignal.
func NewStopSignal() *StopSignal {
	return &StopSignal{done: make(chan struct{})}
}

// newSetSignal returns an already-set signal. Used as the fail-safe answer
// for lookups of unknown worker names: a worker that is not registered
// should stop.
func newSetSignal() *StopSignal {
	s := NewStopSignal()
	s.Set()
	return s
}

// Set requests a stop. Idempotent: setting an already-set signal is a no-op.
func (s *StopSignal) Set() {
	s.once.Do(func() { close(s.done) })
}

// IsSet reports whether a stop has been requested.
func (s *StopSignal) IsSet() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once a stop has been requested.
// Use it in select statements alongside other work.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the signal is set or d elapses, whichever comes first,
// and reports whether the signal is set. Worker bodies use it as their idle
// sleep so that a stop request wakes them immediately.
func (s *StopSignal) Wait(d time.Duration) bool {
	if d <= 0 {
		return s.IsSet()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.done:
		return true
	case <-timer.C:
		return false
	}
}
