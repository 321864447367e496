package watchkeeper

import "time"

// CircuitState is the circuit breaker's position in its three-state cycle.
type CircuitState string

const (
	// CircuitClosed permits calls. Initial state.
	CircuitClosed CircuitState = "closed"
	// CircuitOpen denies calls until the recovery timeout has elapsed since
	// the last failure.
	CircuitOpen CircuitState = "open"
	// CircuitHalfOpen permits a trial call after the recovery timeout. A
	// success closes the circuit; a failure reopens it.
	CircuitHalfOpen CircuitState = "half-open"
)

// CircuitBreaker isolates a single fallible operation: after
// failureThreshold consecutive recorded failures it opens and denies calls,
// then probes recovery after recoveryTimeout. There is no terminal state;
// it cycles indefinitely.
//
// The typical protocol is Allow before the call and
// RecordSuccess/RecordFailure after it (or use Guard, which implements the
// protocol). A CircuitBreaker is not safe for concurrent use; callers
// sharing one across goroutines must supply their own synchronization.
type CircuitBreaker struct {
	failureThreshold int
	recoveryTimeout  time.Duration
	onOpen           func()
	onClose          func()
	clock            Clock

	failures    int
	lastFailure time.Time
	state       CircuitState
}

// BreakerOption configures a CircuitBreaker at construction time.
type BreakerOption func(*CircuitBreaker)

// WithOnOpen sets a callback fired when the circuit transitions to open.
func WithOnOpen(fn func()) BreakerOption {
	return func(cb *CircuitBreaker) { cb.onOpen = fn }
}

// WithOnClose sets a callback fired when the circuit transitions from
// half-open back to closed. Reset does not fire it.
func WithOnClose(fn func()) BreakerOption {
	return func(cb *CircuitBreaker) { cb.onClose = fn }
}

// WithBreakerClock sets the time source used for the recovery window.
func WithBreakerClock(clock Clock) BreakerOption {
	return func(cb *CircuitBreaker) {
		if clock != nil {
			cb.clock = clock
		}
	}
}

// NewCircuitBreaker creates a closed CircuitBreaker that opens after
// failureThreshold recorded failures and probes recovery recoveryTimeout
// after the last failure. A threshold below 1 falls back to 1.
func NewCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration, opts ...BreakerOption) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	cb := &CircuitBreaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		clock:            systemClock{},
		state:            CircuitClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Allow reports whether a call is currently permitted. When the circuit is
// open and the recovery timeout has elapsed since the last failure, Allow
// transitions to half-open and returns true, permitting exactly the next
// trial call.
func (cb *CircuitBreaker) Allow() bool {
	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if cb.clock.Now().Sub(cb.lastFailure) >= cb.recoveryTimeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess records a successful call. In half-open it closes the
// circuit and resets the failure counter; otherwise it is a no-op.
func (cb *CircuitBreaker) RecordSuccess() {
	if cb.state != CircuitHalfOpen {
		return
	}
	cb.state = CircuitClosed
	cb.failures = 0
	if cb.onClose != nil {
		cb.onClose()
	}
}

// RecordFailure records a failed call: it increments the failure counter and
// stamps the failure time. Reaching the threshold opens the circuit (a
// failure in half-open reopens it, since the counter is already at or above
// the threshold) and fires the open callback.
func (cb *CircuitBreaker) RecordFailure() {
	cb.failures++
	cb.lastFailure = cb.clock.Now()
	if cb.failures >= cb.failureThreshold {
		cb.state = CircuitOpen
		if cb.onOpen != nil {
			cb.onOpen()
		}
	}
}

// Reset force-closes the circuit with zero failures, bypassing the
// transition callbacks.
func (cb *CircuitBreaker) Reset() {
	cb.failures = 0
	cb.state = CircuitClosed
}

// State returns the current circuit state. Note that an elapsed recovery
// timeout is only observed by Allow, so State can report open after the
// window has passed.
func (cb *CircuitBreaker) State() CircuitState {
	return cb.state
}

// Failures returns the current failure counter.
func (cb *CircuitBreaker) Failures() int {
	return cb.failures
}

// Guard runs op under cb's check/record protocol: when the breaker denies
// the call it returns ErrCircuitOpen without invoking op (the caller must
// fail fast with its own fallback); otherwise the outcome of op is recorded
// and returned.
func Guard[T any](cb *CircuitBreaker, op func() (T, error)) (T, error) {
	var zero T
	if !cb.Allow() {
		return zero, ErrCircuitOpen
	}
	v, err := op()
	if err != nil {
		cb.RecordFailure()
		return zero, err
	}
	cb.RecordSuccess()
	return v, nil
}
