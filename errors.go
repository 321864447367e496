package watchkeeper

import "errors"

// Sentinel errors for supervisor and circuit breaker operations. Use
// errors.Is to check the error type:
//
//	err := sup.Register("worker", body)
//	if errors.Is(err, ErrWorkerAlreadyExists) { ... }
//
//	_, err := watchkeeper.Guard(cb, op)
//	if errors.Is(err, ErrCircuitOpen) { ... }
var (
	// ErrWorkerAlreadyExists is returned when Register is called with a name
	// that is already registered. The existing worker is left untouched.
	ErrWorkerAlreadyExists = errors.New("worker already exists")

	// ErrWorkerNotFound is returned when Start refers to a worker name that
	// is not registered. Stop/ShouldStop/StopSignal do not return it: an
	// unknown name is treated fail-safe as "already stopped".
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrReservedName is returned when Register is called with the name
	// reserved for the watchdog's own registry entry.
	ErrReservedName = errors.New("worker name is reserved")

	// ErrWatchdogAlreadyRunning is returned when StartWatchdog is called
	// while a watchdog loop is already active.
	ErrWatchdogAlreadyRunning = errors.New("watchdog already running")

	// ErrCircuitOpen is returned by Guard when the circuit breaker denies
	// the call. The caller must fail fast with its own fallback rather than
	// attempting the guarded operation.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrRetriesExhausted wraps the last error after Retry has used every
	// attempt. The underlying operation error is available via errors.Is
	// and errors.Unwrap.
	ErrRetriesExhausted = errors.New("retries exhausted")
)
