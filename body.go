package watchkeeper

import "time"

// OutcomeStatus is the result of a Body run. It tells the supervisor whether
// the body finished its work, exited in response to a stop request, or
// failed.
type OutcomeStatus string

const (
	// OutcomeOK means the body ran to completion.
	OutcomeOK OutcomeStatus = "ok"
	// OutcomeCancelled means the body exited because a stop was requested.
	// This is a clean exit, logged at info level, never as an error.
	OutcomeCancelled OutcomeStatus = "cancelled"
	// OutcomeFailed means the body encountered an error. Err is set for
	// logging; the failure terminates only this worker, never the process.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is returned by Body.Run. Status distinguishes a deliberate
// stop-requested exit from an unexpected failure; Err carries the failure
// cause when Status is OutcomeFailed.
type Outcome struct {
	// Status indicates how the run ended.
	Status OutcomeStatus
	// Err is set when Status is OutcomeFailed. Optional otherwise.
	Err error
}

// OK returns an Outcome for a body that ran to completion.
func OK() Outcome {
	return Outcome{Status: OutcomeOK}
}

// Cancelled returns an Outcome for a body that exited because its stop
// signal was set.
func Cancelled() Outcome {
	return Outcome{Status: OutcomeCancelled}
}

// Failed returns an Outcome for a body that failed with err.
func Failed(err error) Outcome {
	return Outcome{Status: OutcomeFailed, Err: err}
}

// Body is the interface for the work run by a supervised worker. Run is
// invoked once per Start on a dedicated goroutine; long-running bodies are
// expected to loop internally, calling life.Heartbeat to prove liveness and
// observing life.StopRequested (or blocking on life.Wait) to exit
// cooperatively. Arguments are bound by closing over them.
type Body interface {
	Run(life *Lifeline) Outcome
}

// BodyFunc adapts a plain function to the Body interface.
type BodyFunc func(life *Lifeline) Outcome

// Run calls f.
func (f BodyFunc) Run(life *Lifeline) Outcome { return f(life) }

// Lifeline is the worker body's link back to its supervisor: heartbeat
// refresh and cooperative stop observation. It references the worker's
// StopSignal but does not own it.
type Lifeline struct {
	name string
	sup  *supervisor
	sig  *StopSignal
}

// Name returns the worker's registered name.
func (l *Lifeline) Name() string { return l.name }

// Heartbeat refreshes the worker's last-heartbeat timestamp, proving
// liveness to the watchdog without returning from Run.
func (l *Lifeline) Heartbeat() { l.sup.Heartbeat(l.name) }

// StopRequested reports whether the supervisor has asked this worker to
// stop. Bodies should poll it at fine-grained checkpoints.
func (l *Lifeline) StopRequested() bool { return l.sig.IsSet() }

// Stopping returns a channel closed once a stop has been requested, for
// select-based bodies.
func (l *Lifeline) Stopping() <-chan struct{} { return l.sig.Done() }

// Wait blocks until a stop is requested or d elapses, and reports whether a
// stop was requested. Use it as the body's idle sleep.
func (l *Lifeline) Wait(d time.Duration) bool { return l.sig.Wait(d) }
