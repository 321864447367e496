// Package watchkeeper provides supervision for named concurrent workers:
// cooperative cancellation, heartbeat-based liveness tracking, a watchdog
// that enforces heartbeat-timeout policy, and standalone resilience
// primitives (bounded retry with backoff, circuit breaker) for hardening
// calls to unreliable operations.
//
// # Overview
//
// The package exposes:
//   - Supervisor: register worker bodies by name, start/stop them
//     individually or all at once, refresh heartbeats, query cooperative
//     stop state, and run a watchdog over the whole set.
//   - Body: interface with Run(*Lifeline) returning an Outcome
//     (OK/Cancelled/Failed). BodyFunc adapts plain functions.
//   - StopSignal: a single-transition cancellation latch with a blocking
//     Wait, shared between the supervisor and the worker body.
//   - Retry / RetryWithFallback / SafeExecute: bounded retry with
//     exponential backoff, plus log-and-fallback variants.
//   - CircuitBreaker: closed/open/half-open failure isolation around a
//     single fallible call, with the Guard helper.
//
// # Usage
//
// Create a supervisor, register bodies (registration starts the worker),
// then stop by name or all at once:
//
//	sup := watchkeeper.New(watchkeeper.WithHeartbeatTimeout(5 * time.Second))
//	err := sup.Register("poller", watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
//		for !life.StopRequested() {
//			poll()
//			life.Heartbeat()
//			if life.Wait(time.Second) {
//				return watchkeeper.Cancelled()
//			}
//		}
//		return watchkeeper.OK()
//	}))
//	if err != nil { ... }
//	sup.StartWatchdog("poller")
//	// ... later ...
//	sup.StopWatchdog()
//	sup.StopAll(2 * time.Second)
//
// Bodies prove liveness by calling Heartbeat; the watchdog stops any worker
// whose heartbeat goes stale. A stale worker other than the designated main
// worker is stopped individually; a stale main worker stops the whole set
// (configurable via WithEscalationPolicy). Stop first requests cooperative
// exit through the StopSignal, waits up to a grace period, and then abandons
// the goroutine: abandonment is a best-effort, leak-tolerant fallback, never
// a guaranteed kill.
package watchkeeper
