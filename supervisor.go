package watchkeeper

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Supervisor manages a set of named workers: registration, start, heartbeat
// tracking, escalating stop (cooperative signal, bounded wait, abandon), and
// an optional watchdog enforcing heartbeat-timeout policy. All methods are
// safe for concurrent use.
type Supervisor interface {
	// Register creates a worker under the given name and immediately starts
	// it. Returns ErrWorkerAlreadyExists if the name is taken (the existing
	// worker is untouched) or ErrReservedName for the watchdog's name.
	Register(name string, body Body) error
	// Start runs the worker's body on a new goroutine. A no-op (logged as a
	// warning) if the worker is already running; returns ErrWorkerNotFound
	// for an unknown name. Register starts workers itself; Start is for
	// re-running a body that has returned without being removed.
	Start(name string) error
	// Heartbeat refreshes the last-heartbeat timestamp of one worker.
	// Unknown names are ignored.
	Heartbeat(name string)
	// HeartbeatAll refreshes every worker's heartbeat except the watchdog's.
	HeartbeatAll()
	// Stop sets the worker's stop signal, waits up to grace for the
	// goroutine to exit, abandons it if still running, and removes the
	// record unconditionally. grace <= 0 uses the configured default.
	// Unknown names are treated as already stopped.
	Stop(name string, grace time.Duration)
	// StopAll stops every registered worker sequentially, watchdog last.
	StopAll(grace time.Duration)
	// ShouldStop reports whether the named worker has been asked to stop.
	// True for unknown names: an unregistered or removed worker should stop.
	ShouldStop(name string) bool
	// StopSignal returns the named worker's stop signal, or an already-set
	// signal for unknown names.
	StopSignal(name string) *StopSignal
	// CheckTimeouts stops every worker (watchdog excluded) whose heartbeat
	// is older than the configured timeout. The watchdog calls this policy
	// continuously; CheckTimeouts exposes it for one-shot use.
	CheckTimeouts()
	// StartWatchdog registers the watchdog under its reserved name and
	// starts its scan loop. main designates the worker whose staleness ends
	// the whole session (see MainWorkerPolicy). Returns
	// ErrWatchdogAlreadyRunning if a loop is already active.
	StartWatchdog(main string) error
	// StopWatchdog asks the watchdog loop to exit. No-op when not running.
	StopWatchdog()
	// Names returns the sorted names of all registered workers, including
	// the watchdog's entry while it is active.
	Names() []string
	// Running reports whether a goroutine is currently live for the name.
	Running(name string) bool
}

type supervisor struct {
	cfg config
	log *slog.Logger

	mu      sync.RWMutex
	workers map[string]*workerRecord
}

// New creates a Supervisor. Optional options configure logging, clock,
// metrics, timeouts, and watchdog policy; unset options fall back to
// defaults (1s heartbeat timeout, 2s stop grace, 300ms watchdog poll).
func New(opts ...Option) Supervisor {
	cfg := applyOptions(opts...)
	return &supervisor{
		cfg:     cfg,
		log:     cfg.log,
		workers: make(map[string]*workerRecord),
	}
}

func (s *supervisor) Register(name string, body Body) error {
	if name == watchdogName {
		return s.errorHandler(fmt.Errorf("worker %s: %w", name, ErrReservedName))
	}

	s.mu.Lock()
	if _, ok := s.workers[name]; ok {
		s.mu.Unlock()
		s.log.Warn("worker already exists, registration ignored", "worker", name)
		return fmt.Errorf("worker %s: %w", name, ErrWorkerAlreadyExists)
	}
	rec := newWorkerRecord(name, body)
	s.workers[name] = rec
	active := s.countWorkersLocked()
	s.mu.Unlock()

	s.cfg.metrics.SetActiveWorkers(active)
	s.log.Info("worker registered", "worker", name)
	return s.Start(name)
}

func (s *supervisor) Start(name string) error {
	s.mu.RLock()
	rec, ok := s.workers[name]
	s.mu.RUnlock()

	if !ok {
		s.log.Warn("worker does not exist", "worker", name)
		return fmt.Errorf("worker %s: %w", name, ErrWorkerNotFound)
	}

	done, started := rec.tryStart()
	if !started {
		s.log.Warn("worker already running", "worker", name)
		return nil
	}

	rec.beat(s.cfg.clock.Now())
	s.cfg.metrics.RecordWorkerStarted(name)

	log := s.log.With("worker", name)
	go func() {
		defer close(done)
		defer rec.markStopped()

		log.Debug("worker running")
		out := s.invoke(rec)
		switch out.Status {
		case OutcomeFailed:
			log.Error("worker failed", "error", out.Err)
		case OutcomeCancelled:
			log.Info("worker exited on stop request")
		default:
			log.Debug("worker finished")
		}
		s.cfg.metrics.RecordWorkerOutcome(name, out.Status)
	}()

	log.Log(context.Background(), LevelSuccess, "worker started")
	return nil
}

// invoke runs the body with panic containment: a panicking body terminates
// only its own worker and surfaces as a Failed outcome.
func (s *supervisor) invoke(rec *workerRecord) (out Outcome) {
	defer func() {
		if v := recover(); v != nil {
			s.cfg.metrics.RecordPanic(rec.name)
			out = Failed(fmt.Errorf("worker %s: recovered panic: %w", rec.name, panicToError(v)))
		}
	}()
	life := &Lifeline{name: rec.name, sup: s, sig: rec.sig}
	return rec.body.Run(life)
}

func (s *supervisor) Heartbeat(name string) {
	s.mu.RLock()
	rec, ok := s.workers[name]
	s.mu.RUnlock()
	if ok {
		rec.beat(s.cfg.clock.Now())
	}
}

func (s *supervisor) HeartbeatAll() {
	now := s.cfg.clock.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, rec := range s.workers {
		if name == watchdogName {
			continue
		}
		rec.beat(now)
	}
}

func (s *supervisor) Stop(name string, grace time.Duration) {
	if grace <= 0 {
		grace = s.cfg.stopGrace
	}

	s.mu.RLock()
	rec, ok := s.workers[name]
	s.mu.RUnlock()

	if !ok {
		s.log.Debug("worker does not exist, nothing to stop", "worker", name)
		return
	}

	// Request cooperative exit. ShouldStop(name) is true from here on.
	rec.sig.Set()

	mode := "graceful"
	if done, running := rec.doneChan(); running && done != nil {
		s.log.Info("stop requested", "worker", name, "grace", grace)
		timer := time.NewTimer(grace)
		select {
		case <-done:
			timer.Stop()
		case <-timer.C:
			// The goroutine ignored its stop signal within the grace window.
			// Goroutines cannot be killed; abandoning the handle is the
			// best-effort fallback and is treated as success. The body may
			// leak until it next observes its signal.
			mode = "abandoned"
			s.log.Warn("grace period elapsed, abandoning worker goroutine", "worker", name)
		}
	}

	s.mu.Lock()
	if cur, ok := s.workers[name]; ok && cur == rec {
		delete(s.workers, name)
	}
	active := s.countWorkersLocked()
	s.mu.Unlock()

	s.cfg.metrics.RecordWorkerStopped(name, mode)
	s.cfg.metrics.SetActiveWorkers(active)
	s.log.Info("worker stopped and removed", "worker", name, "mode", mode)
}

func (s *supervisor) StopAll(grace time.Duration) {
	s.stopAllExcept("", grace)
}

// stopAllExcept stops every registered worker but skip, sequentially. The
// watchdog's own entry, when present and not skipped, is stopped last so it
// can keep supervising while the others wind down.
func (s *supervisor) stopAllExcept(skip string, grace time.Duration) {
	names := s.Names()
	if i := slices.Index(names, watchdogName); i >= 0 {
		names = append(slices.Delete(names, i, i+1), watchdogName)
	}
	for _, name := range names {
		if name == skip {
			continue
		}
		s.Stop(name, grace)
	}
}

func (s *supervisor) ShouldStop(name string) bool {
	s.mu.RLock()
	rec, ok := s.workers[name]
	s.mu.RUnlock()
	if !ok {
		return true
	}
	return rec.sig.IsSet()
}

func (s *supervisor) StopSignal(name string) *StopSignal {
	s.mu.RLock()
	rec, ok := s.workers[name]
	s.mu.RUnlock()
	if !ok {
		return newSetSignal()
	}
	return rec.sig
}

func (s *supervisor) CheckTimeouts() {
	for _, name := range s.staleNames(s.cfg.clock.Now()) {
		s.log.Warn("worker heartbeat expired, force stopping", "worker", name)
		s.cfg.metrics.RecordHeartbeatExpired(name)
		s.Stop(name, s.cfg.stopGrace)
	}
}

// staleNames returns the workers (watchdog excluded) whose heartbeat is
// older than the configured timeout at instant now.
func (s *supervisor) staleNames(now time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stale []string
	for name, rec := range s.workers {
		if name == watchdogName {
			continue
		}
		if now.Sub(rec.lastHeartbeat()) > s.cfg.heartbeatTimeout {
			stale = append(stale, name)
		}
	}
	slices.Sort(stale)
	return stale
}

func (s *supervisor) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.workers))
	for name := range s.workers {
		names = append(names, name)
	}
	s.mu.RUnlock()
	slices.Sort(names)
	return names
}

func (s *supervisor) Running(name string) bool {
	s.mu.RLock()
	rec, ok := s.workers[name]
	s.mu.RUnlock()
	return ok && rec.isRunning()
}

// countWorkersLocked counts registered workers excluding the watchdog.
// Caller holds s.mu.
func (s *supervisor) countWorkersLocked() int {
	n := len(s.workers)
	if _, ok := s.workers[watchdogName]; ok {
		n--
	}
	return n
}

// errorHandler logs the error with the supervisor's logger and returns the
// same error. If err is nil, it returns nil without logging.
func (s *supervisor) errorHandler(err error) error {
	if err != nil {
		s.log.Error("supervisor error", "error", err)
	}
	return err
}
