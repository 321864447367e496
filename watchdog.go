package watchkeeper

import "context"

// watchdogName is the reserved registry name for the watchdog's own entry.
// The entry is excluded from staleness checks and from HeartbeatAll.
const watchdogName = "watchdog"

// Escalation is the remediation applied to a worker whose heartbeat has
// gone stale.
type Escalation int

const (
	// EscalateWorker stops only the stale worker. Collateral workers are
	// expendable; the session continues.
	EscalateWorker Escalation = iota
	// EscalateSession stops every worker and ends the watchdog loop: the
	// stale worker's failure means the whole supervised session has failed.
	EscalateSession
)

// EscalationPolicy decides, per worker name, how far a stale heartbeat
// escalates. StartWatchdog wires MainWorkerPolicy by default; override with
// WithEscalationPolicy for other tiers.
type EscalationPolicy func(name string) Escalation

// MainWorkerPolicy returns the default policy: the designated main worker
// escalates to the whole session, every other worker is stopped
// individually.
func MainWorkerPolicy(main string) EscalationPolicy {
	return func(name string) Escalation {
		if name == main {
			return EscalateSession
		}
		return EscalateWorker
	}
}

func (s *supervisor) StartWatchdog(main string) error {
	s.mu.Lock()
	if _, ok := s.workers[watchdogName]; ok {
		s.mu.Unlock()
		s.log.Warn("watchdog already running")
		return ErrWatchdogAlreadyRunning
	}
	rec := newWorkerRecord(watchdogName, nil)
	rec.beat(s.cfg.clock.Now())
	done, _ := rec.tryStart()
	s.workers[watchdogName] = rec
	s.mu.Unlock()

	policy := s.cfg.policy
	if policy == nil {
		policy = MainWorkerPolicy(main)
	}

	go s.watchdogLoop(rec, done, policy)
	s.log.Log(context.Background(), LevelSuccess, "watchdog started", "main", main)
	return nil
}

func (s *supervisor) StopWatchdog() {
	s.mu.RLock()
	rec, ok := s.workers[watchdogName]
	s.mu.RUnlock()
	if ok {
		rec.sig.Set()
	}
}

// watchdogLoop scans worker heartbeats once per poll interval and applies
// the escalation policy to stale ones. It exits when told to stop, when a
// session-level escalation fires, or when no workers remain to supervise.
// On exit it always removes its own registry entry.
func (s *supervisor) watchdogLoop(rec *workerRecord, done chan struct{}, policy EscalationPolicy) {
	log := s.log.With("worker", watchdogName)
	log.Debug("watchdog running")

	defer func() {
		s.mu.Lock()
		if cur, ok := s.workers[watchdogName]; ok && cur == rec {
			delete(s.workers, watchdogName)
		}
		s.mu.Unlock()
		rec.markStopped()
		close(done)
		log.Info("watchdog stopped and cleaned up")
	}()

	for !rec.sig.IsSet() {
		// Staleness must not be judged while the surrounding context cannot
		// produce heartbeats.
		if s.cfg.inTransition() {
			if rec.sig.Wait(s.cfg.transitionPause) {
				return
			}
			continue
		}

		stale := s.staleNames(s.cfg.clock.Now())

		sessionFailed := false
		for _, name := range stale {
			if policy(name) == EscalateSession {
				sessionFailed = true
				continue
			}
			log.Warn("worker heartbeat expired, stopping it", "target", name)
			s.cfg.metrics.RecordHeartbeatExpired(name)
			s.Stop(name, s.cfg.stopGrace)
		}

		if sessionFailed {
			log.Error("main worker heartbeat expired, stopping all workers", "stale", stale)
			for _, name := range stale {
				if policy(name) == EscalateSession {
					s.cfg.metrics.RecordHeartbeatExpired(name)
				}
			}
			s.stopAllExcept(watchdogName, s.cfg.stopGrace)
			return
		}

		if s.activeWorkerCount() == 0 {
			log.Log(context.Background(), LevelNotice, "no active workers left, stopping watchdog")
			return
		}

		if rec.sig.Wait(s.cfg.pollInterval) {
			return
		}
	}
}

// activeWorkerCount counts registered workers excluding the watchdog.
func (s *supervisor) activeWorkerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countWorkersLocked()
}
