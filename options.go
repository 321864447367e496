package watchkeeper

import (
	"log/slog"
	"time"
)

const (
	// defaultHeartbeatTimeout is how long a heartbeat may go unrefreshed
	// before the worker is considered stale.
	defaultHeartbeatTimeout = time.Second
	// defaultStopGrace is how long Stop waits for a cooperative exit before
	// abandoning the worker goroutine.
	defaultStopGrace = 2 * time.Second
	// defaultPollInterval is the pause between watchdog scan cycles.
	defaultPollInterval = 300 * time.Millisecond
	// defaultTransitionPause is the longer pause taken when the transition
	// probe reports the surrounding context as unstable.
	defaultTransitionPause = 3 * time.Second
)

// config holds the supervisor's settings. It is populated via Option values
// passed to New; zero value fields fall back to defaults in applyOptions.
type config struct {
	log              *slog.Logger
	clock            Clock
	metrics          MetricsCollector
	heartbeatTimeout time.Duration
	stopGrace        time.Duration
	pollInterval     time.Duration
	transitionPause  time.Duration
	inTransition     func() bool
	policy           EscalationPolicy
}

// Option configures a Supervisor at creation time.
type Option func(*config)

// WithLogger sets the logger used by the supervisor and its workers. Each
// worker logs through a child logger with "worker" set to the worker name.
// If logger is nil, the default JSON logger (writing to os.Stdout) is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithClock sets the time source used for heartbeats and staleness checks.
// Use 0-argument New for the system clock; tests inject a fake.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMetrics sets the metrics collector notified of lifecycle events.
// Defaults to a collector that discards everything.
func WithMetrics(m MetricsCollector) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithHeartbeatTimeout sets how long a worker's heartbeat may go
// unrefreshed before the watchdog (or CheckTimeouts) considers it stale.
// The timeout must exceed the body's normal heartbeat interval by a safety
// margin; staleness detection is eventually consistent. Use 0 for the
// default (1 second).
func WithHeartbeatTimeout(d time.Duration) Option {
	return func(c *config) { c.heartbeatTimeout = d }
}

// WithStopGrace sets the default grace period used when Stop is called with
// a non-positive grace, and by the watchdog's own stops. Use 0 for the
// default (2 seconds).
func WithStopGrace(d time.Duration) Option {
	return func(c *config) { c.stopGrace = d }
}

// WithPollInterval sets the pause between watchdog scan cycles. Use 0 for
// the default (300ms).
func WithPollInterval(d time.Duration) Option {
	return func(c *config) { c.pollInterval = d }
}

// WithTransitionPause sets the longer pause the watchdog takes when the
// transition probe reports an unstable context. Use 0 for the default (3s).
func WithTransitionPause(d time.Duration) Option {
	return func(c *config) { c.transitionPause = d }
}

// WithTransitionProbe sets the predicate the watchdog consults once per
// cycle. While probe returns true the surrounding context is considered
// transitional (e.g. a session reload) and staleness is not judged: workers
// cannot produce heartbeats during such windows, so expiring them would be
// a false positive. Defaults to a probe that always reports stable.
func WithTransitionProbe(probe func() bool) Option {
	return func(c *config) {
		if probe != nil {
			c.inTransition = probe
		}
	}
}

// WithEscalationPolicy overrides the escalation decision applied to stale
// workers. When unset, StartWatchdog wires MainWorkerPolicy around its main
// worker name.
func WithEscalationPolicy(p EscalationPolicy) Option {
	return func(c *config) { c.policy = p }
}

// applyOptions applies the given options and returns a config with defaults
// filled in, so downstream code can use the fields directly.
func applyOptions(opts ...Option) config {
	c := config{
		log:              defaultLogger,
		clock:            systemClock{},
		metrics:          NopMetrics{},
		heartbeatTimeout: defaultHeartbeatTimeout,
		stopGrace:        defaultStopGrace,
		pollInterval:     defaultPollInterval,
		transitionPause:  defaultTransitionPause,
		inTransition:     func() bool { return false },
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.heartbeatTimeout <= 0 {
		c.heartbeatTimeout = defaultHeartbeatTimeout
	}
	if c.stopGrace <= 0 {
		c.stopGrace = defaultStopGrace
	}
	if c.pollInterval <= 0 {
		c.pollInterval = defaultPollInterval
	}
	if c.transitionPause <= 0 {
		c.transitionPause = defaultTransitionPause
	}
	return c
}
