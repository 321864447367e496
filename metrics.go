package watchkeeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector receives worker lifecycle events from the supervisor.
// Implementations must be safe for concurrent use. The default is
// NopMetrics; wire a collector with WithMetrics.
type MetricsCollector interface {
	// RecordWorkerStarted is called when a worker goroutine is spawned.
	RecordWorkerStarted(name string)
	// RecordWorkerOutcome is called when a worker's body returns, with the
	// outcome status (ok, cancelled, failed).
	RecordWorkerOutcome(name string, status OutcomeStatus)
	// RecordWorkerStopped is called when Stop removes a worker. mode is
	// "graceful" when the goroutine exited within the grace period and
	// "abandoned" when it did not.
	RecordWorkerStopped(name string, mode string)
	// RecordPanic is called when a panic is recovered in a worker body.
	RecordPanic(name string)
	// RecordHeartbeatExpired is called when the watchdog or CheckTimeouts
	// finds a stale heartbeat.
	RecordHeartbeatExpired(name string)
	// SetActiveWorkers is called with the current number of registered
	// workers (watchdog excluded) after every register/remove.
	SetActiveWorkers(n int)
}

// NopMetrics discards all metrics. Useful for testing or when external
// collection is not wanted.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ MetricsCollector = NopMetrics{}

func (NopMetrics) RecordWorkerStarted(string)                {}
func (NopMetrics) RecordWorkerOutcome(string, OutcomeStatus) {}
func (NopMetrics) RecordWorkerStopped(string, string)        {}
func (NopMetrics) RecordPanic(string)                        {}
func (NopMetrics) RecordHeartbeatExpired(string)             {}
func (NopMetrics) SetActiveWorkers(int)                      {}

// PrometheusCollector implements MetricsCollector backed by Prometheus.
// Collectors are registered lazily on first use so constructing one is
// side-effect free.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	started  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	stopped  *prometheus.CounterVec
	panics   *prometheus.CounterVec
	expired  *prometheus.CounterVec
	active   prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed metrics collector. reg defaults
// to prometheus.DefaultRegisterer when nil; namespace defaults to
// "watchkeeper" when empty.
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "watchkeeper"
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.started = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "workers_started_total",
			Help:      "Total worker goroutine starts by worker name.",
		}, []string{"worker"})
		p.outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "worker_outcomes_total",
			Help:      "Total worker body outcomes by worker name and status (ok, cancelled, failed).",
		}, []string{"worker", "status"})
		p.stopped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "workers_stopped_total",
			Help:      "Total worker removals by worker name and mode (graceful, abandoned).",
		}, []string{"worker", "mode"})
		p.panics = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "worker_panics_total",
			Help:      "Total panics recovered in worker bodies by worker name.",
		}, []string{"worker"})
		p.expired = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "watchdog",
			Name:      "heartbeat_expirations_total",
			Help:      "Total heartbeat expirations detected by worker name.",
		}, []string{"worker"})
		p.active = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "workers_active",
			Help:      "Current number of registered workers, watchdog excluded.",
		})

		p.reg.MustRegister(p.started, p.outcomes, p.stopped, p.panics, p.expired, p.active)
	})
}

func (p *PrometheusCollector) RecordWorkerStarted(name string) {
	p.ensureRegistered()
	p.started.WithLabelValues(name).Inc()
}

func (p *PrometheusCollector) RecordWorkerOutcome(name string, status OutcomeStatus) {
	p.ensureRegistered()
	p.outcomes.WithLabelValues(name, string(status)).Inc()
}

func (p *PrometheusCollector) RecordWorkerStopped(name string, mode string) {
	p.ensureRegistered()
	p.stopped.WithLabelValues(name, mode).Inc()
}

func (p *PrometheusCollector) RecordPanic(name string) {
	p.ensureRegistered()
	p.panics.WithLabelValues(name).Inc()
}

func (p *PrometheusCollector) RecordHeartbeatExpired(name string) {
	p.ensureRegistered()
	p.expired.WithLabelValues(name).Inc()
}

func (p *PrometheusCollector) SetActiveWorkers(n int) {
	p.ensureRegistered()
	p.active.Set(float64(n))
}
