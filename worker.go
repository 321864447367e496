package watchkeeper

import (
	"fmt"
	"sync"
	"time"
)

// workerRecord tracks one named worker: its body, its stop signal, its
// last-heartbeat timestamp, and whether a goroutine is currently running it.
// The supervisor holds records in its map; the record's own mutex guards the
// per-worker state so heartbeat traffic never contends with the registry
// lock. The supervisor creates records and is the only writer of the map;
// the worker type is not exposed.
type workerRecord struct {
	name string
	body Body
	sig  *StopSignal

	mu       sync.Mutex
	lastBeat time.Time
	running  bool
	done     chan struct{}
}

func newWorkerRecord(name string, body Body) *workerRecord {
	return &workerRecord{
		name: name,
		body: body,
		sig:  NewStopSignal(),
	}
}

// tryStart marks the record running and returns a fresh done channel, or
// (nil, false) if a goroutine is already live under this name. At most one
// live goroutine per record at any time.
func (r *workerRecord) tryStart() (chan struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil, false
	}
	r.running = true
	r.done = make(chan struct{})
	return r.done, true
}

// markStopped clears the running flag. The caller closes the done channel
// afterward, from the worker goroutine itself.
func (r *workerRecord) markStopped() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *workerRecord) isRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// doneChan returns the current done channel (nil if never started) and
// whether a goroutine is live.
func (r *workerRecord) doneChan() (chan struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done, r.running
}

func (r *workerRecord) beat(t time.Time) {
	r.mu.Lock()
	r.lastBeat = t
	r.mu.Unlock()
}

func (r *workerRecord) lastHeartbeat() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastBeat
}

// panicToError converts a recovered panic value to an error for logging.
func panicToError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
