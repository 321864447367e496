package watchkeeper

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a local manual clock; the internal test cannot import the
// internal package (which would create an import cycle).
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// sleepBody waits for its stop signal; used where the body's behavior is irrelevant.
func sleepBody() Body {
	return BodyFunc(func(life *Lifeline) Outcome {
		<-life.Stopping()
		return Cancelled()
	})
}

func newInternalSupervisor(clock Clock) *supervisor {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(WithLogger(discard), WithClock(clock), WithHeartbeatTimeout(time.Second)).(*supervisor)
}

func TestStaleNames_WhenHeartbeatOlderThanTimeout_ShouldReportWorker(t *testing.T) {
	t.Parallel()
	// Arrange
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newInternalSupervisor(clock)
	require.NoError(t, s.Register("fresh", sleepBody()))
	require.NoError(t, s.Register("old", sleepBody()))

	// Act: advance past the timeout, then refresh only "fresh".
	clock.now = clock.now.Add(2 * time.Second)
	s.Heartbeat("fresh")
	stale := s.staleNames(clock.now)

	// Assert
	require.Equal(t, []string{"old"}, stale)
	s.StopAll(time.Second)
}

func TestStaleNames_ShouldExcludeWatchdogEntry(t *testing.T) {
	t.Parallel()
	// Arrange
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newInternalSupervisor(clock)
	s.mu.Lock()
	s.workers[watchdogName] = newWorkerRecord(watchdogName, nil)
	s.mu.Unlock()

	// Act
	clock.now = clock.now.Add(time.Hour)
	stale := s.staleNames(clock.now)

	// Assert
	require.Empty(t, stale)
}

func TestHeartbeatAll_ShouldSkipWatchdogEntry(t *testing.T) {
	t.Parallel()
	// Arrange
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newInternalSupervisor(clock)
	require.NoError(t, s.Register("w1", sleepBody()))
	wd := newWorkerRecord(watchdogName, nil)
	wd.beat(clock.now)
	s.mu.Lock()
	s.workers[watchdogName] = wd
	s.mu.Unlock()

	// Act
	clock.now = clock.now.Add(time.Minute)
	s.HeartbeatAll()

	// Assert
	s.mu.RLock()
	w1 := s.workers["w1"]
	s.mu.RUnlock()
	require.Equal(t, clock.now, w1.lastHeartbeat())
	require.Equal(t, time.Unix(1000, 0), wd.lastHeartbeat())
	s.Stop("w1", time.Second)
}

func TestCountWorkers_ShouldExcludeWatchdog(t *testing.T) {
	t.Parallel()
	// Arrange
	s := newInternalSupervisor(systemClock{})
	require.NoError(t, s.Register("w1", sleepBody()))
	s.mu.Lock()
	s.workers[watchdogName] = newWorkerRecord(watchdogName, nil)
	n := s.countWorkersLocked()
	s.mu.Unlock()

	// Act
	// Assert
	require.Equal(t, 1, n)
	s.Stop("w1", time.Second)
}

func TestTryStart_WhenAlreadyRunning_ShouldRefuseSecondGoroutine(t *testing.T) {
	t.Parallel()
	// Arrange
	rec := newWorkerRecord("w", sleepBody())

	// Act
	done1, ok1 := rec.tryStart()
	done2, ok2 := rec.tryStart()

	// Assert
	require.True(t, ok1)
	require.NotNil(t, done1)
	require.False(t, ok2)
	require.Nil(t, done2)
}

func TestPanicToError_WhenValueIsError_ShouldReturnIt(t *testing.T) {
	t.Parallel()
	// Arrange
	cause := io.ErrUnexpectedEOF

	// Act
	err := panicToError(cause)

	// Assert
	require.Same(t, cause, err)
}

func TestPanicToError_WhenValueIsNotError_ShouldWrapIt(t *testing.T) {
	t.Parallel()
	// Arrange
	// Act
	err := panicToError("kaboom")

	// Assert
	require.ErrorContains(t, err, "kaboom")
}
