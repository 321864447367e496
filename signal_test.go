package watchkeeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStopSignal_WhenNew_ShouldBeClear(t *testing.T) {
	t.Parallel()
	// Arrange
	s := NewStopSignal()

	// Act
	set := s.IsSet()

	// Assert
	require.False(t, set)
	select {
	case <-s.Done():
		t.Fatal("Done channel closed on a clear signal")
	default:
	}
}

func TestStopSignalSet_WhenCalledTwice_ShouldBeIdempotent(t *testing.T) {
	t.Parallel()
	// Arrange
	s := NewStopSignal()

	// Act
	s.Set()
	s.Set()

	// Assert
	require.True(t, s.IsSet())
	_, open := <-s.Done()
	require.False(t, open)
}

func TestStopSignalWait_WhenSignalSet_ShouldReturnTrueImmediately(t *testing.T) {
	t.Parallel()
	// Arrange
	s := NewStopSignal()
	s.Set()

	// Act
	start := time.Now()
	set := s.Wait(time.Second)

	// Assert
	require.True(t, set)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestStopSignalWait_WhenTimeoutElapses_ShouldReturnFalse(t *testing.T) {
	t.Parallel()
	// Arrange
	s := NewStopSignal()

	// Act
	set := s.Wait(10 * time.Millisecond)

	// Assert
	require.False(t, set)
}

func TestStopSignalWait_WhenSetConcurrently_ShouldWakeWaiter(t *testing.T) {
	t.Parallel()
	// Arrange
	s := NewStopSignal()
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Set()
	}()

	// Act
	set := s.Wait(5 * time.Second)

	// Assert
	require.True(t, set)
}

func TestStopSignalWait_WhenNonPositiveDuration_ShouldPollWithoutBlocking(t *testing.T) {
	t.Parallel()
	// Arrange
	s := NewStopSignal()

	// Act
	before := s.Wait(0)
	s.Set()
	after := s.Wait(0)

	// Assert
	require.False(t, before)
	require.True(t, after)
}

func TestNewSetSignal_ShouldBeSet(t *testing.T) {
	t.Parallel()
	// Arrange
	// Act
	s := newSetSignal()

	// Assert
	require.True(t, s.IsSet())
}
