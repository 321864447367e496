package watchkeeper_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/diego-miranda-ng/watchkeeper"
	"github.com/diego-miranda-ng/watchkeeper/internal"

	"github.com/stretchr/testify/require"
)

func TestRenameLevels_WhenCustomLevel_ShouldRenderName(t *testing.T) {
	t.Parallel()
	// Arrange
	attr := slog.Attr{Key: slog.LevelKey, Value: slog.AnyValue(watchkeeper.LevelSuccess)}

	// Act
	out := watchkeeper.RenameLevels(nil, attr)

	// Assert
	require.Equal(t, "SUCCESS", out.Value.String())
}

func TestRenameLevels_WhenNoticeLevel_ShouldRenderName(t *testing.T) {
	t.Parallel()
	// Arrange
	attr := slog.Attr{Key: slog.LevelKey, Value: slog.AnyValue(watchkeeper.LevelNotice)}

	// Act
	out := watchkeeper.RenameLevels(nil, attr)

	// Assert
	require.Equal(t, "NOTICE", out.Value.String())
}

func TestRenameLevels_WhenOtherAttr_ShouldPassThrough(t *testing.T) {
	t.Parallel()
	// Arrange
	attr := slog.String("worker", "w1")

	// Act
	out := watchkeeper.RenameLevels(nil, attr)

	// Assert
	require.Equal(t, attr, out)
}

func TestSupervisorLogging_WhenWorkerStarts_ShouldLogSuccessWithWorkerAttr(t *testing.T) {
	t.Parallel()
	// Arrange
	capture := newCaptureHandler()
	sup := watchkeeper.New(watchkeeper.WithLogger(slog.New(capture)))

	// Act
	require.NoError(t, sup.Register("w1", internal.SilentBody()))
	defer sup.Stop("w1", time.Second)

	// Assert
	started := capture.findByMessage("worker started")
	require.Len(t, started, 1)
	require.Equal(t, watchkeeper.LevelSuccess, started[0].Level)
	require.Equal(t, "w1", started[0].Attrs["worker"])
}

func TestSupervisorLogging_WhenDuplicateRegistration_ShouldLogWarning(t *testing.T) {
	t.Parallel()
	// Arrange
	capture := newCaptureHandler()
	sup := watchkeeper.New(watchkeeper.WithLogger(slog.New(capture)))
	require.NoError(t, sup.Register("w1", internal.SilentBody()))

	// Act
	_ = sup.Register("w1", internal.SilentBody())
	defer sup.Stop("w1", time.Second)

	// Assert
	warnings := capture.findByMessage("worker already exists")
	require.Len(t, warnings, 1)
	require.Equal(t, slog.LevelWarn, warnings[0].Level)
}

func TestSupervisorLogging_WhenBodyFails_ShouldLogErrorOnChildLogger(t *testing.T) {
	t.Parallel()
	// Arrange
	capture := newCaptureHandler()
	sup := watchkeeper.New(watchkeeper.WithLogger(slog.New(capture)))

	// Act
	require.NoError(t, sup.Register("bad", internal.FailingBody(errors.New("boom"))))
	require.Eventually(t, func() bool {
		return len(capture.findByMessage("worker failed")) == 1
	}, time.Second, time.Millisecond)
	defer sup.Stop("bad", time.Second)

	// Assert
	failed := capture.findByMessage("worker failed")
	require.Equal(t, slog.LevelError, failed[0].Level)
	require.Equal(t, "bad", failed[0].Attrs["worker"])
	require.Contains(t, failed[0].Attrs["error"], "boom")
}

func TestWatchdogLogging_WhenNoWorkersRemain_ShouldLogNotice(t *testing.T) {
	t.Parallel()
	// Arrange
	capture := newCaptureHandler()
	sup := watchkeeper.New(
		watchkeeper.WithLogger(slog.New(capture)),
		watchkeeper.WithPollInterval(10*time.Millisecond),
	)

	// Act: a watchdog with nothing to supervise exits on its own.
	require.NoError(t, sup.StartWatchdog("main"))

	// Assert
	require.Eventually(t, func() bool {
		return len(capture.findByMessage("no active workers left")) >= 1
	}, 2*time.Second, 5*time.Millisecond)
	notices := capture.findByMessage("no active workers left")
	require.Equal(t, watchkeeper.LevelNotice, notices[0].Level)
}
