// Package internal provides worker bodies used by the watchkeeper tests.
package internal

import (
	"sync/atomic"
	"time"

	"github.com/diego-miranda-ng/watchkeeper"
)

// BeatingBody returns a Body that refreshes its heartbeat every interval
// until stopped. Used to keep a worker alive under the watchdog.
func BeatingBody(interval time.Duration) watchkeeper.Body {
	return watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
		for {
			life.Heartbeat()
			if life.Wait(interval) {
				return watchkeeper.Cancelled()
			}
		}
	})
}

// SilentBody returns a Body that never heartbeats but exits promptly when
// stopped. Used to let a worker go stale under the watchdog.
func SilentBody() watchkeeper.Body {
	return watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
		<-life.Stopping()
		return watchkeeper.Cancelled()
	})
}

// HangingBody returns a Body that ignores its stop signal for hang, then
// exits. Used to exercise the abandon path of Stop.
func HangingBody(hang time.Duration) watchkeeper.Body {
	return watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
		time.Sleep(hang)
		return watchkeeper.OK()
	})
}

// QuickBody returns a Body that finishes after a short delay (or a stop
// request), incrementing runs on each invocation.
func QuickBody(runs *atomic.Int32) watchkeeper.Body {
	return watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
		runs.Add(1)
		if life.Wait(10 * time.Millisecond) {
			return watchkeeper.Cancelled()
		}
		return watchkeeper.OK()
	})
}

// FailingBody returns a Body that immediately fails with err.
func FailingBody(err error) watchkeeper.Body {
	return watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
		return watchkeeper.Failed(err)
	})
}

// PanickingBody returns a Body that panics on every run. Used to test panic
// containment in the supervisor wrapper.
func PanickingBody(msg string) watchkeeper.Body {
	return watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
		panic(msg)
	})
}
