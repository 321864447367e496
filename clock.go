package watchkeeper

import "time"

// Clock is the time source used for heartbeats, staleness checks, and the
// circuit breaker's recovery window. The default implementation uses
// time.Now; tests inject a fake to step through timeout logic
// deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
