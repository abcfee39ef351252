package clock

import "time"

// Clock is the process-wide time source. Services take it as a dependency so
// expiry-boundary tests can substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the real wall clock (UTC).
func System() Clock { return systemClock{} }
