package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// forecast dates.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock. The table parser
// derives forecast dates from it when the upstream header carries none.
func Now() time.Time {
	return clock.Now()
}
