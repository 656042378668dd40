package parking

import "time"

// Clock supplies the current instant. All duration and fee math is a pure
// function of (entry time, now), so substituting the clock makes the whole
// engine deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
