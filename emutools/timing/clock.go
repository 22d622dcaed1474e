package timing

import "time"

// Clock is the source of wall-clock time and the way to wait for it.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock returns the real clock.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }
