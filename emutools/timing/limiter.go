package timing

import (
	"sync/atomic"
	"time"
)

// Limiter is the pacing contract of an emulation loop. Pacer is the
// drift-correcting implementation; NewNoOpLimiter never waits.
type Limiter interface {
	// Start re-arms the limiter after emulation stopped (pause, dialog).
	Start()

	// Delay accounts for units of emulated time produced since the
	// previous call.
	Delay(units int)

	// SecondsTrigger reports whether a full second passed since it was
	// last read, and clears it.
	SecondsTrigger() bool

	Stats() PacerStats
	Drift() time.Duration
	Unit() time.Duration
}

// NewNoOpLimiter returns a limiter that never waits, for headless runs
// that should go as fast as possible. Its seconds trigger follows emulated
// time instead of wall-clock time.
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{unit: DefaultUnit}
}

type noOpLimiter struct {
	unit        time.Duration
	emulated    time.Duration
	lastTrigger time.Duration
	trigger     atomic.Bool
	stats       PacerStats
}

func (l *noOpLimiter) Start() {
	l.emulated = 0
	l.lastTrigger = 0
	l.stats = PacerStats{}
}

func (l *noOpLimiter) Delay(units int) {
	l.stats.Frames++
	l.emulated += time.Duration(units) * l.unit
	if l.emulated-l.lastTrigger >= time.Second {
		l.lastTrigger += time.Second
		l.trigger.Store(true)
	}
}

func (l *noOpLimiter) SecondsTrigger() bool { return l.trigger.Swap(false) }
func (l *noOpLimiter) Stats() PacerStats    { return l.stats }
func (l *noOpLimiter) Drift() time.Duration { return 0 }
func (l *noOpLimiter) Unit() time.Duration  { return l.unit }

// Refresh rates of the two video standards
const (
	PALRefreshHz  = 50
	NTSCRefreshHz = 60
)

// FrameDuration returns the period of a display refreshing at hz.
func FrameDuration(hz float64) time.Duration {
	return time.Duration(float64(time.Second) / hz)
}

// FrameUnits returns how many units of length unit make up one frame at hz,
// the value to pass to Limiter.Delay once per frame.
func FrameUnits(hz float64, unit time.Duration) int {
	return int(FrameDuration(hz) / unit)
}
