package timing

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// Pacer defaults
const (
	DefaultUnit     = time.Microsecond
	DefaultMaxSleep = time.Second
	DefaultMaxDrift = 250 * time.Millisecond
)

// PacerStats counts what the pacer did since the last Start.
type PacerStats struct {
	Frames  int64         // Delay calls
	Skipped int64         // calls that found the host behind schedule
	Clamped int64         // calls where the carried drift hit the limit
	Slept   time.Duration // total time spent waiting
}

// Pacer keeps emulated time aligned with wall-clock time. Each Delay call
// states how much emulated time the caller just produced; the pacer sleeps
// off whatever part of that was not already spent in real time.
//
// When the host falls behind, the overrun is carried forward as drift and
// paid back by shortening later sleeps. Drift is capped at the max drift:
// a stall longer than that (debugger break, window drag) is forgotten
// instead of being caught up with a burst of unpaced frames.
type Pacer struct {
	clock    Clock
	unit     time.Duration
	maxSleep time.Duration
	maxDrift time.Duration
	spin     time.Duration

	reference   time.Time
	drift       time.Duration
	lastTrigger time.Time
	trigger     atomic.Bool
	stats       PacerStats
}

// PacerOption configures a Pacer
type PacerOption func(*Pacer)

// WithClock replaces the system clock.
func WithClock(c Clock) PacerOption {
	return func(p *Pacer) { p.clock = c }
}

// WithUnit sets the length of one emulated-time unit passed to Delay.
func WithUnit(unit time.Duration) PacerOption {
	return func(p *Pacer) { p.unit = unit }
}

// WithMaxSleep caps a single sleep.
func WithMaxSleep(d time.Duration) PacerOption {
	return func(p *Pacer) { p.maxSleep = d }
}

// WithMaxDrift caps the overrun carried between calls.
func WithMaxDrift(d time.Duration) PacerOption {
	return func(p *Pacer) { p.maxDrift = d }
}

// WithSpin busy-waits the last d of every sleep for accuracy.
func WithSpin(d time.Duration) PacerOption {
	return func(p *Pacer) { p.spin = d }
}

// NewPacer creates a pacer and arms it.
func NewPacer(opts ...PacerOption) *Pacer {
	p := &Pacer{
		clock:    SystemClock(),
		unit:     DefaultUnit,
		maxSleep: DefaultMaxSleep,
		maxDrift: DefaultMaxDrift,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Start()
	return p
}

// Start records now as the reference point and forgets any drift. It must be
// called again after anything that stopped emulation while real time kept
// running: modal dialogs, debugger breaks, window manager stalls.
func (p *Pacer) Start() {
	now := p.clock.Now()
	p.reference = now
	p.lastTrigger = now
	p.drift = 0
	p.stats = PacerStats{}
}

// Delay blocks until units of emulated time have passed in real time since
// the previous call, or returns at once if that moment is already gone.
func (p *Pacer) Delay(units int) {
	now := p.clock.Now()
	budget := time.Duration(units) * p.unit
	debt := p.drift + now.Sub(p.reference) - budget
	p.stats.Frames++

	if debt < 0 {
		want := -debt
		sleep := want
		if sleep > p.maxSleep {
			slog.Debug("Frame delay capped", "wanted_ms", want.Milliseconds(), "max_ms", p.maxSleep.Milliseconds())
			sleep = p.maxSleep
		}
		p.wait(now, sleep)

		after := p.clock.Now()
		// oversleep is paid back on the next call
		p.drift = after.Sub(now) - sleep
		p.stats.Slept += after.Sub(now)
		p.reference = after
	} else {
		p.drift = debt
		p.stats.Skipped++
		p.reference = now
	}

	if p.drift > p.maxDrift {
		slog.Debug("Frame timing drift clamped", "drift_ms", p.drift.Milliseconds(), "max_ms", p.maxDrift.Milliseconds())
		p.drift = p.maxDrift
		p.stats.Clamped++
	}

	p.checkSecond()
}

func (p *Pacer) wait(start time.Time, d time.Duration) {
	if p.spin <= 0 {
		p.clock.Sleep(d)
		return
	}

	// sleep most of it, then busy-wait the rest for accuracy
	if d > p.spin {
		p.clock.Sleep(d - p.spin)
	}
	deadline := start.Add(d)
	for p.clock.Now().Before(deadline) {
		runtime.Gosched()
	}
}

func (p *Pacer) checkSecond() {
	elapsed := p.reference.Sub(p.lastTrigger)
	if elapsed < time.Second {
		return
	}

	p.trigger.Store(true)
	if elapsed >= 2*time.Second {
		p.lastTrigger = p.reference
	} else {
		p.lastTrigger = p.lastTrigger.Add(time.Second)
	}
}

// SecondsTrigger reports whether a full second passed since the trigger was
// last read, and clears it.
func (p *Pacer) SecondsTrigger() bool {
	return p.trigger.Swap(false)
}

// Drift returns the overrun currently carried forward.
func (p *Pacer) Drift() time.Duration { return p.drift }

// Stats returns counters since the last Start.
func (p *Pacer) Stats() PacerStats { return p.stats }

// Unit returns the length of one emulated-time unit.
func (p *Pacer) Unit() time.Duration { return p.unit }
