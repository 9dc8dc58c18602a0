// Package transition drives a scalar from a start value to an end value over a
// fixed duration, advanced once per frame by the caller.
package transition

import "time"

// Transition is a single time based tween. The zero value is idle.
type Transition struct {
	startTime  time.Time
	duration   time.Duration
	from       float64
	to         float64
	value      float64
	inProgress bool
	onTick     func(value float64)
	onComplete func()
}

// Start begins a tween from from to to lasting duration. A tween already in
// progress is overwritten without completing.
func (t *Transition) Start(now time.Time, from, to float64, duration time.Duration, onTick func(float64), onComplete func()) {
	t.startTime = now
	t.duration = duration
	t.from = from
	t.to = to
	t.value = from
	t.onTick = onTick
	t.onComplete = onComplete
	t.inProgress = true
}

// Restart replays the current tween between new bounds keeping its callbacks
// and duration.
func (t *Transition) Restart(now time.Time, from, to float64) {
	t.Start(now, from, to, t.duration, t.onTick, t.onComplete)
}

// Step advances the tween to now. onTick receives intermediate values; once the
// end is reached the tween stops and onComplete runs exactly once. onTick is
// not called for the final value.
func (t *Transition) Step(now time.Time) {
	if !t.inProgress {
		return
	}
	elapsed := now.Sub(t.startTime)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= t.duration {
		t.value = t.to
		complete := t.onComplete
		t.Stop()
		if complete != nil {
			complete()
		}
		return
	}
	ratio := float64(elapsed) / float64(t.duration)
	t.value = t.from + (t.to-t.from)*ratio
	if t.value == t.to {
		complete := t.onComplete
		t.Stop()
		if complete != nil {
			complete()
		}
		return
	}
	if t.onTick != nil {
		t.onTick(t.value)
	}
}

// Stop halts the tween without running onComplete.
func (t *Transition) Stop() {
	t.inProgress = false
}

// InProgress reports whether Step still has work to do.
func (t *Transition) InProgress() bool {
	return t.inProgress
}

// Value returns the most recent interpolated value.
func (t *Transition) Value() float64 {
	return t.value
}

// Progress returns the completed fraction in [0, 1].
func (t *Transition) Progress() float64 {
	if t.to == t.from {
		if t.inProgress {
			return 0
		}
		return 1
	}
	return (t.value - t.from) / (t.to - t.from)
}
