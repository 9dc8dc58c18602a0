package sim

import (
	"context"
	"time"

	"kaetram/client/internal/telemetry"
	"kaetram/client/logging/simulation"
)

// DefaultTickRate is the frame rate when none is configured.
const DefaultTickRate = 60

// LoopConfig tunes the frame loop.
type LoopConfig struct {
	TickRate int
	// BudgetRatio scales the frame interval into the overrun threshold.
	BudgetRatio float64
}

// LoopHooks observe the loop without owning it.
type LoopHooks struct {
	AfterStep func(StepResult)
}

// Loop drives an Engine at a fixed rate.
type Loop struct {
	engine *Engine
	config LoopConfig
	hooks  LoopHooks

	tick   uint64
	streak uint64
}

// NewLoop wraps engine in a ticker driven loop.
func NewLoop(engine *Engine, cfg LoopConfig, hooks LoopHooks) *Loop {
	if engine == nil {
		return nil
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.BudgetRatio <= 0 {
		cfg.BudgetRatio = 1
	}
	return &Loop{engine: engine, config: cfg, hooks: hooks}
}

// Budget is the longest a frame may take before it is reported.
func (l *Loop) Budget() time.Duration {
	interval := time.Second / time.Duration(l.config.TickRate)
	return time.Duration(float64(interval) * l.config.BudgetRatio)
}

// Advance runs a single frame at now.
func (l *Loop) Advance(now time.Time) StepResult {
	deps := l.engine.deps
	l.tick++
	start := deps.Clock.Now()
	result := l.engine.Step(TickContext{Tick: l.tick, Now: now})
	result.Duration = deps.Clock.Now().Sub(start)
	result.Budget = l.Budget()

	deps.Metrics.Store(telemetry.MetricFrameDurationMillis, uint64(result.Duration.Milliseconds()))
	if result.Duration > result.Budget {
		l.streak++
		ratio := 0.0
		if result.Budget > 0 {
			ratio = float64(result.Duration) / float64(result.Budget)
		}
		simulation.FrameBudgetOverrun(context.Background(), deps.Publisher, l.tick, simulation.FrameBudgetOverrunPayload{
			DurationMillis: result.Duration.Milliseconds(),
			BudgetMillis:   result.Budget.Milliseconds(),
			Ratio:          ratio,
			Streak:         l.streak,
		}, nil)
	} else {
		l.streak = 0
	}

	if l.hooks.AfterStep != nil {
		l.hooks.AfterStep(result)
	}
	return result
}

// Run ticks until ctx is cancelled or done closes.
func (l *Loop) Run(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(l.config.TickRate))
	defer ticker.Stop()

	reason := "context cancelled"
	defer func() {
		deps := l.engine.deps
		deps.Logger.Printf("frame loop stopped after %d frames: %s", l.tick, reason)
		simulation.LoopStopped(context.Background(), deps.Publisher, l.tick, simulation.LoopStoppedPayload{Frames: l.tick, Reason: reason}, nil)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			reason = "transport closed"
			return
		case <-ticker.C:
			l.Advance(l.engine.deps.Clock.Now())
		}
	}
}

// Frames reports how many frames have run.
func (l *Loop) Frames() uint64 {
	return l.tick
}
