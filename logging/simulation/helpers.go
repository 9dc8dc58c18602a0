package simulation

import (
	"context"

	"kaetram/client/logging"
)

const (
	// EventFrameBudgetOverrun is emitted when a frame takes longer than the configured budget.
	EventFrameBudgetOverrun logging.EventType = "simulation.frame_budget_overrun"
	// EventLoopStopped is emitted when the frame loop exits.
	EventLoopStopped logging.EventType = "simulation.loop_stopped"
)

// FrameBudgetOverrunPayload captures timing details for a frame budget breach.
type FrameBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// LoopStoppedPayload captures why the loop exited.
type LoopStoppedPayload struct {
	Frames uint64 `json:"frames"`
	Reason string `json:"reason"`
}

// FrameBudgetOverrun publishes a warning when a frame exceeds the budget.
func FrameBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload FrameBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFrameBudgetOverrun,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// LoopStopped publishes an info event when the loop exits.
func LoopStopped(ctx context.Context, pub logging.Publisher, tick uint64, payload LoopStoppedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventLoopStopped,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
