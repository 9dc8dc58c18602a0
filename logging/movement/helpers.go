package movement

import (
	"context"

	"kaetram/client/logging"
)

const (
	// EventPathStarted is emitted when an actor begins following a new path.
	EventPathStarted logging.EventType = "movement.path_started"
	// EventPathStopped is emitted when an actor stops pathing.
	EventPathStopped logging.EventType = "movement.path_stopped"
	// EventPathUnreachable is emitted when no path could be found for a request.
	EventPathUnreachable logging.EventType = "movement.path_unreachable"
	// EventPathRedirected is emitted when a queued destination replaces the remaining path.
	EventPathRedirected logging.EventType = "movement.path_redirected"
)

// PathPayload summarises a path request.
type PathPayload struct {
	FromX  int `json:"fromX"`
	FromY  int `json:"fromY"`
	ToX    int `json:"toX"`
	ToY    int `json:"toY"`
	Length int `json:"length"`
}

// StopPayload captures where and why an actor stopped.
type StopPayload struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Reason string `json:"reason"`
}

// PathStarted publishes a debug event for a new path.
func PathStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PathPayload, extra map[string]any) {
	publish(ctx, pub, EventPathStarted, logging.SeverityDebug, tick, actor, payload, extra)
}

// PathStopped publishes a debug event when pathing ends.
func PathStopped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StopPayload, extra map[string]any) {
	publish(ctx, pub, EventPathStopped, logging.SeverityDebug, tick, actor, payload, extra)
}

// PathUnreachable publishes an info event when a destination cannot be reached.
func PathUnreachable(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PathPayload, extra map[string]any) {
	publish(ctx, pub, EventPathUnreachable, logging.SeverityInfo, tick, actor, payload, extra)
}

// PathRedirected publishes a debug event when a queued redirect is applied.
func PathRedirected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PathPayload, extra map[string]any) {
	publish(ctx, pub, EventPathRedirected, logging.SeverityDebug, tick, actor, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, tick uint64, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryMovement,
		Payload:  payload,
		Extra:    extra,
	})
}
