package movement

import (
	"time"

	"kaetram/client/internal/world"
)

// EventKind identifies a movement notification.
type EventKind string

const (
	// EventPathStarted fires when an actor begins a new path, including after a redirect.
	EventPathStarted EventKind = "path_started"
	// EventBeforeStep fires before the actor leaves its cell in the spatial index.
	EventBeforeStep EventKind = "before_step"
	// EventStep fires once the actor is registered at its new cell.
	EventStep EventKind = "step"
	// EventSecondStep fires on every other step.
	EventSecondStep EventKind = "second_step"
	// EventMoved fires when the interpolation onto a cell completes.
	EventMoved EventKind = "moved"
	// EventPathStopped fires when the actor stops pathing for any reason.
	EventPathStopped EventKind = "path_stopped"
	// EventUnreachable fires when a request produced no usable path.
	EventUnreachable EventKind = "unreachable"
	// EventTeleported fires after a direct relocation.
	EventTeleported EventKind = "teleported"
)

// StopReason explains why an actor stopped pathing.
type StopReason string

const (
	StopArrived     StopReason = "arrived"
	StopInterrupted StopReason = "interrupted"
	StopForced      StopReason = "forced"
	StopInRange     StopReason = "in_range"
	StopFrozen      StopReason = "frozen"
	StopNoPath      StopReason = "no_path"
	StopTeleport    StopReason = "teleport"
	StopRemoved     StopReason = "removed"
)

// Event is delivered to every registered Listener in registration order.
type Event struct {
	Kind    EventKind
	ActorID string
	Time    time.Time

	// From is the cell the actor left, To the cell it now occupies and Next
	// the cell after To, equal to To on the final step.
	From world.Point
	To   world.Point
	Next world.Point

	Orientation world.Orientation
	Path        []world.Point
	Destination world.Point
	Speed       time.Duration

	Reason StopReason
	// Target is the interaction target at the time of the stop, if any.
	Target string
}

// Listener receives movement events.
type Listener interface {
	HandleMovement(Event)
}

// ListenerFunc adapts functions into the Listener interface.
type ListenerFunc func(Event)

// HandleMovement implements Listener for ListenerFunc.
func (f ListenerFunc) HandleMovement(event Event) {
	if f == nil {
		return
	}
	f(event)
}
