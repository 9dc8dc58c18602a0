package lifecycle

import (
	"context"

	"kaetram/client/logging"
)

const (
	// EventActorSpawned is emitted when an actor is added to the roster.
	EventActorSpawned logging.EventType = "lifecycle.actor_spawned"
	// EventActorDespawned is emitted when an actor is removed from the roster.
	EventActorDespawned logging.EventType = "lifecycle.actor_despawned"
	// EventActorPruned is emitted when a roster diff removes an actor the server no longer reports.
	EventActorPruned logging.EventType = "lifecycle.actor_pruned"
	// EventActorTeleported is emitted when an actor is relocated without pathing.
	EventActorTeleported logging.EventType = "lifecycle.actor_teleported"
	// EventDriftCorrected is emitted when a position sync forces an idle actor onto the server cell.
	EventDriftCorrected logging.EventType = "lifecycle.drift_corrected"
)

// SpawnPayload captures where an actor appeared.
type SpawnPayload struct {
	X     int  `json:"x"`
	Y     int  `json:"y"`
	Local bool `json:"local,omitempty"`
}

// DespawnPayload captures how an actor was removed.
type DespawnPayload struct {
	Animated bool `json:"animated"`
}

// TeleportPayload captures a relocation.
type TeleportPayload struct {
	FromX    int  `json:"fromX"`
	FromY    int  `json:"fromY"`
	ToX      int  `json:"toX"`
	ToY      int  `json:"toY"`
	Animated bool `json:"animated,omitempty"`
}

// ActorSpawned publishes a debug event when an actor spawns.
func ActorSpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SpawnPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventActorSpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ActorDespawned publishes a debug event when an actor is removed.
func ActorDespawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DespawnPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventActorDespawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ActorPruned publishes an info event when a roster diff removes an actor.
func ActorPruned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventActorPruned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ActorTeleported publishes a debug event for a server instructed teleport.
func ActorTeleported(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TeleportPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventActorTeleported,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// DriftCorrected publishes a warning when local prediction disagreed with the server.
func DriftCorrected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TeleportPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDriftCorrected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
