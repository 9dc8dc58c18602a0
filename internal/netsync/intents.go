package netsync

import (
	"kaetram/client/internal/movement"
	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/telemetry"
)

// HandleMovement turns the local player's movement into intents. Other
// actors are driven by the server and produce nothing.
func (h *Handler) HandleMovement(event movement.Event) {
	if !h.roster.IsLocal(event.ActorID) {
		return
	}
	ts := event.Time.UnixMilli()
	switch event.Kind {
	case movement.EventPathStarted:
		h.queueIntent(proto.MovementStarted(event.From, event.Destination, int(event.Speed.Milliseconds()), ts))
	case movement.EventStep:
		h.queueIntent(proto.MovementStep(event.To, event.Next, ts))
	case movement.EventPathStopped:
		if h.suppressStop(event.Reason) {
			return
		}
		h.queueIntent(proto.MovementStop(event.To, event.Target, ts))
	}
}

// suppressStop filters stops the server already knows about.
func (h *Handler) suppressStop(reason movement.StopReason) bool {
	switch reason {
	case movement.StopTeleport, movement.StopRemoved:
		return true
	case movement.StopForced:
		return h.applying
	}
	return false
}

func (h *Handler) queueIntent(msg proto.ClientMessage) {
	h.metrics.Add(telemetry.MetricIntentsSent, 1)
	h.outbox = append(h.outbox, msg)
}
