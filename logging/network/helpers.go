package network

import (
	"context"

	"kaetram/client/logging"
)

const (
	// EventUnknownActor is emitted when an inbound message references an id missing from the roster.
	EventUnknownActor logging.EventType = "network.unknown_actor"
	// EventRosterRefreshRequested is emitted when the client asks the server for the entity list.
	EventRosterRefreshRequested logging.EventType = "network.roster_refresh_requested"
	// EventRosterRefreshSuppressed is emitted when a refresh is skipped because of the cooldown.
	EventRosterRefreshSuppressed logging.EventType = "network.roster_refresh_suppressed"
	// EventMalformedMessage is emitted when an inbound frame cannot be decoded or applied.
	EventMalformedMessage logging.EventType = "network.malformed_message"
	// EventSendFailed is emitted when an outbound intent could not be written to the transport.
	EventSendFailed logging.EventType = "network.send_failed"
	// EventIgnoredMessage is emitted when a well formed message is deliberately not applied.
	EventIgnoredMessage logging.EventType = "network.ignored_message"
)

// MessagePayload identifies the message a network event refers to.
type MessagePayload struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// RefreshPayload captures roster refresh throttling details.
type RefreshPayload struct {
	Trigger         string `json:"trigger"`
	CooldownMillis  int64  `json:"cooldownMillis"`
	RemainingMillis int64  `json:"remainingMillis,omitempty"`
}

// UnknownActor publishes a warning when a message targets an unknown actor.
func UnknownActor(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MessagePayload, extra map[string]any) {
	publish(ctx, pub, EventUnknownActor, logging.SeverityWarn, tick, actor, payload, extra)
}

// RosterRefreshRequested publishes an info event when a refresh is sent.
func RosterRefreshRequested(ctx context.Context, pub logging.Publisher, tick uint64, payload RefreshPayload, extra map[string]any) {
	publish(ctx, pub, EventRosterRefreshRequested, logging.SeverityInfo, tick, logging.WorldRef(), payload, extra)
}

// RosterRefreshSuppressed publishes a debug event when the cooldown blocks a refresh.
func RosterRefreshSuppressed(ctx context.Context, pub logging.Publisher, tick uint64, payload RefreshPayload, extra map[string]any) {
	publish(ctx, pub, EventRosterRefreshSuppressed, logging.SeverityDebug, tick, logging.WorldRef(), payload, extra)
}

// MalformedMessage publishes a warning for an inbound frame that could not be applied.
func MalformedMessage(ctx context.Context, pub logging.Publisher, tick uint64, payload MessagePayload, extra map[string]any) {
	publish(ctx, pub, EventMalformedMessage, logging.SeverityWarn, tick, logging.WorldRef(), payload, extra)
}

// SendFailed publishes an error when the transport rejects an outbound message.
func SendFailed(ctx context.Context, pub logging.Publisher, tick uint64, payload MessagePayload, extra map[string]any) {
	publish(ctx, pub, EventSendFailed, logging.SeverityError, tick, logging.WorldRef(), payload, extra)
}

// IgnoredMessage publishes a debug event for a message deliberately skipped.
func IgnoredMessage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MessagePayload, extra map[string]any) {
	publish(ctx, pub, EventIgnoredMessage, logging.SeverityDebug, tick, actor, payload, extra)
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
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}
