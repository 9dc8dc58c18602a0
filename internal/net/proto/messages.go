package proto

import (
	"errors"
	"fmt"

	"kaetram/client/internal/world"
)

const (
	// Version tracks the wire-protocol revision this client speaks.
	Version = 1
)

// Server message type identifiers.
const (
	TypeWelcome      = "welcome"
	TypeSpawn        = "spawn"
	TypeMove         = "move"
	TypeFollow       = "follow"
	TypeStop         = "stop"
	TypeTeleport     = "teleport"
	TypeDespawn      = "despawn"
	TypeEntityList   = "entityList"
	TypePositionSync = "positionSync"
	TypeFreeze       = "freeze"
	TypeStunned      = "stunned"
	TypeOrientate    = "orientate"
	TypeMapRegion    = "mapRegion"
	TypeEffect       = "effect"
)

// Client message type identifiers.
const (
	TypeMovementStarted = "movementStarted"
	TypeMovementStep    = "movementStep"
	TypeMovementStop    = "movementStop"
	TypeEntityRequest   = "entityRequest"
)

// ErrUnsupportedVersion is returned for frames from a newer or older protocol.
var ErrUnsupportedVersion = errors.New("unsupported protocol version")

// ErrMissingType is returned for frames without a type discriminator.
var ErrMissingType = errors.New("message type missing")

// ServerMessage captures an inbound message from the game server. Fields are
// populated according to Type.
type ServerMessage struct {
	Ver         int           `json:"ver,omitempty" msgpack:"ver,omitempty"`
	Type        string        `json:"type" msgpack:"type"`
	ID          string        `json:"id,omitempty" msgpack:"id,omitempty"`
	Kind        string        `json:"kind,omitempty" msgpack:"kind,omitempty"`
	Name        string        `json:"name,omitempty" msgpack:"name,omitempty"`
	X           int           `json:"x" msgpack:"x"`
	Y           int           `json:"y" msgpack:"y"`
	Target      string        `json:"target,omitempty" msgpack:"target,omitempty"`
	Forced      bool          `json:"forced,omitempty" msgpack:"forced,omitempty"`
	Orientation string        `json:"orientation,omitempty" msgpack:"orientation,omitempty"`
	SpeedMillis int           `json:"speed,omitempty" msgpack:"speed,omitempty"`
	AttackRange int           `json:"attackRange,omitempty" msgpack:"attackRange,omitempty"`
	Owner       string        `json:"owner,omitempty" msgpack:"owner,omitempty"`
	Animate     bool          `json:"animate,omitempty" msgpack:"animate,omitempty"`
	State       bool          `json:"state,omitempty" msgpack:"state,omitempty"`
	Entities    []string      `json:"entities,omitempty" msgpack:"entities,omitempty"`
	Region      [][]int       `json:"region,omitempty" msgpack:"region,omitempty"`
	Objects     []world.Point `json:"objects,omitempty" msgpack:"objects,omitempty"`
}

// Cell returns the grid coordinate carried by the message.
func (m ServerMessage) Cell() world.Point {
	return world.Point{X: m.X, Y: m.Y}
}

// ClientMessage captures an outbound intent sent to the game server.
type ClientMessage struct {
	Ver         int      `json:"ver,omitempty" msgpack:"ver,omitempty"`
	Type        string   `json:"type" msgpack:"type"`
	X           int      `json:"x" msgpack:"x"`
	Y           int      `json:"y" msgpack:"y"`
	NextX       int      `json:"nextX,omitempty" msgpack:"nextX,omitempty"`
	NextY       int      `json:"nextY,omitempty" msgpack:"nextY,omitempty"`
	TargetX     int      `json:"targetX,omitempty" msgpack:"targetX,omitempty"`
	TargetY     int      `json:"targetY,omitempty" msgpack:"targetY,omitempty"`
	Target      string   `json:"target,omitempty" msgpack:"target,omitempty"`
	SpeedMillis int      `json:"speed,omitempty" msgpack:"speed,omitempty"`
	Timestamp   int64    `json:"timestamp,omitempty" msgpack:"timestamp,omitempty"`
	Entities    []string `json:"entities,omitempty" msgpack:"entities,omitempty"`
}

// DecodeServerMessage converts a raw frame into a structured message.
func DecodeServerMessage(codec Codec, payload []byte) (ServerMessage, error) {
	var msg ServerMessage
	if err := codec.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("decode %s frame: %w", codec.Name(), err)
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("%w: %d", ErrUnsupportedVersion, msg.Ver)
	}
	if msg.Type == "" {
		return msg, ErrMissingType
	}
	return msg, nil
}

// EncodeClientMessage renders an outbound intent, stamping the protocol version.
func EncodeClientMessage(codec Codec, msg ClientMessage) ([]byte, error) {
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	return codec.Marshal(msg)
}

// MovementStarted announces a new path from origin to destination.
func MovementStarted(origin, destination world.Point, speedMillis int, timestamp int64) ClientMessage {
	return ClientMessage{
		Type:        TypeMovementStarted,
		X:           origin.X,
		Y:           origin.Y,
		TargetX:     destination.X,
		TargetY:     destination.Y,
		SpeedMillis: speedMillis,
		Timestamp:   timestamp,
	}
}

// MovementStep reports the cell just entered and the one after it.
func MovementStep(current, next world.Point, timestamp int64) ClientMessage {
	return ClientMessage{
		Type:      TypeMovementStep,
		X:         current.X,
		Y:         current.Y,
		NextX:     next.X,
		NextY:     next.Y,
		Timestamp: timestamp,
	}
}

// MovementStop reports the final cell and the actor interacted with, if any.
func MovementStop(cell world.Point, target string, timestamp int64) ClientMessage {
	return ClientMessage{
		Type:      TypeMovementStop,
		X:         cell.X,
		Y:         cell.Y,
		Target:    target,
		Timestamp: timestamp,
	}
}

// EntityRequest asks the server for the listed actors, or for the full
// entity list when ids is empty.
func EntityRequest(ids []string) ClientMessage {
	return ClientMessage{
		Type:     TypeEntityRequest,
		Entities: append([]string(nil), ids...),
	}
}
