package transport

import (
	"errors"

	"kaetram/client/internal/net/proto"
)

// ErrClosed is returned by Send after the transport shut down.
var ErrClosed = errors.New("transport closed")

// Transport moves protocol messages between the client and the game server.
// Drain and Send are called from the frame goroutine; implementations buffer
// inbound frames from their own reader.
type Transport interface {
	// Drain returns every message received since the previous call in
	// arrival order.
	Drain() []proto.ServerMessage
	Send(msg proto.ClientMessage) error
	Close() error
}
