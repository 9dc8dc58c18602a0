package natsbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/net/transport"
	"kaetram/client/internal/telemetry"
	"kaetram/client/logging"
	"kaetram/client/logging/network"
)

const subjectPrefix = "kaetram.session"

// ServerSubject carries server messages for a session.
func ServerSubject(session string) string {
	return fmt.Sprintf("%s.%s.server", subjectPrefix, session)
}

// ClientSubject carries client intents for a session.
func ClientSubject(session string) string {
	return fmt.Sprintf("%s.%s.client", subjectPrefix, session)
}

// Config controls how the bus connects.
type Config struct {
	URL string
	// Session scopes the subjects. A random id is generated when empty.
	Session       string
	Codec         proto.Codec
	InboxCapacity int
	Logger        telemetry.Logger
	Metrics       telemetry.Metrics
	Publisher     logging.Publisher
}

// Bus is a Transport over a NATS session subject pair, used when the game
// server sits behind a message broker instead of a websocket gateway.
type Bus struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	session string
	codec   proto.Codec
	inbox   *transport.Inbox
	logger  telemetry.Logger
	metrics telemetry.Metrics
	pub     logging.Publisher

	mu     sync.Mutex
	closed bool
}

var _ transport.Transport = (*Bus)(nil)

// Connect dials the broker and subscribes to the session's server subject.
func Connect(cfg Config) (*Bus, error) {
	session := cfg.Session
	if session == "" {
		session = uuid.NewString()
	}
	codec := cfg.Codec
	if codec == nil {
		codec = proto.JSONCodec{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	capacity := cfg.InboxCapacity
	if capacity <= 0 {
		capacity = transport.DefaultInboxCapacity
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("kaetram-client-"+session))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	b := &Bus{
		conn:    conn,
		session: session,
		codec:   codec,
		inbox:   transport.NewInbox(capacity, metrics),
		logger:  logger,
		metrics: metrics,
		pub:     pub,
	}
	sub, err := conn.Subscribe(ServerSubject(session), b.receive)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", ServerSubject(session), err)
	}
	if err := conn.Flush(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("flushing subscription: %w", err)
	}
	b.sub = sub
	return b, nil
}

func (b *Bus) receive(m *nats.Msg) {
	msg, err := proto.DecodeServerMessage(b.codec, m.Data)
	if err != nil {
		b.metrics.Add(telemetry.MetricInboundMalformed, 1)
		b.logger.Printf("discarding malformed message on %s: %v", m.Subject, err)
		network.MalformedMessage(context.Background(), b.pub, 0, network.MessagePayload{Message: msg.Type, Reason: err.Error()}, nil)
		return
	}
	if !b.inbox.Push(msg) {
		b.logger.Printf("inbox full, dropping %s for %s", msg.Type, msg.ID)
	}
}

// Session returns the id scoping this bus's subjects.
func (b *Bus) Session() string {
	return b.session
}

// Drain returns the messages received since the previous call.
func (b *Bus) Drain() []proto.ServerMessage {
	return b.inbox.Drain()
}

// Send publishes msg on the session's client subject.
func (b *Bus) Send(msg proto.ClientMessage) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return transport.ErrClosed
	}
	data, err := proto.EncodeClientMessage(b.codec, msg)
	if err != nil {
		return err
	}
	return b.conn.Publish(ClientSubject(b.session), data)
}

// Close unsubscribes and closes the connection.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	err := b.sub.Unsubscribe()
	b.conn.Close()
	return err
}
