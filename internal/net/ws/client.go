package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/net/transport"
	"kaetram/client/internal/telemetry"
	"kaetram/client/logging"
	"kaetram/client/logging/network"
)

const writeWait = 10 * time.Second

// Config controls how the client connects.
type Config struct {
	URL           string
	Codec         proto.Codec
	InboxCapacity int
	WriteTimeout  time.Duration
	Header        http.Header
	Logger        telemetry.Logger
	Metrics       telemetry.Metrics
	Publisher     logging.Publisher
}

// Client is a websocket Transport. A reader goroutine decodes frames into an
// inbox that the frame loop drains.
type Client struct {
	conn      *websocket.Conn
	codec     proto.Codec
	inbox     *transport.Inbox
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	pub       logging.Publisher
	frameType int
	writeWait time.Duration

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	err    error
}

var _ transport.Transport = (*Client)(nil)

// Dial opens a websocket connection to cfg.URL and starts reading.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
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
	wait := cfg.WriteTimeout
	if wait <= 0 {
		wait = writeWait
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, cfg.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}

	frameType := websocket.TextMessage
	if codec.Binary() {
		frameType = websocket.BinaryMessage
	}
	c := &Client{
		conn:      conn,
		codec:     codec,
		inbox:     transport.NewInbox(capacity, metrics),
		logger:    logger,
		metrics:   metrics,
		pub:       pub,
		frameType: frameType,
		writeWait: wait,
		done:      make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if !c.closed {
				c.err = err
			}
			c.mu.Unlock()
			return
		}
		msg, err := proto.DecodeServerMessage(c.codec, payload)
		if err != nil {
			c.metrics.Add(telemetry.MetricInboundMalformed, 1)
			c.logger.Printf("discarding malformed frame: %v", err)
			network.MalformedMessage(context.Background(), c.pub, 0, network.MessagePayload{Message: msg.Type, Reason: err.Error()}, nil)
			continue
		}
		if !c.inbox.Push(msg) {
			c.logger.Printf("inbox full, dropping %s for %s", msg.Type, msg.ID)
		}
	}
}

// Drain returns the frames received since the previous call.
func (c *Client) Drain() []proto.ServerMessage {
	return c.inbox.Drain()
}

// Send encodes and writes msg.
func (c *Client) Send(msg proto.ClientMessage) error {
	data, err := proto.EncodeClientMessage(c.codec, msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteMessage(c.frameType, data)
}

// Done is closed once the reader stops.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err reports why the reader stopped, or nil after a local Close.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close sends a close frame and tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(c.writeWait))
	c.mu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}
