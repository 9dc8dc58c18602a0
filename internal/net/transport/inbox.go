package transport

import (
	"sync"

	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/telemetry"
)

const (
	inboxOccupancyMetricKey = "transport_inbox_occupancy"
	inboxOverflowMetricKey  = "transport_inbox_overflow_total"
)

// DefaultInboxCapacity bounds the frames buffered between two drains.
const DefaultInboxCapacity = 1024

// Inbox stores decoded server messages in a fixed-size ring. It is safe for
// concurrent producers and a single consumer.
type Inbox struct {
	mu      sync.Mutex
	data    []proto.ServerMessage
	head    int
	tail    int
	count   int
	metrics telemetry.Metrics
}

// NewInbox constructs a ring buffer with the provided capacity.
func NewInbox(capacity int, metrics telemetry.Metrics) *Inbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Inbox{
		data:    make([]proto.ServerMessage, capacity),
		metrics: metrics,
	}
}

// Capacity reports the maximum number of messages the inbox can hold.
func (b *Inbox) Capacity() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Push stages a message, returning false if the inbox is full.
func (b *Inbox) Push(msg proto.ServerMessage) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == len(b.data) {
		if b.metrics != nil {
			b.metrics.Add(inboxOverflowMetricKey, 1)
		}
		return false
	}
	b.data[b.tail] = msg
	b.tail = (b.tail + 1) % len(b.data)
	b.count++
	b.storeOccupancyLocked()
	return true
}

// Drain returns all staged messages in FIFO order and clears the inbox.
func (b *Inbox) Drain() []proto.ServerMessage {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil
	}
	msgs := make([]proto.ServerMessage, b.count)
	for i := 0; i < b.count; i++ {
		idx := (b.head + i) % len(b.data)
		msgs[i] = b.data[idx]
		b.data[idx] = proto.ServerMessage{}
	}
	b.head = 0
	b.tail = 0
	b.count = 0
	b.storeOccupancyLocked()
	return msgs
}

// Len reports the number of staged messages.
func (b *Inbox) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *Inbox) storeOccupancyLocked() {
	if b.metrics == nil {
		return
	}
	b.metrics.Store(inboxOccupancyMetricKey, uint64(b.count))
}
