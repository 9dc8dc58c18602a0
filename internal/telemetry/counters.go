package telemetry

import (
	"sync"
	"sync/atomic"
)

const (
	MetricInboundMessages     = "inbound_messages"
	MetricInboundMalformed    = "inbound_malformed"
	MetricUnknownActors       = "unknown_actors"
	MetricRosterRefreshSent   = "roster_refresh_sent"
	MetricRosterRefreshMuted  = "roster_refresh_suppressed"
	MetricDriftCorrections    = "drift_corrections"
	MetricPathFailures        = "path_failures"
	MetricPathAborted         = "path_aborted"
	MetricPathPartial         = "path_partial"
	MetricIntentsSent         = "intents_sent"
	MetricSendFailures        = "send_failures"
	MetricActorsTracked       = "actors_tracked"
	MetricFrameDurationMillis = "frame_duration_ms"
)

// Counters is an in-memory Metrics implementation safe for concurrent use.
type Counters struct {
	mu     sync.RWMutex
	values map[string]*atomic.Uint64
}

// NewCounters constructs an empty counter set.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]*atomic.Uint64)}
}

func (c *Counters) counter(key string) *atomic.Uint64 {
	c.mu.RLock()
	value, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return value
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if value, ok = c.values[key]; ok {
		return value
	}
	value = &atomic.Uint64{}
	c.values[key] = value
	return value
}

// Add increments key by delta.
func (c *Counters) Add(key string, delta uint64) {
	if c == nil || key == "" {
		return
	}
	c.counter(key).Add(delta)
}

// Store overwrites key with value.
func (c *Counters) Store(key string, value uint64) {
	if c == nil || key == "" {
		return
	}
	c.counter(key).Store(value)
}

// Load returns the current value for key.
func (c *Counters) Load(key string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if value, ok := c.values[key]; ok {
		return value.Load()
	}
	return 0
}

// Snapshot copies every counter.
func (c *Counters) Snapshot() map[string]uint64 {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]uint64, len(c.values))
	for key, value := range c.values {
		out[key] = value.Load()
	}
	return out
}
