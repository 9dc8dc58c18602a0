package logging

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// Router fans events from the frame goroutine out to sinks. Publish never
// blocks: a full queue drops the event. A single dispatcher writes every sink
// in registration order, so sinks see events in publish order.
type Router struct {
	cfg         Config
	clock       Clock
	fallback    *log.Logger
	minSeverity Severity
	fields      map[string]any

	mu     sync.RWMutex
	queue  chan Event
	closed bool
	done   chan struct{}

	sinks []*routedSink

	statsMu     sync.Mutex
	events      uint64
	dropped     uint64
	byCategory  map[string]uint64
	lastDropLog time.Time
}

type routedSink struct {
	name     string
	sink     Sink
	failures int
	disabled bool
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
	// ByCategory counts routed events per category.
	ByCategory map[string]uint64
	// DisabledSinks lists sinks switched off after repeated write failures.
	DisabledSinks []string
}

// NewRouter starts the dispatcher. Sink names must be unique.
func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	if cfg.SinkFailureLimit <= 0 {
		cfg.SinkFailureLimit = 3
	}
	if cfg.DropWarnInterval <= 0 {
		cfg.DropWarnInterval = 5 * time.Second
	}
	r := &Router{
		cfg:         cfg,
		clock:       clock,
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
		minSeverity: cfg.MinimumSeverity,
		fields:      cfg.CloneFields(),
		queue:       make(chan Event, bufferSize),
		done:        make(chan struct{}),
		byCategory:  make(map[string]uint64),
	}
	seen := make(map[string]bool, len(namedSinks))
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		if seen[named.Name] {
			return nil, fmt.Errorf("duplicate sink %q", named.Name)
		}
		seen[named.Name] = true
		r.sinks = append(r.sinks, &routedSink{name: named.Name, sink: named.Sink})
	}
	go r.dispatch()
	return r, nil
}

func (r *Router) dispatch() {
	defer close(r.done)
	for event := range r.queue {
		r.route(event)
	}
}

func (r *Router) route(event Event) {
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		event = cloneForFields(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}
	r.statsMu.Lock()
	r.events++
	r.byCategory[event.Category]++
	r.statsMu.Unlock()

	for _, s := range r.sinks {
		if s.disabled {
			continue
		}
		if err := s.sink.Write(event); err != nil {
			s.failures++
			if s.failures >= r.cfg.SinkFailureLimit {
				s.disabled = true
				r.fallback.Printf("sink %s disabled after %d failures: %v", s.name, s.failures, err)
			}
			continue
		}
		s.failures = 0
	}
}

// Publish queues event for the sinks. Events below the minimum severity or
// without a type are discarded here so they never take queue space.
func (r *Router) Publish(ctx context.Context, event Event) {
	if event.Type == "" || event.Severity < r.minSeverity {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.drop(event)
	}
}

func (r *Router) drop(event Event) {
	now := r.clock.Now()
	r.statsMu.Lock()
	r.dropped++
	warn := r.lastDropLog.IsZero() || now.Sub(r.lastDropLog) >= r.cfg.DropWarnInterval
	if warn {
		r.lastDropLog = now
	}
	total := r.dropped
	r.statsMu.Unlock()
	if warn {
		r.fallback.Printf("dropping event type=%s tick=%d (%d dropped)", event.Type, event.Tick, total)
	}
}

// Close stops accepting events, waits for queued events to reach the sinks
// and closes them.
func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, s := range r.sinks {
		if err := s.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats is safe to call while the router runs. DisabledSinks is only
// reliable after Close.
func (r *Router) Stats() RouterStats {
	r.statsMu.Lock()
	stats := RouterStats{
		EventsTotal:  r.events,
		DroppedTotal: r.dropped,
		ByCategory:   make(map[string]uint64, len(r.byCategory)),
	}
	for k, v := range r.byCategory {
		stats.ByCategory[k] = v
	}
	r.statsMu.Unlock()

	select {
	case <-r.done:
		for _, s := range r.sinks {
			if s.disabled {
				stats.DisabledSinks = append(stats.DisabledSinks, s.name)
			}
		}
	default:
	}
	return stats
}

func (r *Router) Sink(name string) Sink {
	for _, s := range r.sinks {
		if s.name == name {
			return s.sink
		}
	}
	return nil
}
