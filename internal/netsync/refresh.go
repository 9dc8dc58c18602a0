package netsync

import (
	"fmt"
	"time"
)

// DefaultRefreshCooldown spaces out entity list requests triggered by
// messages about unknown actors.
const DefaultRefreshCooldown = 5 * time.Second

const refreshReasonLimit = 8

type refreshReason struct {
	Message string
	ActorID string
}

type refreshSignal struct {
	Suppressed uint64
	Reasons    []refreshReason
}

// refreshPolicy rate limits roster refreshes. Requests inside the cooldown are
// dropped and only counted.
type refreshPolicy struct {
	cooldown   time.Duration
	last       time.Time
	sent       bool
	suppressed uint64
	reasons    []refreshReason
}

func newRefreshPolicy(cooldown time.Duration) *refreshPolicy {
	if cooldown <= 0 {
		cooldown = DefaultRefreshCooldown
	}
	return &refreshPolicy{cooldown: cooldown, reasons: make([]refreshReason, 0, refreshReasonLimit)}
}

// request records an unknown actor sighting and reports whether a refresh
// should be sent now.
func (p *refreshPolicy) request(now time.Time, message, actorID string) (refreshSignal, bool) {
	if len(p.reasons) < refreshReasonLimit {
		p.reasons = append(p.reasons, refreshReason{Message: message, ActorID: actorID})
	}
	if p.sent && now.Sub(p.last) < p.cooldown {
		p.suppressed++
		return refreshSignal{}, false
	}
	signal := refreshSignal{
		Suppressed: p.suppressed,
		Reasons:    append([]refreshReason(nil), p.reasons...),
	}
	p.sent = true
	p.last = now
	p.suppressed = 0
	p.reasons = p.reasons[:0]
	return signal, true
}

// remaining returns how long until the next refresh may be sent.
func (p *refreshPolicy) remaining(now time.Time) time.Duration {
	if !p.sent {
		return 0
	}
	left := p.cooldown - now.Sub(p.last)
	if left < 0 {
		return 0
	}
	return left
}

func (s refreshSignal) summary() string {
	if s.Suppressed == 0 && len(s.Reasons) == 0 {
		return ""
	}
	return fmt.Sprintf("suppressed=%d reasons=%v", s.Suppressed, s.Reasons)
}
