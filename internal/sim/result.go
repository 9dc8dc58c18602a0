package sim

import "time"

// TickContext identifies the frame being executed.
type TickContext struct {
	Tick uint64
	Now  time.Time
}

// StepResult reports what a single frame did.
type StepResult struct {
	Tick         uint64
	Now          time.Time
	Inbound      int
	Malformed    int
	Outbound     int
	SendFailures int

	Duration time.Duration
	Budget   time.Duration
}
