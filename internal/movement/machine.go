package movement

import (
	"kaetram/client/internal/transition"
	"kaetram/client/internal/world"
)

// State is the coarse movement state of an actor.
type State int

const (
	StateIdle State = iota
	StateFollowing
	StatePathing
	StateInterrupted
)

func (s State) String() string {
	switch s {
	case StateFollowing:
		return "following"
	case StatePathing:
		return "pathing"
	case StateInterrupted:
		return "interrupted"
	default:
		return "idle"
	}
}

// request is a pending path plan.
type request struct {
	goal       world.Point
	ignores    []world.Point
	trimLast   bool
	incomplete bool
}

// Machine holds the movement state of a single actor. It is owned by the
// Controller and addressed by actor id.
type Machine struct {
	id          string
	path        []world.Point
	step        int
	steps       uint64
	destination world.Point
	redirect    *request
	interrupted bool
	origin      world.Vec2
	direction   world.Point
	tween       transition.Transition

	following  string
	followCell world.Point

	// followStalled suppresses re-planning toward an unreachable target
	// until it moves.
	followStalled bool
}

func newMachine(id string) *Machine {
	return &Machine{id: id}
}

// State derives the current state from the machine fields.
func (m *Machine) State() State {
	switch {
	case len(m.path) > 0 && m.interrupted:
		return StateInterrupted
	case len(m.path) > 0:
		return StatePathing
	case m.following != "":
		return StateFollowing
	default:
		return StateIdle
	}
}

func (m *Machine) hasPath() bool {
	return len(m.path) > 0
}

func (m *Machine) hasNextStep() bool {
	return m.step+1 < len(m.path)
}

// remaining returns the path cells not yet reached.
func (m *Machine) remaining() []world.Point {
	if !m.hasPath() {
		return nil
	}
	return m.path[m.step:]
}

func (m *Machine) clearPath() {
	m.path = nil
	m.step = 0
	m.redirect = nil
	m.interrupted = false
}
