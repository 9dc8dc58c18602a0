package movement

import (
	"testing"
	"time"

	"kaetram/client/internal/entity"
	"kaetram/client/internal/pathfinding"
	"kaetram/client/internal/spatial"
	"kaetram/client/internal/world"
)

const (
	testTile  = 16
	testSpeed = 100 * time.Millisecond
)

type harness struct {
	t          *testing.T
	grid       *world.Grid
	index      *spatial.Index
	roster     *entity.Roster
	controller *Controller
	events     []Event
	base       time.Time
	elapsed    time.Duration
}

func newHarness(t *testing.T, width, height int) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		grid:   world.NewGrid(width, height, testTile),
		index:  spatial.NewIndex(width, height),
		roster: entity.NewRoster(),
		base:   time.Unix(1000, 0),
	}
	h.controller = NewController(Deps{
		Grid:   h.grid,
		Index:  h.index,
		Finder: pathfinding.New(pathfinding.DefaultConfig(), nil),
		Lookup: func(id string) (Mover, bool) {
			c, ok := h.roster.Get(id)
			if !ok {
				return nil, false
			}
			return c, true
		},
	}, DefaultConfig())
	h.controller.Subscribe(ListenerFunc(func(event Event) {
		h.events = append(h.events, event)
	}))
	h.controller.SetTime(h.base)
	return h
}

func (h *harness) spawn(id string, cell world.Point) *entity.Character {
	c := entity.NewCharacter(entity.Spawn{ID: id, Kind: entity.KindMob, Cell: cell, Speed: testSpeed}, testTile)
	h.roster.Add(c)
	h.controller.Track(id)
	return c
}

func (h *harness) advance(d time.Duration) {
	h.elapsed += d
	h.controller.Update(h.base.Add(h.elapsed))
}

func (h *harness) count(kind EventKind, id string) int {
	n := 0
	for _, event := range h.events {
		if event.Kind == kind && event.ActorID == id {
			n++
		}
	}
	return n
}

func (h *harness) last(kind EventKind, id string) (Event, bool) {
	for i := len(h.events) - 1; i >= 0; i-- {
		if h.events[i].Kind == kind && h.events[i].ActorID == id {
			return h.events[i], true
		}
	}
	return Event{}, false
}

func (h *harness) assertIndexed(id string, cell world.Point) {
	h.t.Helper()
	got, ok := h.index.CellOf(id)
	if !ok || got != cell {
		h.t.Fatalf("expected %s indexed at %v, got %v (ok=%v)", id, cell, got, ok)
	}
}

func TestMoveAcrossOpenGrid(t *testing.T) {
	h := newHarness(t, 10, 10)
	actor := h.spawn("a", world.Point{X: 0, Y: 0})

	if !h.controller.Move("a", world.Point{X: 5, Y: 5}, MoveOptions{}) {
		t.Fatalf("expected move to start")
	}
	started, ok := h.last(EventPathStarted, "a")
	if !ok || len(started.Path) != 6 {
		t.Fatalf("expected a 6 cell path, got %v", started.Path)
	}
	if h.controller.State("a") != StatePathing {
		t.Fatalf("expected pathing, got %s", h.controller.State("a"))
	}

	h.advance(50 * time.Millisecond)
	if actor.Pixel() != (world.Vec2{X: 8, Y: 8}) {
		t.Fatalf("expected mid-step pixel (8,8), got %+v", actor.Pixel())
	}

	for step := 1; step <= 5; step++ {
		want := world.Point{X: step, Y: step}
		if actor.GridPosition() != want {
			t.Fatalf("step %d: expected cell %v, got %v", step, want, actor.GridPosition())
		}
		h.assertIndexed("a", want)
		if got := h.count(EventStep, "a"); got != step {
			t.Fatalf("step %d: expected %d index updates, got %d", step, step, got)
		}
		if step == 1 {
			h.advance(50 * time.Millisecond)
		} else {
			h.advance(testSpeed)
		}
	}

	if h.controller.State("a") != StateIdle {
		t.Fatalf("expected idle after arriving, got %s", h.controller.State("a"))
	}
	if got := h.count(EventStep, "a"); got != 5 {
		t.Fatalf("expected 5 steps, got %d", got)
	}
	if got := h.count(EventSecondStep, "a"); got != 2 {
		t.Fatalf("expected 2 second-step events, got %d", got)
	}
	stopped, ok := h.last(EventPathStopped, "a")
	if !ok || stopped.Reason != StopArrived || stopped.To != (world.Point{X: 5, Y: 5}) {
		t.Fatalf("unexpected stop event: %+v", stopped)
	}
	if actor.Pixel() != (world.Vec2{X: 80, Y: 80}) {
		t.Fatalf("expected settled pixel (80,80), got %+v", actor.Pixel())
	}
	if actor.Animation() != entity.AnimationIdle {
		t.Fatalf("expected idle animation, got %s", actor.Animation())
	}
}

func TestRedirectReplansFromCurrentCell(t *testing.T) {
	h := newHarness(t, 10, 10)
	h.spawn("a", world.Point{X: 0, Y: 0})

	h.controller.Move("a", world.Point{X: 5, Y: 5}, MoveOptions{})
	h.advance(testSpeed)
	if !h.controller.Move("a", world.Point{X: 0, Y: 0}, MoveOptions{}) {
		t.Fatalf("expected redirect to be queued")
	}
	if got := h.count(EventPathStarted, "a"); got != 1 {
		t.Fatalf("expected redirect to wait for the step boundary, got %d starts", got)
	}

	h.advance(testSpeed)
	started, ok := h.last(EventPathStarted, "a")
	if !ok || h.count(EventPathStarted, "a") != 2 {
		t.Fatalf("expected a second path start")
	}
	if started.From != (world.Point{X: 2, Y: 2}) || started.Path[0] != (world.Point{X: 2, Y: 2}) {
		t.Fatalf("expected re-plan from (2,2), got from=%v path=%v", started.From, started.Path)
	}
	if started.Destination != (world.Point{}) {
		t.Fatalf("expected destination (0,0), got %v", started.Destination)
	}
}

func TestOrientationFollowsStepDirection(t *testing.T) {
	h := newHarness(t, 10, 10)
	actor := h.spawn("a", world.Point{X: 4, Y: 4})

	cases := []struct {
		goal world.Point
		want world.Orientation
	}{
		{goal: world.Point{X: 6, Y: 4}, want: world.OrientationRight},
		{goal: world.Point{X: 6, Y: 2}, want: world.OrientationUp},
		{goal: world.Point{X: 3, Y: 2}, want: world.OrientationLeft},
		{goal: world.Point{X: 3, Y: 5}, want: world.OrientationDown},
	}
	for _, tc := range cases {
		h.controller.Move("a", tc.goal, MoveOptions{})
		if actor.Orientation() != tc.want {
			t.Fatalf("moving toward %v: expected %s, got %s", tc.goal, tc.want, actor.Orientation())
		}
		for h.controller.IsMoving("a") {
			h.advance(testSpeed)
		}
	}
}

func TestSoftStopDefersToStepBoundary(t *testing.T) {
	h := newHarness(t, 10, 10)
	actor := h.spawn("a", world.Point{X: 0, Y: 0})

	h.controller.Move("a", world.Point{X: 5, Y: 0}, MoveOptions{})
	h.controller.Stop("a", false)
	if h.controller.State("a") != StateInterrupted {
		t.Fatalf("expected interrupted, got %s", h.controller.State("a"))
	}
	if h.count(EventPathStopped, "a") != 0 {
		t.Fatalf("expected soft stop to wait for the boundary")
	}

	h.advance(testSpeed)
	stopped, ok := h.last(EventPathStopped, "a")
	if !ok || stopped.Reason != StopInterrupted {
		t.Fatalf("expected interrupted stop, got %+v", stopped)
	}
	if actor.GridPosition() != (world.Point{X: 1, Y: 0}) {
		t.Fatalf("expected to stop at (1,0), got %v", actor.GridPosition())
	}
	if h.controller.State("a") != StateIdle {
		t.Fatalf("expected idle, got %s", h.controller.State("a"))
	}
}

func TestHardStopSettlesImmediately(t *testing.T) {
	h := newHarness(t, 10, 10)
	actor := h.spawn("a", world.Point{X: 0, Y: 0})

	h.controller.Move("a", world.Point{X: 5, Y: 0}, MoveOptions{})
	h.advance(40 * time.Millisecond)
	h.controller.Stop("a", true)

	if h.controller.State("a") != StateIdle || h.controller.IsMoving("a") {
		t.Fatalf("expected idle after hard stop")
	}
	stopped, ok := h.last(EventPathStopped, "a")
	if !ok || stopped.Reason != StopForced {
		t.Fatalf("expected forced stop, got %+v", stopped)
	}
	if actor.Pixel() != actor.GridPosition().Pixel(testTile) {
		t.Fatalf("expected pixel snapped to %v, got %+v", actor.GridPosition(), actor.Pixel())
	}

	steps := h.count(EventStep, "a")
	h.advance(time.Second)
	if h.count(EventStep, "a") != steps {
		t.Fatalf("expected no further steps after hard stop")
	}
}

func TestFrozenActorsIgnoreMoves(t *testing.T) {
	h := newHarness(t, 10, 10)
	actor := h.spawn("a", world.Point{X: 0, Y: 0})
	actor.SetFrozen(true)

	if h.controller.Move("a", world.Point{X: 3, Y: 3}, MoveOptions{}) {
		t.Fatalf("expected frozen actor to refuse the move")
	}
}

func TestStopsWhenTargetInRange(t *testing.T) {
	h := newHarness(t, 10, 1)
	actor := h.spawn("a", world.Point{X: 0, Y: 0})
	h.spawn("t", world.Point{X: 5, Y: 0})
	actor.SetTarget("t")

	h.controller.Move("a", world.Point{X: 5, Y: 0}, MoveOptions{})
	for i := 0; i < 10; i++ {
		h.advance(testSpeed)
	}

	if actor.GridPosition() != (world.Point{X: 4, Y: 0}) {
		t.Fatalf("expected to stop at (4,0), got %v", actor.GridPosition())
	}
	stopped, ok := h.last(EventPathStopped, "a")
	if !ok || stopped.Reason != StopInRange || stopped.Target != "t" {
		t.Fatalf("expected in-range stop on t, got %+v", stopped)
	}
	if actor.Pixel() != (world.Vec2{X: 64, Y: 0}) {
		t.Fatalf("expected pixel to settle on (4,0), got %+v", actor.Pixel())
	}
}

func TestFollowTracksTarget(t *testing.T) {
	h := newHarness(t, 12, 1)
	follower := h.spawn("f", world.Point{X: 0, Y: 0})
	h.spawn("t", world.Point{X: 5, Y: 0})

	if !h.controller.Follow("f", "t") {
		t.Fatalf("expected follow to start")
	}
	for i := 0; i < 6; i++ {
		h.advance(testSpeed)
	}
	if follower.GridPosition() != (world.Point{X: 4, Y: 0}) {
		t.Fatalf("expected follower adjacent at (4,0), got %v", follower.GridPosition())
	}
	if h.controller.State("f") != StateFollowing {
		t.Fatalf("expected following, got %s", h.controller.State("f"))
	}
	stopped, _ := h.last(EventPathStopped, "f")
	if stopped.Target != "t" {
		t.Fatalf("expected stop to reference the followed actor, got %q", stopped.Target)
	}

	h.controller.Teleport("t", world.Point{X: 8, Y: 0})
	for i := 0; i < 6; i++ {
		h.advance(testSpeed)
	}
	if follower.GridPosition() != (world.Point{X: 7, Y: 0}) {
		t.Fatalf("expected follower to re-plan to (7,0), got %v", follower.GridPosition())
	}

	h.controller.Stop("f", true)
	if h.controller.Following("f") != "" {
		t.Fatalf("expected hard stop to clear following")
	}
}

func TestForgetClearsFollowersAndIndex(t *testing.T) {
	h := newHarness(t, 10, 10)
	h.spawn("f", world.Point{X: 0, Y: 0})
	h.spawn("t", world.Point{X: 6, Y: 0})
	h.controller.Follow("f", "t")

	h.controller.Forget("t")
	h.roster.Remove("t")
	if h.controller.Following("f") != "" {
		t.Fatalf("expected follower to drop a forgotten target")
	}
	if _, ok := h.index.CellOf("t"); ok {
		t.Fatalf("expected t removed from index")
	}
}

func TestObjectTargetsStopAdjacent(t *testing.T) {
	h := newHarness(t, 10, 1)
	actor := h.spawn("a", world.Point{X: 0, Y: 0})
	h.grid.SetBlocking(4, 0, true)
	h.grid.MarkObject(4, 0, true)
	h.grid.SetBlocking(8, 0, true)

	if h.controller.Move("a", world.Point{X: 8, Y: 0}, MoveOptions{}) {
		t.Fatalf("expected colliding non-object goal to be refused")
	}
	if !h.controller.Move("a", world.Point{X: 4, Y: 0}, MoveOptions{}) {
		t.Fatalf("expected object goal to be accepted")
	}
	for h.controller.IsMoving("a") {
		h.advance(testSpeed)
	}
	if actor.GridPosition() != (world.Point{X: 3, Y: 0}) {
		t.Fatalf("expected to stop beside the object at (3,0), got %v", actor.GridPosition())
	}
	if !h.grid.IsColliding(4, 0) {
		t.Fatalf("expected object tile to stay blocking")
	}
}

func TestTeleportRelocatesWithoutPathing(t *testing.T) {
	h := newHarness(t, 10, 10)
	actor := h.spawn("a", world.Point{X: 0, Y: 0})
	h.controller.Move("a", world.Point{X: 5, Y: 5}, MoveOptions{})
	h.advance(30 * time.Millisecond)

	h.controller.Teleport("a", world.Point{X: 8, Y: 2})

	if actor.GridPosition() != (world.Point{X: 8, Y: 2}) {
		t.Fatalf("expected cell (8,2), got %v", actor.GridPosition())
	}
	if actor.Pixel() != (world.Vec2{X: 128, Y: 32}) {
		t.Fatalf("expected pixel (128,32), got %+v", actor.Pixel())
	}
	h.assertIndexed("a", world.Point{X: 8, Y: 2})
	if h.index.Occupied(1, 1) {
		t.Fatalf("expected previous cell to be cleared")
	}
	stopped, ok := h.last(EventPathStopped, "a")
	if !ok || stopped.Reason != StopTeleport {
		t.Fatalf("expected teleport stop, got %+v", stopped)
	}
	if _, ok := h.last(EventTeleported, "a"); !ok {
		t.Fatalf("expected teleported event")
	}
}

func TestUnreachableGoalDropsRequest(t *testing.T) {
	h := newHarness(t, 10, 10)
	h.spawn("a", world.Point{X: 0, Y: 0})
	for _, cell := range []world.Point{{X: 4, Y: 5}, {X: 6, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 6}, {X: 4, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}, {X: 6, Y: 4}} {
		h.grid.SetBlocking(cell.X, cell.Y, true)
	}

	if h.controller.Move("a", world.Point{X: 5, Y: 5}, MoveOptions{}) {
		t.Fatalf("expected unreachable move to be dropped")
	}
	if _, ok := h.last(EventUnreachable, "a"); !ok {
		t.Fatalf("expected unreachable event")
	}
	if h.controller.State("a") != StateIdle {
		t.Fatalf("expected idle, got %s", h.controller.State("a"))
	}
}

func TestRedundantMoveIsNoop(t *testing.T) {
	h := newHarness(t, 10, 10)
	h.spawn("a", world.Point{X: 3, Y: 3})
	if h.controller.Move("a", world.Point{X: 3, Y: 3}, MoveOptions{}) {
		t.Fatalf("expected move onto the current cell to be ignored")
	}
	if len(h.events) != 0 {
		t.Fatalf("expected no events, got %d", len(h.events))
	}
}

func TestForgetStopsActivePath(t *testing.T) {
	h := newHarness(t, 10, 1)
	h.spawn("a", world.Point{X: 0, Y: 0})
	h.controller.Move("a", world.Point{X: 5, Y: 0}, MoveOptions{})
	h.advance(50 * time.Millisecond)

	h.controller.Forget("a")
	stop, ok := h.last(EventPathStopped, "a")
	if !ok || stop.Reason != StopRemoved {
		t.Fatalf("expected removed stop, got %+v (found=%v)", stop, ok)
	}
	if h.controller.IsPathing("a") {
		t.Fatalf("expected forgotten actor to stop pathing")
	}
	if h.index.Len() != 0 {
		t.Fatalf("expected empty index, got %d entries", h.index.Len())
	}
}
