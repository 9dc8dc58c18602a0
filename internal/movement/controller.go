package movement

import (
	"context"
	"sort"
	"time"

	"kaetram/client/internal/entity"
	"kaetram/client/internal/pathfinding"
	"kaetram/client/internal/spatial"
	"kaetram/client/internal/world"
	"kaetram/client/logging"
	loggingmovement "kaetram/client/logging/movement"
)

// Mover is the movement contract every actor kind implements.
type Mover interface {
	ID() string
	GridPosition() world.Point
	SetGridPosition(world.Point)
	SetPixel(world.Vec2)
	SetOrientation(world.Orientation)
	Speed() time.Duration
	IsFrozen() bool
	// InteractionTarget returns the targeted actor and the reach in tiles at
	// which pathing toward it should stop.
	InteractionTarget() (id string, reach int)
	OnStep(prev, next world.Point)
	OnStopPathing(cell world.Point)
}

// Lookup resolves an actor id for the duration of a single call.
type Lookup func(id string) (Mover, bool)

// Config tunes the controller.
type Config struct {
	// FollowRepathDistance is how far, in tiles, a followed actor must move
	// before the follower plans a new path.
	FollowRepathDistance int
}

// DefaultConfig re-plans as soon as a followed actor changes cell.
func DefaultConfig() Config {
	return Config{FollowRepathDistance: 1}
}

// Deps are the collaborators a Controller operates on.
type Deps struct {
	Grid      *world.Grid
	Index     *spatial.Index
	Finder    *pathfinding.Pathfinder
	Lookup    Lookup
	Publisher logging.Publisher
}

// MoveOptions tweak a single move request.
type MoveOptions struct {
	// Forced replaces the current path immediately instead of queueing a
	// redirect for the next step boundary.
	Forced bool
	// Incomplete allows approaching a goal that cannot be reached.
	Incomplete bool
}

// Controller runs the movement state machine of every tracked actor. It is
// driven from the frame loop and is not safe for concurrent use.
type Controller struct {
	grid      *world.Grid
	index     *spatial.Index
	finder    *pathfinding.Pathfinder
	lookup    Lookup
	pub       logging.Publisher
	cfg       Config
	machines  map[string]*Machine
	listeners []Listener
	now       time.Time
	tick      uint64
}

// NewController wires a controller to its collaborators.
func NewController(deps Deps, cfg Config) *Controller {
	if cfg.FollowRepathDistance <= 0 {
		cfg.FollowRepathDistance = 1
	}
	finder := deps.Finder
	if finder == nil {
		finder = pathfinding.New(pathfinding.DefaultConfig(), nil)
	}
	pub := deps.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Controller{
		grid:     deps.Grid,
		index:    deps.Index,
		finder:   finder,
		lookup:   deps.Lookup,
		pub:      pub,
		cfg:      cfg,
		machines: make(map[string]*Machine),
	}
}

// Subscribe registers a listener for movement events.
func (c *Controller) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	c.listeners = append(c.listeners, listener)
}

// SetTime sets the frame time used to start interpolations outside Update.
func (c *Controller) SetTime(now time.Time) {
	c.now = now
}

// Now returns the current frame time.
func (c *Controller) Now() time.Time {
	return c.now
}

// SetTick records the frame counter attached to published events.
func (c *Controller) SetTick(tick uint64) {
	c.tick = tick
}

// State reports the movement state of id. Untracked actors are idle.
func (c *Controller) State(id string) State {
	m, ok := c.machines[id]
	if !ok {
		return StateIdle
	}
	return m.State()
}

// IsPathing reports whether id has an active path.
func (c *Controller) IsPathing(id string) bool {
	m, ok := c.machines[id]
	return ok && m.hasPath()
}

// IsMoving reports whether id is pathing or still interpolating onto a cell.
func (c *Controller) IsMoving(id string) bool {
	m, ok := c.machines[id]
	return ok && (m.hasPath() || m.tween.InProgress())
}

// Path returns the cells id has yet to reach, starting with its current cell.
func (c *Controller) Path(id string) []world.Point {
	m, ok := c.machines[id]
	if !ok {
		return nil
	}
	return append([]world.Point(nil), m.remaining()...)
}

// Destination returns the final cell of the active path.
func (c *Controller) Destination(id string) (world.Point, bool) {
	m, ok := c.machines[id]
	if !ok || !m.hasPath() {
		return world.Point{}, false
	}
	return m.destination, true
}

// Following returns the id being followed by id.
func (c *Controller) Following(id string) string {
	if m, ok := c.machines[id]; ok {
		return m.following
	}
	return ""
}

func (c *Controller) machine(id string) *Machine {
	m, ok := c.machines[id]
	if !ok {
		m = newMachine(id)
		c.machines[id] = m
	}
	return m
}

// Track registers id in the spatial index at its current cell.
func (c *Controller) Track(id string) {
	mover, ok := c.lookup(id)
	if !ok {
		return
	}
	c.machine(id)
	c.index.Register(id, mover.GridPosition())
}

// Forget drops all movement state for id and removes it from the index.
// Followers of id stop following.
func (c *Controller) Forget(id string) {
	if m, ok := c.machines[id]; ok {
		m.tween.Stop()
		c.index.Unregister(id, m.remaining()...)
		if mover, ok := c.lookup(id); ok && m.hasPath() {
			c.finish(m, mover, StopRemoved)
		}
		delete(c.machines, id)
	} else {
		c.index.Unregister(id)
	}
	for _, other := range c.machines {
		if other.following == id {
			other.following = ""
		}
	}
}

// Go is a player initiated move: it cancels any follow before moving.
func (c *Controller) Go(id string, goal world.Point, opts MoveOptions) bool {
	if m, ok := c.machines[id]; ok {
		m.following = ""
	}
	return c.Move(id, goal, opts)
}

// Move requests a path from the actor's cell to goal. While a path is active
// the request is queued and applied at the next step boundary unless forced.
// It reports whether a path was started or queued.
func (c *Controller) Move(id string, goal world.Point, opts MoveOptions) bool {
	mover, ok := c.lookup(id)
	if !ok || mover.IsFrozen() {
		return false
	}
	if c.grid.IsOutOfBounds(goal.X, goal.Y) {
		return false
	}
	req := request{goal: goal, incomplete: opts.Incomplete}
	if c.grid.IsColliding(goal.X, goal.Y) {
		switch {
		case c.grid.IsObject(goal.X, goal.Y):
			req.ignores = []world.Point{goal}
			req.trimLast = true
		case !opts.Incomplete:
			return false
		}
	}

	m := c.machine(id)
	if m.hasPath() {
		if !opts.Forced {
			m.redirect = &req
			return true
		}
		m.tween.Stop()
		c.snap(mover)
		m.clearPath()
	}
	if goal == mover.GridPosition() {
		return false
	}
	started, _ := c.start(m, mover, req)
	return started
}

// Follow makes id track targetID, re-planning whenever the target changes cell.
func (c *Controller) Follow(id, targetID string) bool {
	if id == targetID {
		return false
	}
	mover, ok := c.lookup(id)
	if !ok {
		return false
	}
	target, ok := c.lookup(targetID)
	if !ok {
		return false
	}
	return c.follow(c.machine(id), mover, target)
}

// Unfollow stops tracking without interrupting the current path.
func (c *Controller) Unfollow(id string) {
	if m, ok := c.machines[id]; ok {
		m.following = ""
	}
}

// Stop halts id. A soft stop lets the current step finish and stops at the
// next boundary; a hard stop clears the path and settles the actor on its
// current cell immediately.
func (c *Controller) Stop(id string, hard bool) {
	m, ok := c.machines[id]
	if !ok {
		return
	}
	m.following = ""
	if !hard {
		if m.hasPath() {
			m.interrupted = true
		}
		return
	}
	mover, ok := c.lookup(id)
	if !ok {
		return
	}
	if m.tween.InProgress() {
		m.tween.Stop()
		c.snap(mover)
	}
	if m.hasPath() {
		c.finish(m, mover, StopForced)
	}
}

// Teleport relocates id without pathing.
func (c *Controller) Teleport(id string, cell world.Point) {
	mover, ok := c.lookup(id)
	if !ok {
		return
	}
	m := c.machine(id)
	m.tween.Stop()
	if m.hasPath() {
		c.finish(m, mover, StopTeleport)
	}
	from := mover.GridPosition()
	c.index.Unregister(id, from)
	mover.SetGridPosition(cell)
	c.snap(mover)
	c.index.Register(id, cell)
	c.emit(Event{Kind: EventTeleported, ActorID: id, From: from, To: cell, Next: cell})
}

// Update advances every interpolation to now and re-plans followers whose
// target moved.
func (c *Controller) Update(now time.Time) {
	c.now = now
	for _, id := range c.ids() {
		m, ok := c.machines[id]
		if !ok || !m.tween.InProgress() {
			continue
		}
		m.tween.Step(now)
	}
	c.updateFollowers()
}

func (c *Controller) ids() []string {
	ids := make([]string, 0, len(c.machines))
	for id := range c.machines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Controller) updateFollowers() {
	for _, id := range c.ids() {
		m, ok := c.machines[id]
		if !ok || m.following == "" {
			continue
		}
		mover, ok := c.lookup(id)
		if !ok {
			continue
		}
		target, ok := c.lookup(m.following)
		if !ok {
			m.following = ""
			continue
		}
		cell := target.GridPosition()
		moved := cell.Distance(m.followCell) >= c.cfg.FollowRepathDistance
		apart := !m.hasPath() && !m.tween.InProgress() && !m.followStalled && mover.GridPosition().Distance(cell) > 1
		if moved || apart {
			c.follow(m, mover, target)
		}
	}
}

func (c *Controller) follow(m *Machine, mover, target Mover) bool {
	cell := target.GridPosition()
	m.following = target.ID()
	m.followCell = cell
	m.followStalled = false
	if mover.IsFrozen() {
		return false
	}
	if !m.hasPath() && mover.GridPosition().Distance(cell) <= 1 {
		if orientation, ok := world.OrientationBetween(mover.GridPosition(), cell); ok {
			mover.SetOrientation(orientation)
		}
		return true
	}
	req := request{goal: cell, ignores: []world.Point{cell}, trimLast: true, incomplete: true}
	if m.hasPath() {
		m.redirect = &req
		return true
	}
	started, _ := c.start(m, mover, req)
	if !started {
		m.followStalled = true
	}
	return started
}

// plan searches for req from the actor's cell. reachable is false when the
// search produced nothing at all.
func (c *Controller) plan(mover Mover, req request) ([]world.Point, bool) {
	result := c.finder.Find(c.grid, mover.GridPosition(), req.goal, req.incomplete, req.ignores...)
	path := result.Path
	if len(path) == 0 {
		return nil, false
	}
	if req.trimLast && path[len(path)-1] == req.goal {
		path = path[:len(path)-1]
	}
	return path, true
}

func (c *Controller) start(m *Machine, mover Mover, req request) (bool, bool) {
	origin := mover.GridPosition()
	path, reachable := c.plan(mover, req)
	if !reachable {
		c.emit(Event{Kind: EventUnreachable, ActorID: m.id, From: origin, To: origin, Next: origin, Destination: req.goal})
		loggingmovement.PathUnreachable(context.Background(), c.pub, c.tick, refFor(mover), loggingmovement.PathPayload{
			FromX: origin.X, FromY: origin.Y, ToX: req.goal.X, ToY: req.goal.Y,
		}, nil)
		return false, false
	}
	if len(path) < 2 {
		return false, true
	}
	if m.tween.InProgress() {
		m.tween.Stop()
		c.snap(mover)
	}
	m.path = path
	m.step = 0
	m.destination = path[len(path)-1]
	m.interrupted = false
	m.redirect = nil

	c.emit(Event{
		Kind:        EventPathStarted,
		ActorID:     m.id,
		From:        origin,
		To:          origin,
		Next:        path[1],
		Path:        append([]world.Point(nil), path...),
		Destination: m.destination,
		Speed:       mover.Speed(),
	})
	loggingmovement.PathStarted(context.Background(), c.pub, c.tick, refFor(mover), loggingmovement.PathPayload{
		FromX: origin.X, FromY: origin.Y, ToX: m.destination.X, ToY: m.destination.Y, Length: len(path),
	}, nil)

	c.advance(m, mover)
	return true, true
}

// advance performs one step: leave the index, move to the next cell, face
// the direction of travel, re-enter the index and interpolate the pixel
// position across the tile.
func (c *Controller) advance(m *Machine, mover Mover) {
	prev := m.path[m.step]
	c.emit(Event{Kind: EventBeforeStep, ActorID: m.id, From: prev, To: prev, Next: m.path[m.step+1]})
	c.index.Unregister(m.id, m.remaining()...)

	m.step++
	next := m.path[m.step]
	mover.SetGridPosition(next)
	orientation, ok := world.OrientationBetween(prev, next)
	if ok {
		mover.SetOrientation(orientation)
	}
	c.index.Register(m.id, next)
	m.steps++

	mover.OnStep(prev, next)
	upcoming := next
	if m.hasNextStep() {
		upcoming = m.path[m.step+1]
	}
	c.emit(Event{Kind: EventStep, ActorID: m.id, From: prev, To: next, Next: upcoming, Orientation: orientation})
	if m.steps%2 == 0 {
		c.emit(Event{Kind: EventSecondStep, ActorID: m.id, From: prev, To: next, Next: upcoming, Orientation: orientation})
	}

	tileSize := c.grid.TileSize()
	m.origin = prev.Pixel(tileSize)
	m.direction = next.Sub(prev)
	mover.SetPixel(m.origin)
	id := m.id
	m.tween.Start(c.now, 0, float64(tileSize), mover.Speed(), func(value float64) {
		c.interpolate(id, value)
	}, func() {
		c.arrive(id)
	})

	if c.inRange(mover) {
		c.finish(m, mover, StopInRange)
	}
}

func (c *Controller) interpolate(id string, value float64) {
	m, ok := c.machines[id]
	if !ok {
		return
	}
	mover, ok := c.lookup(id)
	if !ok {
		return
	}
	offset := world.Vec2{X: float64(m.direction.X), Y: float64(m.direction.Y)}.Scale(value)
	mover.SetPixel(m.origin.Add(offset))
}

// arrive runs when the interpolation onto the current cell completes.
func (c *Controller) arrive(id string) {
	m, ok := c.machines[id]
	if !ok {
		return
	}
	mover, ok := c.lookup(id)
	if !ok {
		return
	}
	c.snap(mover)
	cell := mover.GridPosition()
	c.emit(Event{Kind: EventMoved, ActorID: id, From: cell, To: cell, Next: cell})
	if !m.hasPath() {
		return
	}

	switch {
	case m.interrupted:
		c.finish(m, mover, StopInterrupted)
	case mover.IsFrozen():
		c.finish(m, mover, StopFrozen)
	case m.redirect != nil:
		req := *m.redirect
		m.clearPath()
		loggingmovement.PathRedirected(context.Background(), c.pub, c.tick, refFor(mover), loggingmovement.PathPayload{
			FromX: cell.X, FromY: cell.Y, ToX: req.goal.X, ToY: req.goal.Y,
		}, nil)
		started, reachable := c.start(m, mover, req)
		if started {
			return
		}
		reason := StopArrived
		if !reachable {
			reason = StopNoPath
		}
		c.finish(m, mover, reason)
	case m.hasNextStep():
		c.advance(m, mover)
	default:
		c.finish(m, mover, StopArrived)
	}
}

// finish clears the path and notifies listeners that pathing ended.
func (c *Controller) finish(m *Machine, mover Mover, reason StopReason) {
	cell := mover.GridPosition()
	target, _ := mover.InteractionTarget()
	if target == "" {
		target = m.following
	}
	m.clearPath()
	mover.OnStopPathing(cell)
	c.emit(Event{Kind: EventPathStopped, ActorID: m.id, From: cell, To: cell, Next: cell, Reason: reason, Target: target})
	loggingmovement.PathStopped(context.Background(), c.pub, c.tick, refFor(mover), loggingmovement.StopPayload{
		X: cell.X, Y: cell.Y, Reason: string(reason),
	}, nil)
}

func (c *Controller) inRange(mover Mover) bool {
	targetID, reach := mover.InteractionTarget()
	if targetID == "" || reach <= 0 {
		return false
	}
	target, ok := c.lookup(targetID)
	if !ok {
		return false
	}
	return mover.GridPosition().Distance(target.GridPosition()) <= reach
}

func (c *Controller) snap(mover Mover) {
	mover.SetPixel(mover.GridPosition().Pixel(c.grid.TileSize()))
}

func (c *Controller) emit(event Event) {
	event.Time = c.now
	for _, listener := range c.listeners {
		listener.HandleMovement(event)
	}
}

func refFor(mover Mover) logging.EntityRef {
	if kinded, ok := mover.(interface{ Kind() entity.Kind }); ok {
		return logging.Ref(mover.ID(), string(kinded.Kind()))
	}
	return logging.Ref(mover.ID(), "")
}
