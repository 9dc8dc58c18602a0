package sim

import (
	"context"

	"kaetram/client/internal/entity"
	"kaetram/client/internal/movement"
	"kaetram/client/internal/net/transport"
	"kaetram/client/internal/netsync"
	"kaetram/client/internal/pathfinding"
	"kaetram/client/internal/spatial"
	"kaetram/client/internal/telemetry"
	"kaetram/client/internal/world"
	"kaetram/client/logging/network"
)

// Config sizes the world and tunes the subsystems the engine owns.
type Config struct {
	Width      int
	Height     int
	TileSize   int
	Pathfinder pathfinding.Config
	Movement   movement.Config
	Sync       netsync.Config
}

// Engine owns the client world for one session. Every method runs on the
// frame goroutine.
type Engine struct {
	deps       Deps
	transport  transport.Transport
	grid       *world.Grid
	index      *spatial.Index
	roster     *entity.Roster
	controller *movement.Controller
	handler    *netsync.Handler
}

// NewEngine builds an empty world of the configured size wired to tr.
// Collision data arrives through map region messages.
func NewEngine(cfg Config, deps Deps, tr transport.Transport) *Engine {
	deps = deps.withDefaults()
	grid := world.NewGrid(cfg.Width, cfg.Height, cfg.TileSize)
	index := spatial.NewIndex(cfg.Width, cfg.Height)
	roster := entity.NewRoster()

	controller := movement.NewController(movement.Deps{
		Grid:   grid,
		Index:  index,
		Finder: pathfinding.New(cfg.Pathfinder, deps.Metrics),
		Lookup: func(id string) (movement.Mover, bool) {
			c, ok := roster.Get(id)
			if !ok {
				return nil, false
			}
			return c, true
		},
		Publisher: deps.Publisher,
	}, cfg.Movement)

	handler := netsync.NewHandler(netsync.Deps{
		Roster:     roster,
		Controller: controller,
		Grid:       grid,
		Publisher:  deps.Publisher,
		Metrics:    deps.Metrics,
	}, cfg.Sync)
	controller.Subscribe(handler)

	return &Engine{
		deps:       deps,
		transport:  tr,
		grid:       grid,
		index:      index,
		roster:     roster,
		controller: controller,
		handler:    handler,
	}
}

// Subscribe registers an additional movement listener, such as a renderer.
func (e *Engine) Subscribe(listener movement.Listener) {
	e.controller.Subscribe(listener)
}

// Step runs one frame: apply inbound messages in arrival order, advance
// movement, then flush intents.
func (e *Engine) Step(ctx TickContext) StepResult {
	result := StepResult{Tick: ctx.Tick, Now: ctx.Now}
	e.controller.SetTick(ctx.Tick)
	e.controller.SetTime(ctx.Now)
	e.handler.Begin(ctx.Now, ctx.Tick)

	if e.transport != nil {
		for _, msg := range e.transport.Drain() {
			result.Inbound++
			if err := e.handler.Handle(msg); err != nil {
				result.Malformed++
				e.deps.Metrics.Add(telemetry.MetricInboundMalformed, 1)
				network.MalformedMessage(context.Background(), e.deps.Publisher, ctx.Tick, network.MessagePayload{Message: msg.Type, Reason: err.Error()}, nil)
			}
		}
	}

	e.controller.Update(ctx.Now)
	e.handler.Update(ctx.Now)

	for _, msg := range e.handler.Flush() {
		if e.transport == nil {
			break
		}
		if err := e.transport.Send(msg); err != nil {
			result.SendFailures++
			e.deps.Metrics.Add(telemetry.MetricSendFailures, 1)
			network.SendFailed(context.Background(), e.deps.Publisher, ctx.Tick, network.MessagePayload{Message: msg.Type, Reason: err.Error()}, nil)
			continue
		}
		result.Outbound++
	}
	e.deps.Metrics.Store(telemetry.MetricActorsTracked, uint64(e.roster.Len()))
	return result
}

// MoveLocal paths the local player toward cell, dropping any follow or target.
func (e *Engine) MoveLocal(cell world.Point) bool {
	local, ok := e.roster.Local()
	if !ok {
		return false
	}
	local.ClearTarget()
	return e.controller.Go(local.ID(), cell, movement.MoveOptions{})
}

// TargetLocal makes the local player target and follow id.
func (e *Engine) TargetLocal(id string) bool {
	local, ok := e.roster.Local()
	if !ok || !e.roster.Has(id) || id == local.ID() {
		return false
	}
	local.SetTarget(id)
	return e.controller.Follow(local.ID(), id)
}

// StopLocal halts the local player at its current cell.
func (e *Engine) StopLocal() {
	local, ok := e.roster.Local()
	if !ok {
		return
	}
	local.ClearTarget()
	e.controller.Stop(local.ID(), true)
}

func (e *Engine) Grid() *world.Grid                { return e.grid }
func (e *Engine) Index() *spatial.Index            { return e.index }
func (e *Engine) Roster() *entity.Roster           { return e.roster }
func (e *Engine) Controller() *movement.Controller { return e.controller }
