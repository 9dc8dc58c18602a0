package netsync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"kaetram/client/internal/entity"
	"kaetram/client/internal/movement"
	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/telemetry"
	"kaetram/client/internal/world"
	"kaetram/client/logging"
	"kaetram/client/logging/lifecycle"
	"kaetram/client/logging/network"
)

// ErrUnknownType is returned for messages this client does not understand.
var ErrUnknownType = errors.New("unknown message type")

// ErrMissingID is returned for actor messages without an actor id.
var ErrMissingID = errors.New("message actor id missing")

// Config tunes the sync handler.
type Config struct {
	// RefreshCooldown is the minimum spacing between entity list requests
	// caused by unknown actors.
	RefreshCooldown time.Duration
	// TeleportAnimation keeps an actor frozen after an animated teleport.
	TeleportAnimation time.Duration
	// DespawnDelay keeps a dead combatant in the roster while its death
	// animation plays.
	DespawnDelay time.Duration
	// DefaultSpeed applies to spawns that carry no speed.
	DefaultSpeed time.Duration
}

// DefaultConfig mirrors the server's pacing.
func DefaultConfig() Config {
	return Config{
		RefreshCooldown:   DefaultRefreshCooldown,
		TeleportAnimation: 500 * time.Millisecond,
		DespawnDelay:      time.Second,
		DefaultSpeed:      entity.DefaultSpeed,
	}
}

// Deps are the collaborators the handler mutates.
type Deps struct {
	Roster     *entity.Roster
	Controller *movement.Controller
	Grid       *world.Grid
	Publisher  logging.Publisher
	Metrics    telemetry.Metrics
}

// Handler applies server messages to the local world and turns local player
// movement into outbound intents. Messages are applied in arrival order on
// the frame goroutine.
type Handler struct {
	roster     *entity.Roster
	controller *movement.Controller
	grid       *world.Grid
	pub        logging.Publisher
	metrics    telemetry.Metrics
	cfg        Config
	refresh    *refreshPolicy

	outbox   []proto.ClientMessage
	dying    map[string]time.Time
	thawAt   map[string]time.Time
	applying bool

	now  time.Time
	tick uint64
}

// NewHandler builds a handler over deps.
func NewHandler(deps Deps, cfg Config) *Handler {
	pub := deps.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	if cfg.RefreshCooldown <= 0 {
		cfg.RefreshCooldown = DefaultRefreshCooldown
	}
	return &Handler{
		roster:     deps.Roster,
		controller: deps.Controller,
		grid:       deps.Grid,
		pub:        pub,
		metrics:    metrics,
		cfg:        cfg,
		refresh:    newRefreshPolicy(cfg.RefreshCooldown),
		dying:      make(map[string]time.Time),
		thawAt:     make(map[string]time.Time),
	}
}

// Begin stamps the frame that subsequent calls belong to.
func (h *Handler) Begin(now time.Time, tick uint64) {
	h.now = now
	h.tick = tick
}

// Handle applies a single inbound message. Errors describe malformed
// messages; unknown actors are not errors.
func (h *Handler) Handle(msg proto.ServerMessage) error {
	h.metrics.Add(telemetry.MetricInboundMessages, 1)
	h.applying = true
	defer func() { h.applying = false }()

	switch msg.Type {
	case proto.TypeWelcome, proto.TypeSpawn, proto.TypeMove, proto.TypeFollow,
		proto.TypeStop, proto.TypeTeleport, proto.TypeDespawn, proto.TypePositionSync,
		proto.TypeFreeze, proto.TypeStunned, proto.TypeOrientate, proto.TypeEffect:
		if msg.ID == "" {
			return fmt.Errorf("%s: %w", msg.Type, ErrMissingID)
		}
	}
	if msg.Type == proto.TypeFollow && msg.Target == "" {
		return fmt.Errorf("%s target: %w", msg.Type, ErrMissingID)
	}

	switch msg.Type {
	case proto.TypeWelcome:
		h.handleSpawn(msg, true)
	case proto.TypeSpawn:
		h.handleSpawn(msg, false)
	case proto.TypeMove:
		h.handleMove(msg)
	case proto.TypeFollow:
		h.handleFollow(msg)
	case proto.TypeStop:
		if _, ok := h.known(msg, msg.ID); ok {
			h.controller.Stop(msg.ID, true)
		}
	case proto.TypeTeleport:
		h.handleTeleport(msg)
	case proto.TypeDespawn:
		h.handleDespawn(msg)
	case proto.TypeEntityList:
		h.handleEntityList(msg)
	case proto.TypePositionSync:
		h.handlePositionSync(msg)
	case proto.TypeFreeze:
		if character, ok := h.known(msg, msg.ID); ok {
			character.SetFrozen(msg.State)
			if msg.State {
				h.controller.Stop(msg.ID, true)
			}
		}
	case proto.TypeStunned:
		if character, ok := h.known(msg, msg.ID); ok {
			character.SetStunned(msg.State)
			if msg.State {
				h.controller.Stop(msg.ID, true)
			}
		}
	case proto.TypeOrientate:
		if character, ok := h.known(msg, msg.ID); ok {
			character.SetOrientation(world.ParseOrientation(msg.Orientation))
		}
	case proto.TypeEffect:
		if character, ok := h.known(msg, msg.ID); ok && msg.Name != "" {
			if msg.State {
				character.AddEffect(msg.Name)
			} else {
				character.RemoveEffect(msg.Name)
			}
		}
	case proto.TypeMapRegion:
		h.handleMapRegion(msg)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return nil
}

// known resolves id, requesting a roster refresh when it is missing. Actors
// playing their death animation are gone as far as the server is concerned.
func (h *Handler) known(msg proto.ServerMessage, id string) (*entity.Character, bool) {
	if h.Dying(id) {
		h.ignore(msg, "despawning")
		return nil, false
	}
	if character, ok := h.roster.Get(id); ok {
		return character, true
	}
	h.metrics.Add(telemetry.MetricUnknownActors, 1)
	network.UnknownActor(context.Background(), h.pub, h.tick, logging.Ref(id, ""), network.MessagePayload{Message: msg.Type}, nil)
	h.requestRefresh(msg.Type, id)
	return nil, false
}

func (h *Handler) requestRefresh(message, id string) {
	payload := network.RefreshPayload{
		Trigger:        message,
		CooldownMillis: h.cfg.RefreshCooldown.Milliseconds(),
	}
	signal, ok := h.refresh.request(h.now, message, id)
	if !ok {
		h.metrics.Add(telemetry.MetricRosterRefreshMuted, 1)
		payload.RemainingMillis = h.refresh.remaining(h.now).Milliseconds()
		network.RosterRefreshSuppressed(context.Background(), h.pub, h.tick, payload, nil)
		return
	}
	h.metrics.Add(telemetry.MetricRosterRefreshSent, 1)
	var extra map[string]any
	if summary := signal.summary(); summary != "" {
		extra = map[string]any{"summary": summary}
	}
	network.RosterRefreshRequested(context.Background(), h.pub, h.tick, payload, extra)
	h.outbox = append(h.outbox, proto.EntityRequest(nil))
}

func (h *Handler) ignore(msg proto.ServerMessage, reason string) {
	network.IgnoredMessage(context.Background(), h.pub, h.tick, h.ref(msg.ID), network.MessagePayload{Message: msg.Type, Reason: reason}, nil)
}

func (h *Handler) ref(id string) logging.EntityRef {
	if character, ok := h.roster.Get(id); ok {
		return logging.Ref(id, string(character.Kind()))
	}
	return logging.Ref(id, "")
}

func (h *Handler) handleSpawn(msg proto.ServerMessage, local bool) {
	if h.Dying(msg.ID) {
		h.remove(msg.ID)
	}
	if h.roster.Has(msg.ID) {
		if !local {
			h.ignore(msg, "already spawned")
			return
		}
		h.controller.Teleport(msg.ID, msg.Cell())
		h.roster.SetLocal(msg.ID)
		return
	}
	kind := entity.ParseKind(msg.Kind)
	speed := time.Duration(msg.SpeedMillis) * time.Millisecond
	if speed <= 0 {
		speed = h.cfg.DefaultSpeed
	}
	if local {
		kind = entity.KindPlayer
	}
	character := entity.NewCharacter(entity.Spawn{
		ID:          msg.ID,
		Kind:        kind,
		Name:        msg.Name,
		Cell:        msg.Cell(),
		Orientation: world.ParseOrientation(msg.Orientation),
		Speed:       speed,
		AttackRange: msg.AttackRange,
		Owner:       msg.Owner,
	}, h.grid.TileSize())
	h.roster.Add(character)
	if local {
		h.roster.SetLocal(msg.ID)
	}
	h.controller.Track(msg.ID)
	h.metrics.Store(telemetry.MetricActorsTracked, uint64(h.roster.Len()))
	lifecycle.ActorSpawned(context.Background(), h.pub, h.tick, logging.Ref(msg.ID, string(kind)), lifecycle.SpawnPayload{X: msg.X, Y: msg.Y, Local: local}, nil)
}

func (h *Handler) handleMove(msg proto.ServerMessage) {
	if _, ok := h.known(msg, msg.ID); !ok {
		return
	}
	if msg.Forced {
		h.controller.Stop(msg.ID, true)
	}
	h.controller.Move(msg.ID, msg.Cell(), movement.MoveOptions{Forced: msg.Forced, Incomplete: true})
}

func (h *Handler) handleFollow(msg proto.ServerMessage) {
	character, ok := h.known(msg, msg.ID)
	if !ok {
		return
	}
	if _, ok := h.known(msg, msg.Target); !ok {
		return
	}
	if h.roster.IsLocal(msg.ID) && !character.HasTarget() && !msg.Forced {
		h.ignore(msg, "local player has no target")
		return
	}
	h.controller.Follow(msg.ID, msg.Target)
}

func (h *Handler) handleTeleport(msg proto.ServerMessage) {
	character, ok := h.known(msg, msg.ID)
	if !ok {
		return
	}
	from := character.GridPosition()
	h.controller.Unfollow(msg.ID)
	character.ClearEffects()
	h.controller.Teleport(msg.ID, msg.Cell())

	animated := msg.Animate && h.cfg.TeleportAnimation > 0
	if animated {
		character.SetFrozen(true)
		h.thawAt[msg.ID] = h.now.Add(h.cfg.TeleportAnimation)
	}
	lifecycle.ActorTeleported(context.Background(), h.pub, h.tick, h.ref(msg.ID), lifecycle.TeleportPayload{
		FromX: from.X, FromY: from.Y, ToX: msg.X, ToY: msg.Y, Animated: animated,
	}, nil)
}

func (h *Handler) handleDespawn(msg proto.ServerMessage) {
	character, ok := h.roster.Get(msg.ID)
	if !ok {
		h.ignore(msg, "not in roster")
		return
	}
	if h.roster.IsLocal(msg.ID) {
		h.ignore(msg, "local player")
		return
	}
	if h.Dying(msg.ID) {
		h.ignore(msg, "already despawning")
		return
	}
	h.clearTargeting(msg.ID)
	h.controller.Forget(msg.ID)

	animated := character.Kind().Combatant() && h.cfg.DespawnDelay > 0
	if animated {
		character.Kill()
		h.dying[msg.ID] = h.now.Add(h.cfg.DespawnDelay)
	} else {
		h.remove(msg.ID)
	}
	lifecycle.ActorDespawned(context.Background(), h.pub, h.tick, h.ref(msg.ID), lifecycle.DespawnPayload{Animated: animated}, nil)
}

func (h *Handler) handleEntityList(msg proto.ServerMessage) {
	local := make([]string, 0, h.roster.Len())
	for _, id := range h.roster.IDs() {
		if !h.Dying(id) {
			local = append(local, id)
		}
	}
	remove, request := DiffRoster(local, msg.Entities, h.roster.LocalID())
	for _, id := range remove {
		ref := h.ref(id)
		h.clearTargeting(id)
		h.remove(id)
		lifecycle.ActorPruned(context.Background(), h.pub, h.tick, ref, nil)
	}
	if len(request) > 0 {
		h.outbox = append(h.outbox, proto.EntityRequest(request))
	}
}

func (h *Handler) handlePositionSync(msg proto.ServerMessage) {
	character, ok := h.known(msg, msg.ID)
	if !ok {
		return
	}
	if h.controller.IsMoving(msg.ID) {
		return
	}
	from := character.GridPosition()
	to := msg.Cell()
	if from == to {
		return
	}
	h.controller.Teleport(msg.ID, to)
	h.metrics.Add(telemetry.MetricDriftCorrections, 1)
	lifecycle.DriftCorrected(context.Background(), h.pub, h.tick, h.ref(msg.ID), lifecycle.TeleportPayload{
		FromX: from.X, FromY: from.Y, ToX: to.X, ToY: to.Y,
	}, nil)
}

func (h *Handler) handleMapRegion(msg proto.ServerMessage) {
	h.grid.ApplyRegion(msg.Cell(), msg.Region)
	for _, cell := range msg.Objects {
		h.grid.MarkObject(cell.X, cell.Y, true)
	}
}

func (h *Handler) clearTargeting(id string) {
	h.roster.Each(func(c *entity.Character) {
		if c.Target() == id {
			c.ClearTarget()
		}
	})
}

// remove drops id from the controller, the index and the roster.
func (h *Handler) remove(id string) {
	h.controller.Forget(id)
	h.roster.Remove(id)
	delete(h.dying, id)
	delete(h.thawAt, id)
	h.metrics.Store(telemetry.MetricActorsTracked, uint64(h.roster.Len()))
}

// Update finishes death animations and teleport freezes that have elapsed.
func (h *Handler) Update(now time.Time) {
	h.now = now
	for _, id := range sortedDue(h.dying, now) {
		h.remove(id)
	}
	for _, id := range sortedDue(h.thawAt, now) {
		delete(h.thawAt, id)
		if character, ok := h.roster.Get(id); ok {
			character.SetFrozen(false)
		}
	}
}

func sortedDue(deadlines map[string]time.Time, now time.Time) []string {
	var due []string
	for id, at := range deadlines {
		if !now.Before(at) {
			due = append(due, id)
		}
	}
	sort.Strings(due)
	return due
}

// Dying reports whether id is playing its death animation.
func (h *Handler) Dying(id string) bool {
	_, ok := h.dying[id]
	return ok
}

// Flush returns and clears the pending outbound messages.
func (h *Handler) Flush() []proto.ClientMessage {
	if len(h.outbox) == 0 {
		return nil
	}
	out := h.outbox
	h.outbox = nil
	return out
}
