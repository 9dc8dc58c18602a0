package entity

import (
	"time"

	"kaetram/client/internal/world"
)

// DefaultSpeed is the per-tile movement duration when the server omits one.
const DefaultSpeed = 250 * time.Millisecond

// Animation names reported to the renderer.
const (
	AnimationIdle  = "idle"
	AnimationWalk  = "walk"
	AnimationDeath = "death"
)

// Character is the client side state of a single actor. The movement and
// synchronisation layers mutate it through its methods; nothing else holds a
// pointer to it beyond the current frame.
type Character struct {
	id          string
	kind        Kind
	name        string
	grid        world.Point
	pixel       world.Vec2
	tileSize    int
	orientation world.Orientation
	speed       time.Duration
	attackRange int
	target      string
	owner       string
	animation   string
	frozen      bool
	stunned     bool
	dead        bool
	moving      bool
	effects     []string
}

// Spawn describes the initial state of a character.
type Spawn struct {
	ID          string
	Kind        Kind
	Name        string
	Cell        world.Point
	Orientation world.Orientation
	Speed       time.Duration
	AttackRange int
	Owner       string
}

// NewCharacter builds a character aligned to its spawn cell.
func NewCharacter(spawn Spawn, tileSize int) *Character {
	speed := spawn.Speed
	if speed <= 0 {
		speed = DefaultSpeed
	}
	orientation := spawn.Orientation
	if orientation == "" {
		orientation = world.OrientationDown
	}
	c := &Character{
		id:          spawn.ID,
		kind:        spawn.Kind,
		name:        spawn.Name,
		tileSize:    tileSize,
		orientation: orientation,
		speed:       speed,
		attackRange: spawn.AttackRange,
		owner:       spawn.Owner,
		animation:   AnimationIdle,
	}
	c.SetGridPosition(spawn.Cell)
	c.SnapPixel()
	return c
}

func (c *Character) ID() string                     { return c.id }
func (c *Character) Kind() Kind                     { return c.kind }
func (c *Character) Name() string                   { return c.name }
func (c *Character) GridPosition() world.Point      { return c.grid }
func (c *Character) Pixel() world.Vec2              { return c.pixel }
func (c *Character) Orientation() world.Orientation { return c.orientation }
func (c *Character) Speed() time.Duration           { return c.speed }
func (c *Character) Owner() string                  { return c.owner }
func (c *Character) Animation() string              { return c.animation }
func (c *Character) IsDead() bool                   { return c.dead }
func (c *Character) IsMoving() bool                 { return c.moving }
func (c *Character) IsStunned() bool                { return c.stunned }

// IsFrozen reports whether the character is barred from starting or continuing
// a path. Stunned characters are frozen for movement purposes.
func (c *Character) IsFrozen() bool {
	return c.frozen || c.stunned || c.dead
}

// SetGridPosition moves the logical cell without touching the pixel position.
func (c *Character) SetGridPosition(cell world.Point) {
	c.grid = cell
}

// SetPixel updates the rendered position.
func (c *Character) SetPixel(pixel world.Vec2) {
	c.pixel = pixel
}

// SnapPixel aligns the pixel position with the current cell.
func (c *Character) SnapPixel() {
	c.pixel = c.grid.Pixel(c.tileSize)
}

func (c *Character) SetOrientation(orientation world.Orientation) {
	if orientation == "" {
		return
	}
	c.orientation = orientation
}

func (c *Character) SetSpeed(speed time.Duration) {
	if speed <= 0 {
		return
	}
	c.speed = speed
}

func (c *Character) SetFrozen(frozen bool)   { c.frozen = frozen }
func (c *Character) SetStunned(stunned bool) { c.stunned = stunned }

// Kill marks the character dead and switches it to the death animation.
func (c *Character) Kill() {
	c.dead = true
	c.moving = false
	c.animation = AnimationDeath
}

// Target returns the id of the targeted actor, if any.
func (c *Character) Target() string { return c.target }

// SetTarget replaces the current target. An empty id clears it.
func (c *Character) SetTarget(id string) { c.target = id }

// ClearTarget drops the current target.
func (c *Character) ClearTarget() { c.target = "" }

// HasTarget reports whether a target is set.
func (c *Character) HasTarget() bool { return c.target != "" }

// AttackRange is the reach in tiles used to stop next to a target.
func (c *Character) AttackRange() int {
	if c.attackRange <= 0 {
		return 1
	}
	return c.attackRange
}

// InteractionTarget exposes the target and reach the movement layer checks
// after each step.
func (c *Character) InteractionTarget() (string, int) {
	if c.target == "" {
		return "", 0
	}
	return c.target, c.AttackRange()
}

// OnStep switches the character into its walking animation.
func (c *Character) OnStep(prev, next world.Point) {
	c.moving = true
	if c.animation != AnimationDeath {
		c.animation = AnimationWalk
	}
}

// OnStopPathing returns the character to idle at cell.
func (c *Character) OnStopPathing(cell world.Point) {
	c.moving = false
	if c.animation != AnimationDeath {
		c.animation = AnimationIdle
	}
}

// AddEffect attaches a named visual effect.
func (c *Character) AddEffect(name string) {
	for _, existing := range c.effects {
		if existing == name {
			return
		}
	}
	c.effects = append(c.effects, name)
}

// RemoveEffect detaches a named visual effect.
func (c *Character) RemoveEffect(name string) {
	for i, existing := range c.effects {
		if existing == name {
			c.effects = append(c.effects[:i], c.effects[i+1:]...)
			return
		}
	}
}

// Effects returns a copy of the attached visual effects.
func (c *Character) Effects() []string {
	return append([]string(nil), c.effects...)
}

// ClearEffects removes every visual effect.
func (c *Character) ClearEffects() {
	c.effects = nil
}
