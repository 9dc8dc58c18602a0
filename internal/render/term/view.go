package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"kaetram/client/internal/entity"
	"kaetram/client/internal/movement"
	"kaetram/client/internal/world"
)

var (
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorDarkGoldenrod)
	styleObject  = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleLocal   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleHostile = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleFriend  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLoot    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleDead    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleStatus  = tcell.StyleDefault.Reverse(true)
)

// View draws the grid around the local player on a terminal screen. The
// bottom row is a status line fed by movement events.
type View struct {
	screen tcell.Screen
	grid   *world.Grid
	roster *entity.Roster
	status string
}

// NewView binds a view to an initialised screen.
func NewView(screen tcell.Screen, grid *world.Grid, roster *entity.Roster) *View {
	return &View{screen: screen, grid: grid, roster: roster}
}

// HandleMovement keeps the status line current for the local player.
func (v *View) HandleMovement(event movement.Event) {
	if !v.roster.IsLocal(event.ActorID) {
		return
	}
	switch event.Kind {
	case movement.EventPathStarted:
		v.status = fmt.Sprintf("walking to %d,%d", event.Destination.X, event.Destination.Y)
	case movement.EventPathStopped:
		v.status = fmt.Sprintf("stopped at %d,%d (%s)", event.To.X, event.To.Y, event.Reason)
	case movement.EventUnreachable:
		v.status = fmt.Sprintf("no path to %d,%d", event.Destination.X, event.Destination.Y)
	case movement.EventTeleported:
		v.status = fmt.Sprintf("teleported to %d,%d", event.To.X, event.To.Y)
	}
}

// Status returns the current status line text.
func (v *View) Status() string {
	return v.status
}

// Origin returns the grid cell drawn at the top-left corner.
func (v *View) Origin() world.Point {
	width, height := v.screen.Size()
	height--
	center := world.Point{X: v.grid.Width() / 2, Y: v.grid.Height() / 2}
	if local, ok := v.roster.Local(); ok {
		center = local.GridPosition()
	}
	return world.Point{
		X: min(max(center.X-width/2, 0), max(0, v.grid.Width()-width)),
		Y: min(max(center.Y-height/2, 0), max(0, v.grid.Height()-height)),
	}
}

// CellAt maps a screen coordinate to a grid cell.
func (v *View) CellAt(x, y int) (world.Point, bool) {
	origin := v.Origin()
	cell := world.Point{X: origin.X + x, Y: origin.Y + y}
	_, height := v.screen.Size()
	if y >= height-1 || v.grid.IsOutOfBounds(cell.X, cell.Y) {
		return world.Point{}, false
	}
	return cell, true
}

// Draw renders one frame.
func (v *View) Draw() {
	v.screen.Clear()
	width, height := v.screen.Size()
	origin := v.Origin()

	for sy := 0; sy < height-1; sy++ {
		for sx := 0; sx < width; sx++ {
			x, y := origin.X+sx, origin.Y+sy
			if v.grid.IsOutOfBounds(x, y) {
				continue
			}
			r, style := '.', styleFloor
			switch {
			case v.grid.IsObject(x, y):
				r, style = 'o', styleObject
			case v.grid.IsColliding(x, y):
				r, style = '#', styleWall
			}
			v.screen.SetContent(sx, sy, r, nil, style)
		}
	}

	v.roster.Each(func(c *entity.Character) {
		cell := c.GridPosition()
		sx, sy := cell.X-origin.X, cell.Y-origin.Y
		if sx < 0 || sy < 0 || sx >= width || sy >= height-1 {
			return
		}
		r, style := glyph(c, v.roster.IsLocal(c.ID()))
		v.screen.SetContent(sx, sy, r, nil, style)
	})

	for i, r := range []rune(v.status) {
		if i >= width {
			break
		}
		v.screen.SetContent(i, height-1, r, nil, styleStatus)
	}
	v.screen.Show()
}

func glyph(c *entity.Character, local bool) (rune, tcell.Style) {
	if local {
		return '@', styleLocal
	}
	if c.IsDead() {
		return 'x', styleDead
	}
	switch c.Kind() {
	case entity.KindPlayer:
		return 'p', styleFriend
	case entity.KindMob:
		return 'm', styleHostile
	case entity.KindPet:
		return 'e', styleFriend
	case entity.KindProjectile:
		return '*', styleHostile
	case entity.KindItem:
		return '$', styleLoot
	case entity.KindChest:
		return '=', styleLoot
	default:
		return 'n', styleFriend
	}
}
