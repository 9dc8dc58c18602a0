package term

import (
	"github.com/gdamore/tcell/v2"

	"kaetram/client/internal/entity"
	"kaetram/client/internal/world"
)

// Action is what a terminal event asks the client to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionMove
	ActionStop
	ActionTarget
)

// Command is a translated terminal event.
type Command struct {
	Action Action
	Cell   world.Point
	Target string
}

// Translate maps keys and clicks to commands. Arrow keys and hjkl step the
// local player one tile; a click walks to the cell or targets the actor on it.
func (v *View) Translate(ev tcell.Event) Command {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.translateKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return Command{}
		}
		x, y := ev.Position()
		cell, ok := v.CellAt(x, y)
		if !ok {
			return Command{}
		}
		if id := v.actorAt(cell); id != "" {
			return Command{Action: ActionTarget, Cell: cell, Target: id}
		}
		return Command{Action: ActionMove, Cell: cell}
	}
	return Command{}
}

func (v *View) translateKey(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Command{Action: ActionQuit}
	case tcell.KeyUp:
		return v.step(0, -1)
	case tcell.KeyDown:
		return v.step(0, 1)
	case tcell.KeyLeft:
		return v.step(-1, 0)
	case tcell.KeyRight:
		return v.step(1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return Command{Action: ActionQuit}
		case 's':
			return Command{Action: ActionStop}
		case 'k':
			return v.step(0, -1)
		case 'j':
			return v.step(0, 1)
		case 'h':
			return v.step(-1, 0)
		case 'l':
			return v.step(1, 0)
		}
	}
	return Command{}
}

func (v *View) step(dx, dy int) Command {
	local, ok := v.roster.Local()
	if !ok {
		return Command{}
	}
	return Command{Action: ActionMove, Cell: local.GridPosition().Add(dx, dy)}
}

func (v *View) actorAt(cell world.Point) string {
	found := ""
	v.roster.Each(func(c *entity.Character) {
		if found != "" || v.roster.IsLocal(c.ID()) || c.IsDead() {
			return
		}
		if c.GridPosition() == cell {
			found = c.ID()
		}
	})
	return found
}
