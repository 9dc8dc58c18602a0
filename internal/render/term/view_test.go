package term

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"kaetram/client/internal/entity"
	"kaetram/client/internal/movement"
	"kaetram/client/internal/world"
)

func newTestView(t *testing.T) (*View, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(20, 6)

	grid := world.NewGrid(40, 40, 16)
	grid.SetBlocking(21, 20, true)
	roster := entity.NewRoster()
	roster.Add(entity.NewCharacter(entity.Spawn{ID: "me", Kind: entity.KindPlayer, Cell: world.Point{X: 20, Y: 20}}, 16))
	roster.SetLocal("me")
	roster.Add(entity.NewCharacter(entity.Spawn{ID: "rat", Kind: entity.KindMob, Cell: world.Point{X: 19, Y: 20}}, 16))
	return NewView(screen, grid, roster), screen
}

func runeAt(screen tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestViewCentersOnLocalPlayer(t *testing.T) {
	view, screen := newTestView(t)
	view.Draw()

	if origin := view.Origin(); origin != (world.Point{X: 10, Y: 18}) {
		t.Fatalf("expected origin (10,18), got %v", origin)
	}
	tests := []struct {
		x, y int
		want rune
	}{
		{10, 2, '@'},
		{11, 2, '#'},
		{9, 2, 'm'},
		{0, 0, '.'},
	}
	for _, tc := range tests {
		if got := runeAt(screen, tc.x, tc.y); got != tc.want {
			t.Fatalf("expected %q at (%d,%d), got %q", tc.want, tc.x, tc.y, got)
		}
	}
}

func TestViewStatusLine(t *testing.T) {
	view, screen := newTestView(t)
	view.HandleMovement(movement.Event{Kind: movement.EventPathStopped, ActorID: "rat", Reason: movement.StopArrived})
	if view.Status() != "" {
		t.Fatalf("expected remote events to be ignored, got %q", view.Status())
	}

	view.HandleMovement(movement.Event{
		Kind:    movement.EventPathStopped,
		ActorID: "me",
		To:      world.Point{X: 20, Y: 20},
		Reason:  movement.StopInRange,
	})
	view.Draw()

	var line strings.Builder
	for x := 0; x < 20; x++ {
		line.WriteRune(runeAt(screen, x, 5))
	}
	if !strings.HasPrefix(line.String(), "stopped at 20,20") {
		t.Fatalf("unexpected status line %q", line.String())
	}
}

func TestTranslateInput(t *testing.T) {
	view, _ := newTestView(t)

	tests := []struct {
		name  string
		event tcell.Event
		want  Command
	}{
		{name: "arrow", event: tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), want: Command{Action: ActionMove, Cell: world.Point{X: 21, Y: 20}}},
		{name: "vi key", event: tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), want: Command{Action: ActionMove, Cell: world.Point{X: 20, Y: 19}}},
		{name: "stop", event: tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone), want: Command{Action: ActionStop}},
		{name: "quit", event: tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), want: Command{Action: ActionQuit}},
		{name: "click actor", event: tcell.NewEventMouse(9, 2, tcell.Button1, tcell.ModNone), want: Command{Action: ActionTarget, Cell: world.Point{X: 19, Y: 20}, Target: "rat"}},
		{name: "click floor", event: tcell.NewEventMouse(12, 2, tcell.Button1, tcell.ModNone), want: Command{Action: ActionMove, Cell: world.Point{X: 22, Y: 20}}},
		{name: "click status", event: tcell.NewEventMouse(3, 5, tcell.Button1, tcell.ModNone), want: Command{}},
		{name: "mouse move", event: tcell.NewEventMouse(3, 3, tcell.ButtonNone, tcell.ModNone), want: Command{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := view.Translate(tc.event); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
