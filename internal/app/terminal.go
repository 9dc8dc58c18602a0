package app

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"kaetram/client/internal/render/term"
	"kaetram/client/internal/sim"
)

// terminal connects the tcell view to the engine. Input is polled on its own
// goroutine and applied on the frame goroutine after each step.
type terminal struct {
	screen tcell.Screen
	view   *term.View
	engine *sim.Engine
	cancel context.CancelFunc
	events chan tcell.Event
	quit   chan struct{}
}

func newTerminal(engine *sim.Engine, cancel context.CancelFunc) (*terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init terminal: %w", err)
	}
	screen.EnableMouse()
	return startTerminal(screen, engine, cancel), nil
}

func startTerminal(screen tcell.Screen, engine *sim.Engine, cancel context.CancelFunc) *terminal {
	t := &terminal{
		screen: screen,
		view:   term.NewView(screen, engine.Grid(), engine.Roster()),
		engine: engine,
		cancel: cancel,
		events: make(chan tcell.Event, 64),
		quit:   make(chan struct{}),
	}
	engine.Subscribe(t.view)
	go t.poll()
	return t
}

func (t *terminal) poll() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.quit:
			return
		}
	}
}

func (t *terminal) afterStep(sim.StepResult) {
	for {
		select {
		case ev := <-t.events:
			t.apply(t.view.Translate(ev))
		default:
			t.view.Draw()
			return
		}
	}
}

func (t *terminal) apply(cmd term.Command) {
	switch cmd.Action {
	case term.ActionQuit:
		t.cancel()
	case term.ActionMove:
		t.engine.MoveLocal(cmd.Cell)
	case term.ActionStop:
		t.engine.StopLocal()
	case term.ActionTarget:
		t.engine.TargetLocal(cmd.Target)
	}
}

func (t *terminal) close() {
	close(t.quit)
	t.screen.Fini()
}
