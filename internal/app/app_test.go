package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kaetram/client/internal/config"
	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/sim"
)

func TestRunRequestsUnknownActors(t *testing.T) {
	received := make(chan string, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","id":"me","x":1,"y":1}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"move","id":"ghost","x":2,"y":2}`))
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(payload)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Transport.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	cfg.Map.Width, cfg.Map.Height = 8, 8
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := Run(ctx, cfg, Options{Logger: zap.NewNop(), Out: &out}); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}

	select {
	case payload := <-received:
		if !strings.Contains(payload, `"type":"`+proto.TypeEntityRequest+`"`) {
			t.Fatalf("expected entity request, got %s", payload)
		}
	default:
		t.Fatalf("server never received the roster refresh")
	}
	if !strings.Contains(out.String(), "network.unknown_actor") {
		t.Fatalf("expected unknown actor on the console, got %q", out.String())
	}
}

func TestRunFailsWithoutServer(t *testing.T) {
	cfg := config.Default()
	cfg.Transport.URL = "ws://127.0.0.1:1/"
	if err := Run(context.Background(), cfg, Options{Logger: zap.NewNop(), Out: &bytes.Buffer{}}); err == nil {
		t.Fatalf("expected dial failure")
	}
}

func TestBuildSinks(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Sinks = []string{"console", "zap"}
	named, err := buildSinks(cfg, &bytes.Buffer{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(named) != 2 || named[0].Name != "console" || named[1].Name != "zap" {
		t.Fatalf("unexpected sinks %+v", named)
	}

	cfg.Logging.Sinks = []string{"carrier-pigeon"}
	if _, err := buildSinks(cfg, &bytes.Buffer{}, zap.NewNop()); err == nil {
		t.Fatalf("expected unknown sink error")
	}

	if got := withoutSink([]string{"console", "json"}, "console"); len(got) != 1 || got[0] != "json" {
		t.Fatalf("expected console removed, got %v", got)
	}
}

func TestTerminalQuitCancels(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init screen: %v", err)
	}
	screen.SetSize(20, 6)

	engine := sim.NewEngine(sim.Config{Width: 8, Height: 8, TileSize: 16}, sim.Deps{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	term := startTerminal(screen, engine, cancel)
	t.Cleanup(term.close)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	deadline := time.Now().Add(2 * time.Second)
	for ctx.Err() == nil && time.Now().Before(deadline) {
		term.afterStep(sim.StepResult{})
		time.Sleep(5 * time.Millisecond)
	}
	if ctx.Err() == nil {
		t.Fatalf("expected quit key to cancel the run")
	}
}
