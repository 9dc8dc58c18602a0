package natsbus

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/net/transport"
	"kaetram/client/internal/telemetry"
	"kaetram/client/internal/world"
)

func startBroker(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("failed to create nats server: %v", err)
	}
	ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatalf("nats server not ready for connections")
	}
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns.ClientURL()
}

func TestBusRoundTrip(t *testing.T) {
	url := startBroker(t)
	counters := telemetry.NewCounters()
	bus, err := Connect(Config{URL: url, Session: "s1", Metrics: counters})
	if err != nil {
		t.Fatalf("failed to connect bus: %v", err)
	}
	t.Cleanup(func() { bus.Close() })

	game, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("failed to connect game side: %v", err)
	}
	t.Cleanup(game.Close)
	intents, err := game.SubscribeSync(ClientSubject("s1"))
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	game.Flush()

	game.Publish(ServerSubject("s1"), []byte(`garbage`))
	frame, _ := json.Marshal(proto.ServerMessage{Type: proto.TypeTeleport, ID: "p", X: 7, Y: 8})
	game.Publish(ServerSubject("s1"), frame)
	game.Flush()

	var msgs []proto.ServerMessage
	deadline := time.Now().Add(2 * time.Second)
	for len(msgs) == 0 && time.Now().Before(deadline) {
		msgs = bus.Drain()
		time.Sleep(5 * time.Millisecond)
	}
	if len(msgs) != 1 || msgs[0].Cell() != (world.Point{X: 7, Y: 8}) {
		t.Fatalf("expected teleport to (7,8), got %+v", msgs)
	}
	if got := counters.Load(telemetry.MetricInboundMalformed); got != 1 {
		t.Fatalf("expected one malformed message, got %d", got)
	}

	if err := bus.Send(proto.MovementStop(world.Point{X: 7, Y: 8}, "", 1)); err != nil {
		t.Fatalf("failed to send: %v", err)
	}
	got, err := intents.NextMsg(2 * time.Second)
	if err != nil {
		t.Fatalf("expected intent on client subject: %v", err)
	}
	var decoded proto.ClientMessage
	if err := json.Unmarshal(got.Data, &decoded); err != nil {
		t.Fatalf("failed to decode intent: %v", err)
	}
	if decoded.Type != proto.TypeMovementStop || decoded.X != 7 || decoded.Ver != proto.Version {
		t.Fatalf("unexpected intent %+v", decoded)
	}
}

func TestBusGeneratesSession(t *testing.T) {
	url := startBroker(t)
	bus, err := Connect(Config{URL: url})
	if err != nil {
		t.Fatalf("failed to connect bus: %v", err)
	}
	if bus.Session() == "" {
		t.Fatalf("expected generated session id")
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := bus.Send(proto.EntityRequest(nil)); !errors.Is(err, transport.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestConnectFailure(t *testing.T) {
	if _, err := Connect(Config{URL: "nats://127.0.0.1:1"}); err == nil {
		t.Fatalf("expected connect error")
	}
}
