package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kaetram/client/internal/config"
	"kaetram/client/internal/net/natsbus"
	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/net/transport"
	"kaetram/client/internal/net/ws"
	"kaetram/client/internal/sim"
	"kaetram/client/internal/telemetry"
	"kaetram/client/logging"
)

// Options are runtime switches that are not part of the config file.
type Options struct {
	// View renders the world in the terminal and reads keyboard and mouse
	// input. Console logging is disabled while it is active.
	View bool
	// Logger overrides the operational logger.
	Logger *zap.Logger
	// Out receives console sink output.
	Out io.Writer
}

// Run connects to the game server and drives the client until ctx ends or
// the connection drops.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		cfg = config.Default()
	}
	zl := opts.Logger
	if zl == nil {
		zl = zap.NewNop()
		if !opts.View {
			production, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("failed to construct logger: %w", err)
			}
			zl = production
		}
	}
	defer zl.Sync()
	logger := telemetry.WrapZap(zl.Sugar())

	session := cfg.Transport.Session
	if session == "" {
		session = uuid.NewString()
		cfg.Transport.Session = session
	}

	if opts.View {
		cfg.Logging.Sinks = withoutSink(cfg.Logging.Sinks, "console")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	named, err := buildSinks(cfg, out, zl)
	if err != nil {
		return err
	}
	routerCfg := cfg.Router()
	routerCfg.Fields = map[string]any{"session": session}
	router, err := logging.NewRouter(logging.SystemClock{}, routerCfg, named)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	counters := telemetry.NewCounters()
	tr, done, err := dial(ctx, cfg, logger, counters, router)
	if err != nil {
		return err
	}
	defer tr.Close()
	logger.Printf("connected to %s over %s (session %s)", cfg.Transport.URL, cfg.Transport.Kind, session)

	engine := sim.NewEngine(cfg.Engine(), sim.Deps{
		Logger:    logger,
		Metrics:   counters,
		Clock:     logging.SystemClock{},
		Publisher: router,
	}, tr)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hooks := sim.LoopHooks{}
	if opts.View {
		terminal, err := newTerminal(engine, cancel)
		if err != nil {
			return err
		}
		defer terminal.close()
		hooks.AfterStep = terminal.afterStep
	}

	loop := sim.NewLoop(engine, cfg.Loop(), hooks)
	loop.Run(runCtx, done)

	logger.Printf("session %s finished: %v", session, counters.Snapshot())
	if reasoner, ok := tr.(interface{ Err() error }); ok {
		if err := reasoner.Err(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("connection lost: %w", err)
		}
	}
	return nil
}

func dial(ctx context.Context, cfg *config.Config, logger telemetry.Logger, metrics telemetry.Metrics, pub logging.Publisher) (transport.Transport, <-chan struct{}, error) {
	codec, err := proto.CodecByName(cfg.Transport.Codec)
	if err != nil {
		return nil, nil, err
	}
	switch cfg.Transport.Kind {
	case "ws":
		client, err := ws.Dial(ctx, ws.Config{
			URL:           cfg.Transport.URL,
			Codec:         codec,
			InboxCapacity: cfg.Transport.InboxCapacity,
			WriteTimeout:  cfg.Transport.WriteTimeout,
			Logger:        logger,
			Metrics:       metrics,
			Publisher:     pub,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client.Done(), nil
	case "nats":
		bus, err := natsbus.Connect(natsbus.Config{
			URL:           cfg.Transport.URL,
			Session:       cfg.Transport.Session,
			Codec:         codec,
			InboxCapacity: cfg.Transport.InboxCapacity,
			Logger:        logger,
			Metrics:       metrics,
			Publisher:     pub,
		})
		if err != nil {
			return nil, nil, err
		}
		return bus, nil, nil
	default:
		return nil, nil, errors.New("unknown transport kind " + cfg.Transport.Kind)
	}
}

func withoutSink(sinks []string, name string) []string {
	out := make([]string, 0, len(sinks))
	for _, s := range sinks {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}
