package config

import (
	"kaetram/client/internal/movement"
	"kaetram/client/internal/netsync"
	"kaetram/client/internal/pathfinding"
	"kaetram/client/internal/sim"
	"kaetram/client/logging"
)

// Engine converts the world, pathfinder, movement and sync sections.
func (c *Config) Engine() sim.Config {
	connectivity, _ := pathfinding.ParseConnectivity(c.Pathfinder.Connectivity)
	heuristic, _ := pathfinding.ParseHeuristic(c.Pathfinder.Heuristic)
	return sim.Config{
		Width:    c.Map.Width,
		Height:   c.Map.Height,
		TileSize: c.Map.TileSize,
		Pathfinder: pathfinding.Config{
			Connectivity:  connectivity,
			Heuristic:     heuristic,
			MaxExpansions: c.Pathfinder.MaxExpansions,
			Fallback:      c.Pathfinder.Fallback,
		},
		Movement: movement.Config{
			FollowRepathDistance: c.Movement.FollowRepathDistance,
		},
		Sync: netsync.Config{
			RefreshCooldown:   c.Sync.RefreshCooldown,
			TeleportAnimation: c.Movement.TeleportAnimation,
			DespawnDelay:      c.Movement.DespawnAnimation,
			DefaultSpeed:      c.Movement.DefaultSpeed,
		},
	}
}

// Loop converts the client section.
func (c *Config) Loop() sim.LoopConfig {
	return sim.LoopConfig{
		TickRate:    c.Client.TickRate,
		BudgetRatio: c.Client.BudgetRatio,
	}
}

// Router converts the logging section into router options.
func (c *Config) Router() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = append([]string(nil), c.Logging.Sinks...)
	if severity, ok := logging.ParseSeverity(c.Logging.Level); ok {
		cfg.MinimumSeverity = severity
	}
	if c.Logging.BufferSize > 0 {
		cfg.BufferSize = c.Logging.BufferSize
	}
	cfg.Console.UseColor = c.Logging.Color
	cfg.JSON.FilePath = c.Logging.JSONPath
	cfg.Rotation = logging.RotationConfig{
		MaxSizeMB:  c.Logging.Rotation.MaxSizeMB,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAgeDays: c.Logging.Rotation.MaxAgeDays,
		Compress:   c.Logging.Rotation.Compress,
	}
	return cfg
}
