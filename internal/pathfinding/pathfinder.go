package pathfinding

import (
	"kaetram/client/internal/telemetry"
	"kaetram/client/internal/world"
)

// Config holds the defaults applied to every search issued through a
// Pathfinder.
type Config struct {
	Connectivity  Connectivity
	Heuristic     Heuristic
	MaxExpansions int
	Fallback      bool
}

// DefaultConfig mirrors the client defaults: eight-way movement without corner
// cutting, diagonal distance and incomplete paths enabled.
func DefaultConfig() Config {
	return Config{
		Connectivity:  EightWay,
		Heuristic:     Diagonal,
		MaxExpansions: DefaultMaxExpansions,
		Fallback:      true,
	}
}

// Pathfinder issues searches against the live traversability grid.
type Pathfinder struct {
	cfg     Config
	metrics telemetry.Metrics
}

// New constructs a Pathfinder. A nil metrics sink discards counters.
func New(cfg Config, metrics telemetry.Metrics) *Pathfinder {
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	return &Pathfinder{cfg: cfg, metrics: metrics}
}

// Config returns the defaults in use.
func (p *Pathfinder) Config() Config {
	return p.cfg
}

// Find searches grid from start to goal with the configured defaults. When
// incomplete is false the fallback is disabled for this call.
func (p *Pathfinder) Find(grid *world.Grid, start, goal world.Point, incomplete bool, ignores ...world.Point) Result {
	if grid == nil {
		return Result{}
	}
	result := Search(grid.Cells(), start, goal, Options{
		Connectivity:  p.cfg.Connectivity,
		Heuristic:     p.cfg.Heuristic,
		Ignores:       ignores,
		Fallback:      p.cfg.Fallback && incomplete,
		MaxExpansions: p.cfg.MaxExpansions,
	})
	switch {
	case result.Aborted:
		p.metrics.Add(telemetry.MetricPathAborted, 1)
	case len(result.Path) == 0:
		p.metrics.Add(telemetry.MetricPathFailures, 1)
	case result.Partial:
		p.metrics.Add(telemetry.MetricPathPartial, 1)
	}
	return result
}
