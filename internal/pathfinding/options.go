package pathfinding

import (
	"math"

	"kaetram/client/internal/world"
)

// Connectivity selects which neighbours a search may step to.
type Connectivity int

const (
	// EightWay allows diagonals only when both orthogonal cells are open.
	EightWay Connectivity = iota
	// FourWay restricts movement to orthogonal neighbours.
	FourWay
	// EightWayFree allows diagonals regardless of the orthogonal cells.
	EightWayFree
)

func (c Connectivity) String() string {
	switch c {
	case FourWay:
		return "four"
	case EightWayFree:
		return "eight-free"
	default:
		return "eight"
	}
}

// ParseConnectivity maps a configuration value to a Connectivity.
func ParseConnectivity(value string) (Connectivity, bool) {
	switch value {
	case "eight", "":
		return EightWay, true
	case "four":
		return FourWay, true
	case "eight-free":
		return EightWayFree, true
	default:
		return EightWay, false
	}
}

// free returns the corner-cutting variant used on the reference grid.
func (c Connectivity) free() Connectivity {
	if c == EightWay {
		return EightWayFree
	}
	return c
}

// Heuristic selects the distance estimate. The same metric prices a single
// step between adjacent cells.
type Heuristic int

const (
	Diagonal Heuristic = iota
	Manhattan
	Euclidean
)

func (h Heuristic) String() string {
	switch h {
	case Manhattan:
		return "manhattan"
	case Euclidean:
		return "euclidean"
	default:
		return "diagonal"
	}
}

// ParseHeuristic maps a configuration value to a Heuristic.
func ParseHeuristic(value string) (Heuristic, bool) {
	switch value {
	case "diagonal", "":
		return Diagonal, true
	case "manhattan":
		return Manhattan, true
	case "euclidean":
		return Euclidean, true
	default:
		return Diagonal, false
	}
}

func (h Heuristic) distance(a, b world.Point) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	switch h {
	case Manhattan:
		return dx + dy
	case Euclidean:
		return math.Sqrt(dx*dx + dy*dy)
	default:
		return math.Max(dx, dy)
	}
}

// DefaultMaxExpansions bounds the number of nodes a single search may expand.
const DefaultMaxExpansions = 100

// Options configures a single search.
type Options struct {
	Connectivity Connectivity
	Heuristic    Heuristic
	// Ignores are forced walkable for the duration of the search and restored
	// afterwards.
	Ignores []world.Point
	// Fallback searches toward the closest reachable cell along an
	// obstacle-free route when the goal itself cannot be reached.
	Fallback bool
	// MaxExpansions aborts the search once exceeded. Zero uses the default.
	MaxExpansions int
}

func (o Options) maxExpansions() int {
	if o.MaxExpansions <= 0 {
		return DefaultMaxExpansions
	}
	return o.MaxExpansions
}

type neighbor struct {
	dx       int
	dy       int
	diagonal bool
}

var neighborOffsets = [...]neighbor{
	{dx: 0, dy: -1},
	{dx: 1, dy: 0},
	{dx: 0, dy: 1},
	{dx: -1, dy: 0},
	{dx: 1, dy: -1, diagonal: true},
	{dx: 1, dy: 1, diagonal: true},
	{dx: -1, dy: 1, diagonal: true},
	{dx: -1, dy: -1, diagonal: true},
}
