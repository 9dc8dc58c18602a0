package pathfinding

import "kaetram/client/internal/world"

// Result describes the outcome of a search. An empty Path means the goal was
// unreachable; that is a normal outcome, not an error.
type Result struct {
	// Path includes both the start and the final cell.
	Path       []world.Point
	Expansions int
	// Aborted is set when the expansion cap stopped the search.
	Aborted bool
	// Partial is set when Path ends short of the requested goal.
	Partial bool
}

// Find returns the path from start to goal, inclusive of both ends.
func Find(grid [][]int, start, goal world.Point, opts Options) []world.Point {
	return Search(grid, start, goal, opts).Path
}

// Search runs a bounded A* over grid. The grid is mutated while Ignores are
// applied and restored before Search returns. A non-rectangular grid panics.
func Search(grid [][]int, start, goal world.Point, opts Options) Result {
	width, height := dimensions(grid)
	if !inBounds(grid, start) || !inBounds(grid, goal) {
		return Result{}
	}

	restore := applyIgnores(grid, opts.Ignores)
	defer restore()

	limit := opts.maxExpansions()
	result := astar(grid, start, goal, opts.Connectivity, opts.Heuristic, limit)
	if len(result.Path) > 0 || !opts.Fallback {
		return result
	}

	reference := astar(blankGrid(width, height), start, goal, opts.Connectivity.free(), opts.Heuristic, limit)
	for i := len(reference.Path) - 1; i > 0; i-- {
		cell := reference.Path[i]
		if grid[cell.Y][cell.X] != 0 {
			continue
		}
		partial := astar(grid, start, cell, opts.Connectivity, opts.Heuristic, limit)
		partial.Expansions += result.Expansions + reference.Expansions
		partial.Partial = len(partial.Path) > 0 && cell != goal
		return partial
	}
	result.Expansions += reference.Expansions
	return result
}

// applyIgnores clears the ignored cells and returns a func restoring them.
func applyIgnores(grid [][]int, ignores []world.Point) func() {
	if len(ignores) == 0 {
		return func() {}
	}
	type saved struct {
		cell  world.Point
		value int
	}
	originals := make([]saved, 0, len(ignores))
	for _, cell := range ignores {
		if !inBounds(grid, cell) {
			continue
		}
		originals = append(originals, saved{cell: cell, value: grid[cell.Y][cell.X]})
		grid[cell.Y][cell.X] = 0
	}
	return func() {
		for i := len(originals) - 1; i >= 0; i-- {
			entry := originals[i]
			grid[entry.cell.Y][entry.cell.X] = entry.value
		}
	}
}

func blankGrid(width, height int) [][]int {
	blank := make([][]int, height)
	for y := range blank {
		blank[y] = make([]int, width)
	}
	return blank
}
