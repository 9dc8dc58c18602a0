package pathfinding

import (
	"reflect"
	"testing"

	"kaetram/client/internal/telemetry"
	"kaetram/client/internal/world"
)

func openGrid(width, height int) [][]int {
	return blankGrid(width, height)
}

func cloneGrid(grid [][]int) [][]int {
	out := make([][]int, len(grid))
	for y := range grid {
		out[y] = append([]int(nil), grid[y]...)
	}
	return out
}

func TestFindDiagonalPathOnOpenGrid(t *testing.T) {
	grid := openGrid(10, 10)
	path := Find(grid, world.Point{X: 0, Y: 0}, world.Point{X: 5, Y: 5}, Options{})

	if len(path) != 6 {
		t.Fatalf("expected path length 6, got %d (%v)", len(path), path)
	}
	if path[0] != (world.Point{X: 0, Y: 0}) || path[5] != (world.Point{X: 5, Y: 5}) {
		t.Fatalf("expected path from (0,0) to (5,5), got %v", path)
	}
}

func TestFindIsDeterministic(t *testing.T) {
	grid := openGrid(12, 12)
	for x := 2; x < 10; x++ {
		grid[6][x] = 1
	}
	start := world.Point{X: 5, Y: 1}
	goal := world.Point{X: 6, Y: 10}

	for _, heuristic := range []Heuristic{Diagonal, Manhattan, Euclidean} {
		for _, conn := range []Connectivity{EightWay, FourWay, EightWayFree} {
			opts := Options{Connectivity: conn, Heuristic: heuristic, MaxExpansions: 500}
			first := Find(grid, start, goal, opts)
			second := Find(grid, start, goal, opts)
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("%s/%s: expected identical paths, got %v and %v", heuristic, conn, first, second)
			}
			if len(first) == 0 {
				t.Fatalf("%s/%s: expected a path around the wall", heuristic, conn)
			}
		}
	}
}

func TestFindPathAdjacencyAndWalkability(t *testing.T) {
	grid := openGrid(10, 10)
	grid[2][3] = 1
	grid[3][3] = 1
	grid[4][3] = 1
	grid[5][6] = 1

	cases := []struct {
		name string
		conn Connectivity
	}{
		{name: "eight", conn: EightWay},
		{name: "four", conn: FourWay},
		{name: "eight-free", conn: EightWayFree},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := Find(grid, world.Point{X: 1, Y: 3}, world.Point{X: 8, Y: 7}, Options{Connectivity: tc.conn, MaxExpansions: 1000})
			if len(path) < 2 {
				t.Fatalf("expected a path, got %v", path)
			}
			for i := 1; i < len(path); i++ {
				prev, next := path[i-1], path[i]
				if !prev.Adjacent(next) {
					t.Fatalf("cells %v and %v are not adjacent", prev, next)
				}
				if tc.conn == FourWay && prev.X != next.X && prev.Y != next.Y {
					t.Fatalf("four-way path stepped diagonally from %v to %v", prev, next)
				}
				if grid[next.Y][next.X] != 0 {
					t.Fatalf("path crosses blocking cell %v", next)
				}
			}
		})
	}
}

func TestFindDoesNotCutCorners(t *testing.T) {
	grid := openGrid(3, 3)
	grid[0][1] = 1
	path := Find(grid, world.Point{X: 0, Y: 0}, world.Point{X: 1, Y: 1}, Options{Connectivity: EightWay})
	if len(path) != 3 {
		t.Fatalf("expected corner to be walked around, got %v", path)
	}

	free := Find(grid, world.Point{X: 0, Y: 0}, world.Point{X: 1, Y: 1}, Options{Connectivity: EightWayFree})
	if len(free) != 2 {
		t.Fatalf("expected free diagonal to cut the corner, got %v", free)
	}
}

func TestFindEnclosedGoalIsBounded(t *testing.T) {
	grid := openGrid(60, 60)
	goal := world.Point{X: 30, Y: 30}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			grid[goal.Y+dy][goal.X+dx] = 1
		}
	}

	result := Search(grid, world.Point{X: 2, Y: 2}, goal, Options{})
	if len(result.Path) != 0 {
		t.Fatalf("expected empty path, got %v", result.Path)
	}
	if !result.Aborted {
		t.Fatalf("expected search to hit the expansion cap")
	}
	if result.Expansions > DefaultMaxExpansions {
		t.Fatalf("expected at most %d expansions, got %d", DefaultMaxExpansions, result.Expansions)
	}

	small := openGrid(5, 5)
	small[1][2], small[2][1], small[2][3], small[3][2] = 1, 1, 1, 1
	small[1][1], small[1][3], small[3][1], small[3][3] = 1, 1, 1, 1
	bounded := Search(small, world.Point{X: 0, Y: 0}, world.Point{X: 2, Y: 2}, Options{})
	if len(bounded.Path) != 0 || bounded.Aborted {
		t.Fatalf("expected exhausted search with empty path, got %+v", bounded)
	}
}

func TestFindRestoresIgnoredCells(t *testing.T) {
	grid := openGrid(6, 6)
	grid[2][4] = 7
	grid[3][3] = 1
	before := cloneGrid(grid)

	target := world.Point{X: 4, Y: 2}
	path := Find(grid, world.Point{X: 0, Y: 2}, target, Options{Ignores: []world.Point{target, {X: 3, Y: 3}, {X: -1, Y: 0}}})
	if len(path) == 0 || path[len(path)-1] != target {
		t.Fatalf("expected path onto ignored target, got %v", path)
	}
	if !reflect.DeepEqual(before, grid) {
		t.Fatalf("expected grid restored after search")
	}

	// also restored when the search fails
	grid[0][1], grid[1][0], grid[1][1] = 1, 1, 1
	before = cloneGrid(grid)
	if failed := Find(grid, world.Point{X: 0, Y: 0}, world.Point{X: 5, Y: 5}, Options{Ignores: []world.Point{{X: 4, Y: 2}}}); len(failed) != 0 {
		t.Fatalf("expected enclosed start to fail, got %v", failed)
	}
	if !reflect.DeepEqual(before, grid) {
		t.Fatalf("expected grid restored after failed search")
	}
}

func TestFindFallbackApproachesBlockedGoal(t *testing.T) {
	grid := openGrid(10, 3)
	for y := 0; y < 3; y++ {
		grid[y][6] = 1
	}
	start := world.Point{X: 1, Y: 1}
	goal := world.Point{X: 6, Y: 1}

	if path := Find(grid, start, goal, Options{}); len(path) != 0 {
		t.Fatalf("expected no path without fallback, got %v", path)
	}

	result := Search(grid, start, goal, Options{Fallback: true})
	if len(result.Path) == 0 {
		t.Fatalf("expected partial path with fallback")
	}
	last := result.Path[len(result.Path)-1]
	if last != (world.Point{X: 5, Y: 1}) {
		t.Fatalf("expected partial path to stop at (5,1), got %v", last)
	}
	if !result.Partial {
		t.Fatalf("expected result to be marked partial")
	}
}

func TestFindOutOfBoundsAndTrivial(t *testing.T) {
	grid := openGrid(4, 4)
	if path := Find(grid, world.Point{X: 0, Y: 0}, world.Point{X: 9, Y: 9}, Options{}); path != nil {
		t.Fatalf("expected nil for out of bounds goal, got %v", path)
	}
	if path := Find(grid, world.Point{X: 2, Y: 2}, world.Point{X: 2, Y: 2}, Options{}); len(path) != 1 {
		t.Fatalf("expected single cell path, got %v", path)
	}
}

func TestFindPanicsOnRaggedGrid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for ragged grid")
		}
	}()
	Find([][]int{{0, 0, 0}, {0, 0}}, world.Point{}, world.Point{X: 1, Y: 1}, Options{})
}

func TestPathfinderRecordsOutcomes(t *testing.T) {
	counters := telemetry.NewCounters()
	finder := New(DefaultConfig(), counters)
	grid := world.NewGrid(5, 5, 16)
	grid.SetBlocking(4, 4, true)

	if result := finder.Find(grid, world.Point{}, world.Point{X: 4, Y: 4}, false); len(result.Path) != 0 {
		t.Fatalf("expected blocked goal to fail, got %v", result.Path)
	}
	if got := counters.Load(telemetry.MetricPathFailures); got != 1 {
		t.Fatalf("expected 1 failure, got %d", got)
	}

	result := finder.Find(grid, world.Point{}, world.Point{X: 4, Y: 4}, false, world.Point{X: 4, Y: 4})
	if len(result.Path) != 5 {
		t.Fatalf("expected 5 cell path onto ignored goal, got %v", result.Path)
	}
	if !grid.IsColliding(4, 4) {
		t.Fatalf("expected goal to be blocking again")
	}
}
