package pathfinding

import (
	"fmt"

	"kaetram/client/internal/world"
)

type searchNode struct {
	cell   world.Point
	g      float64
	f      float64
	parent *searchNode
	open   bool
	closed bool
}

// dimensions validates the matrix and returns its width and height.
func dimensions(grid [][]int) (int, int) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		panic("pathfinding: empty grid")
	}
	width := len(grid[0])
	for y, row := range grid {
		if len(row) != width {
			panic(fmt.Sprintf("pathfinding: row %d has width %d, expected %d", y, len(row), width))
		}
	}
	return width, len(grid)
}

func inBounds(grid [][]int, cell world.Point) bool {
	return cell.Y >= 0 && cell.Y < len(grid) && cell.X >= 0 && cell.X < len(grid[cell.Y])
}

func walkable(grid [][]int, cell world.Point) bool {
	return inBounds(grid, cell) && grid[cell.Y][cell.X] == 0
}

// astar runs a bounded A* search. The open set is scanned linearly and the
// first node with the lowest f score wins, so identical inputs always yield
// identical paths.
func astar(grid [][]int, start, goal world.Point, conn Connectivity, h Heuristic, limit int) Result {
	nodes := make(map[world.Point]*searchNode)
	root := &searchNode{cell: start, f: h.distance(start, goal), open: true}
	nodes[start] = root
	open := []*searchNode{root}
	expansions := 0

	for len(open) > 0 {
		if expansions >= limit {
			return Result{Expansions: expansions, Aborted: true}
		}
		best := 0
		for i := 1; i < len(open); i++ {
			if open[i].f < open[best].f {
				best = i
			}
		}
		current := open[best]
		open = append(open[:best], open[best+1:]...)
		current.open = false
		current.closed = true

		if current.cell == goal {
			return Result{Path: reconstruct(current), Expansions: expansions}
		}
		expansions++

		for _, offset := range neighborOffsets {
			if offset.diagonal && conn == FourWay {
				continue
			}
			next := current.cell.Add(offset.dx, offset.dy)
			if !walkable(grid, next) {
				continue
			}
			if offset.diagonal && conn == EightWay {
				if !walkable(grid, current.cell.Add(offset.dx, 0)) || !walkable(grid, current.cell.Add(0, offset.dy)) {
					continue
				}
			}
			g := current.g + h.distance(current.cell, next)
			node, seen := nodes[next]
			if seen && (node.closed || g >= node.g) {
				continue
			}
			if !seen {
				node = &searchNode{cell: next}
				nodes[next] = node
			}
			node.g = g
			node.f = g + h.distance(next, goal)
			node.parent = current
			if !node.open {
				node.open = true
				open = append(open, node)
			}
		}
	}
	return Result{Expansions: expansions}
}

func reconstruct(end *searchNode) []world.Point {
	path := make([]world.Point, 0)
	for node := end; node != nil; node = node.parent {
		path = append(path, node.cell)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}
