package spatial

import (
	"reflect"
	"testing"

	"kaetram/client/internal/world"
)

func TestRegisterMovesBetweenCells(t *testing.T) {
	idx := NewIndex(10, 10)
	idx.Register("a", world.Point{X: 1, Y: 1})
	idx.Register("a", world.Point{X: 2, Y: 1})

	if got := idx.Query(1, 1); got != nil {
		t.Fatalf("expected old cell to be empty, got %v", got)
	}
	if got := idx.Query(2, 1); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected [a] at new cell, got %v", got)
	}
}

func TestSingleOccupancyAcrossRandomMoves(t *testing.T) {
	idx := NewIndex(8, 8)
	ids := []string{"a", "b", "c"}
	moves := []world.Point{{X: 0, Y: 0}, {X: 7, Y: 7}, {X: 3, Y: 4}, {X: 3, Y: 4}, {X: 9, Y: 9}, {X: 1, Y: 2}}

	for i := range moves {
		for j, id := range ids {
			idx.Register(id, moves[(i+j)%len(moves)])
		}
		for _, id := range ids {
			count := 0
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					for _, occupant := range idx.Query(x, y) {
						if occupant == id {
							count++
						}
					}
				}
			}
			if count > 1 {
				t.Fatalf("expected %s in at most one cell, found %d", id, count)
			}
		}
	}
}

func TestOutOfBoundsIgnored(t *testing.T) {
	idx := NewIndex(4, 4)
	idx.Register("a", world.Point{X: -1, Y: 2})
	idx.Register("b", world.Point{X: 4, Y: 0})

	if idx.Len() != 0 {
		t.Fatalf("expected no indexed actors, got %d", idx.Len())
	}
	if got := idx.Query(-1, 2); got != nil {
		t.Fatalf("expected empty query out of bounds, got %v", got)
	}
	if idx.Occupied(4, 0) {
		t.Fatalf("expected out of bounds cell unoccupied")
	}
	idx.Unregister("a", world.Point{X: 9, Y: 9}, world.Point{X: -3, Y: 0})
}

func TestUnregisterSweepsPathCells(t *testing.T) {
	idx := NewIndex(10, 10)
	idx.Register("a", world.Point{X: 1, Y: 1})
	// simulate a stale entry left on a path cell
	idx.cells[idx.slot(2, 2)] = []string{"a", "b"}

	idx.Unregister("a", world.Point{X: 2, Y: 2}, world.Point{X: 3, Y: 3})

	if got := idx.Query(1, 1); got != nil {
		t.Fatalf("expected current cell cleared, got %v", got)
	}
	if got := idx.Query(2, 2); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected only b on path cell, got %v", got)
	}
	if _, ok := idx.CellOf("a"); ok {
		t.Fatalf("expected a to be unindexed")
	}
}

func TestQueryIsSorted(t *testing.T) {
	idx := NewIndex(3, 3)
	idx.Register("c", world.Point{X: 1, Y: 1})
	idx.Register("a", world.Point{X: 1, Y: 1})
	idx.Register("b", world.Point{X: 1, Y: 1})

	if got := idx.Query(1, 1); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected sorted ids, got %v", got)
	}
	if !idx.Occupied(1, 1) || idx.Occupied(0, 0) {
		t.Fatalf("unexpected occupancy result")
	}
}
