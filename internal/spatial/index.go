package spatial

import (
	"sort"

	"kaetram/client/internal/world"
)

// Index tracks which actors occupy which tile in a dense y*width+x array of
// id buckets. An actor occupies at most one cell; re-registering moves it.
// Not safe for concurrent use, the frame loop owns it.
type Index struct {
	width   int
	height  int
	cells   [][]string
	entries map[string]world.Point
}

// NewIndex constructs an index covering a width x height tile area.
func NewIndex(width, height int) *Index {
	return &Index{
		width:   width,
		height:  height,
		cells:   make([][]string, max(width, 0)*max(height, 0)),
		entries: make(map[string]world.Point),
	}
}

func (idx *Index) inBounds(cell world.Point) bool {
	return cell.X >= 0 && cell.Y >= 0 && cell.X < idx.width && cell.Y < idx.height
}

// slot returns the offset of cell in the dense cell array, or -1.
func (idx *Index) slot(x, y int) int {
	if !idx.inBounds(world.Point{X: x, Y: y}) {
		return -1
	}
	return y*idx.width + x
}

// Register places id at cell, removing it from any previous cell. Out of
// bounds cells are ignored and leave the actor unindexed.
func (idx *Index) Register(id string, cell world.Point) {
	if idx == nil || id == "" {
		return
	}
	if prev, ok := idx.entries[id]; ok {
		if prev == cell {
			return
		}
		idx.removeFromCell(id, prev)
		delete(idx.entries, id)
	}
	if !idx.inBounds(cell) {
		return
	}
	idx.entries[id] = cell
	i := idx.slot(cell.X, cell.Y)
	idx.cells[i] = append(idx.cells[i], id)
}

// Unregister removes id from its current cell and from every provided path
// cell, clearing stale entries a multi-cell move may have left behind.
func (idx *Index) Unregister(id string, path ...world.Point) {
	if idx == nil || id == "" {
		return
	}
	if cell, ok := idx.entries[id]; ok {
		idx.removeFromCell(id, cell)
		delete(idx.entries, id)
	}
	for _, cell := range path {
		idx.removeFromCell(id, cell)
	}
}

// Query returns the ids at a cell in sorted order. Unoccupied and out of
// bounds cells return nil.
func (idx *Index) Query(x, y int) []string {
	if idx == nil {
		return nil
	}
	i := idx.slot(x, y)
	if i < 0 || len(idx.cells[i]) == 0 {
		return nil
	}
	bucket := idx.cells[i]
	out := append([]string(nil), bucket...)
	sort.Strings(out)
	return out
}

// Occupied reports whether any actor is registered at the cell.
func (idx *Index) Occupied(x, y int) bool {
	if idx == nil {
		return false
	}
	i := idx.slot(x, y)
	return i >= 0 && len(idx.cells[i]) > 0
}

// CellOf returns the cell an actor is registered at.
func (idx *Index) CellOf(id string) (world.Point, bool) {
	if idx == nil {
		return world.Point{}, false
	}
	cell, ok := idx.entries[id]
	return cell, ok
}

// Len reports the number of indexed actors.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

func (idx *Index) removeFromCell(id string, cell world.Point) {
	i := idx.slot(cell.X, cell.Y)
	if i < 0 {
		return
	}
	bucket := idx.cells[i]
	for j := range bucket {
		if bucket[j] != id {
			continue
		}
		bucket[j] = bucket[len(bucket)-1]
		bucket = bucket[:len(bucket)-1]
		break
	}
	if len(bucket) == 0 {
		bucket = nil
	}
	idx.cells[i] = bucket
}
