package world

import "fmt"

// Map exposes the static map queries movement and pathfinding depend on.
type Map interface {
	IsColliding(x, y int) bool
	IsOutOfBounds(x, y int) bool
	IsObject(x, y int) bool
	TileSize() int
}

// Grid is the traversability grid. A non-zero cell blocks movement. Rows are
// indexed [y][x] and the dimensions never change after construction.
type Grid struct {
	width    int
	height   int
	tileSize int
	cells    [][]int
	objects  map[Point]struct{}
}

// NewGrid allocates an open grid of the provided dimensions.
func NewGrid(width, height, tileSize int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("world: invalid grid dimensions %dx%d", width, height))
	}
	if tileSize <= 0 {
		panic(fmt.Sprintf("world: invalid tile size %d", tileSize))
	}
	cells := make([][]int, height)
	for y := range cells {
		cells[y] = make([]int, width)
	}
	return &Grid{width: width, height: height, tileSize: tileSize, cells: cells, objects: make(map[Point]struct{})}
}

// GridFromRows wraps a pre-built collision matrix. The matrix is copied and
// must be rectangular.
func GridFromRows(rows [][]int, tileSize int) *Grid {
	if len(rows) == 0 || len(rows[0]) == 0 {
		panic("world: empty collision matrix")
	}
	grid := NewGrid(len(rows[0]), len(rows), tileSize)
	for y, row := range rows {
		if len(row) != grid.width {
			panic(fmt.Sprintf("world: row %d has width %d, expected %d", y, len(row), grid.width))
		}
		copy(grid.cells[y], row)
	}
	return grid
}

func (g *Grid) Width() int    { return g.width }
func (g *Grid) Height() int   { return g.height }
func (g *Grid) TileSize() int { return g.tileSize }

// Cells exposes the backing matrix. Callers mutating it must restore any
// temporary changes before returning control to the frame loop.
func (g *Grid) Cells() [][]int {
	return g.cells
}

func (g *Grid) IsOutOfBounds(x, y int) bool {
	return x < 0 || y < 0 || x >= g.width || y >= g.height
}

func (g *Grid) IsColliding(x, y int) bool {
	if g.IsOutOfBounds(x, y) {
		return true
	}
	return g.cells[y][x] != 0
}

func (g *Grid) IsObject(x, y int) bool {
	_, ok := g.objects[Point{X: x, Y: y}]
	return ok
}

// SetBlocking toggles a single cell. Out of bounds writes are ignored.
func (g *Grid) SetBlocking(x, y int, blocking bool) {
	if g.IsOutOfBounds(x, y) {
		return
	}
	if blocking {
		g.cells[y][x] = 1
	} else {
		g.cells[y][x] = 0
	}
}

// MarkObject flags an interactable tile. Objects are usually colliding but
// remain valid path targets.
func (g *Grid) MarkObject(x, y int, object bool) {
	p := Point{X: x, Y: y}
	if object {
		g.objects[p] = struct{}{}
		return
	}
	delete(g.objects, p)
}

// ApplyRegion copies streamed collision data into the grid with its top-left
// corner at origin. Values falling outside the grid are dropped and the grid
// is never resized. It returns the number of cells written.
func (g *Grid) ApplyRegion(origin Point, rows [][]int) int {
	written := 0
	for dy, row := range rows {
		y := origin.Y + dy
		if y < 0 || y >= g.height {
			continue
		}
		for dx, value := range row {
			x := origin.X + dx
			if x < 0 || x >= g.width {
				continue
			}
			g.cells[y][x] = value
			written++
		}
	}
	return written
}

// Blank returns a collision-free grid with the same dimensions.
func (g *Grid) Blank() [][]int {
	blank := make([][]int, g.height)
	for y := range blank {
		blank[y] = make([]int, g.width)
	}
	return blank
}
