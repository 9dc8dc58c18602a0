package world

// Point identifies a tile on the collision grid.
type Point struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Add offsets the point by the provided delta.
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the delta between two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Adjacent reports whether the two points touch orthogonally or diagonally.
func (p Point) Adjacent(other Point) bool {
	dx := absInt(p.X - other.X)
	dy := absInt(p.Y - other.Y)
	return dx <= 1 && dy <= 1 && (dx != 0 || dy != 0)
}

// Distance is the Chebyshev tile distance, matching how interaction ranges are measured.
func (p Point) Distance(other Point) int {
	dx := absInt(p.X - other.X)
	dy := absInt(p.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Pixel converts the tile coordinate to its pixel origin.
func (p Point) Pixel(tileSize int) Vec2 {
	return Vec2{X: float64(p.X * tileSize), Y: float64(p.Y * tileSize)}
}

// Vec2 is a pixel space position.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
