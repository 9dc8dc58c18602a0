package world

// Orientation identifies the direction an actor faces.
type Orientation string

const (
	OrientationUp    Orientation = "up"
	OrientationDown  Orientation = "down"
	OrientationLeft  Orientation = "left"
	OrientationRight Orientation = "right"
)

// ParseOrientation normalises wire values, defaulting to down.
func ParseOrientation(value string) Orientation {
	switch Orientation(value) {
	case OrientationUp, OrientationDown, OrientationLeft, OrientationRight:
		return Orientation(value)
	default:
		return OrientationDown
	}
}

// OrientationBetween derives the facing for a move from prev to next. Diagonal
// moves face along the dominant axis and ties favour the horizontal axis.
// ok is false when the cells are identical.
func OrientationBetween(prev, next Point) (Orientation, bool) {
	dx := next.X - prev.X
	dy := next.Y - prev.Y
	if dx == 0 && dy == 0 {
		return "", false
	}
	if absInt(dx) >= absInt(dy) {
		if dx > 0 {
			return OrientationRight, true
		}
		return OrientationLeft, true
	}
	if dy > 0 {
		return OrientationDown, true
	}
	return OrientationUp, true
}

// Delta returns the unit tile offset for the orientation.
func (o Orientation) Delta() Point {
	switch o {
	case OrientationUp:
		return Point{Y: -1}
	case OrientationDown:
		return Point{Y: 1}
	case OrientationLeft:
		return Point{X: -1}
	case OrientationRight:
		return Point{X: 1}
	default:
		return Point{}
	}
}
