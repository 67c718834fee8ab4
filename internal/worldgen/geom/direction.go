// Package geom provides the integer geometry shared by world generation:
// directions, block positions, bounding boxes, rotations and mirrors.
package geom

// Direction represents one of the six axis-aligned block faces.
//
// The zero value means "no direction" and is used by pieces that lay out
// their geometry in absolute coordinates.
type Direction string

// The six block-face directions.
const (
	Down  Direction = "down"
	Up    Direction = "up"
	North Direction = "north"
	South Direction = "south"
	West  Direction = "west"
	East  Direction = "east"
)

// None is the absent direction.
const None Direction = ""

// Directions lists every face in canonical order (down, up, north, south, west, east).
var Directions = []Direction{Down, Up, North, South, West, East}

// Horizontal lists the four horizontal faces ordered by their 2D data value.
var Horizontal = []Direction{South, West, North, East}

// Axis identifies a coordinate axis.
type Axis int

// Coordinate axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// IsHorizontal reports whether d lies in the XZ plane.
func (d Direction) IsHorizontal() bool {
	return d == North || d == South || d == West || d == East
}

// Opposite returns the opposite face. None maps to None.
func (d Direction) Opposite() Direction {
	switch d {
	case Down:
		return Up
	case Up:
		return Down
	case North:
		return South
	case South:
		return North
	case West:
		return East
	case East:
		return West
	default:
		return None
	}
}

// Axis returns the axis d points along.
//
// Precondition: d != None.
func (d Direction) Axis() Axis {
	switch d {
	case Down, Up:
		return AxisY
	case North, South:
		return AxisZ
	case West, East:
		return AxisX
	default:
		panic("geom: Axis called on an absent direction")
	}
}

// Step returns the unit offset of d.
func (d Direction) Step() (dx, dy, dz int) {
	switch d {
	case Down:
		return 0, -1, 0
	case Up:
		return 0, 1, 0
	case North:
		return 0, 0, -1
	case South:
		return 0, 0, 1
	case West:
		return -1, 0, 0
	case East:
		return 1, 0, 0
	default:
		return 0, 0, 0
	}
}

// Clockwise returns the horizontal direction 90 degrees clockwise from d
// when viewed from above. Vertical directions and None are returned unchanged.
func (d Direction) Clockwise() Direction {
	switch d {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	case West:
		return North
	default:
		return d
	}
}

// CounterClockwise is the inverse of Clockwise.
func (d Direction) CounterClockwise() Direction {
	switch d {
	case North:
		return West
	case West:
		return South
	case South:
		return East
	case East:
		return North
	default:
		return d
	}
}

// Data2D returns the persisted horizontal index of d: south=0, west=1,
// north=2, east=3. Non-horizontal directions, including None, yield -1.
func (d Direction) Data2D() int {
	for i, h := range Horizontal {
		if h == d {
			return i
		}
	}
	return -1
}

// FromData2D is the inverse of Data2D. Values outside [0,4) are wrapped the
// way the persisted format expects; -1 yields None.
func FromData2D(v int) Direction {
	if v < 0 {
		return None
	}
	return Horizontal[v%len(Horizontal)]
}
