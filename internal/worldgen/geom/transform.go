package geom

// Rotation is a quarter-turn rotation about the Y axis.
type Rotation int

// Supported rotations.
const (
	RotateNone Rotation = iota
	Clockwise90
	Clockwise180
	CounterClockwise90
)

// Rotate applies r to a horizontal direction; vertical directions are unchanged.
func (r Rotation) Rotate(d Direction) Direction {
	switch r {
	case Clockwise90:
		return d.Clockwise()
	case Clockwise180:
		return d.Clockwise().Clockwise()
	case CounterClockwise90:
		return d.CounterClockwise()
	default:
		return d
	}
}

// Mirror reflects horizontal directions across a vertical plane.
type Mirror int

// Supported mirrors. LeftRight flips the Z axis; FrontBack flips the X axis.
const (
	MirrorNone Mirror = iota
	LeftRight
	FrontBack
)

// Mirror applies m to d.
func (m Mirror) Mirror(d Direction) Direction {
	if d == None {
		return d
	}
	switch {
	case m == FrontBack && d.Axis() == AxisX:
		return d.Opposite()
	case m == LeftRight && d.Axis() == AxisZ:
		return d.Opposite()
	default:
		return d
	}
}
