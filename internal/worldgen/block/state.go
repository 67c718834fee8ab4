package block

import (
	"strings"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
)

// RailShape is the orientation of a straight rail.
type RailShape uint8

// Straight rail shapes.
const (
	NorthSouth RailShape = iota
	EastWest
)

// String returns the persisted name of the shape.
func (s RailShape) String() string {
	if s == EastWest {
		return "east_west"
	}
	return "north_south"
}

// State is a block kind plus the few properties world generation sets.
//
// Facing is meaningful for wall torches, Shape for rails and Links for fences
// (one bit per horizontal direction, indexed by Direction.Data2D).
type State struct {
	Block  Block
	Facing geom.Direction
	Shape  RailShape
	Links  uint8
}

// IsAir reports whether s is air or cave air.
func (s State) IsAir() bool { return s.Block.props().air }

// Liquid reports whether s holds a fluid.
func (s State) Liquid() bool { return s.Block.props().liquid }

// Is reports whether s is of kind b.
func (s State) Is(b Block) bool { return s.Block == b }

// IsFaceSturdy reports whether the face of s pointing in dir can carry a
// full block placed against it.
func (s State) IsFaceSturdy(dir geom.Direction) bool {
	return s.Block.props().fullCube
}

// SupportsCenter reports whether the centre of the face pointing in dir can
// carry a post, such as a hanging chain.
func (s State) SupportsCenter(dir geom.Direction) bool {
	p := s.Block.props()
	if p.fullCube {
		return true
	}
	return p.centerPost && (dir == geom.Up || dir == geom.Down)
}

// SolidRender reports whether s is an opaque full cube.
func (s State) SolidRender() bool { return s.Block.props().opaque }

// Falling reports whether s falls when unsupported.
func (s State) Falling() bool { return s.Block.props().falling }

// ReplaceableByStructures reports whether structure generation treats s as
// empty space: air, liquids and thin cave vegetation.
func (s State) ReplaceableByStructures() bool { return s.Block.props().replaceable }

// WithFacing returns a copy of s facing d.
func (s State) WithFacing(d geom.Direction) State {
	s.Facing = d
	return s
}

// WithShape returns a copy of s with rail shape shape.
func (s State) WithShape(shape RailShape) State {
	s.Shape = shape
	return s
}

// WithLink returns a copy of s connected toward d.
//
// Precondition: d is horizontal.
func (s State) WithLink(d geom.Direction) State {
	s.Links |= 1 << uint(d.Data2D())
	return s
}

// Linked reports whether s connects toward d.
func (s State) Linked(d geom.Direction) bool {
	i := d.Data2D()
	return i >= 0 && s.Links&(1<<uint(i)) != 0
}

// Rotate returns s rotated by r.
func (s State) Rotate(r geom.Rotation) State {
	s.Facing = r.Rotate(s.Facing)
	if r == geom.Clockwise90 || r == geom.CounterClockwise90 {
		if s.Shape == NorthSouth {
			s.Shape = EastWest
		} else {
			s.Shape = NorthSouth
		}
	}
	s.Links = remapLinks(s.Links, r.Rotate)
	return s
}

// Mirror returns s reflected by m. Straight rails are symmetric under mirrors.
func (s State) Mirror(m geom.Mirror) State {
	s.Facing = m.Mirror(s.Facing)
	s.Links = remapLinks(s.Links, m.Mirror)
	return s
}

func remapLinks(links uint8, f func(geom.Direction) geom.Direction) uint8 {
	var out uint8
	for i, d := range geom.Horizontal {
		if links&(1<<uint(i)) != 0 {
			out |= 1 << uint(f(d).Data2D())
		}
	}
	return out
}

// String renders s as name[prop=value,...].
func (s State) String() string {
	var props []string
	switch s.Block {
	case Rail:
		props = append(props, "shape="+s.Shape.String())
	case WallTorch:
		props = append(props, "facing="+string(s.Facing))
	case OakFence, DarkOakFence:
		for _, d := range geom.Horizontal {
			if s.Linked(d) {
				props = append(props, string(d)+"=true")
			}
		}
	}
	if len(props) == 0 {
		return s.Block.String()
	}
	return s.Block.String() + "[" + strings.Join(props, ",") + "]"
}
