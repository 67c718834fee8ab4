package mineshaft

import (
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// Crossing is a junction of two tunnels, optionally with a second floor.
// It lays out in absolute coordinates.
//
// Invariant: twoFloored == (box Y span > 3) at construction.
type Crossing struct {
	shaftPiece
	direction  geom.Direction
	twoFloored bool
}

func newCrossing(depth int, box geom.BoundingBox, direction geom.Direction, kind Type) *Crossing {
	return &Crossing{
		shaftPiece: newShaftPiece(CrossingID, depth, kind, box),
		direction:  direction,
		twoFloored: box.YSpan() > 3,
	}
}

// Direction returns the direction the crossing was entered facing.
func (c *Crossing) Direction() geom.Direction { return c.direction }

// TwoFloored reports whether the crossing has an upper level.
func (c *Crossing) TwoFloored() bool { return c.twoFloored }

// findCrossing builds a 5x5 footprint ahead of (x, y, z), one in four times
// tall enough for two floors.
func findCrossing(acc structure.Accessor, rnd random.Source, x, y, z int, facing geom.Direction) (geom.BoundingBox, bool) {
	h := 2
	if rnd.NextInt(4) == 0 {
		h = 6
	}
	var box geom.BoundingBox
	switch facing {
	case geom.South:
		box = geom.NewBox(-1, 0, 0, 3, h, 4)
	case geom.West:
		box = geom.NewBox(-4, 0, -1, 0, h, 3)
	case geom.East:
		box = geom.NewBox(0, 0, -1, 4, h, 3)
	default:
		box = geom.NewBox(-1, 0, -4, 3, h, 0)
	}
	box.Move(x, y, z)
	if acc.FindCollisionPiece(box) != nil {
		return geom.BoundingBox{}, false
	}
	return box, true
}

// AddChildren branches out of the three sides away from the entrance, then
// gives each upper-floor side an even chance of a branch.
func (c *Crossing) AddChildren(root structure.Piece, acc structure.Accessor, rnd random.Source) {
	next := c.Depth + 1
	b := c.Box
	north := func(y int) { generateAndAddPiece(root, acc, rnd, b.MinX+1, y, b.MinZ-1, geom.North, next) }
	south := func(y int) { generateAndAddPiece(root, acc, rnd, b.MinX+1, y, b.MaxZ+1, geom.South, next) }
	west := func(y int) { generateAndAddPiece(root, acc, rnd, b.MinX-1, y, b.MinZ+1, geom.West, next) }
	east := func(y int) { generateAndAddPiece(root, acc, rnd, b.MaxX+1, y, b.MinZ+1, geom.East, next) }

	switch c.direction {
	case geom.South:
		south(b.MinY)
		west(b.MinY)
		east(b.MinY)
	case geom.West:
		north(b.MinY)
		south(b.MinY)
		west(b.MinY)
	case geom.East:
		north(b.MinY)
		south(b.MinY)
		east(b.MinY)
	default:
		north(b.MinY)
		west(b.MinY)
		east(b.MinY)
	}

	if !c.twoFloored {
		return
	}
	upper := b.MinY + 3 + 1
	for _, branch := range []func(int){north, west, east, south} {
		if rnd.NextBoolean() {
			branch(upper)
		}
	}
}

// PostProcess implements structure.Piece.
func (c *Crossing) PostProcess(lvl level.Level, _ random.Source, box geom.BoundingBox) {
	if c.isInInvalidLocation(lvl, box) {
		return
	}
	b := c.Box
	planks := c.kind.PlanksState()
	if c.twoFloored {
		c.GenerateBox(lvl, box, b.MinX+1, b.MinY, b.MinZ, b.MaxX-1, b.MinY+3-1, b.MaxZ, caveAir, caveAir, false)
		c.GenerateBox(lvl, box, b.MinX, b.MinY, b.MinZ+1, b.MaxX, b.MinY+3-1, b.MaxZ-1, caveAir, caveAir, false)
		c.GenerateBox(lvl, box, b.MinX+1, b.MaxY-2, b.MinZ, b.MaxX-1, b.MaxY, b.MaxZ, caveAir, caveAir, false)
		c.GenerateBox(lvl, box, b.MinX, b.MaxY-2, b.MinZ+1, b.MaxX, b.MaxY, b.MaxZ-1, caveAir, caveAir, false)
		c.GenerateBox(lvl, box, b.MinX+1, b.MinY+3, b.MinZ+1, b.MaxX-1, b.MinY+3, b.MaxZ-1, caveAir, caveAir, false)
	} else {
		c.GenerateBox(lvl, box, b.MinX+1, b.MinY, b.MinZ, b.MaxX-1, b.MaxY, b.MaxZ, caveAir, caveAir, false)
		c.GenerateBox(lvl, box, b.MinX, b.MinY, b.MinZ+1, b.MaxX, b.MaxY, b.MaxZ-1, caveAir, caveAir, false)
	}

	c.placeSupportPillar(lvl, box, b.MinX+1, b.MinY, b.MinZ+1, b.MaxY)
	c.placeSupportPillar(lvl, box, b.MinX+1, b.MinY, b.MaxZ-1, b.MaxY)
	c.placeSupportPillar(lvl, box, b.MaxX-1, b.MinY, b.MinZ+1, b.MaxY)
	c.placeSupportPillar(lvl, box, b.MaxX-1, b.MinY, b.MaxZ-1, b.MaxY)

	floor := b.MinY - 1
	for x := b.MinX; x <= b.MaxX; x++ {
		for z := b.MinZ; z <= b.MaxZ; z++ {
			c.setPlanksBlock(lvl, box, planks, x, floor, z)
		}
	}
}

// placeSupportPillar raises a plank column unless it would hang in the air.
func (c *Crossing) placeSupportPillar(lvl level.Level, box geom.BoundingBox, x, y, z, maxY int) {
	if c.BlockAt(lvl, x, maxY+1, z, box).IsAir() {
		return
	}
	c.GenerateBox(lvl, box, x, y, z, x, maxY, z, c.kind.PlanksState(), caveAir, false)
}

// Record implements structure.Piece.
func (c *Crossing) Record() any {
	h := c.Header()
	return crossingRecord{
		ID: h.ID, BB: h.BB, O: h.O, GD: h.GD, MST: int32(c.kind.Ordinal),
		TF: c.twoFloored, D: int32(c.direction.Data2D()),
	}
}
