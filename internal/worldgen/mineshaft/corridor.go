package mineshaft

import (
	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// Corridor is a 3x3 tunnel built from 5-block sections, with supports,
// optional rails and, rarely, a cave spider nest.
//
// Invariant: spiderCorridor implies !hasRails. hasPlacedSpider only ever
// changes from false to true.
type Corridor struct {
	shaftPiece
	hasRails        bool
	spiderCorridor  bool
	hasPlacedSpider bool
	numSections     int
}

func newCorridor(depth int, rnd random.Source, box geom.BoundingBox, facing geom.Direction, kind Type) *Corridor {
	c := &Corridor{shaftPiece: newShaftPiece(CorridorID, depth, kind, box)}
	c.SetOrientation(facing)
	c.hasRails = rnd.NextInt(3) == 0
	c.spiderCorridor = !c.hasRails && rnd.NextInt(23) == 0
	if facing.Axis() == geom.AxisZ {
		c.numSections = box.ZSpan() / 5
	} else {
		c.numSections = box.XSpan() / 5
	}
	return c
}

// HasRails reports whether the corridor lays rails.
func (c *Corridor) HasRails() bool { return c.hasRails }

// SpiderCorridor reports whether the corridor is a cave spider nest.
func (c *Corridor) SpiderCorridor() bool { return c.spiderCorridor }

// HasPlacedSpider reports whether the nest spawner has been placed.
func (c *Corridor) HasPlacedSpider() bool { return c.hasPlacedSpider }

// NumSections returns the corridor length in 5-block sections.
func (c *Corridor) NumSections() int { return c.numSections }

// findCorridorSize tries random(3)+2 sections and shrinks one section at a
// time until the corridor box is free.
func findCorridorSize(acc structure.Accessor, rnd random.Source, x, y, z int, facing geom.Direction) (geom.BoundingBox, bool) {
	for n := rnd.NextInt(3) + 2; n > 0; n-- {
		l := n * 5
		var box geom.BoundingBox
		switch facing {
		case geom.South:
			box = geom.NewBox(0, 0, 0, 2, 2, l-1)
		case geom.West:
			box = geom.NewBox(-(l - 1), 0, 0, 0, 2, 2)
		case geom.East:
			box = geom.NewBox(0, 0, 0, l-1, 2, 2)
		default:
			box = geom.NewBox(0, 0, -(l - 1), 2, 2, 0)
		}
		box.Move(x, y, z)
		if acc.FindCollisionPiece(box) == nil {
			return box, true
		}
	}
	return geom.BoundingBox{}, false
}

// AddChildren continues the corridor or turns at its far end, then rolls
// for side branches every 5 blocks.
func (c *Corridor) AddChildren(root structure.Piece, acc structure.Accessor, rnd random.Source) {
	next := c.Depth + 1
	j := rnd.NextInt(4)
	b := c.Box
	jitter := func() int { return b.MinY - 1 + rnd.NextInt(3) }

	switch facing := c.Orientation(); facing {
	case geom.None:
	case geom.South:
		switch {
		case j <= 1:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MinX, y, b.MaxZ+1, facing, next)
		case j == 2:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MinX-1, y, b.MaxZ-3, geom.West, next)
		default:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MaxX+1, y, b.MaxZ-3, geom.East, next)
		}
	case geom.West:
		switch {
		case j <= 1:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MinX-1, y, b.MinZ, facing, next)
		case j == 2:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MinX, y, b.MinZ-1, geom.North, next)
		default:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MinX, y, b.MaxZ+1, geom.South, next)
		}
	case geom.East:
		switch {
		case j <= 1:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MaxX+1, y, b.MinZ, facing, next)
		case j == 2:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MaxX-3, y, b.MinZ-1, geom.North, next)
		default:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MaxX-3, y, b.MaxZ+1, geom.South, next)
		}
	default:
		switch {
		case j <= 1:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MinX, y, b.MinZ-1, facing, next)
		case j == 2:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MinX-1, y, b.MinZ, geom.West, next)
		default:
			y := jitter()
			generateAndAddPiece(root, acc, rnd, b.MaxX+1, y, b.MinZ, geom.East, next)
		}
	}

	if c.Depth >= MaxDepth {
		return
	}
	if o := c.Orientation(); o != geom.North && o != geom.South {
		for x := b.MinX + 3; x+3 <= b.MaxX; x += 5 {
			switch rnd.NextInt(5) {
			case 0:
				generateAndAddPiece(root, acc, rnd, x, b.MinY, b.MinZ-1, geom.North, next)
			case 1:
				generateAndAddPiece(root, acc, rnd, x, b.MinY, b.MaxZ+1, geom.South, next)
			}
		}
		return
	}
	for z := b.MinZ + 3; z+3 <= b.MaxZ; z += 5 {
		switch rnd.NextInt(5) {
		case 0:
			generateAndAddPiece(root, acc, rnd, b.MinX-1, b.MinY, z, geom.West, next)
		case 1:
			generateAndAddPiece(root, acc, rnd, b.MaxX+1, b.MinY, z, geom.East, next)
		}
	}
}

// PostProcess implements structure.Piece.
func (c *Corridor) PostProcess(lvl level.Level, rnd random.Source, box geom.BoundingBox) {
	if c.isInInvalidLocation(lvl, box) {
		return
	}
	length := c.numSections*5 - 1
	planks := c.kind.PlanksState()

	c.GenerateBox(lvl, box, 0, 0, 0, 2, 1, length, caveAir, caveAir, false)
	c.GenerateMaybeBox(lvl, box, rnd, 0.8, 0, 2, 0, 2, 2, length, caveAir, caveAir, false, false)
	if c.spiderCorridor {
		c.GenerateMaybeBox(lvl, box, rnd, 0.6, 0, 0, 0, 2, 1, length, block.Cobweb.Default(), caveAir, false, true)
	}

	for s := 0; s < c.numSections; s++ {
		z := 2 + s*5
		c.placeSupport(lvl, box, 0, 0, z, 2, 2, rnd)
		c.maybePlaceCobweb(lvl, box, rnd, 0.1, 0, 2, z-1)
		c.maybePlaceCobweb(lvl, box, rnd, 0.1, 2, 2, z-1)
		c.maybePlaceCobweb(lvl, box, rnd, 0.1, 0, 2, z+1)
		c.maybePlaceCobweb(lvl, box, rnd, 0.1, 2, 2, z+1)
		c.maybePlaceCobweb(lvl, box, rnd, 0.05, 0, 2, z-2)
		c.maybePlaceCobweb(lvl, box, rnd, 0.05, 2, 2, z-2)
		c.maybePlaceCobweb(lvl, box, rnd, 0.05, 0, 2, z+2)
		c.maybePlaceCobweb(lvl, box, rnd, 0.05, 2, 2, z+2)
		if rnd.NextInt(100) == 0 {
			c.createChest(lvl, box, rnd, 2, 0, z-1)
		}
		if rnd.NextInt(100) == 0 {
			c.createChest(lvl, box, rnd, 0, 0, z+1)
		}
		if c.spiderCorridor && !c.hasPlacedSpider {
			sz := z - 1 + rnd.NextInt(3)
			pos := c.WorldPos(1, 0, sz)
			if box.IsInside(pos) && c.IsInterior(lvl, 1, 0, sz, box) {
				c.hasPlacedSpider = true
				lvl.SetBlock(pos, block.Spawner.Default(), level.UpdateClients)
				lvl.SetSpawner(pos, SpawnerEntity)
			}
		}
	}

	for x := 0; x <= 2; x++ {
		for z := 0; z <= length; z++ {
			c.setPlanksBlock(lvl, box, planks, x, -1, z)
		}
	}

	c.placeDoubleLowerOrUpperSupport(lvl, box, 0, -1, 2)
	if c.numSections > 1 {
		c.placeDoubleLowerOrUpperSupport(lvl, box, 0, -1, length-2)
	}

	if c.hasRails {
		rail := block.Rail.Default().WithShape(block.NorthSouth)
		for z := 0; z <= length; z++ {
			below := c.BlockAt(lvl, 1, -1, z, box)
			if below.IsAir() || !below.SolidRender() {
				continue
			}
			chance := float32(0.9)
			if c.IsInterior(lvl, 1, 0, z, box) {
				chance = 0.7
			}
			c.MaybeGenerateBlock(lvl, box, rnd, chance, 1, 0, z, rail)
		}
	}
}

// createChest lays a rail with a chest minecart on it when the spot is open
// and has a floor.
func (c *Corridor) createChest(lvl level.Level, box geom.BoundingBox, rnd random.Source, x, y, z int) bool {
	pos := c.WorldPos(x, y, z)
	if !box.IsInside(pos) || !lvl.Block(pos).IsAir() || lvl.Block(pos.Below()).IsAir() {
		return false
	}
	shape := block.EastWest
	if rnd.NextBoolean() {
		shape = block.NorthSouth
	}
	c.PlaceBlock(lvl, block.Rail.Default().WithShape(shape), x, y, z, box)
	lvl.AddEntity(level.Entity{
		Kind:      "chest_minecart",
		X:         float64(pos.X) + 0.5,
		Y:         float64(pos.Y) + 0.5,
		Z:         float64(pos.Z) + 0.5,
		LootTable: LootTableAbandonedMineshaft,
		LootSeed:  rnd.NextLong(),
	})
	return true
}

func (c *Corridor) placeDoubleLowerOrUpperSupport(lvl level.Level, box geom.BoundingBox, x, y, z int) {
	wood := c.kind.WoodState()
	if c.BlockAt(lvl, x, y, z, box).Is(c.kind.Planks) {
		c.fillPillarDownOrChainUp(lvl, wood, x, y, z, box)
	}
	if c.BlockAt(lvl, x+2, y, z, box).Is(c.kind.Planks) {
		c.fillPillarDownOrChainUp(lvl, wood, x+2, y, z, box)
	}
}

// fillPillarDownOrChainUp searches down for ground to stand a pillar on and
// up for a ceiling to hang a chain from, one block at a time in both
// directions, and builds whichever it finds first.
func (c *Corridor) fillPillarDownOrChainUp(lvl level.Level, s block.State, x, y, z int, box geom.BoundingBox) {
	pos := c.WorldPos(x, y, z)
	if !box.IsInside(pos) {
		return
	}
	at := func(y int) geom.Pos { return geom.Pos{X: pos.X, Y: y, Z: pos.Z} }
	fill := func(s block.State, from, to int) {
		for y := from; y < to; y++ {
			lvl.SetBlock(at(y), s, level.UpdateClients)
		}
	}

	base := pos.Y
	down, up := true, true
	for j := 1; down || up; j++ {
		if down {
			below := lvl.Block(at(base - j))
			open := below.ReplaceableByStructures() && !below.Is(block.Lava)
			if !open && below.IsFaceSturdy(geom.Up) {
				fill(s, base-j+1, base)
				return
			}
			down = j <= maxPillarHeight && open && base-j > lvl.MinY()+1
		}
		if up {
			above := lvl.Block(at(base + j))
			open := above.ReplaceableByStructures()
			if !open && above.SupportsCenter(geom.Down) && !above.Falling() {
				lvl.SetBlock(at(base+1), c.kind.FenceState(), level.UpdateClients)
				fill(block.Chain.Default(), base+2, base+j)
				return
			}
			up = j <= maxChainHeight && open && base+j < lvl.MaxY()-1
		}
	}
}

// placeSupport builds a fence-and-plank frame across the corridor when the
// ceiling above it is solid.
func (c *Corridor) placeSupport(lvl level.Level, box geom.BoundingBox, minX, minY, z, maxY, maxX int, rnd random.Source) {
	if !c.isSupportingBox(lvl, box, minX, maxX, maxY, z) {
		return
	}
	planks := c.kind.PlanksState()
	fence := c.kind.FenceState()
	c.GenerateBox(lvl, box, minX, minY, z, minX, maxY-1, z, fence.WithLink(geom.West), caveAir, false)
	c.GenerateBox(lvl, box, maxX, minY, z, maxX, maxY-1, z, fence.WithLink(geom.East), caveAir, false)
	if rnd.NextInt(4) == 0 {
		c.GenerateBox(lvl, box, minX, maxY, z, minX, maxY, z, planks, caveAir, false)
		c.GenerateBox(lvl, box, maxX, maxY, z, maxX, maxY, z, planks, caveAir, false)
		return
	}
	c.GenerateBox(lvl, box, minX, maxY, z, maxX, maxY, z, planks, caveAir, false)
	torch := block.WallTorch.Default()
	c.MaybeGenerateBlock(lvl, box, rnd, 0.05, minX+1, maxY, z-1, torch.WithFacing(geom.South))
	c.MaybeGenerateBlock(lvl, box, rnd, 0.05, minX+1, maxY, z+1, torch.WithFacing(geom.North))
}

func (c *Corridor) maybePlaceCobweb(lvl level.Level, box geom.BoundingBox, rnd random.Source, chance float32, x, y, z int) {
	if c.IsInterior(lvl, x, y, z, box) && rnd.NextFloat() < chance && c.hasSturdyNeighbours(lvl, box, x, y, z, 2) {
		c.PlaceBlock(lvl, block.Cobweb.Default(), x, y, z, box)
	}
}

func (c *Corridor) hasSturdyNeighbours(lvl level.Reader, box geom.BoundingBox, x, y, z, required int) bool {
	pos := c.WorldPos(x, y, z)
	n := 0
	for _, d := range geom.Directions {
		q := pos.Offset(d)
		if box.IsInside(q) && lvl.Block(q).IsFaceSturdy(d.Opposite()) {
			n++
			if n >= required {
				return true
			}
		}
	}
	return false
}

// Record implements structure.Piece.
func (c *Corridor) Record() any {
	h := c.Header()
	return corridorRecord{
		ID: h.ID, BB: h.BB, O: h.O, GD: h.GD, MST: int32(c.kind.Ordinal),
		HR: c.hasRails, SC: c.spiderCorridor, HPS: c.hasPlacedSpider, Num: int32(c.numSections),
	}
}
