// Package mineshaft grows and paints abandoned mineshafts: a room seeds a
// tree of corridors, crossings and stairs that expands depth first, then
// each piece carves its geometry into the level.
package mineshaft

import (
	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// Persisted piece ids.
const (
	CorridorID = "mscorridor"
	CrossingID = "mscrossing"
	RoomID     = "msroom"
	StairsID   = "msstairs"
)

const (
	// MaxDepth is the deepest generation depth a piece may have.
	MaxDepth = 8
	// MaxReach bounds the horizontal distance of a new piece from the room origin.
	MaxReach = 80
	// RoomY is the Y a room is laid out at before the structure is moved.
	RoomY = 50

	maxPillarHeight = 20
	maxChainHeight  = 50
)

// LootTableAbandonedMineshaft is the loot table of minecart chests.
const LootTableAbandonedMineshaft = "chests/abandoned_mineshaft"

// SpawnerEntity is the entity type spider-corridor spawners spawn.
const SpawnerEntity = "cave_spider"

var caveAir = block.CaveAir.Default()

// Piece is a mineshaft structure piece.
type Piece interface {
	structure.Piece
	// MineshaftType returns the palette the piece paints with.
	MineshaftType() Type
}

type shaftPiece struct {
	structure.Base
	kind Type
}

func newShaftPiece(id string, depth int, kind Type, box geom.BoundingBox) shaftPiece {
	p := shaftPiece{Base: structure.NewBase(id, depth, box), kind: kind}
	p.Guard = replaceGuard(kind)
	return p
}

// MineshaftType implements Piece.
func (p *shaftPiece) MineshaftType() Type { return p.kind }

// replaceGuard keeps pieces from cutting through each other's woodwork.
func replaceGuard(kind Type) structure.ReplaceGuard {
	return func(s block.State) bool {
		return !s.Is(kind.Planks) && !s.Is(kind.Wood) && !s.Is(kind.Fence) && !s.Is(block.Chain)
	}
}

// isSupportingBox reports whether every block above the beam from xStart
// to xEnd at height y is solid.
func (p *shaftPiece) isSupportingBox(lvl level.Reader, box geom.BoundingBox, xStart, xEnd, y, z int) bool {
	for x := xStart; x <= xEnd; x++ {
		if p.BlockAt(lvl, x, y+1, z, box).IsAir() {
			return false
		}
	}
	return true
}

// isInInvalidLocation reports whether the piece, grown by one block and
// clipped to box, has liquid on any face or sits in a blocking biome.
func (p *shaftPiece) isInInvalidLocation(lvl level.Reader, box geom.BoundingBox) bool {
	b := p.Box
	minX := max(b.MinX-1, box.MinX)
	minY := max(b.MinY-1, box.MinY)
	minZ := max(b.MinZ-1, box.MinZ)
	maxX := min(b.MaxX+1, box.MaxX)
	maxY := min(b.MaxY+1, box.MaxY)
	maxZ := min(b.MaxZ+1, box.MaxZ)

	center := geom.Pos{X: (minX + maxX) / 2, Y: (minY + maxY) / 2, Z: (minZ + maxZ) / 2}
	if lvl.BiomeIs(center, level.TagMineshaftBlocking) {
		return true
	}
	liquid := func(x, y, z int) bool { return lvl.Block(geom.Pos{X: x, Y: y, Z: z}).Liquid() }
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			if liquid(x, minY, z) || liquid(x, maxY, z) {
				return true
			}
		}
	}
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			if liquid(x, y, minZ) || liquid(x, y, maxZ) {
				return true
			}
		}
	}
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			if liquid(minX, y, z) || liquid(maxX, y, z) {
				return true
			}
		}
	}
	return false
}

// setPlanksBlock lays a floor plank under an interior position unless the
// block there can already carry weight.
func (p *shaftPiece) setPlanksBlock(lvl level.Level, box geom.BoundingBox, planks block.State, x, y, z int) {
	if !p.IsInterior(lvl, x, y, z, box) {
		return
	}
	pos := p.WorldPos(x, y, z)
	if !lvl.Block(pos).IsFaceSturdy(geom.Up) {
		lvl.SetBlock(pos, planks, level.UpdateClients)
	}
}
