// Package structure provides the building blocks shared by multi-piece
// structures: the piece contract, orientation-relative block painting, the
// collision accessor used while a structure grows, and the persisted
// structure start.
package structure

import (
	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
)

// Piece is one placed unit of a structure.
type Piece interface {
	// ID returns the persisted piece-type id.
	ID() string
	// BoundingBox returns the box the piece reserves.
	BoundingBox() geom.BoundingBox
	// GenDepth returns the recursion depth the piece was placed at.
	GenDepth() int
	// Orientation returns the facing of the piece, or geom.None.
	Orientation() geom.Direction
	// Move translates the piece and everything it owns.
	Move(dx, dy, dz int)
	// AddChildren grows the structure from this piece.
	//
	// Precondition: p has already been added to acc.
	AddChildren(root Piece, acc Accessor, rnd random.Source)
	// PostProcess paints the piece into lvl, writing only inside box.
	PostProcess(lvl level.Level, rnd random.Source, box geom.BoundingBox)
	// Record returns the persisted form of the piece.
	Record() any
}

// ReplaceGuard reports whether a block already in the level may be
// overwritten by a piece.
type ReplaceGuard func(current block.State) bool

// Base carries the geometry common to every piece and implements the
// orientation-relative painting helpers.
//
// When the orientation is geom.None the helpers take absolute world
// coordinates; otherwise coordinates are relative to the box, with Z
// running along the facing.
type Base struct {
	Type  string
	Box   geom.BoundingBox
	Depth int
	// Guard vetoes overwriting existing blocks. Nil allows every write.
	Guard ReplaceGuard

	orientation geom.Direction
	mirror      geom.Mirror
	rotation    geom.Rotation
}

// NewBase returns a Base of pieceType at depth spanning box.
func NewBase(pieceType string, depth int, box geom.BoundingBox) Base {
	return Base{Type: pieceType, Box: box, Depth: depth}
}

// ID implements Piece.
func (b *Base) ID() string { return b.Type }

// BoundingBox implements Piece.
func (b *Base) BoundingBox() geom.BoundingBox { return b.Box }

// GenDepth implements Piece.
func (b *Base) GenDepth() int { return b.Depth }

// Orientation implements Piece.
func (b *Base) Orientation() geom.Direction { return b.orientation }

// Move implements Piece.
func (b *Base) Move(dx, dy, dz int) { b.Box.Move(dx, dy, dz) }

// SetOrientation sets the facing and derives the mirror and rotation that
// placed block states go through.
func (b *Base) SetOrientation(d geom.Direction) {
	b.orientation = d
	switch d {
	case geom.South:
		b.mirror, b.rotation = geom.LeftRight, geom.RotateNone
	case geom.West:
		b.mirror, b.rotation = geom.LeftRight, geom.Clockwise90
	case geom.East:
		b.mirror, b.rotation = geom.MirrorNone, geom.Clockwise90
	default:
		b.mirror, b.rotation = geom.MirrorNone, geom.RotateNone
	}
}

func (b *Base) worldX(x, z int) int {
	switch b.orientation {
	case geom.North, geom.South:
		return b.Box.MinX + x
	case geom.West:
		return b.Box.MaxX - z
	case geom.East:
		return b.Box.MinX + z
	default:
		return x
	}
}

func (b *Base) worldY(y int) int {
	if b.orientation == geom.None {
		return y
	}
	return y + b.Box.MinY
}

func (b *Base) worldZ(x, z int) int {
	switch b.orientation {
	case geom.North:
		return b.Box.MaxZ - z
	case geom.South:
		return b.Box.MinZ + z
	case geom.West, geom.East:
		return b.Box.MinZ + x
	default:
		return z
	}
}

// WorldPos maps piece coordinates to a world position.
func (b *Base) WorldPos(x, y, z int) geom.Pos {
	return geom.Pos{X: b.worldX(x, z), Y: b.worldY(y), Z: b.worldZ(x, z)}
}

// BlockAt reads the block at piece coordinates. Positions outside box read as air.
func (b *Base) BlockAt(lvl level.Reader, x, y, z int, box geom.BoundingBox) block.State {
	p := b.WorldPos(x, y, z)
	if !box.IsInside(p) {
		return block.Air.Default()
	}
	return lvl.Block(p)
}

// PlaceBlock writes s at piece coordinates when the position is inside box
// and the guard allows it. s is mirrored, then rotated, to match the
// orientation.
func (b *Base) PlaceBlock(lvl level.Level, s block.State, x, y, z int, box geom.BoundingBox) {
	p := b.WorldPos(x, y, z)
	if !box.IsInside(p) {
		return
	}
	if b.Guard != nil && !b.Guard(lvl.Block(p)) {
		return
	}
	if b.mirror != geom.MirrorNone {
		s = s.Mirror(b.mirror)
	}
	if b.rotation != geom.RotateNone {
		s = s.Rotate(b.rotation)
	}
	lvl.SetBlock(p, s, level.UpdateClients)
}

// IsInterior reports whether the block above piece coordinates lies inside
// box and below the level surface.
func (b *Base) IsInterior(lvl level.Reader, x, y, z int, box geom.BoundingBox) bool {
	p := geom.Pos{X: b.worldX(x, z), Y: b.worldY(y + 1), Z: b.worldZ(x, z)}
	if !box.IsInside(p) {
		return false
	}
	return p.Y < lvl.Height(p.X, p.Z)
}

func isEdge(x, y, z, minX, minY, minZ, maxX, maxY, maxZ int) bool {
	return y == minY || y == maxY || x == minX || x == maxX || z == minZ || z == maxZ
}

// GenerateBox fills the inclusive region with edge on its shell and inside
// elsewhere. With existingOnly set, air is left untouched.
func (b *Base) GenerateBox(lvl level.Level, box geom.BoundingBox, minX, minY, minZ, maxX, maxY, maxZ int, edge, inside block.State, existingOnly bool) {
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if existingOnly && b.BlockAt(lvl, x, y, z, box).IsAir() {
					continue
				}
				if isEdge(x, y, z, minX, minY, minZ, maxX, maxY, maxZ) {
					b.PlaceBlock(lvl, edge, x, y, z, box)
				} else {
					b.PlaceBlock(lvl, inside, x, y, z, box)
				}
			}
		}
	}
}

// GenerateMaybeBox is GenerateBox where every position is kept with
// probability chance. One float is drawn per position before any other check.
func (b *Base) GenerateMaybeBox(lvl level.Level, box geom.BoundingBox, rnd random.Source, chance float32, minX, minY, minZ, maxX, maxY, maxZ int, edge, inside block.State, requireNonAir, requireInterior bool) {
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if rnd.NextFloat() > chance {
					continue
				}
				if requireNonAir && b.BlockAt(lvl, x, y, z, box).IsAir() {
					continue
				}
				if requireInterior && !b.IsInterior(lvl, x, y, z, box) {
					continue
				}
				if isEdge(x, y, z, minX, minY, minZ, maxX, maxY, maxZ) {
					b.PlaceBlock(lvl, edge, x, y, z, box)
				} else {
					b.PlaceBlock(lvl, inside, x, y, z, box)
				}
			}
		}
	}
}

// MaybeGenerateBlock places s with probability chance.
func (b *Base) MaybeGenerateBlock(lvl level.Level, box geom.BoundingBox, rnd random.Source, chance float32, x, y, z int, s block.State) {
	if rnd.NextFloat() < chance {
		b.PlaceBlock(lvl, s, x, y, z, box)
	}
}

// GenerateUpperHalfSphere fills the upper half of the ellipsoid inscribed in
// the region with s. With excludeAir set, air is left untouched.
func (b *Base) GenerateUpperHalfSphere(lvl level.Level, box geom.BoundingBox, minX, minY, minZ, maxX, maxY, maxZ int, s block.State, excludeAir bool) {
	w := float32(maxX - minX + 1)
	h := float32(maxY - minY + 1)
	d := float32(maxZ - minZ + 1)
	cx := float32(minX) + w/2
	cz := float32(minZ) + d/2
	for y := minY; y <= maxY; y++ {
		fy := float32(y-minY) / h
		for x := minX; x <= maxX; x++ {
			fx := (float32(x) - cx) / (w * 0.5)
			for z := minZ; z <= maxZ; z++ {
				fz := (float32(z) - cz) / (d * 0.5)
				if excludeAir && b.BlockAt(lvl, x, y, z, box).IsAir() {
					continue
				}
				if fx*fx+fy*fy+fz*fz <= 1.05 {
					b.PlaceBlock(lvl, s, x, y, z, box)
				}
			}
		}
	}
}
