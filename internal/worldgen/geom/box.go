package geom

import "fmt"

// Pos is an integer block position.
type Pos struct {
	X, Y, Z int
}

// Offset returns the neighbour of p in direction d.
func (p Pos) Offset(d Direction) Pos {
	dx, dy, dz := d.Step()
	return Pos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Below returns the position directly under p.
func (p Pos) Below() Pos { return p.Offset(Down) }

// BoundingBox is an inclusive axis-aligned integer box.
//
// Invariant: Min <= Max on every axis.
type BoundingBox struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// NewBox returns the box spanning both corners, normalizing each axis so
// that the invariant holds regardless of argument order.
func NewBox(x0, y0, z0, x1, y1, z1 int) BoundingBox {
	return BoundingBox{
		MinX: min(x0, x1), MinY: min(y0, y1), MinZ: min(z0, z1),
		MaxX: max(x0, x1), MaxY: max(y0, y1), MaxZ: max(z0, z1),
	}
}

// BoxFromInts rebuilds a box from its persisted six-int form.
//
// Postcondition: Returns an error when len(v) != 6.
func BoxFromInts(v []int32) (BoundingBox, error) {
	if len(v) != 6 {
		return BoundingBox{}, fmt.Errorf("bounding box: want 6 ints, got %d", len(v))
	}
	return NewBox(int(v[0]), int(v[1]), int(v[2]), int(v[3]), int(v[4]), int(v[5])), nil
}

// Ints returns the persisted form: minX, minY, minZ, maxX, maxY, maxZ.
func (b BoundingBox) Ints() []int32 {
	return []int32{
		int32(b.MinX), int32(b.MinY), int32(b.MinZ),
		int32(b.MaxX), int32(b.MaxY), int32(b.MaxZ),
	}
}

// XSpan is the inclusive width along X.
func (b BoundingBox) XSpan() int { return b.MaxX - b.MinX + 1 }

// YSpan is the inclusive height.
func (b BoundingBox) YSpan() int { return b.MaxY - b.MinY + 1 }

// ZSpan is the inclusive depth along Z.
func (b BoundingBox) ZSpan() int { return b.MaxZ - b.MinZ + 1 }

// Intersects reports whether b and o share at least one block.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.MaxX >= o.MinX && b.MinX <= o.MaxX &&
		b.MaxZ >= o.MinZ && b.MinZ <= o.MaxZ &&
		b.MaxY >= o.MinY && b.MinY <= o.MaxY
}

// IntersectsColumn reports whether b overlaps the XZ rectangle, ignoring Y.
func (b BoundingBox) IntersectsColumn(minX, minZ, maxX, maxZ int) bool {
	return b.MaxX >= minX && b.MinX <= maxX && b.MaxZ >= minZ && b.MinZ <= maxZ
}

// IsInside reports whether p lies within b.
func (b BoundingBox) IsInside(p Pos) bool {
	return p.X >= b.MinX && p.X <= b.MaxX &&
		p.Z >= b.MinZ && p.Z <= b.MaxZ &&
		p.Y >= b.MinY && p.Y <= b.MaxY
}

// Moved returns b translated by (dx, dy, dz).
func (b BoundingBox) Moved(dx, dy, dz int) BoundingBox {
	b.Move(dx, dy, dz)
	return b
}

// Move translates b in place.
func (b *BoundingBox) Move(dx, dy, dz int) {
	b.MinX += dx
	b.MinY += dy
	b.MinZ += dz
	b.MaxX += dx
	b.MaxY += dy
	b.MaxZ += dz
}

// Encapsulate returns the smallest box containing both b and o.
func (b BoundingBox) Encapsulate(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: min(b.MinX, o.MinX), MinY: min(b.MinY, o.MinY), MinZ: min(b.MinZ, o.MinZ),
		MaxX: max(b.MaxX, o.MaxX), MaxY: max(b.MaxY, o.MaxY), MaxZ: max(b.MaxZ, o.MaxZ),
	}
}

// Center returns the block at the centre of b, rounding toward the max corner.
func (b BoundingBox) Center() Pos {
	return Pos{
		X: b.MinX + b.XSpan()/2,
		Y: b.MinY + b.YSpan()/2,
		Z: b.MinZ + b.ZSpan()/2,
	}
}

// String renders b as "(minX,minY,minZ)-(maxX,maxY,maxZ)".
func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d,%d)-(%d,%d,%d)", b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ)
}
