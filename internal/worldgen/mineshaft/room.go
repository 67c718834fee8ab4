package mineshaft

import (
	"slices"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// Room is the domed chamber a mineshaft grows from. It lays out in absolute
// coordinates and remembers a doorway for every piece it spawned.
type Room struct {
	shaftPiece
	entrances []geom.BoundingBox
}

// NewRoom lays out a room with its minimum corner at (x, RoomY, z). Width,
// height and depth are drawn in that order.
//
// Postcondition: the box spans 7-12 blocks on X and Z and 4-9 on Y.
func NewRoom(depth int, rnd random.Source, x, z int, kind Type) *Room {
	maxX := x + 6 + rnd.NextInt(6)
	maxY := RoomY + 3 + rnd.NextInt(6)
	maxZ := z + 6 + rnd.NextInt(6)
	return &Room{shaftPiece: newShaftPiece(RoomID, depth, kind, geom.NewBox(x, RoomY, z, maxX, maxY, maxZ))}
}

// Entrances returns a copy of the doorway boxes in spawn order.
func (r *Room) Entrances() []geom.BoundingBox { return slices.Clone(r.entrances) }

// Move translates the room and its doorways together.
func (r *Room) Move(dx, dy, dz int) {
	r.Base.Move(dx, dy, dz)
	for i := range r.entrances {
		r.entrances[i].Move(dx, dy, dz)
	}
}

// AddChildren walks each wall in north, south, west, east order, trying a
// piece at random strides and recording a doorway for each one placed.
func (r *Room) AddChildren(root structure.Piece, acc structure.Accessor, rnd random.Source) {
	next := r.Depth + 1
	b := r.Box
	k := b.YSpan() - 3 - 1
	if k <= 0 {
		k = 1
	}

	walk := func(span int, try func(j, y int)) {
		for j := 0; j < span; {
			j += rnd.NextInt(span)
			if j+3 > span {
				return
			}
			try(j, b.MinY+rnd.NextInt(k)+1)
			j += 4
		}
	}

	walk(b.XSpan(), func(j, y int) {
		if p := generateAndAddPiece(root, acc, rnd, b.MinX+j, y, b.MinZ-1, geom.North, next); p != nil {
			pb := p.BoundingBox()
			r.entrances = append(r.entrances, geom.NewBox(pb.MinX, pb.MinY, b.MinZ, pb.MaxX, pb.MaxY, b.MinZ+1))
		}
	})
	walk(b.XSpan(), func(j, y int) {
		if p := generateAndAddPiece(root, acc, rnd, b.MinX+j, y, b.MaxZ+1, geom.South, next); p != nil {
			pb := p.BoundingBox()
			r.entrances = append(r.entrances, geom.NewBox(pb.MinX, pb.MinY, b.MaxZ-1, pb.MaxX, pb.MaxY, b.MaxZ))
		}
	})
	walk(b.ZSpan(), func(j, y int) {
		if p := generateAndAddPiece(root, acc, rnd, b.MinX-1, y, b.MinZ+j, geom.West, next); p != nil {
			pb := p.BoundingBox()
			r.entrances = append(r.entrances, geom.NewBox(b.MinX, pb.MinY, pb.MinZ, b.MinX+1, pb.MaxY, pb.MaxZ))
		}
	})
	walk(b.ZSpan(), func(j, y int) {
		if p := generateAndAddPiece(root, acc, rnd, b.MaxX+1, y, b.MinZ+j, geom.East, next); p != nil {
			pb := p.BoundingBox()
			r.entrances = append(r.entrances, geom.NewBox(b.MaxX-1, pb.MinY, pb.MinZ, b.MaxX, pb.MaxY, pb.MaxZ))
		}
	})
}

// PostProcess hollows the floor layer, opens every doorway and carves the dome.
func (r *Room) PostProcess(lvl level.Level, _ random.Source, box geom.BoundingBox) {
	if r.isInInvalidLocation(lvl, box) {
		return
	}
	b := r.Box
	r.GenerateBox(lvl, box, b.MinX, b.MinY+1, b.MinZ, b.MaxX, min(b.MinY+3, b.MaxY), b.MaxZ, caveAir, caveAir, false)
	for _, e := range r.entrances {
		r.GenerateBox(lvl, box, e.MinX, e.MaxY-2, e.MinZ, e.MaxX, e.MaxY, e.MaxZ, caveAir, caveAir, false)
	}
	r.GenerateUpperHalfSphere(lvl, box, b.MinX, b.MinY+4, b.MinZ, b.MaxX, b.MaxY, b.MaxZ, caveAir, false)
}

// Record implements structure.Piece.
func (r *Room) Record() any {
	h := r.Header()
	entrances := make([][]int32, 0, len(r.entrances))
	for _, e := range r.entrances {
		entrances = append(entrances, e.Ints())
	}
	return roomRecord{ID: h.ID, BB: h.BB, O: h.O, GD: h.GD, MST: int32(r.kind.Ordinal), Entrances: entrances}
}
