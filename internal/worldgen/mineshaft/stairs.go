package mineshaft

import (
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// Stairs descends five blocks over a fixed 3x8x9 box.
type Stairs struct {
	shaftPiece
}

func newStairs(depth int, box geom.BoundingBox, facing geom.Direction, kind Type) *Stairs {
	s := &Stairs{shaftPiece: newShaftPiece(StairsID, depth, kind, box)}
	s.SetOrientation(facing)
	return s
}

func findStairs(acc structure.Accessor, x, y, z int, facing geom.Direction) (geom.BoundingBox, bool) {
	var box geom.BoundingBox
	switch facing {
	case geom.South:
		box = geom.NewBox(0, -5, 0, 2, 2, 8)
	case geom.West:
		box = geom.NewBox(-8, -5, 0, 0, 2, 2)
	case geom.East:
		box = geom.NewBox(0, -5, 0, 8, 2, 2)
	default:
		box = geom.NewBox(0, -5, -8, 2, 2, 0)
	}
	box.Move(x, y, z)
	if acc.FindCollisionPiece(box) != nil {
		return geom.BoundingBox{}, false
	}
	return box, true
}

// AddChildren continues straight ahead from the low end.
func (s *Stairs) AddChildren(root structure.Piece, acc structure.Accessor, rnd random.Source) {
	next := s.Depth + 1
	b := s.Box
	switch facing := s.Orientation(); facing {
	case geom.None:
	case geom.South:
		generateAndAddPiece(root, acc, rnd, b.MinX, b.MinY, b.MaxZ+1, facing, next)
	case geom.West:
		generateAndAddPiece(root, acc, rnd, b.MinX-1, b.MinY, b.MinZ, facing, next)
	case geom.East:
		generateAndAddPiece(root, acc, rnd, b.MaxX+1, b.MinY, b.MinZ, facing, next)
	default:
		generateAndAddPiece(root, acc, rnd, b.MinX, b.MinY, b.MinZ-1, facing, next)
	}
}

// PostProcess carves the upper landing, the lower landing and five steps.
func (s *Stairs) PostProcess(lvl level.Level, _ random.Source, box geom.BoundingBox) {
	if s.isInInvalidLocation(lvl, box) {
		return
	}
	s.GenerateBox(lvl, box, 0, 5, 0, 2, 7, 1, caveAir, caveAir, false)
	s.GenerateBox(lvl, box, 0, 0, 7, 2, 2, 8, caveAir, caveAir, false)
	for i := 0; i < 5; i++ {
		floor := 5 - i
		if i < 4 {
			floor--
		}
		s.GenerateBox(lvl, box, 0, floor, 2+i, 2, 7-i, 2+i, caveAir, caveAir, false)
	}
}

// Record implements structure.Piece.
func (s *Stairs) Record() any {
	h := s.Header()
	return stairsRecord{ID: h.ID, BB: h.BB, O: h.O, GD: h.GD, MST: int32(s.kind.Ordinal)}
}
