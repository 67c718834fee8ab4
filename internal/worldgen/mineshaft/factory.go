package mineshaft

import (
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// generateAndAddPiece places a random piece at (x, y, z) facing facing at
// generation depth depth, registers it and expands it before returning.
//
// Precondition: root is the room the structure grew from; depth is the new
// piece's depth, one more than the calling piece's.
// Postcondition: Returns nil without drawing when depth > MaxDepth or (x, z)
// is more than MaxReach from the root origin; returns nil after drawing when
// the chosen kind finds no free box.
func generateAndAddPiece(root structure.Piece, acc structure.Accessor, rnd random.Source, x, y, z int, facing geom.Direction, depth int) structure.Piece {
	if depth > MaxDepth {
		return nil
	}
	origin := root.BoundingBox()
	if abs(x-origin.MinX) > MaxReach || abs(z-origin.MinZ) > MaxReach {
		return nil
	}
	r, ok := root.(Piece)
	if !ok {
		panic("mineshaft: generateAndAddPiece called with a foreign root piece")
	}
	p := createRandomShaftPiece(acc, rnd, x, y, z, facing, depth, r.MineshaftType())
	if p == nil {
		return nil
	}
	acc.AddPiece(p)
	structure.Expand(p, root, acc, rnd)
	return p
}

// createRandomShaftPiece rolls the piece kind, 20% crossing, 10% stairs and
// 70% corridor, and builds it when its candidate box is free.
func createRandomShaftPiece(acc structure.Accessor, rnd random.Source, x, y, z int, facing geom.Direction, depth int, kind Type) structure.Piece {
	roll := rnd.NextInt(100)
	switch {
	case roll >= 80:
		if box, ok := findCrossing(acc, rnd, x, y, z, facing); ok {
			return newCrossing(depth, box, facing, kind)
		}
	case roll >= 70:
		if box, ok := findStairs(acc, x, y, z, facing); ok {
			return newStairs(depth, box, facing, kind)
		}
	default:
		if box, ok := findCorridorSize(acc, rnd, x, y, z, facing); ok {
			return newCorridor(depth, rnd, box, facing, kind)
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
