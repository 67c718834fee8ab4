package structure

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
)

// Accessor is the sink pieces register into while a structure grows.
type Accessor interface {
	// AddPiece registers p.
	AddPiece(p Piece)
	// FindCollisionPiece returns the first registered piece whose box
	// intersects box, or nil.
	FindCollisionPiece(box geom.BoundingBox) Piece
}

// TreeRecorder is implemented by accessors that record which piece each
// added piece grew from.
type TreeRecorder interface {
	// BeginChildren marks parent as the piece now adding children.
	BeginChildren(parent Piece)
	// EndChildren closes the innermost BeginChildren.
	EndChildren()
}

// Expand lets p add its children, reporting the expansion to acc when it
// records the piece tree.
func Expand(p, root Piece, acc Accessor, rnd random.Source) {
	if tr, ok := acc.(TreeRecorder); ok {
		tr.BeginChildren(p)
		defer tr.EndChildren()
	}
	p.AddChildren(root, acc, rnd)
}

// Pieces is the ordered piece list of one structure under construction.
//
// Not safe for concurrent use.
type Pieces struct {
	logger    *zap.Logger
	list      []Piece
	index     map[Piece]int
	parents   []int
	expanding []int
}

// NewPieces creates an empty builder.
//
// Precondition: logger must be non-nil.
func NewPieces(logger *zap.Logger) *Pieces {
	return &Pieces{logger: logger, index: make(map[Piece]int)}
}

// AddPiece implements Accessor.
func (ps *Pieces) AddPiece(p Piece) {
	parent := -1
	if n := len(ps.expanding); n > 0 {
		parent = ps.expanding[n-1]
	}
	ps.index[p] = len(ps.list)
	ps.list = append(ps.list, p)
	ps.parents = append(ps.parents, parent)
	if ce := ps.logger.Check(zap.DebugLevel, "piece added"); ce != nil {
		ce.Write(
			zap.String("id", p.ID()),
			zap.Stringer("box", p.BoundingBox()),
			zap.Int("depth", p.GenDepth()),
			zap.Int("index", len(ps.list)-1),
			zap.Int("parent", parent),
		)
	}
}

// BeginChildren implements TreeRecorder.
//
// Precondition: parent was added to ps.
func (ps *Pieces) BeginChildren(parent Piece) {
	i, ok := ps.index[parent]
	if !ok {
		panic("structure: BeginChildren called for a piece that was never added")
	}
	ps.expanding = append(ps.expanding, i)
}

// EndChildren implements TreeRecorder.
func (ps *Pieces) EndChildren() {
	ps.expanding = ps.expanding[:len(ps.expanding)-1]
}

// Parent returns the index of the piece that added piece i, or -1 for a
// piece added outside any expansion.
func (ps *Pieces) Parent(i int) int { return ps.parents[i] }

// FindCollisionPiece implements Accessor.
func (ps *Pieces) FindCollisionPiece(box geom.BoundingBox) Piece {
	for _, p := range ps.list {
		if p.BoundingBox().Intersects(box) {
			return p
		}
	}
	return nil
}

// List returns the pieces in insertion order. The slice is shared.
func (ps *Pieces) List() []Piece { return ps.list }

// Len returns the number of pieces.
func (ps *Pieces) Len() int { return len(ps.list) }

// BoundingBox returns the box enclosing every piece.
//
// Precondition: Len() > 0.
func (ps *Pieces) BoundingBox() geom.BoundingBox {
	if len(ps.list) == 0 {
		panic("structure: BoundingBox called on an empty piece list")
	}
	box := ps.list[0].BoundingBox()
	for _, p := range ps.list[1:] {
		box = box.Encapsulate(p.BoundingBox())
	}
	return box
}

// OffsetVertically moves every piece by dy.
func (ps *Pieces) OffsetVertically(dy int) {
	for _, p := range ps.list {
		p.Move(0, dy, 0)
	}
}

// MoveBelowSeaLevel sinks the structure so its top sits at least margin
// blocks below seaLevel, at a random height above the level floor.
//
// Postcondition: Returns the vertical offset applied.
func (ps *Pieces) MoveBelowSeaLevel(seaLevel, minY int, rnd random.Source, margin int) int {
	limit := seaLevel - margin
	box := ps.BoundingBox()
	top := box.YSpan() + minY + 1
	if top < limit {
		top += rnd.NextInt(limit - top)
	}
	dy := top - box.MaxY
	ps.OffsetVertically(dy)
	return dy
}
