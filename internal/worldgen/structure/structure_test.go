package structure_test

import (
	"bytes"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

const testPieceID = "test_box"

type boxPiece struct {
	structure.Base
}

type boxRecord struct {
	ID string  `nbt:"id"`
	BB []int32 `nbt:"BB"`
	O  int32   `nbt:"O"`
	GD int32   `nbt:"GD"`
}

func newBoxPiece(box geom.BoundingBox, depth int) *boxPiece {
	return &boxPiece{Base: structure.NewBase(testPieceID, depth, box)}
}

func (p *boxPiece) AddChildren(structure.Piece, structure.Accessor, random.Source) {}

func (p *boxPiece) PostProcess(lvl level.Level, _ random.Source, box geom.BoundingBox) {
	b := p.Box
	p.GenerateBox(lvl, box, b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ,
		block.OakPlanks.Default(), block.CaveAir.Default(), false)
}

func (p *boxPiece) Record() any {
	h := p.Header()
	return boxRecord{ID: h.ID, BB: h.BB, O: h.O, GD: h.GD}
}

func loadBoxPiece(raw nbt.RawMessage) (structure.Piece, error) {
	var rec boxRecord
	if err := raw.Unmarshal(&rec); err != nil {
		return nil, err
	}
	b, err := structure.RestoreBase(structure.Header{ID: rec.ID, BB: rec.BB, O: rec.O, GD: rec.GD})
	if err != nil {
		return nil, err
	}
	return &boxPiece{Base: b}, nil
}

func testRegistry() *structure.Registry {
	reg := structure.NewRegistry()
	reg.Register(testPieceID, loadBoxPiece)
	return reg
}

func flatLevel() *level.Memory {
	return level.NewMemory(level.Flat{SurfaceY: 64, Fill: block.Stone, BiomeName: "plains"}, -64, 384)
}

// zeroSource returns the lowest value of every draw.
type zeroSource struct{}

func (zeroSource) NextInt(int) int     { return 0 }
func (zeroSource) NextFloat() float32  { return 0 }
func (zeroSource) NextBoolean() bool   { return false }
func (zeroSource) NextLong() int64     { return 0 }
func (zeroSource) NextDouble() float64 { return 0 }

var everywhere = geom.NewBox(-1000, -64, -1000, 1000, 319, 1000)

func TestBase_WorldPosPerOrientation(t *testing.T) {
	box := geom.NewBox(10, 20, 30, 12, 22, 38)
	cases := map[geom.Direction]geom.Pos{
		geom.North: {X: 11, Y: 20, Z: 36},
		geom.South: {X: 11, Y: 20, Z: 32},
		geom.West:  {X: 10, Y: 20, Z: 31},
		geom.East:  {X: 12, Y: 20, Z: 31},
		geom.None:  {X: 1, Y: 0, Z: 2},
	}
	for d, want := range cases {
		b := structure.NewBase("x", 0, box)
		b.SetOrientation(d)
		assert.Equal(t, want, b.WorldPos(1, 0, 2), "orientation %q", d)
	}
}

func TestBase_PlaceBlockRotatesState(t *testing.T) {
	lvl := flatLevel()
	b := structure.NewBase("x", 0, geom.NewBox(0, 70, 0, 2, 72, 8))
	b.SetOrientation(geom.East)
	b.PlaceBlock(lvl, block.WallTorch.Default().WithFacing(geom.South), 0, 0, 0, everywhere)
	got := lvl.Block(b.WorldPos(0, 0, 0))
	assert.True(t, got.Is(block.WallTorch))
	assert.Equal(t, geom.West, got.Facing)
}

func TestBase_PlaceBlockClipsAndGuards(t *testing.T) {
	lvl := flatLevel()
	b := structure.NewBase("x", 0, geom.NewBox(0, 0, 0, 4, 4, 4))
	clip := geom.NewBox(0, 0, 0, 1, 1, 1)

	b.PlaceBlock(lvl, block.Cobweb.Default(), 3, 3, 3, clip)
	assert.Empty(t, lvl.Writes(), "writes outside the clip box are dropped")

	b.Guard = func(current block.State) bool { return !current.Is(block.Stone) }
	b.PlaceBlock(lvl, block.Cobweb.Default(), 0, 0, 0, clip)
	assert.Empty(t, lvl.Writes(), "guard vetoes the write")

	b.Guard = nil
	b.PlaceBlock(lvl, block.Cobweb.Default(), 0, 0, 0, clip)
	assert.Len(t, lvl.Writes(), 1)
}

func TestBase_BlockAtOutsideBoxIsAir(t *testing.T) {
	lvl := flatLevel()
	b := structure.NewBase("x", 0, geom.NewBox(0, 0, 0, 4, 4, 4))
	assert.True(t, b.BlockAt(lvl, 0, 0, 0, everywhere).Is(block.Stone))
	assert.True(t, b.BlockAt(lvl, 0, 0, 0, geom.NewBox(5, 5, 5, 6, 6, 6)).IsAir())
}

func TestBase_IsInterior(t *testing.T) {
	lvl := flatLevel()
	b := structure.NewBase("x", 0, geom.NewBox(0, 0, 0, 4, 4, 4))
	assert.True(t, b.IsInterior(lvl, 0, 63, 0, everywhere))
	assert.False(t, b.IsInterior(lvl, 0, 64, 0, everywhere))
	assert.False(t, b.IsInterior(lvl, 0, 10, 0, geom.NewBox(0, 0, 0, 1, 10, 1)), "block above must be inside the clip box")
}

func TestBase_GenerateBoxShellAndInside(t *testing.T) {
	lvl := flatLevel()
	p := newBoxPiece(geom.NewBox(0, 10, 0, 2, 12, 2), 0)
	p.PostProcess(lvl, zeroSource{}, everywhere)
	assert.Equal(t, 26, lvl.Count(block.OakPlanks))
	assert.Equal(t, 1, lvl.Count(block.CaveAir))
	assert.True(t, lvl.Block(geom.Pos{X: 1, Y: 11, Z: 1}).Is(block.CaveAir))
}

func TestBase_GenerateBoxExistingOnly(t *testing.T) {
	lvl := flatLevel()
	b := structure.NewBase("x", 0, geom.NewBox(0, 63, 0, 0, 66, 0))
	b.GenerateBox(lvl, everywhere, 0, 63, 0, 0, 66, 0, block.Cobweb.Default(), block.Cobweb.Default(), true)
	assert.Equal(t, 2, lvl.Count(block.Cobweb), "only the two stone blocks under the surface are replaced")
}

func TestBase_GenerateMaybeBoxDrawsOncePerPosition(t *testing.T) {
	lvl := flatLevel()
	rnd := random.NewLogged(random.NewLegacy(1), zap.NewNop())
	b := structure.NewBase("x", 0, geom.NewBox(0, 0, 0, 2, 2, 2))
	b.GenerateMaybeBox(lvl, everywhere, rnd, 1, 0, 0, 0, 2, 2, 2, block.Cobweb.Default(), block.Cobweb.Default(), false, false)
	assert.Equal(t, 27, rnd.Draws())
	assert.Equal(t, 27, lvl.Count(block.Cobweb))
}

func TestBase_MaybeGenerateBlockStrictChance(t *testing.T) {
	lvl := flatLevel()
	b := structure.NewBase("x", 0, geom.NewBox(0, 0, 0, 2, 2, 2))
	b.MaybeGenerateBlock(lvl, everywhere, zeroSource{}, 0, 0, 0, 0, block.Cobweb.Default())
	assert.Empty(t, lvl.Writes(), "a zero draw does not pass a zero chance")
	b.MaybeGenerateBlock(lvl, everywhere, zeroSource{}, 0.05, 0, 0, 0, block.Cobweb.Default())
	assert.Len(t, lvl.Writes(), 1)
}

func TestBase_GenerateUpperHalfSphere(t *testing.T) {
	lvl := flatLevel()
	b := structure.NewBase("x", 0, geom.NewBox(0, 0, 0, 4, 4, 4))
	b.GenerateUpperHalfSphere(lvl, everywhere, 0, 0, 0, 4, 4, 4, block.Cobweb.Default(), false)
	assert.True(t, lvl.Block(geom.Pos{X: 2, Y: 0, Z: 2}).Is(block.Cobweb))
	assert.True(t, lvl.Block(geom.Pos{X: 2, Y: 4, Z: 2}).Is(block.Cobweb))
	assert.False(t, lvl.Block(geom.Pos{X: 0, Y: 4, Z: 0}).Is(block.Cobweb))
}

func TestPieces_FindCollisionReturnsFirst(t *testing.T) {
	ps := structure.NewPieces(zap.NewNop())
	a := newBoxPiece(geom.NewBox(0, 0, 0, 4, 4, 4), 0)
	b := newBoxPiece(geom.NewBox(2, 2, 2, 8, 8, 8), 1)
	ps.AddPiece(a)
	ps.AddPiece(b)
	assert.Same(t, a, ps.FindCollisionPiece(geom.NewBox(3, 3, 3, 3, 3, 3)))
	assert.Same(t, b, ps.FindCollisionPiece(geom.NewBox(7, 7, 7, 9, 9, 9)))
	assert.Nil(t, ps.FindCollisionPiece(geom.NewBox(10, 10, 10, 11, 11, 11)))
	assert.Equal(t, geom.NewBox(0, 0, 0, 8, 8, 8), ps.BoundingBox())
}

func TestPieces_MoveBelowSeaLevel(t *testing.T) {
	ps := structure.NewPieces(zap.NewNop())
	ps.AddPiece(newBoxPiece(geom.NewBox(0, 50, 0, 6, 53, 6), 0))
	dy := ps.MoveBelowSeaLevel(63, -64, zeroSource{}, 10)
	assert.Equal(t, -112, dy)
	assert.Equal(t, geom.NewBox(0, -62, 0, 6, -59, 6), ps.BoundingBox())
}

func TestPieces_MoveBelowSeaLevel_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ps := structure.NewPieces(zap.NewNop())
		h := rapid.IntRange(3, 40).Draw(rt, "height")
		ps.AddPiece(newBoxPiece(geom.NewBox(0, 50, 0, 6, 50+h, 6), 0))
		seed := rapid.Int64().Draw(rt, "seed")
		ps.MoveBelowSeaLevel(63, -64, random.NewLegacy(seed), 10)
		box := ps.BoundingBox()
		assert.Greater(rt, box.MinY, -64)
		assert.LessOrEqual(rt, box.MaxY, max(53, h-64+1))
	})
}

func TestRegistry_UnknownPieceType(t *testing.T) {
	data, err := structure.EncodePiece(newBoxPiece(geom.NewBox(0, 0, 0, 1, 1, 1), 0))
	require.NoError(t, err)
	_, err = structure.NewRegistry().DecodePiece(data)
	assert.ErrorIs(t, err, structure.ErrUnknownPieceType)
}

func TestRegistry_PieceRoundTrip(t *testing.T) {
	p := newBoxPiece(geom.NewBox(-3, 40, 7, 5, 44, 19), 3)
	p.SetOrientation(geom.West)
	data, err := structure.EncodePiece(p)
	require.NoError(t, err)

	got, err := testRegistry().DecodePiece(data)
	require.NoError(t, err)
	assert.Equal(t, p.BoundingBox(), got.BoundingBox())
	assert.Equal(t, geom.West, got.Orientation())
	assert.Equal(t, 3, got.GenDepth())

	again, err := structure.EncodePiece(got)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestStart_EncodeDecode(t *testing.T) {
	s := &structure.Start{
		ID: "mineshaft", ChunkX: 2, ChunkZ: -5, References: 1,
		Pieces: []structure.Piece{
			newBoxPiece(geom.NewBox(0, 50, 0, 6, 53, 6), 0),
			newBoxPiece(geom.NewBox(7, 50, 0, 9, 52, 14), 1),
		},
	}
	data, err := s.Encode()
	require.NoError(t, err)

	got, err := structure.DecodeStart(data, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, "mineshaft", got.ID)
	assert.Equal(t, 2, got.ChunkX)
	assert.Equal(t, -5, got.ChunkZ)
	assert.Equal(t, 1, got.References)
	require.Len(t, got.Pieces, 2)
	assert.Equal(t, s.Pieces[1].BoundingBox(), got.Pieces[1].BoundingBox())

	again, err := got.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestStart_ChildrenAreEncodedAsPieceCompounds(t *testing.T) {
	s := &structure.Start{
		ID: "mineshaft",
		Pieces: []structure.Piece{
			newBoxPiece(geom.NewBox(0, 50, 0, 6, 53, 6), 0),
			newBoxPiece(geom.NewBox(7, 50, 0, 9, 52, 14), 1),
		},
	}
	data, err := s.Encode()
	require.NoError(t, err)

	var generic struct {
		Children []map[string]any `nbt:"Children"`
	}
	_, err = nbt.NewDecoder(bytes.NewReader(data)).Decode(&generic)
	require.NoError(t, err)
	require.Len(t, generic.Children, 2)
	for i, child := range generic.Children {
		assert.Equal(t, testPieceID, child["id"], "child %d", i)
		assert.Equal(t, int32(i), child["GD"], "child %d", i)
		assert.NotContains(t, child, "Type")
		assert.NotContains(t, child, "Data")
	}
}

func TestStart_EncodeDecodeWithoutPieces(t *testing.T) {
	s := &structure.Start{ID: "mineshaft", ChunkX: -1, ChunkZ: 4}
	data, err := s.Encode()
	require.NoError(t, err)

	got, err := structure.DecodeStart(data, testRegistry())
	require.NoError(t, err)
	assert.Empty(t, got.Pieces)
	assert.Equal(t, -1, got.ChunkX)
}

func TestStart_PlaceInChunkClipsWrites(t *testing.T) {
	lvl := flatLevel()
	s := &structure.Start{Pieces: []structure.Piece{newBoxPiece(geom.NewBox(14, 10, 0, 17, 12, 2), 0)}}
	n := s.PlaceInChunk(lvl, zeroSource{}, 0, 0)
	assert.Equal(t, 1, n)
	for _, w := range lvl.Writes() {
		assert.LessOrEqual(t, w.Pos.X, 15)
	}
	assert.Equal(t, 0, s.PlaceInChunk(lvl, zeroSource{}, 5, 5))
}

func TestStart_PlaceVisitsEveryChunk(t *testing.T) {
	lvl := flatLevel()
	s := &structure.Start{Pieces: []structure.Piece{newBoxPiece(geom.NewBox(14, 10, 0, 17, 12, 2), 0)}}
	assert.Equal(t, 2, s.Place(lvl, 99))
	assert.Equal(t, 36, len(lvl.Writes()))
}
