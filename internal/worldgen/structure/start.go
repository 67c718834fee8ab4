package structure

import (
	"bytes"
	"fmt"

	"github.com/Tnze/go-mc/nbt"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
)

// UndergroundStructuresStep is the decoration step structure starts paint in.
const UndergroundStructuresStep = 3

// Start is one generated structure instance, anchored at the chunk it was
// started from.
type Start struct {
	ID         string
	ChunkX     int
	ChunkZ     int
	References int
	Pieces     []Piece
}

// BoundingBox returns the box enclosing every piece.
//
// Precondition: len(s.Pieces) > 0.
func (s *Start) BoundingBox() geom.BoundingBox {
	box := s.Pieces[0].BoundingBox()
	for _, p := range s.Pieces[1:] {
		box = box.Encapsulate(p.BoundingBox())
	}
	return box
}

// ChunkBox returns the writable column of chunk (chunkX, chunkZ) in lvl.
func ChunkBox(lvl level.Reader, chunkX, chunkZ int) geom.BoundingBox {
	return geom.NewBox(chunkX*16, lvl.MinY(), chunkZ*16, chunkX*16+15, lvl.MaxY()-1, chunkZ*16+15)
}

// DecorationRandom returns the stream used to decorate chunk (chunkX, chunkZ).
func DecorationRandom(worldSeed int64, chunkX, chunkZ int) *random.Legacy {
	r := random.NewLegacy(0)
	s := r.SetDecorationSeed(worldSeed, chunkX*16, chunkZ*16)
	r.SetFeatureSeed(s, 0, UndergroundStructuresStep)
	return r
}

// PlaceInChunk post-processes every piece intersecting the chunk column,
// with writes clipped to that column.
//
// Postcondition: Returns the number of pieces post-processed.
func (s *Start) PlaceInChunk(lvl level.Level, rnd random.Source, chunkX, chunkZ int) int {
	box := ChunkBox(lvl, chunkX, chunkZ)
	n := 0
	for _, p := range s.Pieces {
		if p.BoundingBox().Intersects(box) {
			p.PostProcess(lvl, rnd, box)
			n++
		}
	}
	return n
}

// Place decorates every chunk the structure touches, in X-major order, each
// with its own decoration stream.
//
// Postcondition: Returns the number of chunks visited.
func (s *Start) Place(lvl level.Level, worldSeed int64) int {
	if len(s.Pieces) == 0 {
		return 0
	}
	box := s.BoundingBox()
	chunks := 0
	for cx := box.MinX >> 4; cx <= box.MaxX>>4; cx++ {
		for cz := box.MinZ >> 4; cz <= box.MaxZ>>4; cz++ {
			s.PlaceInChunk(lvl, DecorationRandom(worldSeed, cx, cz), cx, cz)
			chunks++
		}
	}
	return chunks
}

// startRecord is the decoded form of a start. Children stay raw until the
// registry resolves their ids.
type startRecord struct {
	ID         string           `nbt:"id"`
	ChunkX     int32            `nbt:"ChunkX"`
	ChunkZ     int32            `nbt:"ChunkZ"`
	References int32            `nbt:"references"`
	Children   []nbt.RawMessage `nbt:"Children"`
}

// startOutRecord is the encoded form of a start. The encoder does not apply
// RawMessage's marshaler to list elements, so children are written from
// their typed records.
type startOutRecord struct {
	ID         string `nbt:"id"`
	ChunkX     int32  `nbt:"ChunkX"`
	ChunkZ     int32  `nbt:"ChunkZ"`
	References int32  `nbt:"references"`
	Children   []any  `nbt:"Children"`
}

// Encode returns the start as an unnamed NBT compound.
//
// Postcondition: DecodeStart followed by Encode reproduces the same bytes.
func (s *Start) Encode() ([]byte, error) {
	rec := startOutRecord{
		ID:         s.ID,
		ChunkX:     int32(s.ChunkX),
		ChunkZ:     int32(s.ChunkZ),
		References: int32(s.References),
		Children:   make([]any, 0, len(s.Pieces)),
	}
	for _, p := range s.Pieces {
		rec.Children = append(rec.Children, p.Record())
	}
	var buf bytes.Buffer
	if err := nbt.NewEncoder(&buf).Encode(rec, ""); err != nil {
		return nil, fmt.Errorf("encoding start %s: %w", s.ID, err)
	}
	return buf.Bytes(), nil
}

// DecodeStart rebuilds a start from Encode output, resolving pieces through reg.
func DecodeStart(data []byte, reg *Registry) (*Start, error) {
	var rec startRecord
	if _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding start: %w", err)
	}
	s := &Start{
		ID:         rec.ID,
		ChunkX:     int(rec.ChunkX),
		ChunkZ:     int(rec.ChunkZ),
		References: int(rec.References),
		Pieces:     make([]Piece, 0, len(rec.Children)),
	}
	for i, raw := range rec.Children {
		p, err := reg.Load(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding piece %d: %w", i, err)
		}
		s.Pieces = append(s.Pieces, p)
	}
	return s, nil
}
