package structure

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Tnze/go-mc/nbt"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
)

// ErrUnknownPieceType is returned when a persisted piece carries an id no
// loader is registered for.
var ErrUnknownPieceType = errors.New("unknown piece type")

// Header is the persisted state every piece shares.
type Header struct {
	ID string
	BB []int32
	// O is the 2D data value of the orientation, -1 for none.
	O  int32
	GD int32
}

// Header returns the persisted form of b.
func (b *Base) Header() Header {
	return Header{
		ID: b.Type,
		BB: b.Box.Ints(),
		O:  int32(b.orientation.Data2D()),
		GD: int32(b.Depth),
	}
}

// RestoreBase rebuilds a Base from its persisted form.
func RestoreBase(h Header) (Base, error) {
	box, err := geom.BoxFromInts(h.BB)
	if err != nil {
		return Base{}, fmt.Errorf("restoring %s: %w", h.ID, err)
	}
	b := NewBase(h.ID, int(h.GD), box)
	b.SetOrientation(geom.FromData2D(int(h.O)))
	return b, nil
}

// Loader rebuilds a piece from its persisted compound.
type Loader func(raw nbt.RawMessage) (Piece, error)

// Registry maps persisted piece ids to loaders.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register binds id to l, replacing any earlier binding.
func (r *Registry) Register(id string, l Loader) {
	r.loaders[id] = l
}

// Load rebuilds the piece in raw.
//
// Postcondition: Returns an error wrapping ErrUnknownPieceType when the id
// is not registered.
func (r *Registry) Load(raw nbt.RawMessage) (Piece, error) {
	var head struct {
		ID string `nbt:"id"`
	}
	if err := raw.Unmarshal(&head); err != nil {
		return nil, fmt.Errorf("reading piece id: %w", err)
	}
	l, ok := r.loaders[head.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPieceType, head.ID)
	}
	p, err := l(raw)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", head.ID, err)
	}
	return p, nil
}

// DecodePiece rebuilds a piece from its encoded NBT bytes.
func (r *Registry) DecodePiece(data []byte) (Piece, error) {
	var raw nbt.RawMessage
	if _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding piece: %w", err)
	}
	return r.Load(raw)
}

// EncodePiece encodes the persisted record of p as an unnamed NBT compound.
func EncodePiece(p Piece) ([]byte, error) {
	var buf bytes.Buffer
	if err := nbt.NewEncoder(&buf).Encode(p.Record(), ""); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", p.ID(), err)
	}
	return buf.Bytes(), nil
}
