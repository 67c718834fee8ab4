package mineshaft

import (
	"fmt"

	"github.com/Tnze/go-mc/nbt"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

type corridorRecord struct {
	ID  string  `nbt:"id"`
	BB  []int32 `nbt:"BB"`
	O   int32   `nbt:"O"`
	GD  int32   `nbt:"GD"`
	MST int32   `nbt:"MST"`
	HR  bool    `nbt:"hr"`
	SC  bool    `nbt:"sc"`
	HPS bool    `nbt:"hps"`
	Num int32   `nbt:"Num"`
}

type crossingRecord struct {
	ID  string  `nbt:"id"`
	BB  []int32 `nbt:"BB"`
	O   int32   `nbt:"O"`
	GD  int32   `nbt:"GD"`
	MST int32   `nbt:"MST"`
	TF  bool    `nbt:"tf"`
	D   int32   `nbt:"D"`
}

type stairsRecord struct {
	ID  string  `nbt:"id"`
	BB  []int32 `nbt:"BB"`
	O   int32   `nbt:"O"`
	GD  int32   `nbt:"GD"`
	MST int32   `nbt:"MST"`
}

type roomRecord struct {
	ID        string    `nbt:"id"`
	BB        []int32   `nbt:"BB"`
	O         int32     `nbt:"O"`
	GD        int32     `nbt:"GD"`
	MST       int32     `nbt:"MST"`
	Entrances [][]int32 `nbt:"Entrances"`
}

// NewRegistry returns a registry that loads every mineshaft piece, resolving
// palettes through catalog.
func NewRegistry(catalog *Catalog) *structure.Registry {
	reg := structure.NewRegistry()
	reg.Register(CorridorID, func(raw nbt.RawMessage) (structure.Piece, error) {
		var rec corridorRecord
		if err := raw.Unmarshal(&rec); err != nil {
			return nil, err
		}
		sp, err := restoreShaftPiece(catalog, structure.Header{ID: rec.ID, BB: rec.BB, O: rec.O, GD: rec.GD}, rec.MST)
		if err != nil {
			return nil, err
		}
		return &Corridor{
			shaftPiece:      sp,
			hasRails:        rec.HR,
			spiderCorridor:  rec.SC,
			hasPlacedSpider: rec.HPS,
			numSections:     int(rec.Num),
		}, nil
	})
	reg.Register(CrossingID, func(raw nbt.RawMessage) (structure.Piece, error) {
		var rec crossingRecord
		if err := raw.Unmarshal(&rec); err != nil {
			return nil, err
		}
		sp, err := restoreShaftPiece(catalog, structure.Header{ID: rec.ID, BB: rec.BB, O: rec.O, GD: rec.GD}, rec.MST)
		if err != nil {
			return nil, err
		}
		return &Crossing{shaftPiece: sp, direction: geom.FromData2D(int(rec.D)), twoFloored: rec.TF}, nil
	})
	reg.Register(StairsID, func(raw nbt.RawMessage) (structure.Piece, error) {
		var rec stairsRecord
		if err := raw.Unmarshal(&rec); err != nil {
			return nil, err
		}
		sp, err := restoreShaftPiece(catalog, structure.Header{ID: rec.ID, BB: rec.BB, O: rec.O, GD: rec.GD}, rec.MST)
		if err != nil {
			return nil, err
		}
		return &Stairs{shaftPiece: sp}, nil
	})
	reg.Register(RoomID, func(raw nbt.RawMessage) (structure.Piece, error) {
		var rec roomRecord
		if err := raw.Unmarshal(&rec); err != nil {
			return nil, err
		}
		sp, err := restoreShaftPiece(catalog, structure.Header{ID: rec.ID, BB: rec.BB, O: rec.O, GD: rec.GD}, rec.MST)
		if err != nil {
			return nil, err
		}
		r := &Room{shaftPiece: sp, entrances: make([]geom.BoundingBox, 0, len(rec.Entrances))}
		for i, ints := range rec.Entrances {
			e, err := geom.BoxFromInts(ints)
			if err != nil {
				return nil, fmt.Errorf("entrance %d: %w", i, err)
			}
			r.entrances = append(r.entrances, e)
		}
		return r, nil
	})
	return reg
}

func restoreShaftPiece(catalog *Catalog, h structure.Header, mst int32) (shaftPiece, error) {
	base, err := structure.RestoreBase(h)
	if err != nil {
		return shaftPiece{}, err
	}
	kind, err := catalog.ByOrdinal(int(mst))
	if err != nil {
		return shaftPiece{}, err
	}
	base.Guard = replaceGuard(kind)
	return shaftPiece{Base: base, kind: kind}, nil
}
