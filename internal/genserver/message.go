package genserver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
)

// maxExactInt is the largest integer a Struct number carries exactly.
const maxExactInt = 1 << 53

// Request is a decoded Generate call.
type Request struct {
	// Seed is the world seed. On the wire it is a decimal string, or a
	// number when its magnitude is at most 2^53.
	Seed   int64
	ChunkX int
	ChunkZ int
	// Type is the mineshaft type name; empty selects the server default.
	Type string
	// Place decorates the generated structure into the service's terrain
	// and reports what was written.
	Place bool
	// Persist stores the start, or returns the one already stored for the
	// same seed and chunk.
	Persist bool
	// IncludeRecord returns the NBT encoding of the start.
	IncludeRecord bool
}

// Struct encodes r for the wire.
func (r Request) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"seed":           strconv.FormatInt(r.Seed, 10),
		"chunk_x":        r.ChunkX,
		"chunk_z":        r.ChunkZ,
		"type":           r.Type,
		"place":          r.Place,
		"persist":        r.Persist,
		"include_record": r.IncludeRecord,
	})
}

// ParseRequest decodes a Generate request. Absent fields take their zero
// value; chunk coordinates must lie within maxRadius of the origin.
//
// Postcondition: Returns a Request or an error naming the first bad field.
func ParseRequest(s *structpb.Struct, maxRadius int) (Request, error) {
	var r Request
	var err error
	if r.Seed, err = seedField(s, "seed"); err != nil {
		return Request{}, err
	}
	if r.ChunkX, err = intField(s, "chunk_x", maxRadius); err != nil {
		return Request{}, err
	}
	if r.ChunkZ, err = intField(s, "chunk_z", maxRadius); err != nil {
		return Request{}, err
	}
	if r.Type, err = stringField(s, "type"); err != nil {
		return Request{}, err
	}
	if r.Place, err = boolField(s, "place"); err != nil {
		return Request{}, err
	}
	if r.Persist, err = boolField(s, "persist"); err != nil {
		return Request{}, err
	}
	if r.IncludeRecord, err = boolField(s, "include_record"); err != nil {
		return Request{}, err
	}
	return r, nil
}

// PieceSummary describes one piece of a generated start.
type PieceSummary struct {
	ID          string
	Depth       int
	Orientation geom.Direction
	Bounds      geom.BoundingBox
}

// Placement reports what decorating a start wrote.
type Placement struct {
	Chunks   int
	Blocks   int
	Spawners int
	Chests   int
}

// Response is a decoded Generate result.
type Response struct {
	// ID is the stored start id; empty when the start was not persisted.
	ID string
	// Cached reports that the start was loaded from the store rather than generated.
	Cached    bool
	Structure string
	Type      string
	ChunkX    int
	ChunkZ    int
	Bounds    geom.BoundingBox
	Pieces    []PieceSummary
	// Placement is nil unless the request asked to place the start.
	Placement *Placement
	// Record is the NBT encoding of the start, when requested.
	Record []byte
}

// Struct encodes r for the wire.
func (r Response) Struct() (*structpb.Struct, error) {
	pieces := make([]any, 0, len(r.Pieces))
	for _, p := range r.Pieces {
		pieces = append(pieces, map[string]any{
			"id":          p.ID,
			"depth":       p.Depth,
			"orientation": string(p.Orientation),
			"bounds":      boxList(p.Bounds),
		})
	}
	m := map[string]any{
		"id":        r.ID,
		"cached":    r.Cached,
		"structure": r.Structure,
		"type":      r.Type,
		"chunk_x":   r.ChunkX,
		"chunk_z":   r.ChunkZ,
		"bounds":    boxList(r.Bounds),
		"pieces":    pieces,
	}
	if r.Placement != nil {
		m["placement"] = map[string]any{
			"chunks":   r.Placement.Chunks,
			"blocks":   r.Placement.Blocks,
			"spawners": r.Placement.Spawners,
			"chests":   r.Placement.Chests,
		}
	}
	if len(r.Record) > 0 {
		m["record"] = base64.StdEncoding.EncodeToString(r.Record)
	}
	return structpb.NewStruct(m)
}

// ParseResponse decodes a Generate result.
func ParseResponse(s *structpb.Struct) (Response, error) {
	var r Response
	var err error
	if r.ID, err = stringField(s, "id"); err != nil {
		return Response{}, err
	}
	if r.Cached, err = boolField(s, "cached"); err != nil {
		return Response{}, err
	}
	if r.Structure, err = stringField(s, "structure"); err != nil {
		return Response{}, err
	}
	if r.Type, err = stringField(s, "type"); err != nil {
		return Response{}, err
	}
	if r.ChunkX, err = intField(s, "chunk_x", math.MaxInt32); err != nil {
		return Response{}, err
	}
	if r.ChunkZ, err = intField(s, "chunk_z", math.MaxInt32); err != nil {
		return Response{}, err
	}
	if r.Bounds, err = boxField(s, "bounds"); err != nil {
		return Response{}, err
	}
	for i, v := range s.GetFields()["pieces"].GetListValue().GetValues() {
		ps := v.GetStructValue()
		if ps == nil {
			return Response{}, fmt.Errorf("pieces[%d]: not an object", i)
		}
		var p PieceSummary
		var orientation string
		if p.ID, err = stringField(ps, "id"); err != nil {
			return Response{}, fmt.Errorf("pieces[%d]: %w", i, err)
		}
		if p.Depth, err = intField(ps, "depth", math.MaxInt32); err != nil {
			return Response{}, fmt.Errorf("pieces[%d]: %w", i, err)
		}
		if orientation, err = stringField(ps, "orientation"); err != nil {
			return Response{}, fmt.Errorf("pieces[%d]: %w", i, err)
		}
		p.Orientation = geom.Direction(orientation)
		if p.Bounds, err = boxField(ps, "bounds"); err != nil {
			return Response{}, fmt.Errorf("pieces[%d]: %w", i, err)
		}
		r.Pieces = append(r.Pieces, p)
	}
	if ps := s.GetFields()["placement"].GetStructValue(); ps != nil {
		var p Placement
		for key, dst := range map[string]*int{"chunks": &p.Chunks, "blocks": &p.Blocks, "spawners": &p.Spawners, "chests": &p.Chests} {
			if *dst, err = intField(ps, key, math.MaxInt32); err != nil {
				return Response{}, fmt.Errorf("placement: %w", err)
			}
		}
		r.Placement = &p
	}
	record, err := stringField(s, "record")
	if err != nil {
		return Response{}, err
	}
	if record != "" {
		if r.Record, err = base64.StdEncoding.DecodeString(record); err != nil {
			return Response{}, fmt.Errorf("record: %w", err)
		}
	}
	return r, nil
}

func boxList(b geom.BoundingBox) []any {
	return []any{b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ}
}

func boxField(s *structpb.Struct, key string) (geom.BoundingBox, error) {
	values := s.GetFields()[key].GetListValue().GetValues()
	if len(values) != 6 {
		return geom.BoundingBox{}, fmt.Errorf("%s: want 6 coordinates, got %d", key, len(values))
	}
	ints := make([]int32, 6)
	for i, v := range values {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
			return geom.BoundingBox{}, fmt.Errorf("%s[%d]: not a 32-bit integer", key, i)
		}
		ints[i] = int32(n.NumberValue)
	}
	return geom.BoxFromInts(ints)
}

func seedField(s *structpb.Struct, key string) (int64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
			return 0, fmt.Errorf("%s: %v is not exactly representable; send it as a string", key, f)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("%s: want a string or number", key)
	}
}

func intField(s *structpb.Struct, key string, limit int) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s: want a number", key)
	}
	f := n.NumberValue
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s: %v is not an integer", key, f)
	}
	if math.Abs(f) > float64(limit) {
		return 0, fmt.Errorf("%s: %v is outside [-%d, %d]", key, f, limit, limit)
	}
	return int(f), nil
}

func stringField(s *structpb.Struct, key string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", nil
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s: want a string", key)
	}
	return str.StringValue, nil
}

func boolField(s *structpb.Struct, key string) (bool, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return false, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, errors.New(key + ": want a bool")
	}
	return b.BoolValue, nil
}
