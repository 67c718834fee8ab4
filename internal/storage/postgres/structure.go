package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// ErrStructureNotFound is returned when a structure start lookup yields no results.
var ErrStructureNotFound = errors.New("structure start not found")

// ErrStructureExists is returned when a start is already stored for the
// same seed, structure and chunk.
var ErrStructureExists = errors.New("structure start already exists")

// StructureRecord is one stored structure start.
type StructureRecord struct {
	ID        uuid.UUID
	WorldSeed int64
	Structure string
	// Variant is the structure type name, such as "normal" or "mesa".
	Variant    string
	ChunkX     int
	ChunkZ     int
	PieceCount int
	Bounds     geom.BoundingBox
	// Record is the NBT encoding of the start.
	Record    []byte
	CreatedAt time.Time
}

// Decode rebuilds the start, resolving its pieces through reg.
func (r StructureRecord) Decode(reg *structure.Registry) (*structure.Start, error) {
	s, err := structure.DecodeStart(r.Record, reg)
	if err != nil {
		return nil, fmt.Errorf("decoding start %s: %w", r.ID, err)
	}
	return s, nil
}

// StructureRepository provides structure start persistence operations.
type StructureRepository struct {
	db *pgxpool.Pool
}

// NewStructureRepository creates a StructureRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewStructureRepository(db *pgxpool.Pool) *StructureRepository {
	return &StructureRepository{db: db}
}

const structureColumns = `id, world_seed, structure, variant, chunk_x, chunk_z, piece_count,
	min_x, min_y, min_z, max_x, max_y, max_z, record, created_at`

// Save encodes and stores s under a new id.
//
// Precondition: s must hold at least one piece.
// Postcondition: Returns the stored record with ID and CreatedAt set, or
// ErrStructureExists when the seed, structure and chunk are already taken.
func (r *StructureRepository) Save(ctx context.Context, worldSeed int64, variant string, s *structure.Start) (StructureRecord, error) {
	if len(s.Pieces) == 0 {
		return StructureRecord{}, fmt.Errorf("saving start %s: no pieces", s.ID)
	}
	data, err := s.Encode()
	if err != nil {
		return StructureRecord{}, fmt.Errorf("saving start %s: %w", s.ID, err)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return StructureRecord{}, fmt.Errorf("generating start id: %w", err)
	}
	b := s.BoundingBox()

	row := r.db.QueryRow(ctx,
		`INSERT INTO structure_starts (id, world_seed, structure, variant, chunk_x, chunk_z, piece_count,
			min_x, min_y, min_z, max_x, max_y, max_z, record)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+structureColumns,
		id, worldSeed, s.ID, variant, s.ChunkX, s.ChunkZ, len(s.Pieces),
		b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ, data,
	)
	rec, err := scanStructure(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return StructureRecord{}, ErrStructureExists
		}
		return StructureRecord{}, fmt.Errorf("inserting start: %w", err)
	}
	return rec, nil
}

// Get retrieves a start by id.
//
// Postcondition: Returns ErrStructureNotFound when no start has the id.
func (r *StructureRepository) Get(ctx context.Context, id uuid.UUID) (StructureRecord, error) {
	rec, err := scanStructure(r.db.QueryRow(ctx,
		`SELECT `+structureColumns+` FROM structure_starts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StructureRecord{}, ErrStructureNotFound
		}
		return StructureRecord{}, fmt.Errorf("querying start %s: %w", id, err)
	}
	return rec, nil
}

// FindByChunk retrieves the start anchored at chunk (chunkX, chunkZ).
//
// Postcondition: Returns ErrStructureNotFound when no start is anchored there.
func (r *StructureRepository) FindByChunk(ctx context.Context, worldSeed int64, structureID string, chunkX, chunkZ int) (StructureRecord, error) {
	rec, err := scanStructure(r.db.QueryRow(ctx,
		`SELECT `+structureColumns+` FROM structure_starts
		 WHERE world_seed = $1 AND structure = $2 AND chunk_x = $3 AND chunk_z = $4`,
		worldSeed, structureID, chunkX, chunkZ))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StructureRecord{}, ErrStructureNotFound
		}
		return StructureRecord{}, fmt.Errorf("querying start at chunk %d,%d: %w", chunkX, chunkZ, err)
	}
	return rec, nil
}

// ListIntersectingChunk returns every start of worldSeed whose bounds reach
// into chunk (chunkX, chunkZ), oldest first. These are the starts a chunk
// must be decorated with.
func (r *StructureRepository) ListIntersectingChunk(ctx context.Context, worldSeed int64, chunkX, chunkZ int) ([]StructureRecord, error) {
	minX, minZ := chunkX*16, chunkZ*16
	rows, err := r.db.Query(ctx,
		`SELECT `+structureColumns+` FROM structure_starts
		 WHERE world_seed = $1 AND min_x <= $2 AND max_x >= $3 AND min_z <= $4 AND max_z >= $5
		 ORDER BY created_at, id`,
		worldSeed, minX+15, minX, minZ+15, minZ)
	if err != nil {
		return nil, fmt.Errorf("querying starts for chunk %d,%d: %w", chunkX, chunkZ, err)
	}
	defer rows.Close()

	var out []StructureRecord
	for rows.Next() {
		rec, err := scanStructure(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning start: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating starts: %w", err)
	}
	return out, nil
}

// Delete removes a start by id.
//
// Postcondition: Returns ErrStructureNotFound when no start has the id.
func (r *StructureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM structure_starts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting start %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStructureNotFound
	}
	return nil
}

func scanStructure(row pgx.Row) (StructureRecord, error) {
	var rec StructureRecord
	var b geom.BoundingBox
	err := row.Scan(&rec.ID, &rec.WorldSeed, &rec.Structure, &rec.Variant, &rec.ChunkX, &rec.ChunkZ, &rec.PieceCount,
		&b.MinX, &b.MinY, &b.MinZ, &b.MaxX, &b.MaxY, &b.MaxZ, &rec.Record, &rec.CreatedAt)
	if err != nil {
		return StructureRecord{}, err
	}
	rec.Bounds = b
	return rec, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
