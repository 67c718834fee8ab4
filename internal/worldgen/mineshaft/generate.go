package mineshaft

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/random"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// StructureID is the persisted id of a mineshaft start.
const StructureID = "mineshaft"

// SeaLevelMargin is how far below sea level a sunken mineshaft tops out.
const SeaLevelMargin = 10

// Options configures Generate.
type Options struct {
	// Seed is the world seed.
	Seed int64
	// Type is the palette and placement rule.
	Type Type
	// SeaLevel is the world sea level.
	SeaLevel int
	// Logger receives the structure summary at info and every piece and
	// random draw at debug. Nil disables logging.
	Logger *zap.Logger
}

// Generate grows the mineshaft started in chunk (chunkX, chunkZ) of lvl and
// moves it to its final height. Nothing is written to lvl.
//
// Postcondition: the returned start holds at least the room; no two piece
// boxes intersect; every piece is at most MaxDepth deep.
func Generate(lvl level.Reader, opts Options, chunkX, chunkZ int) *structure.Start {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	began := time.Now()

	seeded := random.NewLegacy(0)
	seeded.SetLargeFeatureSeed(opts.Seed, chunkX, chunkZ)
	rnd := random.NewLogged(seeded, logger)
	// The start consumes one double before laying out the room.
	rnd.NextDouble()

	pieces := structure.NewPieces(logger)
	room := NewRoom(0, rnd, chunkX*16+2, chunkZ*16+2, opts.Type)
	pieces.AddPiece(room)
	structure.Expand(room, room, pieces, rnd)

	var dy int
	if opts.Type.RaiseToSurface {
		center := pieces.BoundingBox().Center()
		target := opts.SeaLevel
		if surface := lvl.Height(center.X, center.Z); surface > opts.SeaLevel {
			target = random.Between(rnd, opts.SeaLevel, surface)
		}
		dy = target - center.Y
		pieces.OffsetVertically(dy)
	} else {
		dy = pieces.MoveBelowSeaLevel(opts.SeaLevel, lvl.MinY(), rnd, SeaLevelMargin)
	}

	logger.Info("mineshaft generated",
		zap.Int("chunk_x", chunkX),
		zap.Int("chunk_z", chunkZ),
		zap.String("type", opts.Type.Name),
		zap.Int("pieces", pieces.Len()),
		zap.Stringer("bounds", pieces.BoundingBox()),
		zap.Int("offset_y", dy),
		zap.Int("draws", rnd.Draws()),
		zap.Duration("elapsed", time.Since(began)),
	)
	return &structure.Start{
		ID:     StructureID,
		ChunkX: chunkX,
		ChunkZ: chunkZ,
		Pieces: slices.Clone(pieces.List()),
	}
}
