package genserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/mineshaft/internal/config"
	"github.com/cory-johannsen/mineshaft/internal/observability"
	"github.com/cory-johannsen/mineshaft/internal/storage/postgres"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/mineshaft"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// Store persists generated starts. *postgres.StructureRepository implements it.
type Store interface {
	Save(ctx context.Context, worldSeed int64, variant string, s *structure.Start) (postgres.StructureRecord, error)
	FindByChunk(ctx context.Context, worldSeed int64, structureID string, chunkX, chunkZ int) (postgres.StructureRecord, error)
}

// Service implements GeneratorServer over a noise terrain seeded per request.
//
// All methods are safe for concurrent use.
type Service struct {
	catalog   *mineshaft.Catalog
	registry  *structure.Registry
	gen       config.GeneratorConfig
	maxRadius int
	store     Store
	logger    *zap.Logger
}

// NewService creates the generation service. A nil store disables persistence.
//
// Precondition: catalog and logger must be non-nil; gen and srv must be validated.
func NewService(catalog *mineshaft.Catalog, gen config.GeneratorConfig, srv config.GenServerConfig, store Store, logger *zap.Logger) *Service {
	return &Service{
		catalog:   catalog,
		registry:  mineshaft.NewRegistry(catalog),
		gen:       gen,
		maxRadius: srv.MaxChunkRadius,
		store:     store,
		logger:    logger,
	}
}

// Generate implements GeneratorServer.
//
// Postcondition: Returns InvalidArgument for a malformed request or unknown
// type, FailedPrecondition when persistence is requested without a store or
// the chunk already stores a start of another type, Unavailable when the
// store fails, and DataLoss for an unreadable stored start.
func (s *Service) Generate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := ParseRequest(in, s.maxRadius)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Type == "" {
		req.Type = s.gen.Type
	}
	kind, err := s.catalog.ByName(req.Type)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Persist && s.store == nil {
		return nil, status.Error(codes.FailedPrecondition, "persistence is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	resp, err := s.generate(ctx, req, kind)
	if err != nil {
		return nil, err
	}
	out, err := resp.Struct()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

func (s *Service) generate(ctx context.Context, req Request, kind mineshaft.Type) (Response, error) {
	if req.Persist {
		rec, err := s.store.FindByChunk(ctx, req.Seed, mineshaft.StructureID, req.ChunkX, req.ChunkZ)
		switch {
		case err == nil && rec.Variant != kind.Name:
			return Response{}, status.Errorf(codes.FailedPrecondition,
				"chunk (%d, %d) already stores a %q start", req.ChunkX, req.ChunkZ, rec.Variant)
		case err == nil:
			return s.fromRecord(req, rec)
		case !errors.Is(err, postgres.ErrStructureNotFound):
			return Response{}, status.Errorf(codes.Unavailable, "looking up start: %v", err)
		}
	}

	began := time.Now()
	lvl := s.newLevel(req.Seed)
	start := mineshaft.Generate(lvl, mineshaft.Options{
		Seed:     req.Seed,
		Type:     kind,
		SeaLevel: s.gen.SeaLevel,
		Logger:   s.logger,
	}, req.ChunkX, req.ChunkZ)

	resp := summarize(start, kind.Name)
	if req.Place {
		resp.Placement = place(lvl, start, req.Seed)
	}
	if req.Persist {
		rec, err := s.store.Save(ctx, req.Seed, kind.Name, start)
		if err != nil {
			if errors.Is(err, postgres.ErrStructureExists) {
				return Response{}, status.Error(codes.Aborted, "start was stored concurrently; retry")
			}
			return Response{}, status.Errorf(codes.Unavailable, "saving start: %v", err)
		}
		resp.ID = rec.ID.String()
	}
	if req.IncludeRecord {
		data, err := start.Encode()
		if err != nil {
			return Response{}, status.Errorf(codes.Internal, "encoding start: %v", err)
		}
		resp.Record = data
	}

	s.logger.Info("start served",
		append(observability.StartFields(start),
			zap.Bool("persisted", resp.ID != ""),
			zap.Duration("elapsed", time.Since(began)),
		)...,
	)
	return resp, nil
}

func (s *Service) fromRecord(req Request, rec postgres.StructureRecord) (Response, error) {
	start, err := rec.Decode(s.registry)
	if err != nil {
		return Response{}, status.Errorf(codes.DataLoss, "%v", err)
	}
	resp := summarize(start, rec.Variant)
	resp.ID = rec.ID.String()
	resp.Cached = true
	if req.Place {
		resp.Placement = place(s.newLevel(req.Seed), start, req.Seed)
	}
	if req.IncludeRecord {
		resp.Record = rec.Record
	}
	return resp, nil
}

func (s *Service) newLevel(seed int64) *level.Memory {
	lvl := level.NewMemory(level.NewNoiseTerrain(level.DefaultNoiseOptions(seed)), s.gen.MinY, s.gen.Height)
	lvl.TagBiomes(level.TagMineshaftBlocking, s.gen.BlockingBiomes...)
	return lvl
}

func summarize(start *structure.Start, variant string) Response {
	resp := Response{
		Structure: start.ID,
		Type:      variant,
		ChunkX:    start.ChunkX,
		ChunkZ:    start.ChunkZ,
		Pieces:    make([]PieceSummary, 0, len(start.Pieces)),
	}
	if len(start.Pieces) > 0 {
		resp.Bounds = start.BoundingBox()
	}
	for _, p := range start.Pieces {
		resp.Pieces = append(resp.Pieces, PieceSummary{
			ID:          p.ID(),
			Depth:       p.GenDepth(),
			Orientation: p.Orientation(),
			Bounds:      p.BoundingBox(),
		})
	}
	return resp
}

func place(lvl *level.Memory, start *structure.Start, seed int64) *Placement {
	chunks := start.Place(lvl, seed)
	return &Placement{
		Chunks:   chunks,
		Blocks:   len(lvl.Writes()),
		Spawners: lvl.Count(block.Spawner),
		Chests:   len(lvl.Entities()),
	}
}
