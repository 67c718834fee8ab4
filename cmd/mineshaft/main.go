// Package main provides a command-line mineshaft generator. It grows the
// start for one chunk of a noise world, optionally decorates it, persists it
// and writes its NBT record to disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mineshaft/internal/config"
	"github.com/cory-johannsen/mineshaft/internal/observability"
	"github.com/cory-johannsen/mineshaft/internal/storage/postgres"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/mineshaft"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	chunkX := flag.Int("chunk-x", 0, "start chunk X")
	chunkZ := flag.Int("chunk-z", 0, "start chunk Z")
	typeName := flag.String("type", "", "mineshaft type; empty uses generator.type")
	typesFile := flag.String("types", "", "YAML type catalog; overrides generator.types_file")
	place := flag.Bool("place", false, "decorate the start into the terrain and report the writes")
	persist := flag.Bool("persist", false, "store the start in PostgreSQL")
	list := flag.Bool("list", false, "list stored starts intersecting the chunk instead of generating")
	out := flag.String("out", "", "write the start's NBT record to this file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	path := cfg.Generator.TypesFile
	if *typesFile != "" {
		path = *typesFile
	}
	catalog := mineshaft.DefaultCatalog()
	if path != "" {
		catalog, err = mineshaft.LoadTypes(path)
		if err != nil {
			logger.Fatal("loading mineshaft types", zap.Error(err))
		}
	}
	name := cfg.Generator.Type
	if *typeName != "" {
		name = *typeName
	}
	kind, err := catalog.ByName(name)
	if err != nil {
		logger.Fatal("resolving mineshaft type", zap.Error(err))
	}

	var repo *postgres.StructureRepository
	if *persist || *list {
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			logger.Fatal("migrating database", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		repo = postgres.NewStructureRepository(pool.DB())
	}

	if *list {
		records, err := repo.ListIntersectingChunk(ctx, cfg.Generator.Seed, *chunkX, *chunkZ)
		if err != nil {
			logger.Fatal("listing starts", zap.Error(err))
		}
		for _, rec := range records {
			fmt.Fprintf(os.Stdout, "%s %s/%s chunk=(%d,%d) pieces=%d bounds=%s\n",
				rec.ID, rec.Structure, rec.Variant, rec.ChunkX, rec.ChunkZ, rec.PieceCount, rec.Bounds)
		}
		return
	}

	lvl := level.NewMemory(level.NewNoiseTerrain(level.DefaultNoiseOptions(cfg.Generator.Seed)), cfg.Generator.MinY, cfg.Generator.Height)
	lvl.TagBiomes(level.TagMineshaftBlocking, cfg.Generator.BlockingBiomes...)

	s := mineshaft.Generate(lvl, mineshaft.Options{
		Seed:     cfg.Generator.Seed,
		Type:     kind,
		SeaLevel: cfg.Generator.SeaLevel,
		Logger:   logger,
	}, *chunkX, *chunkZ)
	logger.Info("start generated", observability.StartFields(s)...)

	if *place {
		chunks := s.Place(lvl, cfg.Generator.Seed)
		logger.Info("start placed",
			zap.Int("chunks", chunks),
			zap.Int("blocks", len(lvl.Writes())),
			zap.Int("spawners", lvl.Count(block.Spawner)),
			zap.Int("chests", len(lvl.Entities())),
		)
	}

	if *persist {
		rec, err := repo.Save(ctx, cfg.Generator.Seed, kind.Name, s)
		switch {
		case errors.Is(err, postgres.ErrStructureExists):
			logger.Info("start already stored", zap.Int("chunk_x", *chunkX), zap.Int("chunk_z", *chunkZ))
		case err != nil:
			logger.Fatal("saving start", zap.Error(err))
		default:
			logger.Info("start stored", zap.Stringer("id", rec.ID))
		}
	}

	if *out != "" {
		data, err := s.Encode()
		if err != nil {
			logger.Fatal("encoding start", zap.Error(err))
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Fatal("writing record", zap.String("path", *out), zap.Error(err))
		}
		logger.Info("record written", zap.String("path", *out), zap.Int("bytes", len(data)))
	}

	logger.Info("done", zap.Duration("elapsed", time.Since(start)))
}
