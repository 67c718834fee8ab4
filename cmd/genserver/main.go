// Package main provides the generation server binary that serves mineshaft
// starts over gRPC, optionally backed by PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mineshaft/internal/config"
	"github.com/cory-johannsen/mineshaft/internal/genserver"
	"github.com/cory-johannsen/mineshaft/internal/observability"
	"github.com/cory-johannsen/mineshaft/internal/server"
	"github.com/cory-johannsen/mineshaft/internal/storage/postgres"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/mineshaft"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	persist := flag.Bool("persist", true, "connect to PostgreSQL and allow requests to persist starts")
	healthInterval := flag.Duration("db-health", 30*time.Second, "database health check interval")
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

	logger.Info("starting generation server",
		zap.String("grpc_addr", cfg.GenServer.Addr()),
		zap.String("default_type", cfg.Generator.Type),
	)

	catalog := mineshaft.DefaultCatalog()
	if cfg.Generator.TypesFile != "" {
		catalog, err = mineshaft.LoadTypes(cfg.Generator.TypesFile)
		if err != nil {
			logger.Fatal("loading mineshaft types", zap.Error(err))
		}
	}
	if _, err := catalog.ByName(cfg.Generator.Type); err != nil {
		logger.Fatal("default mineshaft type", zap.Error(err))
	}
	logger.Info("mineshaft types loaded", zap.Int("count", len(catalog.Types())))

	lifecycle := server.NewLifecycle(logger, server.DefaultShutdownTimeout)

	var store genserver.Store
	if *persist {
		dbStart := time.Now()
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			logger.Fatal("migrating database", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewStructureRepository(pool.DB())

		done := make(chan struct{})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(*healthInterval)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func(context.Context) error {
				close(done)
				pool.Close()
				return nil
			},
		})
	}

	svc := genserver.NewService(catalog, cfg.Generator, cfg.GenServer, store, logger)
	grpcServer, health := genserver.NewGRPCServer(svc, logger)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.GenServer.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.GenServer.Addr(), err)
			}
			logger.Info("gRPC server listening",
				zap.String("addr", lis.Addr().String()),
			)
			return grpcServer.Serve(lis)
		},
		StopFn: func(ctx context.Context) error {
			health.Shutdown()
			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
				return nil
			case <-ctx.Done():
				grpcServer.Stop()
				return fmt.Errorf("graceful stop: %w", ctx.Err())
			}
		},
	})

	logger.Info("generation server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Bool("persistence", store != nil),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
