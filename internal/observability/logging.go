// Package observability builds the structured loggers the mineshaft tools
// share and the field sets they log generated structures with.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/mineshaft/internal/config"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

// NewLogger creates a structured logger from the given logging configuration.
// Sampling is disabled at debug level so per-draw traces are never dropped.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level == zapcore.DebugLevel {
		zapCfg.Sampling = nil
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// StartFields summarizes a generated structure start: its anchor chunk, its
// bounds and how many pieces of each kind it holds.
func StartFields(s *structure.Start) []zap.Field {
	fields := []zap.Field{
		zap.String("structure", s.ID),
		zap.Int("chunk_x", s.ChunkX),
		zap.Int("chunk_z", s.ChunkZ),
		zap.Int("pieces", len(s.Pieces)),
	}
	if len(s.Pieces) == 0 {
		return fields
	}
	counts := make(map[string]int)
	for _, p := range s.Pieces {
		counts[p.ID()]++
	}
	return append(fields,
		zap.Stringer("bounds", s.BoundingBox()),
		zap.Any("piece_counts", counts),
	)
}
