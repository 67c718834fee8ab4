package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/mineshaft/internal/config"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/level"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/mineshaft"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/structure"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestStartFields_EmptyStart(t *testing.T) {
	fields := StartFields(&structure.Start{ID: "mineshaft", ChunkX: 1, ChunkZ: -2})
	assert.Len(t, fields, 4)
}

func TestStartFields_CountsPieces(t *testing.T) {
	lvl := level.NewMemory(level.Flat{SurfaceY: 100, Fill: block.Stone, BiomeName: "plains"}, -64, 384)
	start := mineshaft.Generate(lvl, mineshaft.Options{Seed: 12, Type: mineshaft.DefaultCatalog().Types()[0], SeaLevel: 63}, 0, 0)

	core, logs := observer.New(zap.InfoLevel)
	zap.New(core).Info("generated", StartFields(start)...)
	require.Equal(t, 1, logs.Len())

	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "mineshaft", ctx["structure"])
	assert.EqualValues(t, len(start.Pieces), ctx["pieces"])
	assert.Equal(t, start.BoundingBox().String(), ctx["bounds"])

	counts, ok := ctx["piece_counts"].(map[string]int)
	require.True(t, ok)
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, len(start.Pieces), total)
	assert.Equal(t, 1, counts[mineshaft.RoomID])
}
