package level

import (
	"github.com/aquilax/go-perlin"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
)

// Terrain is the base world a Memory level overlays its writes on.
//
// Implementations MUST be safe for concurrent use.
type Terrain interface {
	// Block returns the generated state at p.
	Block(p geom.Pos, minY int) block.State
	// Biome returns the biome name at p.
	Biome(p geom.Pos) string
	// Surface returns the Y of the topmost solid block in column (x, z).
	Surface(x, z int) int
}

// Flat is a uniform terrain: Fill up to and including Surface, air above,
// bedrock on the bottom layer.
type Flat struct {
	SurfaceY  int
	Fill      block.Block
	BiomeName string
}

// Block implements Terrain.
func (f Flat) Block(p geom.Pos, minY int) block.State {
	switch {
	case p.Y > f.SurfaceY:
		return block.Air.Default()
	case p.Y == minY:
		return block.Bedrock.Default()
	default:
		return f.Fill.Default()
	}
}

// Biome implements Terrain.
func (f Flat) Biome(geom.Pos) string { return f.BiomeName }

// Surface implements Terrain.
func (f Flat) Surface(int, int) int { return f.SurfaceY }

// NoiseOptions tunes a NoiseTerrain.
type NoiseOptions struct {
	Seed int64
	// BaseHeight is the mean surface Y.
	BaseHeight int
	// Amplitude is the maximum surface deviation from BaseHeight.
	Amplitude float64
	// CaveThreshold is the 3D noise value above which stone is carved out.
	CaveThreshold float64
	// LavaLevel is the Y at or below which carved caves fill with lava.
	LavaLevel int
	// DeepDarkY is the Y below which deep_dark pockets may appear.
	DeepDarkY int
}

// DefaultNoiseOptions returns the options used by the CLI and the service.
func DefaultNoiseOptions(seed int64) NoiseOptions {
	return NoiseOptions{
		Seed:          seed,
		BaseHeight:    68,
		Amplitude:     14,
		CaveThreshold: 0.32,
		LavaLevel:     -54,
		DeepDarkY:     -20,
	}
}

// NoiseTerrain is a Perlin-noise terrain with stone and deepslate layers,
// noise caves, lava lakes and surface biomes.
type NoiseTerrain struct {
	opts    NoiseOptions
	surface *perlin.Perlin
	caves   *perlin.Perlin
	biomes  *perlin.Perlin
}

// NewNoiseTerrain builds a NoiseTerrain.
//
// Postcondition: Terrains built from equal options are identical.
func NewNoiseTerrain(opts NoiseOptions) *NoiseTerrain {
	return &NoiseTerrain{
		opts:    opts,
		surface: perlin.NewPerlin(2, 2, 3, opts.Seed),
		caves:   perlin.NewPerlin(2, 2, 2, opts.Seed+1),
		biomes:  perlin.NewPerlin(2, 2, 3, opts.Seed+2),
	}
}

// Surface implements Terrain.
func (n *NoiseTerrain) Surface(x, z int) int {
	h := n.surface.Noise2D(float64(x)*0.01, float64(z)*0.01) * n.opts.Amplitude
	h += n.surface.Noise2D(float64(x)*0.05+100, float64(z)*0.05+100) * n.opts.Amplitude * 0.2
	return n.opts.BaseHeight + int(h)
}

// Block implements Terrain.
func (n *NoiseTerrain) Block(p geom.Pos, minY int) block.State {
	surface := n.Surface(p.X, p.Z)
	switch {
	case p.Y > surface:
		return block.Air.Default()
	case p.Y == minY:
		return block.Bedrock.Default()
	}
	if p.Y < surface-3 && n.caves.Noise3D(float64(p.X)*0.04, float64(p.Y)*0.06, float64(p.Z)*0.04) > n.opts.CaveThreshold {
		if p.Y <= n.opts.LavaLevel {
			return block.Lava.Default()
		}
		return block.CaveAir.Default()
	}
	switch {
	case p.Y > surface-3:
		if n.Biome(p) == "badlands" {
			return block.Sand.Default()
		}
		return block.Dirt.Default()
	case p.Y < 0:
		return block.Deepslate.Default()
	default:
		return block.Stone.Default()
	}
}

// Biome implements Terrain.
func (n *NoiseTerrain) Biome(p geom.Pos) string {
	if p.Y < n.opts.DeepDarkY && n.biomes.Noise3D(float64(p.X)*0.02, float64(p.Y)*0.02, float64(p.Z)*0.02) > 0.3 {
		return "deep_dark"
	}
	if n.biomes.Noise2D(float64(p.X)*0.004, float64(p.Z)*0.004) > 0.25 {
		return "badlands"
	}
	return "plains"
}
