// Package level defines the voxel grid that structure generation writes
// into, and an in-memory implementation backed by procedural terrain.
package level

import (
	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
)

// UpdateClients is the block-update flag used for all generation writes.
const UpdateClients = 2

// TagMineshaftBlocking names the biome tag in which mineshaft pieces are
// never drawn.
const TagMineshaftBlocking = "mineshaft_blocking"

// Reader is the read side of a level.
type Reader interface {
	// Block returns the state at p. Positions outside the build range read as air.
	Block(p geom.Pos) block.State
	// Biome returns the biome name at p.
	Biome(p geom.Pos) string
	// BiomeIs reports whether the biome at p carries tag.
	BiomeIs(p geom.Pos, tag string) bool
	// Height returns the first Y above the ocean-floor surface at column (x, z).
	Height(x, z int) int
	// MinY is the lowest buildable Y.
	MinY() int
	// MaxY is one past the highest buildable Y.
	MaxY() int
}

// Entity is a free entity spawned by generation, e.g. a minecart with chest.
type Entity struct {
	Kind      string
	X, Y, Z   float64
	LootTable string
	LootSeed  int64
}

// Level is a mutable voxel grid.
type Level interface {
	Reader
	// SetBlock writes s at p.
	//
	// Postcondition: Returns false when p is outside the build range.
	SetBlock(p geom.Pos, s block.State, flags int) bool
	// SetSpawner assigns the spawned entity type of the spawner at p.
	SetSpawner(p geom.Pos, entity string)
	// AddEntity adds a fresh entity.
	AddEntity(e Entity)
}
