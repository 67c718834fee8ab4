package level

import (
	"slices"
	"sync"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
)

// Write records one SetBlock call.
type Write struct {
	Pos   geom.Pos
	State block.State
}

// Memory is an in-memory Level that overlays writes on a Terrain.
//
// All methods are safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	terrain   Terrain
	minY      int
	maxY      int
	overrides map[geom.Pos]block.State
	writes    []Write
	spawners  map[geom.Pos]string
	entities  []Entity
	heights   map[[2]int]int
	tags      map[string][]string
}

// NewMemory creates a Memory level spanning [minY, minY+height).
//
// Precondition: terrain must be non-nil and height > 0.
func NewMemory(terrain Terrain, minY, height int) *Memory {
	return &Memory{
		terrain:   terrain,
		minY:      minY,
		maxY:      minY + height,
		overrides: make(map[geom.Pos]block.State),
		spawners:  make(map[geom.Pos]string),
		heights:   make(map[[2]int]int),
		tags:      map[string][]string{TagMineshaftBlocking: {"deep_dark"}},
	}
}

// TagBiomes replaces the biome list of tag.
func (m *Memory) TagBiomes(tag string, biomes ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[tag] = slices.Clone(biomes)
}

func (m *Memory) inRange(p geom.Pos) bool { return p.Y >= m.minY && p.Y < m.maxY }

// Block implements Reader.
func (m *Memory) Block(p geom.Pos) block.State {
	if !m.inRange(p) {
		return block.Air.Default()
	}
	m.mu.RLock()
	s, ok := m.overrides[p]
	m.mu.RUnlock()
	if ok {
		return s
	}
	return m.terrain.Block(p, m.minY)
}

// Biome implements Reader.
func (m *Memory) Biome(p geom.Pos) string { return m.terrain.Biome(p) }

// BiomeIs implements Reader.
func (m *Memory) BiomeIs(p geom.Pos, tag string) bool {
	m.mu.RLock()
	biomes := m.tags[tag]
	m.mu.RUnlock()
	return slices.Contains(biomes, m.terrain.Biome(p))
}

// Height implements Reader.
func (m *Memory) Height(x, z int) int {
	key := [2]int{x, z}
	m.mu.RLock()
	h, ok := m.heights[key]
	m.mu.RUnlock()
	if ok {
		return h
	}
	h = min(max(m.terrain.Surface(x, z)+1, m.minY), m.maxY)
	m.mu.Lock()
	m.heights[key] = h
	m.mu.Unlock()
	return h
}

// MinY implements Reader.
func (m *Memory) MinY() int { return m.minY }

// MaxY implements Reader.
func (m *Memory) MaxY() int { return m.maxY }

// SetBlock implements Level.
func (m *Memory) SetBlock(p geom.Pos, s block.State, _ int) bool {
	if !m.inRange(p) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[p] = s
	m.writes = append(m.writes, Write{Pos: p, State: s})
	return true
}

// SetSpawner implements Level.
func (m *Memory) SetSpawner(p geom.Pos, entity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spawners[p] = entity
}

// AddEntity implements Level.
func (m *Memory) AddEntity(e Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities = append(m.entities, e)
}

// Writes returns a copy of every SetBlock call in call order.
func (m *Memory) Writes() []Write {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.writes)
}

// Entities returns a copy of the spawned entities in spawn order.
func (m *Memory) Entities() []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.entities)
}

// Spawners returns a copy of the spawner assignments.
func (m *Memory) Spawners() map[geom.Pos]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[geom.Pos]string, len(m.spawners))
	for k, v := range m.spawners {
		out[k] = v
	}
	return out
}

// Count returns the number of overridden positions holding b.
func (m *Memory) Count(b block.Block) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.overrides {
		if s.Block == b {
			n++
		}
	}
	return n
}
