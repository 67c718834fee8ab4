// Package block defines the block kinds and block states that world
// generation reads from and writes into a level.
package block

import "fmt"

// Block identifies a block kind.
type Block uint16

// Known block kinds.
const (
	Air Block = iota
	CaveAir
	Stone
	Deepslate
	Dirt
	Gravel
	Sand
	Bedrock
	Water
	Lava
	OakLog
	OakPlanks
	OakFence
	DarkOakLog
	DarkOakPlanks
	DarkOakFence
	Chain
	Rail
	Cobweb
	WallTorch
	Spawner
	GlowLichen
	Seagrass
	TallSeagrass
)

type properties struct {
	name        string
	air         bool
	liquid      bool
	fullCube    bool
	opaque      bool
	falling     bool
	centerPost  bool
	replaceable bool
}

var table = [...]properties{
	Air:           {name: "air", air: true, replaceable: true},
	CaveAir:       {name: "cave_air", air: true, replaceable: true},
	Stone:         {name: "stone", fullCube: true, opaque: true},
	Deepslate:     {name: "deepslate", fullCube: true, opaque: true},
	Dirt:          {name: "dirt", fullCube: true, opaque: true},
	Gravel:        {name: "gravel", fullCube: true, opaque: true, falling: true},
	Sand:          {name: "sand", fullCube: true, opaque: true, falling: true},
	Bedrock:       {name: "bedrock", fullCube: true, opaque: true},
	Water:         {name: "water", liquid: true, replaceable: true},
	Lava:          {name: "lava", liquid: true, replaceable: true},
	OakLog:        {name: "oak_log", fullCube: true, opaque: true},
	OakPlanks:     {name: "oak_planks", fullCube: true, opaque: true},
	OakFence:      {name: "oak_fence", centerPost: true},
	DarkOakLog:    {name: "dark_oak_log", fullCube: true, opaque: true},
	DarkOakPlanks: {name: "dark_oak_planks", fullCube: true, opaque: true},
	DarkOakFence:  {name: "dark_oak_fence", centerPost: true},
	Chain:         {name: "chain", centerPost: true},
	Rail:          {name: "rail"},
	Cobweb:        {name: "cobweb"},
	WallTorch:     {name: "wall_torch"},
	Spawner:       {name: "spawner", fullCube: true},
	GlowLichen:    {name: "glow_lichen", replaceable: true},
	Seagrass:      {name: "seagrass", replaceable: true},
	TallSeagrass:  {name: "tall_seagrass", replaceable: true},
}

var byName = func() map[string]Block {
	m := make(map[string]Block, len(table))
	for i, p := range table {
		m[p.name] = Block(i)
	}
	return m
}()

// ByName resolves a block kind from its registry name, e.g. "oak_planks".
//
// Postcondition: Returns an error when name is not a known block.
func ByName(name string) (Block, error) {
	b, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("unknown block %q", name)
	}
	return b, nil
}

func (b Block) props() properties {
	if int(b) >= len(table) {
		panic(fmt.Sprintf("block: unknown block id %d", uint16(b)))
	}
	return table[b]
}

// String returns the registry name of b.
func (b Block) String() string { return b.props().name }

// Default returns the default state of b.
func (b Block) Default() State { return State{Block: b} }
