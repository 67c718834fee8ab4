package mineshaft

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
)

// ErrUnknownType is returned for a mineshaft type name or ordinal the
// catalog does not define.
var ErrUnknownType = errors.New("unknown mineshaft type")

// Type is a mineshaft palette.
//
// Invariant: Ordinal equals the index of the type in its Catalog.
type Type struct {
	Name    string
	Ordinal int
	Planks  block.Block
	Wood    block.Block
	Fence   block.Block
	// RaiseToSurface places the structure between sea level and the surface
	// instead of sinking it below sea level.
	RaiseToSurface bool
}

// PlanksState is the default plank state.
func (t Type) PlanksState() block.State { return t.Planks.Default() }

// WoodState is the default log state.
func (t Type) WoodState() block.State { return t.Wood.Default() }

// FenceState is the default fence state.
func (t Type) FenceState() block.State { return t.Fence.Default() }

// Catalog is the ordered set of mineshaft types. The order defines the
// persisted ordinal of each type.
type Catalog struct {
	types []Type
}

// DefaultCatalog returns the built-in normal and mesa types.
func DefaultCatalog() *Catalog {
	return &Catalog{types: []Type{
		{Name: "normal", Ordinal: 0, Planks: block.OakPlanks, Wood: block.OakLog, Fence: block.OakFence},
		{Name: "mesa", Ordinal: 1, Planks: block.DarkOakPlanks, Wood: block.DarkOakLog, Fence: block.DarkOakFence, RaiseToSurface: true},
	}}
}

// ByOrdinal returns the type persisted as ordinal.
//
// Postcondition: Returns an error wrapping ErrUnknownType when ordinal is out of range.
func (c *Catalog) ByOrdinal(ordinal int) (Type, error) {
	if ordinal < 0 || ordinal >= len(c.types) {
		return Type{}, fmt.Errorf("%w: ordinal %d", ErrUnknownType, ordinal)
	}
	return c.types[ordinal], nil
}

// ByName returns the type called name.
//
// Postcondition: Returns an error wrapping ErrUnknownType when no type matches.
func (c *Catalog) ByName(name string) (Type, error) {
	for _, t := range c.types {
		if t.Name == name {
			return t, nil
		}
	}
	return Type{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Types returns the types in ordinal order.
func (c *Catalog) Types() []Type {
	out := make([]Type, len(c.types))
	copy(out, c.types)
	return out
}

type typeFile struct {
	Types []struct {
		Name           string `yaml:"name"`
		Planks         string `yaml:"planks"`
		Wood           string `yaml:"wood"`
		Fence          string `yaml:"fence"`
		RaiseToSurface bool   `yaml:"raise_to_surface"`
	} `yaml:"types"`
}

// ParseTypes builds a Catalog from YAML.
//
// Postcondition: Returns a non-empty Catalog with unique names, or a non-nil error.
func ParseTypes(data []byte) (*Catalog, error) {
	var f typeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing mineshaft types: %w", err)
	}
	if len(f.Types) == 0 {
		return nil, errors.New("mineshaft types: at least one type is required")
	}
	c := &Catalog{types: make([]Type, 0, len(f.Types))}
	seen := make(map[string]bool, len(f.Types))
	for i, raw := range f.Types {
		if raw.Name == "" {
			return nil, fmt.Errorf("mineshaft type %d: name must not be empty", i)
		}
		if seen[raw.Name] {
			return nil, fmt.Errorf("mineshaft type %q: duplicate name", raw.Name)
		}
		seen[raw.Name] = true
		t := Type{Name: raw.Name, Ordinal: i, RaiseToSurface: raw.RaiseToSurface}
		var err error
		if t.Planks, err = block.ByName(raw.Planks); err != nil {
			return nil, fmt.Errorf("mineshaft type %q planks: %w", raw.Name, err)
		}
		if t.Wood, err = block.ByName(raw.Wood); err != nil {
			return nil, fmt.Errorf("mineshaft type %q wood: %w", raw.Name, err)
		}
		if t.Fence, err = block.ByName(raw.Fence); err != nil {
			return nil, fmt.Errorf("mineshaft type %q fence: %w", raw.Name, err)
		}
		c.types = append(c.types, t)
	}
	return c, nil
}

// LoadTypes reads a Catalog from the YAML file at path.
//
// Precondition: path must name a readable file.
func LoadTypes(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseTypes(data)
}
