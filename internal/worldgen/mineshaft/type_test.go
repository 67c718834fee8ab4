package mineshaft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/mineshaft"
)

func TestLoadTypes_ContentFileMatchesDefaults(t *testing.T) {
	c, err := mineshaft.LoadTypes("../../../content/mineshaft_types.yaml")
	require.NoError(t, err)
	assert.Equal(t, mineshaft.DefaultCatalog().Types(), c.Types())
}

func TestLoadTypes_MissingFile(t *testing.T) {
	_, err := mineshaft.LoadTypes("testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading testdata/does-not-exist.yaml")
}

func TestParseTypes(t *testing.T) {
	c, err := mineshaft.ParseTypes([]byte(`
types:
  - name: birch
    planks: oak_planks
    wood: oak_log
    fence: oak_fence
  - name: cavern
    planks: dark_oak_planks
    wood: dark_oak_log
    fence: dark_oak_fence
    raise_to_surface: true
`))
	require.NoError(t, err)

	cavern, err := c.ByName("cavern")
	require.NoError(t, err)
	assert.Equal(t, 1, cavern.Ordinal)
	assert.True(t, cavern.RaiseToSurface)
	assert.Equal(t, block.DarkOakFence, cavern.Fence)

	byOrdinal, err := c.ByOrdinal(0)
	require.NoError(t, err)
	assert.Equal(t, "birch", byOrdinal.Name)
}

func TestParseTypes_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":          `types: []`,
		"malformed":      `types: [`,
		"missing name":   "types:\n  - planks: oak_planks\n    wood: oak_log\n    fence: oak_fence\n",
		"duplicate name": "types:\n  - {name: a, planks: oak_planks, wood: oak_log, fence: oak_fence}\n  - {name: a, planks: oak_planks, wood: oak_log, fence: oak_fence}\n",
		"unknown block":  "types:\n  - {name: a, planks: granite_planks, wood: oak_log, fence: oak_fence}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := mineshaft.ParseTypes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestCatalog_UnknownLookups(t *testing.T) {
	c := mineshaft.DefaultCatalog()
	_, err := c.ByName("nether")
	assert.ErrorIs(t, err, mineshaft.ErrUnknownType)
	_, err = c.ByOrdinal(2)
	assert.ErrorIs(t, err, mineshaft.ErrUnknownType)
	_, err = c.ByOrdinal(-1)
	assert.ErrorIs(t, err, mineshaft.ErrUnknownType)
}

func TestCatalog_TypesIsACopy(t *testing.T) {
	c := mineshaft.DefaultCatalog()
	types := c.Types()
	types[0].Name = "changed"
	normal, err := c.ByOrdinal(0)
	require.NoError(t, err)
	assert.Equal(t, "normal", normal.Name)
}
