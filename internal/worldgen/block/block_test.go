package block_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mineshaft/internal/worldgen/block"
	"github.com/cory-johannsen/mineshaft/internal/worldgen/geom"
)

func TestByName(t *testing.T) {
	b, err := block.ByName("dark_oak_fence")
	require.NoError(t, err)
	assert.Equal(t, block.DarkOakFence, b)

	_, err = block.ByName("diamond_block")
	assert.Error(t, err)
}

func TestState_Classification(t *testing.T) {
	assert.True(t, block.CaveAir.Default().IsAir())
	assert.True(t, block.Lava.Default().Liquid())
	assert.True(t, block.Water.Default().ReplaceableByStructures())
	assert.True(t, block.GlowLichen.Default().ReplaceableByStructures())
	assert.False(t, block.Stone.Default().ReplaceableByStructures())
	assert.True(t, block.Gravel.Default().Falling())
	assert.True(t, block.OakPlanks.Default().IsFaceSturdy(geom.Up))
	assert.False(t, block.OakFence.Default().IsFaceSturdy(geom.Up))
	assert.True(t, block.OakFence.Default().SupportsCenter(geom.Down))
	assert.False(t, block.Rail.Default().SolidRender())
}

func TestState_RotateRail(t *testing.T) {
	s := block.Rail.Default().WithShape(block.NorthSouth)
	assert.Equal(t, block.EastWest, s.Rotate(geom.Clockwise90).Shape)
	assert.Equal(t, block.NorthSouth, s.Rotate(geom.Clockwise180).Shape)
	assert.Equal(t, block.NorthSouth, s.Mirror(geom.LeftRight).Shape)
}

func TestState_MirrorTorch(t *testing.T) {
	s := block.WallTorch.Default().WithFacing(geom.South)
	assert.Equal(t, geom.North, s.Mirror(geom.LeftRight).Facing)
	assert.Equal(t, geom.West, s.Rotate(geom.Clockwise90).Facing)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "stone", block.Stone.Default().String())
	assert.Equal(t, "rail[shape=east_west]", block.Rail.Default().WithShape(block.EastWest).String())
	assert.Equal(t, "oak_fence[west=true]", block.OakFence.Default().WithLink(geom.West).String())
}

func TestState_FenceLinksFollowRotation_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.SampledFrom(geom.Horizontal).Draw(rt, "dir")
		r := rapid.SampledFrom([]geom.Rotation{
			geom.RotateNone, geom.Clockwise90, geom.Clockwise180, geom.CounterClockwise90,
		}).Draw(rt, "rot")
		s := block.OakFence.Default().WithLink(d).Rotate(r)
		assert.True(rt, s.Linked(r.Rotate(d)))
		for _, other := range geom.Horizontal {
			if other != r.Rotate(d) {
				assert.False(rt, s.Linked(other))
			}
		}
	})
}
