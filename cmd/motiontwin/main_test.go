package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/physics"
)

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("100, 50,2.5")
	require.NoError(t, err)
	assert.Equal(t, dynamo.Vec3{100, 50, 2.5}, p)

	p, err = parsePoint("10")
	require.NoError(t, err)
	assert.Equal(t, dynamo.Vec3{10, 0, 0}, p)

	for _, bad := range []string{"", "1,2,3,4", "a,b"} {
		_, err := parsePoint(bad)
		assert.ErrorIs(t, err, dynamo.ErrInput, bad)
	}
}

func TestDemoPath(t *testing.T) {
	path := demoPath()
	require.Len(t, path, len(demoMoves)+1)
	assert.Equal(t, dynamo.Vec3{}, path[0])
	assert.Equal(t, dynamo.Vec3{}, path[len(path)-1], "demo returns to the origin")
	for i, mv := range demoMoves {
		assert.Equal(t, mv[0], path[i])
		assert.Equal(t, mv[1], path[i+1])
	}
}

func TestDominantAxis(t *testing.T) {
	assert.Equal(t, physics.X, dominantAxis(dynamo.Vec3{}, dynamo.Vec3{100, 0, 0}))
	assert.Equal(t, physics.Y, dominantAxis(dynamo.Vec3{100, 0, 0}, dynamo.Vec3{100, 50, 0}))
	assert.Equal(t, physics.X, dominantAxis(dynamo.Vec3{}, dynamo.Vec3{}))
}

func TestLoadConfig_Preset(t *testing.T) {
	preset = "heavy_gantry"
	t.Cleanup(func() { preset = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.Constraints.MaxVelocity)

	preset = "missing"
	_, err = loadConfig()
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}
