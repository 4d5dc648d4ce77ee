package lse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRotation(t *testing.T) {
	for _, r := range []int{0, 90, 180, 270, -90} {
		assert.True(t, ValidRotation(r), "expected %d to be valid", r)
	}
	for _, r := range []int{45, 360, -180, 1} {
		assert.False(t, ValidRotation(r), "expected %d to be invalid", r)
	}
}

func TestNormalizeRotation(t *testing.T) {
	assert.Equal(t, 270, NormalizeRotation(-90))
	assert.Equal(t, 0, NormalizeRotation(360))
	assert.Equal(t, 90, NormalizeRotation(90))
}

func TestRotatePositionCorners(t *testing.T) {
	sizeX, sizeZ := 4, 3
	x, z := RotatePosition(0, 0, 90, sizeX, sizeZ)
	assert.Equal(t, sizeZ-1, x)
	assert.Equal(t, 0, z)

	x, z = RotatePosition(0, 0, 180, sizeX, sizeZ)
	assert.Equal(t, sizeX-1, x)
	assert.Equal(t, sizeZ-1, z)

	x, z = RotatePosition(0, 0, 0, sizeX, sizeZ)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, z)
}

func TestRotateBlockStateFacing(t *testing.T) {
	b := BlockData{Name: "minecraft:furnace", Properties: map[string]string{"facing": "north"}}
	rotated := RotateBlockState(b, 90)
	assert.Equal(t, "east", rotated.Properties["facing"])

	rotated = RotateBlockState(b, 180)
	assert.Equal(t, "south", rotated.Properties["facing"])

	// original must be untouched
	assert.Equal(t, "north", b.Properties["facing"])
}

func TestRotateBlockStateAxis(t *testing.T) {
	b := BlockData{Name: "minecraft:log", Properties: map[string]string{"axis": "x"}}
	assert.Equal(t, "z", RotateBlockState(b, 90).Properties["axis"])
	assert.Equal(t, "x", RotateBlockState(b, 180).Properties["axis"])
}

func TestRotateBlockStateSixteenStep(t *testing.T) {
	b := BlockData{Name: "minecraft:standing_sign", Properties: map[string]string{"rotation": "0"}}
	assert.Equal(t, "4", RotateBlockState(b, 90).Properties["rotation"])
	assert.Equal(t, "12", RotateBlockState(b, 270).Properties["rotation"])
}

func TestRotateConnectionsRequiresAllFour(t *testing.T) {
	props := map[string]string{"north": "true", "east": "false"}
	out := RotateConnections(props, 1)
	assert.Equal(t, props, out, "partial connection sets pass through unchanged")

	full := map[string]string{"north": "n", "east": "e", "south": "s", "west": "w"}
	rotated := RotateConnections(full, 1)
	assert.Equal(t, "w", rotated["north"])
	assert.Equal(t, "n", rotated["east"])
	assert.Equal(t, "e", rotated["south"])
	assert.Equal(t, "s", rotated["west"])
}

func TestRotateBlockStateRotatesConnections(t *testing.T) {
	b := BlockData{Name: "minecraft:oak_fence", Properties: map[string]string{
		"north": "true", "east": "false", "south": "false", "west": "false",
	}}
	rotated := RotateBlockState(b, 90)
	assert.Equal(t, "false", rotated.Properties["north"])
	assert.Equal(t, "true", rotated.Properties["east"])
	assert.Equal(t, "false", rotated.Properties["south"])
	assert.Equal(t, "false", rotated.Properties["west"])
}

func TestPieceOrigin(t *testing.T) {
	x, y, z := PieceOrigin(0, 64, 0, 90, 16, 16, 0, GridCoordinate{GX: 1, GY: 0, GZ: 0})
	assert.Equal(t, 0, x)
	assert.Equal(t, 64, y)
	assert.Equal(t, 16, z)
}
