package mcstructure

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxscript/lse"
)

func sample() lse.StructureFile {
	return lse.StructureFile{
		SizeX: 2, SizeY: 1, SizeZ: 1,
		Palette: lse.Palette{
			{Name: "minecraft:air"},
			{Name: "minecraft:furnace", Properties: map[string]string{"facing": "north"}},
		},
		Blocks: []lse.BlockEntry{
			{RelX: 0, RelY: 0, RelZ: 0, State: 0},
			{RelX: 1, RelY: 0, RelZ: 0, State: 1},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	sf := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sf))

	decoded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, sf.SizeX, decoded.SizeX)
	require.Len(t, decoded.Palette, 2)
	assert.Equal(t, "minecraft:furnace", decoded.Palette[1].Name)
	assert.Equal(t, "north", decoded.Palette[1].Properties["facing"])
	require.Len(t, decoded.Blocks, 2)
}

func TestRotate90SwapsDimensions(t *testing.T) {
	sf := sample()
	sf.SizeX, sf.SizeZ = 4, 2
	rotated, err := Rotate(sf, 90)
	require.NoError(t, err)
	assert.Equal(t, 2, rotated.SizeX)
	assert.Equal(t, 4, rotated.SizeZ)
}

func TestRotateRejectsInvalidDegrees(t *testing.T) {
	_, err := Rotate(sample(), 45)
	require.Error(t, err)
}
