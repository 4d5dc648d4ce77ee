package lse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSingleSize(t *testing.T) {
	ok := NewRegion(0, 0, 0, 47, 47, 47)
	assert.NoError(t, ValidateSingleSize(ok))

	tooBig := NewRegion(0, 0, 0, 48, 0, 0)
	err := ValidateSingleSize(tooBig)
	require.Error(t, err)
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, KindOversizedPiece, lerr.Kind)
}

func TestBuildPaletteDeduplicates(t *testing.T) {
	blocks := []BlockData{
		{Name: "minecraft:stone"},
		{Name: "minecraft:dirt"},
		{Name: "minecraft:stone"},
	}
	palette, indexMap := BuildPalette(blocks)
	assert.Len(t, palette, 2)
	assert.Equal(t, indexMap[blocks[0].key()], indexMap[blocks[2].key()])
	assert.NotEqual(t, indexMap[blocks[0].key()], indexMap[blocks[1].key()])
}

func TestBuildPaletteDistinguishesProperties(t *testing.T) {
	blocks := []BlockData{
		{Name: "minecraft:log", Properties: map[string]string{"axis": "x"}},
		{Name: "minecraft:log", Properties: map[string]string{"axis": "y"}},
	}
	palette, _ := BuildPalette(blocks)
	assert.Len(t, palette, 2)
}

func TestBuildStructureDataTranslatesAndSorts(t *testing.T) {
	region := NewRegion(10, 20, 30, 12, 21, 31)
	blocks := []PositionedBlock{
		{X: 11, Y: 21, Z: 30, Block: BlockData{Name: "minecraft:stone"}},
		{X: 10, Y: 20, Z: 30, Block: BlockData{Name: "minecraft:dirt"}},
	}
	sf := BuildStructureData(100, region, blocks, nil)
	assert.Equal(t, int32(100), sf.DataVersion)
	assert.Equal(t, 3, sf.SizeX)
	assert.Equal(t, 2, sf.SizeY)
	assert.Equal(t, 2, sf.SizeZ)
	require.Len(t, sf.Blocks, 2)
	// relY=0 entry (dirt) must sort before relY=1 (stone)
	assert.Equal(t, "minecraft:dirt", sf.Palette[sf.Blocks[0].State].Name)
	assert.Equal(t, 0, sf.Blocks[0].RelX)
	assert.Equal(t, 0, sf.Blocks[0].RelY)
	assert.Equal(t, 0, sf.Blocks[0].RelZ)
}

func TestSplitIntoGridRemainderPiece(t *testing.T) {
	region := NewRegion(0, 0, 0, 19, 9, 0)
	pieces := SplitIntoGrid(region, 16, 16, 0)
	require.Len(t, pieces, 2)
	assert.Equal(t, GridCoordinate{GX: 0, GY: 0, GZ: 0}, pieces[0].Coord)
	assert.Equal(t, 16, pieces[0].Region.SizeX())
	assert.Equal(t, GridCoordinate{GX: 1, GY: 0, GZ: 0}, pieces[1].Coord)
	assert.Equal(t, 4, pieces[1].Region.SizeX())
}

func TestCreateLargeStructureMetadata(t *testing.T) {
	region := NewRegion(0, 0, 0, 31, 9, 15)
	meta := CreateLargeStructureMetadata(region, 16, 16, 0, []string{"modpack"})
	assert.Equal(t, [3]int{16, 16, 0}, meta.PieceSize)
	assert.Equal(t, [3]int{2, 1, 1}, meta.GridSize)
	assert.Equal(t, [3]int{32, 10, 16}, meta.TotalSize)
	assert.Equal(t, []string{"modpack"}, meta.Requires)
}
