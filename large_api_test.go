package lse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFlatSlab(adapter *fakeAdapter, dimension string, region Region, name string) {
	for x := region.MinX; x <= region.MaxX; x++ {
		for z := region.MinZ; z <= region.MaxZ; z++ {
			adapter.seedBlock(dimension, PositionedBlock{X: x, Y: region.MinY, Z: z, Block: BlockData{Name: name}})
		}
	}
}

func TestLargeStructureApiCaptureAndPlace(t *testing.T) {
	engine, adapter := newTestEngine(t)
	ctx := context.Background()

	region := NewRegion(0, 0, 0, 23, 0, 15)
	seedFlatSlab(adapter, "overworld", region, "minecraft:stone")

	summary, err := engine.LargeStructures().CaptureLarge(ctx, region, "overworld", "floor", LargeCaptureOptions{PieceSizeX: 16, PieceSizeZ: 16}).Wait()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Pieces) // 24 wide / 16 -> 2 pieces on X, 1 on Z
	assert.Equal(t, "rjs-large/floor", summary.Path)

	meta, err := engine.LargeStructures().GetLargeMetadata(ctx, "", "floor").Wait()
	require.NoError(t, err)
	assert.Equal(t, 2, meta.PieceCount)

	result, err := engine.LargeStructures().PlaceLarge(ctx, "", "floor", 100, 10, 100, PlaceLargeOptions{Dimension: "overworld", Mode: ReplaceModeReplace}).Wait()
	require.NoError(t, err)
	assert.Equal(t, 2, result.PiecesPlaced)
	assert.Equal(t, 24*16, result.BlocksPlaced)
	assert.Empty(t, result.SkippedRead)
}

func TestLargeStructureApiRemove(t *testing.T) {
	engine, adapter := newTestEngine(t)
	ctx := context.Background()
	region := NewRegion(0, 0, 0, 15, 0, 15)
	seedFlatSlab(adapter, "overworld", region, "minecraft:dirt")

	_, err := engine.LargeStructures().CaptureLarge(ctx, region, "overworld", "pad", LargeCaptureOptions{PieceSizeX: 16, PieceSizeZ: 16}).Wait()
	require.NoError(t, err)

	removed, err := engine.LargeStructures().RemoveLarge(ctx, "", "pad").Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = engine.LargeStructures().GetLargeMetadata(ctx, "", "pad").Wait()
	require.Error(t, err)
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, KindMissingMetadata, lerr.Kind)
}

func TestLargeStructureApiBlocksReplaceLarge(t *testing.T) {
	engine, adapter := newTestEngine(t)
	ctx := context.Background()
	region := NewRegion(0, 0, 0, 15, 0, 15)
	seedFlatSlab(adapter, "overworld", region, "modpack:custom_stone")

	_, err := engine.LargeStructures().CaptureLarge(ctx, region, "overworld", "block_pad", LargeCaptureOptions{PieceSizeX: 16, PieceSizeZ: 16}).Wait()
	require.NoError(t, err)

	modified, err := engine.LargeStructures().BlocksReplaceLarge(ctx, "", "block_pad", map[string]string{"modpack:custom_stone": "minecraft:stone"}).Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, modified)

	counts, err := engine.LargeStructures().BlocksListLarge(ctx, "", "block_pad").Wait()
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "minecraft:stone", counts[0].Name)
}

func TestLargeStructureApiPlaceLargeInvalidRotation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	_, err := engine.LargeStructures().PlaceLarge(ctx, "", "missing", 0, 0, 0, PlaceLargeOptions{Rotation: 45, Dimension: "overworld"}).Wait()
	require.Error(t, err)
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, KindInvalidRotation, lerr.Kind)
}
