package lse

import (
	"context"
	"sync"
)

// fakeAdapter is an in-memory WorldAdapter used by structure_api_test.go
// and large_api_test.go. It keeps one flat block map per dimension and
// a fixed entity list, and satisfies ListResources by returning a
// caller-supplied resource set.
type fakeAdapter struct {
	mu        sync.Mutex
	dimension map[string]map[[3]int]PositionedBlock
	entities  map[string][]PositionedEntity
	resources []Resource

	setCalls []setCall
}

type setCall struct {
	opts SetBlocksOptions
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{dimension: map[string]map[[3]int]PositionedBlock{}, entities: map[string][]PositionedEntity{}}
}

func (f *fakeAdapter) seedBlock(dimension string, b PositionedBlock) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.dimension[dimension]
	if !ok {
		m = map[[3]int]PositionedBlock{}
		f.dimension[dimension] = m
	}
	m[[3]int{b.X, b.Y, b.Z}] = b
}

func (f *fakeAdapter) GetLevel(_ context.Context, dimension string) (LevelHandle, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.dimension[dimension]; !ok {
		f.dimension[dimension] = map[[3]int]PositionedBlock{}
	}
	return dimension, true, nil
}

func (f *fakeAdapter) GetBlocksInRegion(_ context.Context, handle LevelHandle, region Region) ([]PositionedBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dimension := handle.(string)
	var out []PositionedBlock
	for x := region.MinX; x <= region.MaxX; x++ {
		for y := region.MinY; y <= region.MaxY; y++ {
			for z := region.MinZ; z <= region.MaxZ; z++ {
				if b, ok := f.dimension[dimension][[3]int{x, y, z}]; ok {
					out = append(out, b)
				} else {
					out = append(out, PositionedBlock{X: x, Y: y, Z: z, Block: BlockData{Name: "minecraft:air"}})
				}
			}
		}
	}
	return out, nil
}

func (f *fakeAdapter) GetEntitiesInRegion(_ context.Context, handle LevelHandle, region Region) ([]PositionedEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dimension := handle.(string)
	var out []PositionedEntity
	for _, e := range f.entities[dimension] {
		if region.Contains(e.BlockX, e.BlockY, e.BlockZ) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAdapter) SetBlocksInRegion(_ context.Context, handle LevelHandle, blocks []PositionedBlock, opts SetBlocksOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dimension := handle.(string)
	f.setCalls = append(f.setCalls, setCall{opts: opts})
	m, ok := f.dimension[dimension]
	if !ok {
		m = map[[3]int]PositionedBlock{}
		f.dimension[dimension] = m
	}
	for _, b := range blocks {
		if opts.Mode == ReplaceModeOverlay {
			if cur, ok := m[[3]int{b.X, b.Y, b.Z}]; ok && cur.Block.Name != "minecraft:air" {
				continue
			}
		}
		m[[3]int{b.X, b.Y, b.Z}] = b
	}
	return nil
}

func (f *fakeAdapter) ListResources(_ context.Context, _ ResourceKind, predicate func(Resource) bool) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Resource
	for _, r := range f.resources {
		if predicate(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
