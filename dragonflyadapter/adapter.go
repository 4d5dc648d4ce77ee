// Package dragonflyadapter binds lse.WorldAdapter to a running
// github.com/df-mc/dragonfly server. It is a thin example binding —
// not part of the engine's core — showing how a host wires the
// WorldAdapter seam (spec.md §4.7) to a real world.
package dragonflyadapter

import (
	"context"
	"fmt"
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"

	"github.com/voxscript/lse"
)

// Adapter implements lse.WorldAdapter over a set of named dragonfly
// worlds (one per dimension) and a resource lister for ListResources.
//
// dragonfly v0.8.1 predates the transaction-based (world.Tx) world
// access model introduced in later versions; at this pin, world.World
// is read and written directly by block position, the way
// df-mc-structure's own (*structure).At/Set do against a single
// world.Structure, and the way oriumgames-pile addresses positions
// with block/cube.Pos.
type Adapter struct {
	worlds    map[string]*world.World
	resources ResourceLister
}

// ResourceLister enumerates addressable assets (e.g. pack resource
// paths) without opening them; a real host wires this to its asset
// pack loader.
type ResourceLister interface {
	List(kind lse.ResourceKind) ([]lse.Resource, error)
}

// New builds an Adapter over the given dimension-name -> world.World
// table and resource lister.
func New(worlds map[string]*world.World, resources ResourceLister) *Adapter {
	return &Adapter{worlds: worlds, resources: resources}
}

// GetLevel resolves dimension to one of the worlds passed to New.
func (a *Adapter) GetLevel(_ context.Context, dimension string) (lse.LevelHandle, bool, error) {
	w, ok := a.worlds[dimension]
	if !ok {
		return nil, false, nil
	}
	return w, true, nil
}

// GetBlocksInRegion reads every block in region from w, one position
// at a time, the same per-position access df-mc-structure's At uses
// against its own backing palette.
func (a *Adapter) GetBlocksInRegion(ctx context.Context, handle lse.LevelHandle, region lse.Region) ([]lse.PositionedBlock, error) {
	w, err := asWorld(handle)
	if err != nil {
		return nil, err
	}
	sx, sy, sz := region.Size()
	out := make([]lse.PositionedBlock, 0, sx*sy*sz)
	for x := region.MinX; x <= region.MaxX; x++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		for y := region.MinY; y <= region.MaxY; y++ {
			for z := region.MinZ; z <= region.MaxZ; z++ {
				pos := cube.Pos{x, y, z}
				b := w.Block(pos)
				name, props := b.EncodeBlock()
				var blockEntity map[string]any
				if nbter, ok := b.(world.NBTer); ok {
					blockEntity = nbter.EncodeNBT()
				}
				out = append(out, lse.PositionedBlock{
					X: x, Y: y, Z: z,
					Block:       lse.BlockData{Name: name, Properties: stringifyProps(props)},
					BlockEntity: blockEntity,
				})
			}
		}
	}
	return out, nil
}

// GetEntitiesInRegion reads every entity within region from w.
// dragonfly v0.8.1 has no spatial-region entity query; the whole
// world's entity set is filtered by position instead, mirroring how
// the pack's own converters (oriumgames-pile) walk a flat collection
// and test bounds by hand rather than calling into a region-query API
// that does not exist at this pin.
func (a *Adapter) GetEntitiesInRegion(ctx context.Context, handle lse.LevelHandle, region lse.Region) ([]lse.PositionedEntity, error) {
	w, err := asWorld(handle)
	if err != nil {
		return nil, err
	}
	out := make([]lse.PositionedEntity, 0)
	for _, e := range w.Entities() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		pos := e.Position()
		ex, ey, ez := pos[0], pos[1], pos[2]
		bx, by, bz := int(math.Floor(ex)), int(math.Floor(ey)), int(math.Floor(ez))
		if ex < float64(region.MinX) || ex >= float64(region.MaxX+1) ||
			ey < float64(region.MinY) || ey >= float64(region.MaxY+1) ||
			ez < float64(region.MinZ) || ez >= float64(region.MaxZ+1) {
			continue
		}
		var entityNBT map[string]any
		if nbter, ok := e.(world.NBTer); ok {
			entityNBT = nbter.EncodeNBT()
		}
		out = append(out, lse.PositionedEntity{
			WorldX: ex, WorldY: ey, WorldZ: ez,
			BlockX: bx, BlockY: by, BlockZ: bz,
			EntityNBT: entityNBT,
		})
	}
	return out, nil
}

// SetBlocksInRegion applies every block in blocks to w, in order. The
// ReplaceModeOverlay semantics, which need a live read of the current
// target block, are applied here since only the adapter has a world
// handle to read from.
func (a *Adapter) SetBlocksInRegion(ctx context.Context, handle lse.LevelHandle, blocks []lse.PositionedBlock, opts lse.SetBlocksOptions) error {
	w, err := asWorld(handle)
	if err != nil {
		return err
	}
	for _, pb := range blocks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		pos := cube.Pos{pb.X, pb.Y, pb.Z}
		if opts.Mode == lse.ReplaceModeOverlay {
			if cur := w.Block(pos); !isAir(cur) {
				continue
			}
		}
		b, ok := world.BlockByName(pb.Block.Name, anyProps(pb.Block.Properties))
		if !ok {
			continue
		}
		if pb.BlockEntity != nil {
			if nbter, ok := b.(world.NBTer); ok {
				b = nbter.DecodeNBT(pb.BlockEntity).(world.Block)
			}
		}
		w.SetBlock(pos, b, nil)
		if opts.UpdateNeighbors {
			w.ScheduleBlockUpdate(pos, 0)
		}
	}
	return nil
}

// ListResources delegates to the configured ResourceLister.
func (a *Adapter) ListResources(_ context.Context, kind lse.ResourceKind, predicate func(lse.Resource) bool) ([]lse.Resource, error) {
	all, err := a.resources.List(kind)
	if err != nil {
		return nil, err
	}
	out := make([]lse.Resource, 0, len(all))
	for _, r := range all {
		if predicate(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func asWorld(handle lse.LevelHandle) (*world.World, error) {
	w, ok := handle.(*world.World)
	if !ok {
		return nil, fmt.Errorf("dragonflyadapter: handle %T is not a *world.World", handle)
	}
	return w, nil
}

func isAir(b world.Block) bool {
	name, _ := b.EncodeBlock()
	return name == "minecraft:air" || name == ""
}

func stringifyProps(props map[string]any) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func anyProps(props map[string]string) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
