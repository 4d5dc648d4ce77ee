package lse

import (
	"context"
	"fmt"
)

// StructureApi captures, places, and manages single-piece structure
// files (§4.8).
type StructureApi struct {
	engine *Engine
}

// PlaceOptions configures StructureApi.Place and StructureApi.PlaceFile.
type PlaceOptions struct {
	Rotation int
	Centered bool
}

// PlaceResult summarizes one Place call.
type PlaceResult struct {
	BlocksPlaced int
}

// Capture validates region against the single-piece size limit,
// fetches its blocks and entities from dimension via the adapter, and
// builds a StructureFile. It does not write anything to disk.
func (a *StructureApi) Capture(ctx context.Context, region Region, dimension string) *Task[StructureFile] {
	return run(ctx, "capture", func(ctx context.Context) (StructureFile, error) {
		return a.capture(ctx, region, dimension)
	})
}

func (a *StructureApi) capture(ctx context.Context, region Region, dimension string) (StructureFile, error) {
	if err := ValidateSingleSize(region); err != nil {
		return StructureFile{}, err
	}
	handle, ok, err := a.engine.adapter.GetLevel(ctx, dimension)
	if err != nil {
		return StructureFile{}, newErr("capture", KindAdapterFailure, err)
	}
	if !ok {
		return StructureFile{}, newErr("capture", KindUnknownDimension, fmt.Errorf("no such dimension %q", dimension))
	}
	blocks, err := a.engine.adapter.GetBlocksInRegion(ctx, handle, region)
	if err != nil {
		return StructureFile{}, newErr("capture", KindAdapterFailure, err)
	}
	entities, err := a.engine.adapter.GetEntitiesInRegion(ctx, handle, region)
	if err != nil {
		return StructureFile{}, newErr("capture", KindAdapterFailure, err)
	}
	return BuildStructureData(a.engine.cfg.DataVersion, region, blocks, entities), nil
}

// CaptureToFile captures region and writes it under name, skipping
// the backup step (a fresh capture has nothing to back up).
func (a *StructureApi) CaptureToFile(ctx context.Context, region Region, dimension, name string) *Task[StructureFile] {
	return run(ctx, "capture_to_file", func(ctx context.Context) (StructureFile, error) {
		s, err := a.capture(ctx, region, dimension)
		if err != nil {
			return StructureFile{}, err
		}
		if err := a.engine.store.Write(name, s, true); err != nil {
			return StructureFile{}, err
		}
		a.engine.log.WithField("name", name).Info("captured structure")
		return s, nil
	})
}

// Place reads the structure stored under name, rotates and translates
// every block by opts and origin, and submits the result to the
// adapter for dimension with updateNeighbors=true.
func (a *StructureApi) Place(ctx context.Context, name string, originX, originY, originZ int, dimension string, opts PlaceOptions) *Task[PlaceResult] {
	return run(ctx, "place", func(ctx context.Context) (PlaceResult, error) {
		if !ValidRotation(opts.Rotation) {
			return PlaceResult{}, newErr("place", KindInvalidRotation, fmt.Errorf("rotation %d not in {0,90,180,270,-90}", opts.Rotation))
		}
		s, err := a.engine.store.Read(name)
		if err != nil {
			return PlaceResult{}, err
		}
		return a.place(ctx, s, originX, originY, originZ, dimension, opts)
	})
}

// PlaceFile places an already-loaded StructureFile, as Place does
// with one already read from the store, for callers that built or
// mutated a StructureFile in memory.
func (a *StructureApi) PlaceFile(ctx context.Context, s StructureFile, originX, originY, originZ int, dimension string, opts PlaceOptions) *Task[PlaceResult] {
	return run(ctx, "place", func(ctx context.Context) (PlaceResult, error) {
		return a.place(ctx, s, originX, originY, originZ, dimension, opts)
	})
}

func (a *StructureApi) place(ctx context.Context, s StructureFile, originX, originY, originZ int, dimension string, opts PlaceOptions) (PlaceResult, error) {
	if !ValidRotation(opts.Rotation) {
		return PlaceResult{}, newErr("place", KindInvalidRotation, fmt.Errorf("rotation %d not in {0,90,180,270,-90}", opts.Rotation))
	}
	if err := checkCancelled(ctx, "place"); err != nil {
		return PlaceResult{}, err
	}
	handle, ok, err := a.engine.adapter.GetLevel(ctx, dimension)
	if err != nil {
		return PlaceResult{}, newErr("place", KindAdapterFailure, err)
	}
	if !ok {
		return PlaceResult{}, newErr("place", KindUnknownDimension, fmt.Errorf("no such dimension %q", dimension))
	}

	ox, oy, oz := originX, originY, originZ
	if opts.Centered {
		ox -= s.SizeX / 2
		oz -= s.SizeZ / 2
	}

	blocks := make([]PositionedBlock, 0, len(s.Blocks))
	for _, entry := range s.Blocks {
		if entry.State < 0 || entry.State >= len(s.Palette) {
			continue
		}
		rx, rz := RotatePosition(entry.RelX, entry.RelZ, opts.Rotation, s.SizeX, s.SizeZ)
		block := RotateBlockState(s.Palette[entry.State], opts.Rotation)
		blocks = append(blocks, PositionedBlock{
			X: ox + rx, Y: oy + entry.RelY, Z: oz + rz,
			Block:       block,
			BlockEntity: entry.NBT,
		})
	}

	setOpts := SetBlocksOptions{UpdateNeighbors: true, Mode: ReplaceModeReplace}
	if err := a.engine.adapter.SetBlocksInRegion(ctx, handle, blocks, setOpts); err != nil {
		return PlaceResult{}, newErr("place", KindAdapterFailure, err)
	}
	return PlaceResult{BlocksPlaced: len(blocks)}, nil
}

// List returns the stored structure names whose relative path starts
// with namespace (all names if empty). Names are stored without their
// "{namespace}:" prefix (see Resolve), so this is a path-prefix filter.
func (a *StructureApi) List(ctx context.Context, namespace string) *Task[[]string] {
	return run(ctx, "list", func(ctx context.Context) ([]string, error) {
		return a.engine.store.List(namespace)
	})
}

// Exists reports whether name resolves to an existing structure file.
func (a *StructureApi) Exists(ctx context.Context, name string) *Task[bool] {
	return run(ctx, "exists", func(ctx context.Context) (bool, error) {
		_, err := a.engine.store.Read(name)
		if err == nil {
			return true, nil
		}
		if e, ok := err.(*Error); ok && e.Kind == KindNotFound {
			return false, nil
		}
		return false, err
	})
}

// Remove deletes the structure file stored under name.
func (a *StructureApi) Remove(ctx context.Context, name string) *Task[bool] {
	return run(ctx, "remove", func(ctx context.Context) (bool, error) {
		return a.engine.store.Remove(name)
	})
}

// BlocksList returns the per-block-id occurrence counts of the
// structure stored under name.
func (a *StructureApi) BlocksList(ctx context.Context, name string) *Task[[]BlockCount] {
	return run(ctx, "blocks_list", func(ctx context.Context) ([]BlockCount, error) {
		s, err := a.engine.store.Read(name)
		if err != nil {
			return nil, err
		}
		return CountBlocks(s), nil
	})
}

// BlocksReplace applies idMap to the palette of the structure stored
// under name and rewrites the file (with backup).
func (a *StructureApi) BlocksReplace(ctx context.Context, name string, idMap map[string]string) *Task[StructureFile] {
	return run(ctx, "blocks_replace", func(ctx context.Context) (StructureFile, error) {
		s, err := a.engine.store.Read(name)
		if err != nil {
			return StructureFile{}, err
		}
		replaced := ReplaceBlocks(s, idMap)
		if err := a.engine.store.Write(name, replaced, false); err != nil {
			return StructureFile{}, err
		}
		return replaced, nil
	})
}

// BlocksReplaceVanilla computes a vanilla fallback map for every
// non-"minecraft:" id in the structure's palette and applies it,
// optionally overriding the wood variant. It returns the warnings
// produced by GenerateVanillaReplacementMap for any id that could not
// be classified.
func (a *StructureApi) BlocksReplaceVanilla(ctx context.Context, name string, woodType string, woodOverride string) *Task[[]string] {
	return run(ctx, "blocks_replace_vanilla", func(ctx context.Context) ([]string, error) {
		s, err := a.engine.store.Read(name)
		if err != nil {
			return nil, err
		}
		ids := paletteIDs(s.Palette)
		idMap, warnings := GenerateVanillaReplacementMap(ids, woodType)
		if woodOverride != "" {
			idMap = ApplyWoodTypeOverride(idMap, woodOverride)
		}
		replaced := ReplaceBlocks(s, idMap)
		if err := a.engine.store.Write(name, replaced, false); err != nil {
			return nil, err
		}
		return warnings, nil
	})
}

func paletteIDs(p Palette) []string {
	seen := make(map[string]bool, len(p))
	out := make([]string, 0, len(p))
	for _, b := range p {
		if !seen[b.Name] {
			seen[b.Name] = true
			out = append(out, b.Name)
		}
	}
	return out
}
