package lse

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// largeStructureDir is the path segment convention from spec.md §6:
// "structures/rjs-large/{name}/{gx}.{gy}.{gz}.nbt".
const largeStructureDir = "rjs-large"

// LargeStructureApi captures, places, and manages multi-piece grid
// structures (§4.9). Its state machine per grid directory is
// empty -> partially-captured -> ready -> stale-after-replace -> removed;
// transitions happen only at the call sites below.
type LargeStructureApi struct {
	engine *Engine
	dirs   *dirLock
}

// LargeCaptureOptions configures CaptureLarge.
type LargeCaptureOptions struct {
	PieceSizeX, PieceSizeZ, PieceSizeY int // 0 means "use DefaultPieceSize" (X/Z) or "full Y span" (Y)
	Namespace                          string
}

// CaptureSummary is returned by CaptureLarge.
type CaptureSummary struct {
	Name      string
	Namespace string
	Pieces    int
	Requires  []string
	Path      string
}

// PlaceLargeOptions configures PlaceLarge.
type PlaceLargeOptions struct {
	Rotation  int
	Centered  bool
	Mode      ReplaceMode
	Dimension string
}

// PlaceLargeResult is returned by PlaceLarge.
type PlaceLargeResult struct {
	PiecesPlaced int
	BlocksPlaced int
	Metadata     GridMetadata
	Rotation     int
	PositionX    int
	PositionY    int
	PositionZ    int
	SkippedRead  []error // per-piece read failures downgraded to warnings
}

func largeDirName(namespace, name string) string {
	if namespace == "" {
		return largeStructureDir + "/" + name
	}
	return largeStructureDir + "/" + namespace + "/" + name
}

func piecePath(dir string, c GridCoordinate) string {
	return dir + "/" + strconv.Itoa(c.GX) + "." + strconv.Itoa(c.GY) + "." + strconv.Itoa(c.GZ)
}

// CaptureLarge partitions region into a grid of pieces no larger than
// opts.PieceSizeX/Z/Y, captures each piece independently via the
// adapter, enriches piece 0.0.0 with the grid's GridMetadata, and
// writes every piece with skipBackup=true. A failure partway through
// leaves a partial directory on disk; callers must RemoveLarge before
// retrying (§4.9).
func (a *LargeStructureApi) CaptureLarge(ctx context.Context, region Region, dimension, name string, opts LargeCaptureOptions) *Task[CaptureSummary] {
	return run(ctx, "capture_large", func(ctx context.Context) (CaptureSummary, error) {
		pieceX, pieceZ := opts.PieceSizeX, opts.PieceSizeZ
		if pieceX <= 0 {
			pieceX = DefaultPieceSize
		}
		if pieceZ <= 0 {
			pieceZ = DefaultPieceSize
		}
		dir := largeDirName(opts.Namespace, name)

		unlock := a.dirs.Lock(dir)
		defer unlock()

		pieces := SplitIntoGrid(region, pieceX, pieceZ, opts.PieceSizeY)

		handle, ok, err := a.engine.adapter.GetLevel(ctx, dimension)
		if err != nil {
			return CaptureSummary{}, newErr("capture_large", KindAdapterFailure, err)
		}
		if !ok {
			return CaptureSummary{}, newErr("capture_large", KindUnknownDimension, fmt.Errorf("no such dimension %q", dimension))
		}

		requiredSet := map[string]bool{}
		files := make(map[GridCoordinate]StructureFile, len(pieces))
		for _, piece := range pieces {
			if err := checkCancelled(ctx, "capture_large"); err != nil {
				return CaptureSummary{}, err
			}
			blocks, err := a.engine.adapter.GetBlocksInRegion(ctx, handle, piece.Region)
			if err != nil {
				return CaptureSummary{}, newErr("capture_large", KindAdapterFailure, err)
			}
			entities, err := a.engine.adapter.GetEntitiesInRegion(ctx, handle, piece.Region)
			if err != nil {
				return CaptureSummary{}, newErr("capture_large", KindAdapterFailure, err)
			}
			for _, b := range blocks {
				if ns := namespaceOf(b.Block.Name); ns != "" && ns != a.engine.cfg.HomeNamespace {
					requiredSet[ns] = true
				}
			}
			files[piece.Coord] = BuildStructureData(a.engine.cfg.DataVersion, piece.Region, blocks, entities)
		}

		requires := make([]string, 0, len(requiredSet))
		for ns := range requiredSet {
			requires = append(requires, ns)
		}

		meta := CreateLargeStructureMetadata(region, pieceX, pieceZ, opts.PieceSizeY, requires)
		root := files[GridCoordinate{}]
		root.Large = &meta
		files[GridCoordinate{}] = root

		for _, piece := range pieces {
			if err := checkCancelled(ctx, "capture_large"); err != nil {
				return CaptureSummary{}, err
			}
			if err := a.engine.store.Write(piecePath(dir, piece.Coord), files[piece.Coord], true); err != nil {
				return CaptureSummary{}, err
			}
		}

		a.engine.log.WithFields(map[string]any{"name": name, "pieces": len(files)}).Info("captured large structure")
		return CaptureSummary{
			Name: name, Namespace: opts.Namespace, Pieces: len(files),
			Requires: requires, Path: dir,
		}, nil
	})
}

func namespaceOf(blockID string) string {
	if idx := strings.Index(blockID, ":"); idx >= 0 {
		return blockID[:idx]
	}
	return ""
}

// readRootMetadata reads piece 0.0.0 of a large structure directory
// and returns its GridMetadata, failing KindMissingMetadata if the
// piece or its "large" sub-map is absent.
func (a *LargeStructureApi) readRootMetadata(dir string) (GridMetadata, error) {
	root, err := a.engine.store.Read(piecePath(dir, GridCoordinate{}))
	if err != nil {
		if e, ok := err.(*Error); ok && e.Kind == KindNotFound {
			return GridMetadata{}, newErr("large_metadata", KindMissingMetadata, e)
		}
		return GridMetadata{}, err
	}
	if root.Large == nil {
		return GridMetadata{}, newErr("large_metadata", KindMissingMetadata, fmt.Errorf("0.0.0 has no large metadata"))
	}
	return *root.Large, nil
}

// PlaceLarge reads piece 0.0.0 of the directory identified by
// namespace/name, computes each piece's world origin under rotation,
// and submits every piece's blocks to the adapter with
// updateNeighbors=false to suppress cascading physics until all
// pieces have been written (§4.9 step 3). Read failures on individual
// non-root pieces are downgraded to warnings in the result; a missing
// or metadata-less 0.0.0 is fatal.
func (a *LargeStructureApi) PlaceLarge(ctx context.Context, namespace, name string, originX, originY, originZ int, opts PlaceLargeOptions) *Task[PlaceLargeResult] {
	return run(ctx, "place_large", func(ctx context.Context) (PlaceLargeResult, error) {
		if !ValidRotation(opts.Rotation) {
			return PlaceLargeResult{}, newErr("place_large", KindInvalidRotation, fmt.Errorf("rotation %d not in {0,90,180,270,-90}", opts.Rotation))
		}
		dir := largeDirName(namespace, name)
		meta, err := a.readRootMetadata(dir)
		if err != nil {
			return PlaceLargeResult{}, err
		}

		pieceX, pieceZ, pieceY := meta.PieceSize[0], meta.PieceSize[1], meta.PieceSize[2]
		ox, oy, oz := originX, originY, originZ
		if opts.Centered {
			totalX, totalZ := meta.TotalSize[0], meta.TotalSize[2]
			rx, rz := rotateStepVector(totalX/2, totalZ/2, opts.Rotation)
			ox -= rx
			oz -= rz
		}

		handle, ok, err := a.engine.adapter.GetLevel(ctx, opts.Dimension)
		if err != nil {
			return PlaceLargeResult{}, newErr("place_large", KindAdapterFailure, err)
		}
		if !ok {
			return PlaceLargeResult{}, newErr("place_large", KindUnknownDimension, fmt.Errorf("no such dimension %q", opts.Dimension))
		}

		result := PlaceLargeResult{Metadata: meta, Rotation: opts.Rotation, PositionX: ox, PositionY: oy, PositionZ: oz}
		for gx := 0; gx < meta.GridSize[0]; gx++ {
			for gy := 0; gy < max1(meta.GridSize[2]); gy++ {
				for gz := 0; gz < meta.GridSize[1]; gz++ {
					if err := checkCancelled(ctx, "place_large"); err != nil {
						return result, err
					}
					coord := GridCoordinate{GX: gx, GY: gy, GZ: gz}
					file, err := a.engine.store.Read(piecePath(dir, coord))
					if err != nil {
						result.SkippedRead = append(result.SkippedRead, fmt.Errorf("piece %v: %w", coord, err))
						a.engine.log.WithField("piece", coord).Warn("skipping unreadable piece in place_large")
						continue
					}
					pox, poy, poz := PieceOrigin(ox, oy, oz, opts.Rotation, pieceX, pieceZ, pieceY, coord)
					blocks := blocksForPlacement(file, pox, poy, poz, opts.Rotation, opts.Mode)
					setOpts := SetBlocksOptions{UpdateNeighbors: false, Mode: opts.Mode}
					if err := a.engine.adapter.SetBlocksInRegion(ctx, handle, blocks, setOpts); err != nil {
						return result, newErr("place_large", KindAdapterFailure, err)
					}
					result.PiecesPlaced++
					result.BlocksPlaced += len(blocks)
				}
			}
		}
		return result, nil
	})
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func blocksForPlacement(file StructureFile, originX, originY, originZ, rotation int, mode ReplaceMode) []PositionedBlock {
	out := make([]PositionedBlock, 0, len(file.Blocks))
	for _, entry := range file.Blocks {
		if entry.State < 0 || entry.State >= len(file.Palette) {
			continue
		}
		block := file.Palette[entry.State]
		if mode == ReplaceModeKeepAir && block.Name == "minecraft:air" {
			continue
		}
		rx, rz := RotatePosition(entry.RelX, entry.RelZ, rotation, file.SizeX, file.SizeZ)
		rotated := RotateBlockState(block, rotation)
		out = append(out, PositionedBlock{
			X: originX + rx, Y: originY + entry.RelY, Z: originZ + rz,
			Block:       rotated,
			BlockEntity: entry.NBT,
		})
	}
	return out
}

// ListLarge scans the adapter's resource listing for large-structure
// roots ("*/rjs-large/*/0.0.0.nbt") under namespace (all namespaces
// if empty).
func (a *LargeStructureApi) ListLarge(ctx context.Context, namespace string) *Task[[]CaptureSummary] {
	return run(ctx, "list_large", func(ctx context.Context) ([]CaptureSummary, error) {
		resources, err := a.engine.adapter.ListResources(ctx, ResourceKindLargeStructureRoot, func(r Resource) bool {
			if namespace != "" && r.Namespace != namespace {
				return false
			}
			return strings.Contains(r.Path, largeStructureDir+"/") && strings.HasSuffix(r.Path, "/0.0.0.nbt")
		})
		if err != nil {
			return nil, newErr("list_large", KindAdapterFailure, err)
		}
		out := make([]CaptureSummary, 0, len(resources))
		for _, r := range resources {
			name := strings.TrimSuffix(strings.TrimPrefix(r.Path, largeStructureDir+"/"), "/0.0.0.nbt")
			out = append(out, CaptureSummary{Name: name, Namespace: r.Namespace, Path: r.Path})
		}
		return out, nil
	})
}

// LargeMetadata is returned by GetLargeMetadata: the directory's
// GridMetadata plus its derived PieceCount.
type LargeMetadata struct {
	GridMetadata
	PieceCount int
}

// GetLargeMetadata reads piece 0.0.0 and returns its GridMetadata
// together with the derived piece count (product of grid dimensions).
func (a *LargeStructureApi) GetLargeMetadata(ctx context.Context, namespace, name string) *Task[LargeMetadata] {
	return run(ctx, "get_large_metadata", func(ctx context.Context) (LargeMetadata, error) {
		meta, err := a.readRootMetadata(largeDirName(namespace, name))
		if err != nil {
			return LargeMetadata{}, err
		}
		count := max1(meta.GridSize[0]) * max1(meta.GridSize[1]) * max1(meta.GridSize[2])
		return LargeMetadata{GridMetadata: meta, PieceCount: count}, nil
	})
}

// BlocksListLarge merges CountBlocks across every piece of the
// directory identified by namespace/name.
func (a *LargeStructureApi) BlocksListLarge(ctx context.Context, namespace, name string) *Task[[]BlockCount] {
	return run(ctx, "blocks_list_large", func(ctx context.Context) ([]BlockCount, error) {
		dir := largeDirName(namespace, name)
		meta, err := a.readRootMetadata(dir)
		if err != nil {
			return nil, err
		}
		totals := map[string]int{}
		err = a.forEachPiece(ctx, dir, meta, func(coord GridCoordinate, file StructureFile) error {
			for _, c := range CountBlocks(file) {
				totals[c.Name] += c.Count
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		out := make([]BlockCount, 0, len(totals))
		for name, n := range totals {
			out = append(out, BlockCount{Name: name, Count: n})
		}
		sortBlockCounts(out)
		return out, nil
	})
}

// BlocksReplaceLarge applies idMap to every piece's palette, with
// backups enabled (unlike CaptureLarge's pieces, replaced pieces are
// not fresh captures). Returns the number of pieces actually modified
// (those containing at least one affected id).
func (a *LargeStructureApi) BlocksReplaceLarge(ctx context.Context, namespace, name string, idMap map[string]string) *Task[int] {
	return run(ctx, "blocks_replace_large", func(ctx context.Context) (int, error) {
		dir := largeDirName(namespace, name)
		meta, err := a.readRootMetadata(dir)
		if err != nil {
			return 0, err
		}
		modified := 0
		err = a.forEachPiece(ctx, dir, meta, func(coord GridCoordinate, file StructureFile) error {
			if !paletteAffected(file.Palette, idMap) {
				return nil
			}
			replaced := ReplaceBlocks(file, idMap)
			if err := a.engine.store.Write(piecePath(dir, coord), replaced, false); err != nil {
				return err
			}
			modified++
			return nil
		})
		return modified, err
	})
}

func paletteAffected(p Palette, idMap map[string]string) bool {
	for _, b := range p {
		if _, ok := idMap[b.Name]; ok {
			return true
		}
	}
	return false
}

// LargeVanillaResult is returned by BlocksReplaceLargeVanilla.
type LargeVanillaResult struct {
	PiecesModified int
	Warnings       []string
}

// BlocksReplaceLargeVanilla computes one replacement map for the
// merged id set across every piece via GenerateVanillaReplacementMap,
// then applies it with BlocksReplaceLarge's semantics.
func (a *LargeStructureApi) BlocksReplaceLargeVanilla(ctx context.Context, namespace, name, woodType, woodOverride string) *Task[LargeVanillaResult] {
	return run(ctx, "blocks_replace_large_vanilla", func(ctx context.Context) (LargeVanillaResult, error) {
		dir := largeDirName(namespace, name)
		meta, err := a.readRootMetadata(dir)
		if err != nil {
			return LargeVanillaResult{}, err
		}
		ids := map[string]bool{}
		err = a.forEachPiece(ctx, dir, meta, func(_ GridCoordinate, file StructureFile) error {
			for _, b := range file.Palette {
				ids[b.Name] = true
			}
			return nil
		})
		if err != nil {
			return LargeVanillaResult{}, err
		}
		idList := make([]string, 0, len(ids))
		for id := range ids {
			idList = append(idList, id)
		}
		idMap, warnings := GenerateVanillaReplacementMap(idList, woodType)
		if woodOverride != "" {
			idMap = ApplyWoodTypeOverride(idMap, woodOverride)
		}

		modified := 0
		err = a.forEachPiece(ctx, dir, meta, func(coord GridCoordinate, file StructureFile) error {
			if !paletteAffected(file.Palette, idMap) {
				return nil
			}
			replaced := ReplaceBlocks(file, idMap)
			if err := a.engine.store.Write(piecePath(dir, coord), replaced, false); err != nil {
				return err
			}
			modified++
			return nil
		})
		if err != nil {
			return LargeVanillaResult{}, err
		}
		return LargeVanillaResult{PiecesModified: modified, Warnings: warnings}, nil
	})
}

// RemoveLarge deletes every piece file of the directory identified by
// namespace/name. It holds the directory's mutex for its whole
// duration so it cannot interleave with a concurrent CaptureLarge on
// the same directory (§5(c)).
func (a *LargeStructureApi) RemoveLarge(ctx context.Context, namespace, name string) *Task[int] {
	return run(ctx, "remove_large", func(ctx context.Context) (int, error) {
		dir := largeDirName(namespace, name)
		unlock := a.dirs.Lock(dir)
		defer unlock()

		meta, err := a.readRootMetadata(dir)
		removed := 0
		if err != nil {
			// Directory may be partially captured with no valid 0.0.0;
			// without metadata the grid bound is unknown, so only 0.0.0
			// is removed (if present) and other piece files stay on disk.
			if ok, _ := a.engine.store.Remove(piecePath(dir, GridCoordinate{})); ok {
				removed++
			}
			return removed, nil
		}
		gx, gz, gy := max1(meta.GridSize[0]), max1(meta.GridSize[1]), max1(meta.GridSize[2])
		for x := 0; x < gx; x++ {
			for y := 0; y < gy; y++ {
				for z := 0; z < gz; z++ {
					if ok, _ := a.engine.store.Remove(piecePath(dir, GridCoordinate{GX: x, GY: y, GZ: z})); ok {
						removed++
					}
				}
			}
		}
		return removed, nil
	})
}

// forEachPiece reads every grid piece under dir according to meta and
// invokes fn with each. A piece that fails to read is logged and
// skipped (best-effort), matching the downgraded-to-warning policy
// for multi-piece blocks_*_large operations (§4.9/§7). fn's own errors
// propagate and abort the scan.
func (a *LargeStructureApi) forEachPiece(ctx context.Context, dir string, meta GridMetadata, fn func(GridCoordinate, StructureFile) error) error {
	gx, gz, gy := max1(meta.GridSize[0]), max1(meta.GridSize[1]), max1(meta.GridSize[2])
	for x := 0; x < gx; x++ {
		for y := 0; y < gy; y++ {
			for z := 0; z < gz; z++ {
				if err := checkCancelled(ctx, "forEachPiece"); err != nil {
					return err
				}
				coord := GridCoordinate{GX: x, GY: y, GZ: z}
				file, err := a.engine.store.Read(piecePath(dir, coord))
				if err != nil {
					a.engine.log.WithField("piece", coord).Warn("skipping unreadable piece")
					continue
				}
				if err := fn(coord, file); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func sortBlockCounts(out []BlockCount) {
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
}
