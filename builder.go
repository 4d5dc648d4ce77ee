package lse

import (
	"hash/fnv"
	"sort"

	"github.com/brentp/intintmap"
)

// MaxPieceDimension is the largest size a single piece may have along
// any axis (§4.2 "Rationale: matches the host voxel format's native
// piece limit").
const MaxPieceDimension = 48

// ValidateSingleSize fails with KindOversizedPiece when any dimension
// of region exceeds MaxPieceDimension.
func ValidateSingleSize(region Region) error {
	if region.SizeX() > MaxPieceDimension || region.SizeY() > MaxPieceDimension || region.SizeZ() > MaxPieceDimension {
		return newErr("validate_single_size", KindOversizedPiece, nil)
	}
	return nil
}

// BuildPalette iterates blocks in the supplied order, appending an
// entry to the returned Palette the first time its BlockData is seen,
// and returns a map from each BlockData's canonical key() to its
// palette index. Deduplication is decided by that canonical key; an
// intintmap index keyed by the FNV-1a hash of the key also records
// each entry's position, and a hash hit is re-checked against the
// canonical key before its index is reused.
func BuildPalette(blocks []BlockData) (Palette, map[string]int) {
	index := intintmap.New(len(blocks)+1, 0.75)
	palette := make(Palette, 0, len(blocks))
	indexMap := make(map[string]int, len(blocks))

	for _, b := range blocks {
		k := b.key()
		if _, ok := indexMap[k]; ok {
			continue
		}
		h := int64(fnvHash(k))
		if existing, ok := index.Get(h); ok {
			// Hash already seen; canonical key equality (not just hash
			// equality) is what indexMap tests above, so this branch
			// only matters when two distinct keys collide — re-verify
			// structurally before trusting the cached index.
			if palette[existing].key() == k {
				indexMap[k] = int(existing)
				continue
			}
		}
		idx := len(palette)
		palette = append(palette, b)
		indexMap[k] = idx
		index.Put(h, int64(idx))
	}
	return palette, indexMap
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// BuildStructureData assembles a StructureFile from a region and the
// blocks/entities it contains. Blocks are shifted to coordinates
// relative to region.Min and sorted by (y, z, x) for determinism;
// entity positions are translated the same way. Block-entity and
// entity NBT are carried through verbatim.
func BuildStructureData(dataVersion int32, region Region, blocks []PositionedBlock, entities []PositionedEntity) StructureFile {
	blockData := make([]BlockData, len(blocks))
	for i, b := range blocks {
		blockData[i] = b.Block
	}
	palette, indexMap := BuildPalette(blockData)

	entries := make([]BlockEntry, len(blocks))
	for i, b := range blocks {
		entries[i] = BlockEntry{
			RelX: b.X - region.MinX,
			RelY: b.Y - region.MinY,
			RelZ: b.Z - region.MinZ,
			State: indexMap[b.Block.key()],
			NBT:   b.BlockEntity,
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, c := entries[i], entries[j]
		if a.RelY != c.RelY {
			return a.RelY < c.RelY
		}
		if a.RelZ != c.RelZ {
			return a.RelZ < c.RelZ
		}
		return a.RelX < c.RelX
	})

	entEntries := make([]EntityEntry, len(entities))
	for i, e := range entities {
		entEntries[i] = EntityEntry{
			BlockX: e.BlockX - region.MinX,
			BlockY: e.BlockY - region.MinY,
			BlockZ: e.BlockZ - region.MinZ,
			X:      e.WorldX - float64(region.MinX),
			Y:      e.WorldY - float64(region.MinY),
			Z:      e.WorldZ - float64(region.MinZ),
			NBT:    e.EntityNBT,
		}
	}

	sx, sy, sz := region.Size()
	return StructureFile{
		DataVersion: dataVersion,
		SizeX:       sx, SizeY: sy, SizeZ: sz,
		Palette:  palette,
		Blocks:   entries,
		Entities: entEntries,
	}
}

// GridPiece is one (coordinate, region) pair produced by SplitIntoGrid.
type GridPiece struct {
	Coord  GridCoordinate
	Region Region
}

// SplitIntoGrid partitions region into a grid of pieces no larger than
// pieceSizeX/pieceSizeZ/pieceSizeY on their respective axes. pieceSizeY
// of 0 means "full Y span" (a single layer of pieces). Pieces on the
// far edge of each axis may be smaller than the nominal piece size
// (the remainder).
func SplitIntoGrid(region Region, pieceSizeX, pieceSizeZ, pieceSizeY int) []GridPiece {
	if pieceSizeY <= 0 {
		pieceSizeY = region.SizeY()
	}
	gridX := ceilDiv(region.SizeX(), pieceSizeX)
	gridZ := ceilDiv(region.SizeZ(), pieceSizeZ)
	gridY := ceilDiv(region.SizeY(), pieceSizeY)

	out := make([]GridPiece, 0, gridX*gridY*gridZ)

	for gx := 0; gx < gridX; gx++ {
		for gy := 0; gy < gridY; gy++ {
			for gz := 0; gz < gridZ; gz++ {
				minX := region.MinX + gx*pieceSizeX
				minY := region.MinY + gy*pieceSizeY
				minZ := region.MinZ + gz*pieceSizeZ
				maxX := min(minX+pieceSizeX-1, region.MaxX)
				maxY := min(minY+pieceSizeY-1, region.MaxY)
				maxZ := min(minZ+pieceSizeZ-1, region.MaxZ)
				out = append(out, GridPiece{
					Coord:  GridCoordinate{GX: gx, GY: gy, GZ: gz},
					Region: NewRegion(minX, minY, minZ, maxX, maxY, maxZ),
				})
			}
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 1
	}
	return (a + b - 1) / b
}

// CreateLargeStructureMetadata computes grid/piece/total sizes for a
// large structure and returns its GridMetadata sub-map. A pieceSizeY
// of 0 computes the grid over the full Y span and is recorded as 0 in
// PieceSize.
func CreateLargeStructureMetadata(region Region, pieceSizeX, pieceSizeZ, pieceSizeY int, requiredMods []string) GridMetadata {
	recordedY := pieceSizeY
	if pieceSizeY <= 0 {
		pieceSizeY = region.SizeY()
		recordedY = 0
	}
	gridX := ceilDiv(region.SizeX(), pieceSizeX)
	gridZ := ceilDiv(region.SizeZ(), pieceSizeZ)
	gridY := ceilDiv(region.SizeY(), pieceSizeY)

	return GridMetadata{
		Requires:  requiredMods,
		PieceSize: [3]int{pieceSizeX, pieceSizeZ, recordedY},
		GridSize:  [3]int{gridX, gridZ, gridY},
		TotalSize: [3]int{region.SizeX(), region.SizeY(), region.SizeZ()},
	}
}
