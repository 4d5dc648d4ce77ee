package lse

import (
	"sort"
	"strings"
)

// BlockData is a namespaced block id plus its property map. Two
// BlockData values are structurally equal when their Name matches and
// every property matches; property order is irrelevant.
type BlockData struct {
	Name       string
	Properties map[string]string
}

// Equal reports structural equality, ignoring property order.
func (b BlockData) Equal(o BlockData) bool {
	if b.Name != o.Name || len(b.Properties) != len(o.Properties) {
		return false
	}
	for k, v := range b.Properties {
		if ov, ok := o.Properties[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// key returns a canonical string encoding used for hashing and for the
// intintmap-accelerated lookup in StructureBuilder.BuildPalette.
func (b BlockData) key() string {
	if len(b.Properties) == 0 {
		return b.Name
	}
	keys := make([]string, 0, len(b.Properties))
	for k := range b.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(b.Name)
	for _, k := range keys {
		sb.WriteByte(';')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(b.Properties[k])
	}
	return sb.String()
}

// PositionedBlock is a block at a concrete integer world or relative
// position, with an optional opaque block-entity NBT payload that is
// carried verbatim across capture and place.
type PositionedBlock struct {
	X, Y, Z     int
	Block       BlockData
	BlockEntity map[string]any // nil if the block carries no block-entity data
}

// PositionedEntity is an entity at both its real position and the
// block position that contains it. EntityNBT is preserved verbatim.
type PositionedEntity struct {
	WorldX, WorldY, WorldZ float64
	BlockX, BlockY, BlockZ int
	EntityNBT              map[string]any
}
