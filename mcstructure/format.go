// Package mcstructure reads and writes Bedrock Edition ".mcstructure"
// files and converts between them and lse.StructureFile, so a host can
// import structures exported by Bedrock's in-game structure block and
// export lse structures for a player to load the same way.
package mcstructure

import (
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const formatVersion = 1

// structure is the raw on-disk shape of an .mcstructure file: a
// format version, the piece's block-space size, its origin in the
// world it was captured from, and the block/entity/palette data
// itself. It is decoded directly by gophertunnel's NBT codec.
type structure struct {
	FormatVersion int32         `nbt:"format_version"`
	Size          []int32       `nbt:"size"`
	Origin        []int32       `nbt:"structure_world_origin"`
	Structure     structureData `nbt:"structure"`
}

// structureData holds the actual contents of the structure.
type structureData struct {
	// BlockIndices is a two-layer slice: index 0 is the main block
	// layer, index 1 (if present) holds waterlogging liquids. Each
	// layer is a flattened x*sizeZ*sizeY + y*sizeZ + z array of
	// indices into Palettes[name].BlockPalette, or -1 for "nothing
	// here".
	BlockIndices [][]int32                `nbt:"block_indices"`
	Entities     []map[string]interface{} `nbt:"entities"`
	Palettes     map[string]palette        `nbt:"palette"`
}

// palette is one named palette of block states plus any block-entity
// data keyed by flattened offset.
type palette struct {
	BlockPalette      []block                      `nbt:"block_palette"`
	BlockPositionData map[string]blockPositionData `nbt:"block_position_data"`
}

// block is a single palette entry: a block name, its states, and the
// block-state version it was encoded with.
type block struct {
	Name    string                 `nbt:"name"`
	States  map[string]interface{} `nbt:"states"`
	Version int32                  `nbt:"version"`
}

// blockPositionData holds block-entity NBT for a specific flattened
// block offset.
type blockPositionData struct {
	BlockEntityData map[string]interface{} `nbt:"block_entity_data"`
}

// check validates s's internal consistency after decoding.
func (s *structure) check() error {
	if s.FormatVersion != formatVersion {
		return fmt.Errorf("mcstructure: unsupported format version %v (expected %v)", s.FormatVersion, formatVersion)
	}
	if len(s.Size) != 3 {
		return fmt.Errorf("mcstructure: size must have 3 values, got %v", s.Size)
	}
	if len(s.Origin) != 3 {
		return fmt.Errorf("mcstructure: origin must have 3 values, got %v", s.Origin)
	}
	if s.Structure.Palettes == nil {
		s.Structure.Palettes = map[string]palette{}
	}
	if len(s.Structure.BlockIndices) == 0 {
		return fmt.Errorf("mcstructure: structure has no block layers")
	}
	want := int(s.Size[0] * s.Size[1] * s.Size[2])
	for _, layer := range s.Structure.BlockIndices {
		if len(layer) != want {
			return fmt.Errorf("mcstructure: expected %v blocks per layer, got %v", want, len(layer))
		}
	}
	return nil
}

func currentBlockVersion() int32 {
	return protocol.CurrentBlockVersion
}
