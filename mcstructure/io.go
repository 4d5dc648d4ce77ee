package mcstructure

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/voxscript/lse"
)

// Read decodes an .mcstructure file from r. Bedrock's structure block
// writes these uncompressed and little-endian, unlike the gzip
// big-endian files lse.EncodeStructureFile produces.
func Read(r io.Reader) (lse.StructureFile, error) {
	s := &structure{}
	if err := nbt.NewDecoderWithEncoding(r, nbt.LittleEndian).Decode(s); err != nil {
		return lse.StructureFile{}, fmt.Errorf("mcstructure: decode: %w", err)
	}
	if err := s.check(); err != nil {
		return lse.StructureFile{}, err
	}
	return toStructureFile(s), nil
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (lse.StructureFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return lse.StructureFile{}, fmt.Errorf("mcstructure: open: %w", err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// Write encodes sf as an .mcstructure file to w, using "default" as
// the palette name.
func Write(w io.Writer, sf lse.StructureFile) error {
	s := fromStructureFile(sf)
	if err := nbt.NewEncoderWithEncoding(w, nbt.LittleEndian).Encode(s); err != nil {
		return fmt.Errorf("mcstructure: encode: %w", err)
	}
	return nil
}

// WriteFile encodes sf and writes it to path, creating or truncating
// the file as needed.
func WriteFile(path string, sf lse.StructureFile) error {
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("mcstructure: open: %w", err)
	}
	w := bufio.NewWriter(f)
	defer func() {
		_ = w.Flush()
		_ = f.Close()
	}()
	return Write(w, sf)
}

// toStructureFile flattens s's block-index layer into the engine's
// sparse PositionedBlock/BlockEntry representation, dropping -1
// ("nothing here") entries. Bedrock's own palette is already
// deduplicated, so palette indices carry across unchanged.
func toStructureFile(s *structure) lse.StructureFile {
	sizeX, sizeY, sizeZ := int(s.Size[0]), int(s.Size[1]), int(s.Size[2])
	p, ok := s.Structure.Palettes["default"]
	if !ok {
		for _, any := range s.Structure.Palettes {
			p = any
			break
		}
	}

	palette := make(lse.Palette, len(p.BlockPalette))
	for i, b := range p.BlockPalette {
		palette[i] = lse.BlockData{Name: b.Name, Properties: stringifyStates(b.States)}
	}

	var entries []lse.BlockEntry
	layer := s.Structure.BlockIndices[0]
	for x := 0; x < sizeX; x++ {
		for y := 0; y < sizeY; y++ {
			for z := 0; z < sizeZ; z++ {
				offset := (x * sizeZ * sizeY) + (y * sizeZ) + z
				idx := layer[offset]
				if idx < 0 {
					continue
				}
				entry := lse.BlockEntry{RelX: x, RelY: y, RelZ: z, State: int(idx)}
				if pd, ok := p.BlockPositionData[offsetKey(offset)]; ok {
					entry.NBT = pd.BlockEntityData
				}
				entries = append(entries, entry)
			}
		}
	}

	var entities []lse.EntityEntry
	for _, e := range s.Structure.Entities {
		entities = append(entities, lse.EntityEntry{NBT: e})
	}

	return lse.StructureFile{
		SizeX: sizeX, SizeY: sizeY, SizeZ: sizeZ,
		Palette:  palette,
		Blocks:   entries,
		Entities: entities,
	}
}

func offsetKey(offset int) string {
	return fmt.Sprintf("%d", offset)
}

func stringifyStates(states map[string]interface{}) map[string]string {
	out := make(map[string]string, len(states))
	for k, v := range states {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func anyStates(props map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// fromStructureFile expands sf's palette-compressed blocks back into
// a dense BlockIndices layer and a single "default" palette.
func fromStructureFile(sf lse.StructureFile) *structure {
	sizeX, sizeY, sizeZ := sf.SizeX, sf.SizeY, sf.SizeZ
	total := sizeX * sizeY * sizeZ
	layer := make([]int32, total)
	for i := range layer {
		layer[i] = -1
	}

	blockPalette := make([]block, len(sf.Palette))
	for i, bd := range sf.Palette {
		blockPalette[i] = block{Name: bd.Name, States: anyStates(bd.Properties), Version: currentBlockVersion()}
	}

	posData := map[string]blockPositionData{}
	for _, e := range sf.Blocks {
		if e.State < 0 || e.State >= len(sf.Palette) {
			continue
		}
		offset := (e.RelX * sizeZ * sizeY) + (e.RelY * sizeZ) + e.RelZ
		if offset < 0 || offset >= total {
			continue
		}
		layer[offset] = int32(e.State)
		if e.NBT != nil {
			posData[offsetKey(offset)] = blockPositionData{BlockEntityData: e.NBT}
		}
	}

	entities := make([]map[string]interface{}, 0, len(sf.Entities))
	for _, e := range sf.Entities {
		if e.NBT != nil {
			entities = append(entities, e.NBT)
		}
	}

	return &structure{
		FormatVersion: formatVersion,
		Size:          []int32{int32(sizeX), int32(sizeY), int32(sizeZ)},
		Origin:        []int32{0, 0, 0},
		Structure: structureData{
			BlockIndices: [][]int32{layer},
			Entities:     entities,
			Palettes: map[string]palette{
				"default": {BlockPalette: blockPalette, BlockPositionData: posData},
			},
		},
	}
}

// Rotate returns a copy of sf rotated by degrees (one of 0, 90, 180,
// 270, -90), reusing the engine's own rotation algebra rather than the
// per-field reflection the original Bedrock tool used.
func Rotate(sf lse.StructureFile, degrees int) (lse.StructureFile, error) {
	if !lse.ValidRotation(degrees) {
		return lse.StructureFile{}, fmt.Errorf("mcstructure: invalid rotation %d", degrees)
	}
	out := sf
	out.Blocks = make([]lse.BlockEntry, 0, len(sf.Blocks))
	rotatedPalette := make(lse.Palette, len(sf.Palette))
	for i, bd := range sf.Palette {
		rotatedPalette[i] = lse.RotateBlockState(bd, degrees)
	}
	out.Palette = rotatedPalette

	if degrees == 90 || degrees == 270 || degrees == -90 {
		out.SizeX, out.SizeZ = sf.SizeZ, sf.SizeX
	}

	for _, e := range sf.Blocks {
		rx, rz := lse.RotatePosition(e.RelX, e.RelZ, degrees, sf.SizeX, sf.SizeZ)
		out.Blocks = append(out.Blocks, lse.BlockEntry{RelX: rx, RelY: e.RelY, RelZ: rz, State: e.State, NBT: e.NBT})
	}
	return out, nil
}
