package lse

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// rootTagName is the name written on the gzip-wrapped compound root of
// every piece file, matching the host voxel ecosystem's native
// structure format (an unnamed/empty-named root compound tag).
const rootTagName = ""

// EncodeTree gzip-compresses tree (a neutral map[string]any/[]any/
// scalar/typed-array tree, as produced by DecodeTree or by the rest of
// the engine) into w as a named-compound-root tagged binary stream,
// using big-endian tag encoding to match the host's on-disk piece
// format (§4.5/§6).
func EncodeTree(w io.Writer, tree map[string]any) error {
	gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return newErr("encode_tree", KindIO, err)
	}
	enc := nbt.NewEncoderWithEncoding(gz, nbt.BigEndian)
	if err := enc.Encode(tree); err != nil {
		_ = gz.Close()
		return newErr("encode_tree", KindIO, err)
	}
	if err := gz.Close(); err != nil {
		return newErr("encode_tree", KindIO, err)
	}
	return nil
}

// DecodeTree reads a gzip-compressed tagged binary stream from r and
// returns its root compound as a neutral tree: nested map[string]any
// for compounds, []any for lists, and the tag-appropriate Go slice
// type ([]byte, []int32, []int64) for the three array tags. Scalars
// decode to their natural Go numeric/string type.
//
// DecodeTree fails with KindCorruptArchive if r is not a valid gzip
// stream or the tagged binary tree inside it is malformed.
func DecodeTree(r io.Reader) (map[string]any, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, newErr("decode_tree", KindCorruptArchive, err)
	}
	defer gz.Close()

	var tree map[string]any
	dec := nbt.NewDecoderWithEncoding(gz, nbt.BigEndian)
	if err := dec.Decode(&tree); err != nil {
		return nil, newErr("decode_tree", KindCorruptArchive, err)
	}
	return tree, nil
}

// EncodeStructureFile renders a StructureFile into the neutral tree
// shape described by spec.md §3 ("DataVersion", "size", "palette",
// "blocks", "entities", "metadata", "large") and gzip-encodes it to w.
func EncodeStructureFile(w io.Writer, s StructureFile) error {
	return EncodeTree(w, structureFileToTree(s))
}

// DecodeStructureFile reads and gzip-decompresses a piece file from r
// and reconstructs its StructureFile.
func DecodeStructureFile(r io.Reader) (StructureFile, error) {
	tree, err := DecodeTree(r)
	if err != nil {
		return StructureFile{}, err
	}
	return structureFileFromTree(tree)
}

func structureFileToTree(s StructureFile) map[string]any {
	paletteList := make([]any, len(s.Palette))
	for i, b := range s.Palette {
		props := make(map[string]any, len(b.Properties))
		for k, v := range b.Properties {
			props[k] = v
		}
		paletteList[i] = map[string]any{"name": b.Name, "properties": props}
	}

	blockList := make([]any, len(s.Blocks))
	for i, e := range s.Blocks {
		entry := map[string]any{
			"pos":   []any{int32(e.RelX), int32(e.RelY), int32(e.RelZ)},
			"state": int32(e.State),
		}
		if e.NBT != nil {
			entry["nbt"] = e.NBT
		}
		blockList[i] = entry
	}

	entList := make([]any, len(s.Entities))
	for i, e := range s.Entities {
		entList[i] = map[string]any{
			"blockPos": []any{int32(e.BlockX), int32(e.BlockY), int32(e.BlockZ)},
			"pos":      []any{e.X, e.Y, e.Z},
			"nbt":      e.NBT,
		}
	}

	tree := map[string]any{
		"DataVersion": s.DataVersion,
		"size":        []any{int32(s.SizeX), int32(s.SizeY), int32(s.SizeZ)},
		"palette":     paletteList,
		"blocks":      blockList,
		"entities":    entList,
	}
	if s.Metadata != nil {
		meta := make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			meta[k] = v
		}
		tree["metadata"] = meta
	}
	if s.Large != nil {
		tree["large"] = gridMetadataToTree(*s.Large)
	}
	return tree
}

func gridMetadataToTree(g GridMetadata) map[string]any {
	requires := make([]any, len(g.Requires))
	for i, r := range g.Requires {
		requires[i] = r
	}
	return map[string]any{
		"requires":  requires,
		"pieceSize": map[string]any{"x": int32(g.PieceSize[0]), "z": int32(g.PieceSize[1]), "y": int32(g.PieceSize[2])},
		"gridSize":  map[string]any{"x": int32(g.GridSize[0]), "z": int32(g.GridSize[1]), "y": int32(g.GridSize[2])},
		"totalSize": map[string]any{"x": int32(g.TotalSize[0]), "y": int32(g.TotalSize[1]), "z": int32(g.TotalSize[2])},
	}
}

func structureFileFromTree(tree map[string]any) (StructureFile, error) {
	var s StructureFile

	dv, err := asInt32(tree["DataVersion"])
	if err != nil {
		return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("DataVersion: %w", err))
	}
	s.DataVersion = dv

	size, err := asIntTriple(tree["size"])
	if err != nil {
		return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("size: %w", err))
	}
	s.SizeX, s.SizeY, s.SizeZ = size[0], size[1], size[2]

	paletteList, _ := tree["palette"].([]any)
	s.Palette = make(Palette, len(paletteList))
	for i, raw := range paletteList {
		entry, ok := raw.(map[string]any)
		if !ok {
			return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("palette[%d]: not a compound", i))
		}
		name, _ := entry["name"].(string)
		props := map[string]string{}
		if rawProps, ok := entry["properties"].(map[string]any); ok {
			for k, v := range rawProps {
				props[k] = fmt.Sprint(v)
			}
		}
		s.Palette[i] = BlockData{Name: name, Properties: props}
	}

	blockList, _ := tree["blocks"].([]any)
	s.Blocks = make([]BlockEntry, len(blockList))
	for i, raw := range blockList {
		entry, ok := raw.(map[string]any)
		if !ok {
			return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("blocks[%d]: not a compound", i))
		}
		pos, err := asIntTriple(entry["pos"])
		if err != nil {
			return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("blocks[%d].pos: %w", i, err))
		}
		state, err := asInt32(entry["state"])
		if err != nil {
			return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("blocks[%d].state: %w", i, err))
		}
		var blockNBT map[string]any
		if nbtRaw, ok := entry["nbt"].(map[string]any); ok {
			blockNBT = nbtRaw
		}
		s.Blocks[i] = BlockEntry{RelX: pos[0], RelY: pos[1], RelZ: pos[2], State: int(state), NBT: blockNBT}
	}

	entList, _ := tree["entities"].([]any)
	s.Entities = make([]EntityEntry, len(entList))
	for i, raw := range entList {
		entry, ok := raw.(map[string]any)
		if !ok {
			return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("entities[%d]: not a compound", i))
		}
		blockPos, err := asIntTriple(entry["blockPos"])
		if err != nil {
			return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("entities[%d].blockPos: %w", i, err))
		}
		worldPos, err := asFloatTriple(entry["pos"])
		if err != nil {
			return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("entities[%d].pos: %w", i, err))
		}
		var entNBT map[string]any
		if nbtRaw, ok := entry["nbt"].(map[string]any); ok {
			entNBT = nbtRaw
		}
		s.Entities[i] = EntityEntry{
			BlockX: blockPos[0], BlockY: blockPos[1], BlockZ: blockPos[2],
			X: worldPos[0], Y: worldPos[1], Z: worldPos[2],
			NBT: entNBT,
		}
	}

	if rawMeta, ok := tree["metadata"].(map[string]any); ok {
		s.Metadata = make(map[string]string, len(rawMeta))
		for k, v := range rawMeta {
			s.Metadata[k] = fmt.Sprint(v)
		}
	}

	if rawLarge, ok := tree["large"].(map[string]any); ok {
		g, err := gridMetadataFromTree(rawLarge)
		if err != nil {
			return s, newErr("decode_structure_file", KindCorruptArchive, fmt.Errorf("large: %w", err))
		}
		s.Large = &g
	}

	return s, nil
}

func gridMetadataFromTree(tree map[string]any) (GridMetadata, error) {
	var g GridMetadata
	if reqs, ok := tree["requires"].([]any); ok {
		g.Requires = make([]string, len(reqs))
		for i, r := range reqs {
			g.Requires[i] = fmt.Sprint(r)
		}
	}
	var err error
	if g.PieceSize, err = asXYZTriple(tree["pieceSize"]); err != nil {
		return g, fmt.Errorf("pieceSize: %w", err)
	}
	if g.GridSize, err = asXYZTriple(tree["gridSize"]); err != nil {
		return g, fmt.Errorf("gridSize: %w", err)
	}
	if tot, ok := tree["totalSize"].(map[string]any); ok {
		x, _ := asInt32(tot["x"])
		y, _ := asInt32(tot["y"])
		z, _ := asInt32(tot["z"])
		g.TotalSize = [3]int{int(x), int(y), int(z)}
	}
	return g, nil
}

// asXYZTriple decodes a {"x":.., "z":.., "y":..} compound into
// [3]int{x, z, y}, matching GridMetadata.PieceSize/GridSize's layout.
func asXYZTriple(v any) ([3]int, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return [3]int{}, fmt.Errorf("not a compound")
	}
	x, _ := asInt32(m["x"])
	z, _ := asInt32(m["z"])
	y, _ := asInt32(m["y"])
	return [3]int{int(x), int(z), int(y)}, nil
}

func asInt32(v any) (int32, error) {
	switch n := v.(type) {
	case int32:
		return n, nil
	case int64:
		return int32(n), nil
	case int:
		return int32(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func asIntTriple(v any) ([3]int, error) {
	list, ok := v.([]any)
	if !ok || len(list) != 3 {
		return [3]int{}, fmt.Errorf("expected 3-element list, got %T", v)
	}
	var out [3]int
	for i, raw := range list {
		n, err := asInt32(raw)
		if err != nil {
			return out, err
		}
		out[i] = int(n)
	}
	return out, nil
}

func asFloatTriple(v any) ([3]float64, error) {
	list, ok := v.([]any)
	if !ok || len(list) != 3 {
		return [3]float64{}, fmt.Errorf("expected 3-element list, got %T", v)
	}
	var out [3]float64
	for i, raw := range list {
		switch n := raw.(type) {
		case float64:
			out[i] = n
		case float32:
			out[i] = float64(n)
		case int32:
			out[i] = float64(n)
		default:
			return out, fmt.Errorf("expected number, got %T", raw)
		}
	}
	return out, nil
}
