package lse

import (
	"sort"
	"strings"
)

// BlockCount is one (block id, occurrence count) pair, returned in
// alphabetical order by CountBlocks.
type BlockCount struct {
	Name  string
	Count int
}

// CountBlocks aggregates occurrence counts per block id across every
// entry in structure.Blocks, resolved through structure.Palette, and
// returns them sorted alphabetically by name for determinism.
func CountBlocks(structure StructureFile) []BlockCount {
	counts := make(map[string]int)
	for _, entry := range structure.Blocks {
		if entry.State < 0 || entry.State >= len(structure.Palette) {
			continue
		}
		counts[structure.Palette[entry.State].Name]++
	}
	out := make([]BlockCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, BlockCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ReplaceBlocks returns a copy of structure whose palette entries have
// had their Name substituted according to idMap wherever present;
// properties and block-entity NBT are unchanged. The returned
// StructureFile shares its Blocks/Entities slices with structure (only
// the palette is a new slice), since block indices are unaffected by
// an id-to-id rename.
func ReplaceBlocks(structure StructureFile, idMap map[string]string) StructureFile {
	newPalette := make(Palette, len(structure.Palette))
	for i, entry := range structure.Palette {
		if newName, ok := idMap[entry.Name]; ok {
			newPalette[i] = BlockData{Name: newName, Properties: entry.Properties}
		} else {
			newPalette[i] = entry
		}
	}
	out := structure
	out.Palette = newPalette
	return out
}

// vanillaSuffixRule maps a recognized id suffix to a template for its
// vanilla fallback; "%s" is substituted with woodType where present.
type vanillaSuffixRule struct {
	suffix   string
	template string
}

// vanillaSuffixRules is checked in order; the first matching suffix
// wins. Order matters: more specific suffixes (e.g. "_slab") must be
// checked before shorter ones that could also match by substring.
var vanillaSuffixRules = []vanillaSuffixRule{
	{"_log", "minecraft:%s_log"},
	{"_planks", "minecraft:%s_planks"},
	{"_stairs", "minecraft:%s_stairs"},
	{"_slab", "minecraft:%s_slab"},
	{"_leaves", "minecraft:oak_leaves"},
	{"_dirt", "minecraft:dirt"},
}

// vanillaSubstringRules is checked after the suffix rules, against any
// substring of the id (not just a trailing suffix) for material-class
// fallbacks such as "*_stone_*" -> "minecraft:stone".
var vanillaSubstringRules = []vanillaSuffixRule{
	{"stone", "minecraft:stone"},
	{"rock", "minecraft:stone"},
	{"mud", "minecraft:packed_mud"},
	{"sand", "minecraft:sand"},
	{"gravel", "minecraft:gravel"},
}

// GenerateVanillaReplacementMap classifies each non-"minecraft:" id in
// ids by suffix/substring heuristics and returns a map from that id to
// a vanilla target, parameterized by woodType for the wood-family
// rules. ids that cannot be classified are omitted from the map and
// instead produce a warning string.
func GenerateVanillaReplacementMap(ids []string, woodType string) (map[string]string, []string) {
	out := make(map[string]string)
	var warnings []string
	for _, id := range ids {
		if isVanilla(id) {
			continue
		}
		target, ok := classifyVanillaTarget(id, woodType)
		if !ok {
			warnings = append(warnings, "no vanilla fallback for "+id)
			continue
		}
		out[id] = target
	}
	return out, warnings
}

func isVanilla(id string) bool {
	return strings.HasPrefix(id, "minecraft:")
}

func classifyVanillaTarget(id, woodType string) (string, bool) {
	for _, rule := range vanillaSuffixRules {
		if strings.HasSuffix(id, rule.suffix) {
			return strings.Replace(rule.template, "%s", woodType, 1), true
		}
	}
	for _, rule := range vanillaSubstringRules {
		if strings.Contains(id, rule.suffix) {
			return strings.Replace(rule.template, "%s", woodType, 1), true
		}
	}
	return "", false
}

// woodFamilySuffixes lists the target-id suffixes ApplyWoodTypeOverride
// is allowed to rewrite the wood variant of.
var woodFamilySuffixes = []string{"_planks", "_log", "_stairs", "_slab"}

// ApplyWoodTypeOverride rewrites only the wood-family targets already
// present in idMap (those produced by GenerateVanillaReplacementMap's
// wood rules) to use overrideWood instead, leaving every other mapping
// untouched. It mutates a copy of idMap and returns it.
func ApplyWoodTypeOverride(idMap map[string]string, overrideWood string) map[string]string {
	out := make(map[string]string, len(idMap))
	for k, v := range idMap {
		out[k] = v
		for _, suffix := range woodFamilySuffixes {
			if strings.HasSuffix(v, suffix) && strings.HasPrefix(v, "minecraft:") {
				out[k] = "minecraft:" + overrideWood + suffix
				break
			}
		}
	}
	return out
}
