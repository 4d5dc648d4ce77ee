package lse

import "context"

// LevelHandle is an opaque reference to a resolved dimension/world,
// returned by WorldAdapter.GetLevel. The engine never inspects it; it
// only ever passes it back into the same adapter.
type LevelHandle any

// ResourceKind distinguishes the kinds of addressable assets
// WorldAdapter.ListResources can enumerate (e.g. large-structure grid
// roots under "*/rjs-large/*/0.0.0.nbt").
type ResourceKind int

const (
	ResourceKindLargeStructureRoot ResourceKind = iota
)

// Resource is one entry returned by WorldAdapter.ListResources: the
// namespace it belongs to and its path relative to that namespace.
type Resource struct {
	Namespace string
	Path      string
}

// ReplaceMode selects how SetBlocksInRegion treats the world's
// existing block under each incoming position (§6 "Replace-mode
// options"). KeepAir (skip writing minecraft:air source blocks) is
// filtered out before the adapter ever sees those positions; Overlay
// (skip writing over non-air targets) requires reading the current
// target block and is therefore the adapter's responsibility.
type ReplaceMode int

const (
	ReplaceModeReplace ReplaceMode = iota // overwrite all (default)
	ReplaceModeKeepAir                    // caller has already filtered out air sources
	ReplaceModeOverlay                    // adapter must skip non-air targets
)

// SetBlocksOptions configures WorldAdapter.SetBlocksInRegion.
type SetBlocksOptions struct {
	UpdateNeighbors bool
	Mode            ReplaceMode
}

// WorldAdapter is the seam (§4.7) between the engine and the host
// world. The engine depends only on these operations, never on host
// types; a concrete binding (e.g. dragonflyadapter) translates them
// to a real running world. Every method must be safe to call from any
// goroutine — dispatching to the host's single world-mutation thread,
// per §5, is the adapter's responsibility, not the caller's.
type WorldAdapter interface {
	// GetLevel resolves a dimension name to a LevelHandle, or ok=false
	// if the host has no such dimension (KindUnknownDimension).
	GetLevel(ctx context.Context, dimension string) (handle LevelHandle, ok bool, err error)

	// GetBlocksInRegion returns every block in region, with its
	// current state and optional block-entity NBT.
	GetBlocksInRegion(ctx context.Context, handle LevelHandle, region Region) ([]PositionedBlock, error)

	// GetEntitiesInRegion returns every entity within region.
	GetEntitiesInRegion(ctx context.Context, handle LevelHandle, region Region) ([]PositionedEntity, error)

	// SetBlocksInRegion applies blocks in the supplied order. When
	// opts.UpdateNeighbors is true, the host runs its normal
	// neighbor-update/physics pass as each block is placed; large
	// multi-piece placements pass false to suppress cascading updates
	// until every piece has been written (§4.9 place_large step 3).
	SetBlocksInRegion(ctx context.Context, handle LevelHandle, blocks []PositionedBlock, opts SetBlocksOptions) error

	// ListResources enumerates addressable assets of the given kind
	// whose path matches predicate, without opening the underlying
	// files.
	ListResources(ctx context.Context, kind ResourceKind, predicate func(Resource) bool) ([]Resource, error)
}
