package lse

import "github.com/sirupsen/logrus"

// DefaultPieceSize is the default grid-piece span on X/Z used by
// LargeStructureApi.CaptureLarge when options.PieceSize is zero.
const DefaultPieceSize = 48

// DefaultBackupHistory equals BackupHistory: the backup history depth
// an Engine's store uses when EngineConfig.BackupHistory is <= 0.
const DefaultBackupHistory = BackupHistory

// EngineConfig is the plain value type a host constructs to stand up
// an Engine. No file parsing happens inside the engine: the host is
// responsible for resolving these values from whatever configuration
// mechanism it uses (out of scope per SPEC_FULL.md §1).
type EngineConfig struct {
	StructuresRoot string
	BackupsRoot    string
	HomeNamespace  string
	DataVersion    int32
	BackupHistory  int
}

// Engine is the engine value a host constructs once per session,
// replacing the source's StructureManager-style singleton (Design
// Note, spec.md §9). It owns no process-wide state beyond its own
// fields; the only shared mutable state is the file tree under
// cfg.StructuresRoot / cfg.BackupsRoot, serialized through NbtStore's
// and LargeStructureApi's dirLock registries.
type Engine struct {
	cfg     EngineConfig
	adapter WorldAdapter
	store   *NbtStore
	log     *logrus.Entry

	structures *StructureApi
	large      *LargeStructureApi
}

// NewEngine constructs an Engine from cfg and a WorldAdapter binding
// to the host world. log may be nil, in which case logrus's standard
// logger is used.
func NewEngine(cfg EngineConfig, adapter WorldAdapter, log *logrus.Entry) *Engine {
	if cfg.HomeNamespace == "" {
		cfg.HomeNamespace = "minecraft"
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	store := NewNbtStore(cfg.StructuresRoot, cfg.BackupsRoot, cfg.BackupHistory, log.WithField("component", "nbt_store"))
	e := &Engine{cfg: cfg, adapter: adapter, store: store, log: log}
	e.structures = &StructureApi{engine: e}
	e.large = &LargeStructureApi{engine: e, dirs: newDirLock()}
	return e
}

// Structures returns the single-piece StructureApi.
func (e *Engine) Structures() *StructureApi { return e.structures }

// LargeStructures returns the multi-piece LargeStructureApi.
func (e *Engine) LargeStructures() *LargeStructureApi { return e.large }
