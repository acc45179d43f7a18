// Package loader implements the directory loader node: the ingress of an
// asset graph that binds a directory to a stable identity, follows it across
// renames and decides when its published asset set is stale.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"assetgraph/internal/asset"
	"assetgraph/internal/change"
	apperrors "assetgraph/internal/errors"
	"assetgraph/internal/logging"
	"assetgraph/internal/node"
	"assetgraph/internal/target"

	"go.uber.org/zap"
)

// Index is the content database a loader reads from.
type Index interface {
	Lookup
	// EnumerateUnder lists every asset path below assetPath, recursively.
	EnumerateUnder(assetPath string) ([]string, error)
	// Classify returns false when the path is unknown to the index.
	Classify(assetPath string) (asset.Classification, bool)
	// Reference returns false when the path no longer denotes an asset.
	Reference(assetPath string) (*asset.Reference, bool)
}

// Env carries a loader's collaborators.
type Env struct {
	Layout Layout
	Index  Index
	Rules  asset.Rules
	Logger *zap.Logger
}

type Loader struct {
	settings Settings
	env      Env
	logger   *zap.Logger
}

// New creates a loader with empty settings.
func New(env Env) *Loader {
	return &Loader{
		settings: NewSettings("", ""),
		env:      env,
		logger:   logging.OrNop(env.Logger),
	}
}

// NewWithPath creates a loader whose default load path is p, binding the
// stable identifier of that directory at the same time.
func NewWithPath(env Env, p string) *Loader {
	l := New(env)
	normalized := env.Layout.NormalizeLoadPath(p)
	l.settings = NewSettings(normalized, env.Index.PathToID(env.Layout.AssetPath(normalized)))
	return l
}

// FromSettings restores a persisted loader.
func FromSettings(env Env, s Settings) *Loader {
	l := New(env)
	l.settings = s.ensure()
	return l
}

// ImportLegacy converts a single legacy load path into a settings pair.
func ImportLegacy(env Env, legacyPath string) *Loader {
	l := NewWithPath(env, legacyPath)
	l.logger.Debug("imported legacy load path",
		zap.String("path", legacyPath),
		zap.String("id", l.settings.IDs.DefaultValue),
	)
	return l
}

// Initialize prepares empty stores and declares the default output.
func (l *Loader) Initialize(data *node.Data) {
	l.settings = l.settings.ensure()
	data.AddDefaultOutputPoint()
}

// Clone copies the settings into a new loader for newData.
func (l *Loader) Clone(newData *node.Data) *Loader {
	c := FromSettings(l.env, l.settings.Clone())
	newData.AddDefaultOutputPoint()
	return c
}

// Settings returns a copy of the persisted configuration.
func (l *Loader) Settings() Settings {
	return l.settings.Clone()
}

// LoadPathFor is the configured load path for t, relative to the asset root.
func (l *Loader) LoadPathFor(t target.Target) string {
	return l.settings.Paths.Get(t)
}

// LoadPath is the asset path the loader reads for t.
func (l *Loader) LoadPath(t target.Target) string {
	return l.env.Layout.AssetPath(l.settings.Paths.Get(t))
}

// FullLoadPath is the on-disk directory the loader reads for t.
func (l *Loader) FullLoadPath(t target.Target) string {
	return l.env.Layout.AbsPath(l.settings.Paths.Get(t))
}

// SetLoadPath stores a new path for t and rebinds its identifier.
func (l *Loader) SetLoadPath(t target.Target, p string) {
	normalized := l.env.Layout.NormalizeLoadPath(p)
	l.settings.Paths.Set(t, normalized)
	l.settings.IDs.Set(t, l.env.Index.PathToID(l.env.Layout.AssetPath(normalized)))
}

// EnableOverride starts a per-target override from the current defaults.
func (l *Loader) EnableOverride(t target.Target) {
	if t == target.Default || l.settings.Paths.HasOverride(t) {
		return
	}
	l.settings.Paths.Set(t, l.settings.Paths.DefaultValue)
	l.settings.IDs.Set(t, l.settings.IDs.DefaultValue)
}

// DisableOverride drops the override for t from both stores.
func (l *Loader) DisableOverride(t target.Target) {
	l.settings.Paths.Remove(t)
	l.settings.IDs.Remove(t)
}

// CheckAndCorrectPath reconciles the configuration for t in place.
func (l *Loader) CheckAndCorrectPath(t target.Target) Repair {
	fixed, repair := Reconcile(l.settings, t, l.env.Layout, l.env.Index)
	if repair.Kind != RepairNone {
		l.logger.Info("load path reconciled",
			zap.Stringer("target", t),
			zap.Stringer("repair", repair.Kind),
			zap.String("from", repair.From),
			zap.String("to", repair.To),
		)
	}
	l.settings = fixed
	return repair
}

// DecideRevisit reports whether the output published for t is stale given
// the changes in batch. prior is nil when nothing was published before.
func (l *Loader) DecideRevisit(data *node.Data, t target.Target, batch change.Batch, prior node.Groups) bool {
	if prior == nil {
		l.logger.Info("node is marked to revisit", zap.String("node", data.Name), zap.String("reason", "no prior output"))
		return true
	}

	l.CheckAndCorrectPath(t)

	d := Decide(Input{
		LoadPath:   l.settings.Paths.Get(t),
		ImportRoot: l.LoadPath(t),
		Batch:      batch,
		Prior:      prior,
		IsSystem:   l.env.Rules.IsSystemAsset,
	})
	if d.Revisit {
		l.logger.Info("node is marked to revisit",
			zap.String("node", data.Name),
			zap.Stringer("target", t),
			zap.String("reason", d.Reason),
			zap.String("path", d.Path),
		)
	}
	return d.Revisit
}

// Evaluate reconciles, validates and scans the directory for t, then emits
// the result on the default output. incoming is ignored: a loader has no
// inputs.
func (l *Loader) Evaluate(data *node.Data, t target.Target, incoming []node.Groups, conns []node.Connection, emit node.Emit) error {
	l.CheckAndCorrectPath(t)

	full := l.FullLoadPath(t)
	signals := ValidateLoadPath(l.settings.Paths.Get(t), full)
	if signals.Empty {
		l.logger.Debug("load path is empty, loading the whole asset root", zap.String("node", data.Name))
	}
	if signals.Missing {
		return apperrors.MissingDirectory(data.ID, data.Name, full)
	}

	if emit == nil {
		return nil
	}

	refs, err := l.Scan(t)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", l.LoadPath(t), err)
	}

	var dst *node.Connection
	if len(conns) > 0 {
		dst = &conns[0]
	}
	emit(dst, node.Groups{node.DefaultOutput: refs})
	return nil
}

// Scan enumerates the load directory for t and returns the loadable assets
// in enumeration order, each identity at most once.
func (l *Loader) Scan(t target.Target) ([]*asset.Reference, error) {
	paths, err := l.env.Index.EnumerateUnder(l.LoadPath(t))
	if err != nil {
		return nil, err
	}

	refs := make([]*asset.Reference, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if l.env.Rules.IsSystemAsset(p) {
			continue
		}
		class, ok := l.env.Index.Classify(p)
		if !ok {
			l.logger.Info("skipping unindexed path", zap.String("path", p))
			continue
		}
		if class.IsConfigArtifact || class.IsFolder {
			continue
		}
		ref, ok := l.env.Index.Reference(p)
		if !ok {
			l.logger.Info("skipping stale index entry", zap.String("path", p))
			continue
		}
		if !class.IsLoadable || !l.env.Rules.IsLoadable(ref) {
			continue
		}
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		refs = append(refs, ref)
	}
	return refs, nil
}

// SuggestDirectories lists the existing siblings of a missing load
// directory for t, or nil when the directory exists or has no parent.
func (l *Loader) SuggestDirectories(t target.Target) []string {
	full := l.FullLoadPath(t)
	if dirExists(full) {
		return nil
	}
	parent := filepath.Dir(full)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(parent, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs
}
