// Package graph drives loader nodes the way the asset graph engine does:
// it keeps node records, decides per target whether a node is stale and
// re-evaluates it, persisting repaired settings and published output.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "assetgraph/internal/errors"
	"assetgraph/internal/loader"
	"assetgraph/internal/logging"
	"assetgraph/internal/node"
	"assetgraph/internal/snapshot"
	"assetgraph/internal/storage"
	"assetgraph/internal/target"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const recordPrefix = "loader"

// Sink receives every output a cycle publishes.
type Sink func(rec *Record, t target.Target, conn *node.Connection, out node.Groups)

type Runner struct {
	env       loader.Env
	records   *storage.BadgerStore[*Record]
	snapshots *snapshot.Store
	logger    *zap.Logger

	// one cycle or edit at a time
	mu sync.Mutex
}

func NewRunner(db *badger.DB, env loader.Env, snapshots *snapshot.Store) *Runner {
	return &Runner{
		env:       env,
		records:   storage.NewBadgerStore[*Record](db, recordPrefix),
		snapshots: snapshots,
		logger:    logging.OrNop(env.Logger),
	}
}

// Loader restores the loader described by rec.
func (r *Runner) Loader(rec *Record) *loader.Loader {
	return loader.FromSettings(r.env, rec.Settings)
}

// AddLoader creates a loader node reading loadPath.
func (r *Runner) AddLoader(name, loadPath string) (*Record, error) {
	if name == "" {
		return nil, apperrors.ValidationError("name is required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	data := node.NewData(name)
	l := loader.NewWithPath(r.env, loadPath)
	l.Initialize(data)
	return r.create(data, l)
}

// ImportLegacy creates a loader node from a single legacy load path.
func (r *Runner) ImportLegacy(name, legacyPath string) (*Record, error) {
	if name == "" {
		return nil, apperrors.ValidationError("name is required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	data := node.NewData(name)
	l := loader.ImportLegacy(r.env, legacyPath)
	l.Initialize(data)
	return r.create(data, l)
}

// Clone copies the node id under a new name.
func (r *Runner) Clone(id, name string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = src.Data.Name + " Copy"
	}
	data := node.NewData(name)
	l := r.Loader(src).Clone(data)
	return r.create(data, l)
}

func (r *Runner) create(data *node.Data, l *loader.Loader) (*Record, error) {
	now := time.Now()
	rec := &Record{
		Data:      *data,
		Settings:  l.Settings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.records.Create(rec); err != nil {
		return nil, fmt.Errorf("storing loader: %w", err)
	}
	r.logger.Info("loader created",
		zap.String("node", rec.Data.Name),
		zap.String("id", rec.Data.ID),
		zap.String("path", l.LoadPath(target.Default)),
	)
	return rec, nil
}

func (r *Runner) Get(id string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *Runner) get(id string) (*Record, error) {
	rec, err := r.records.Get(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NotFound(fmt.Sprintf("loader not found: %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("reading loader: %w", err)
	}
	return rec, nil
}

// List returns every loader node ordered by name.
func (r *Runner) List() ([]*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list()
}

func (r *Runner) list() ([]*Record, error) {
	recs, err := r.records.List()
	if err != nil {
		return nil, fmt.Errorf("listing loaders: %w", err)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Data.Name < recs[j].Data.Name
	})
	return recs, nil
}

// Delete removes a node and everything it published.
func (r *Runner) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.records.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound(fmt.Sprintf("loader not found: %s", id))
		}
		return fmt.Errorf("deleting loader: %w", err)
	}
	if err := r.snapshots.DeleteNode(id); err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}
	return nil
}

// SetLoadPath points target t of node id at p. A non-default target gets
// its own override.
func (r *Runner) SetLoadPath(id string, t target.Target, p string) (*Record, error) {
	return r.edit(id, func(l *loader.Loader) {
		l.SetLoadPath(t, p)
	})
}

// UnsetLoadPath drops the override of t so it falls back to the default.
func (r *Runner) UnsetLoadPath(id string, t target.Target) (*Record, error) {
	if t == target.Default {
		return nil, apperrors.ValidationError("the default load path cannot be removed", nil)
	}
	return r.edit(id, func(l *loader.Loader) {
		l.DisableOverride(t)
	})
}

// Connect adds a downstream connection from the node's default output.
func (r *Runner) Connect(id, toNode, toPoint string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.get(id)
	if err != nil {
		return nil, err
	}
	out := rec.Data.AddDefaultOutputPoint()
	rec.Connections = append(rec.Connections, node.Connection{
		ID:        newConnectionID(),
		FromNode:  rec.Data.ID,
		FromPoint: out.ID,
		ToNode:    toNode,
		ToPoint:   toPoint,
	})
	return rec, r.save(rec)
}

func (r *Runner) edit(id string, fn func(l *loader.Loader)) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.get(id)
	if err != nil {
		return nil, err
	}
	l := r.Loader(rec)
	fn(l)
	rec.Settings = l.Settings()
	return rec, r.save(rec)
}

func (r *Runner) save(rec *Record) error {
	rec.UpdatedAt = time.Now()
	if err := r.records.Update(rec); err != nil {
		return fmt.Errorf("updating loader: %w", err)
	}
	return nil
}

// Output returns what node id last published for t, or nil.
func (r *Runner) Output(id string, t target.Target) (node.Groups, error) {
	return r.snapshots.FindAssetGroup(id, t)
}
