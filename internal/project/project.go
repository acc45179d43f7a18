// internal/project/project.go
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"assetgraph/internal/assetdb"
	"assetgraph/internal/change"
	"assetgraph/internal/config"
	"assetgraph/internal/graph"
	"assetgraph/internal/loader"
	"assetgraph/internal/logging"
	"assetgraph/internal/snapshot"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// ConfigFile is the project configuration file name at the project root.
const ConfigFile = "assetgraph.json"

// Project is an opened asset project: its index, its loader nodes and
// their published output.
type Project struct {
	Config    *config.Config
	DB        *badger.DB
	Index     *assetdb.DB
	Snapshots *snapshot.Store
	Runner    *graph.Runner
	Logger    *zap.Logger
}

// Initialize creates the state directory and a default configuration file
// under root. An existing configuration file is left alone.
func Initialize(root string) error {
	cfg := config.Default(root)

	dirs := []string{
		filepath.Join(root, config.StateDir),
		cfg.Database.Path,
		filepath.Join(root, cfg.Project.AssetsDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	path := filepath.Join(root, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	// Paths are resolved from the working directory on load.
	cfg.Project.Root = ""
	cfg.Database.Path = ""
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Load reads the configuration of the project at root.
func Load(root string) (*config.Config, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	return config.Load(filepath.Join(abs, ConfigFile), abs)
}

// Open opens the database described by cfg and wires the loader graph on
// top of it.
func Open(cfg *config.Config, logger *zap.Logger) (*Project, error) {
	logger = logging.OrNop(logger)

	db, err := InitDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	p, err := open(db, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func open(db *badger.DB, cfg *config.Config, logger *zap.Logger) (*Project, error) {
	index, err := assetdb.New(db, assetdb.Options{
		ProjectRoot: cfg.Project.Root,
		AssetsDir:   cfg.Project.AssetsDir,
		Rules:       cfg.Project.Rules(),
		Logger:      logger.Named("assetdb"),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing asset index: %w", err)
	}

	snapshots, err := snapshot.NewStore(db, snapshot.DefaultCodecOptions())
	if err != nil {
		return nil, fmt.Errorf("initializing snapshot store: %w", err)
	}

	p := &Project{
		Config:    cfg,
		DB:        db,
		Index:     index,
		Snapshots: snapshots,
		Logger:    logger,
	}
	p.Runner = graph.NewRunner(db, p.Env(), snapshots)
	return p, nil
}

// InitDB opens the badger database at path, creating it when needed.
func InitDB(path string) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// Env is the environment loaders of this project run in.
func (p *Project) Env() loader.Env {
	return loader.Env{
		Layout: loader.Layout{ProjectRoot: p.Config.Project.Root, AssetsDir: p.Config.Project.AssetsDir},
		Index:  p.Index,
		Rules:  p.Config.Project.Rules(),
		Logger: p.Logger.Named("loader"),
	}
}

// Sync refreshes the index from disk and runs one cycle over the changes.
// Loaders that never published are evaluated whatever changed.
func (p *Project) Sync(ctx context.Context, sink graph.Sink) (change.Batch, *graph.Report, error) {
	batch, err := p.Index.Refresh(ctx)
	if err != nil {
		return change.Batch{}, nil, err
	}
	report, err := p.Runner.Cycle(ctx, &batch, sink)
	return batch, report, err
}

func (p *Project) Close() error {
	if p.DB == nil {
		return nil
	}
	if err := p.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
