// internal/change/collector.go
package change

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"assetgraph/internal/logging"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Indexer keeps the content index in step with what the collector sees.
type Indexer interface {
	Import(ctx context.Context, p string) ([]string, error)
	Forget(p string) ([]string, error)
	Move(from, to string) (movedFrom, movedTo []string, err error)
	PathToID(p string) string
	IsFolder(p string) bool
}

// renameWindow is how long a rename waits for the create that completes it.
const renameWindow = 250 * time.Millisecond

type pendingRename struct {
	path   string
	folder bool
	at     time.Time
}

// Collector turns filesystem events below the asset directory into batches
// of asset paths, updating the index as it goes.
type Collector struct {
	root      string
	assetsDir string
	index     Indexer
	watcher   *fsnotify.Watcher
	logger    *zap.Logger

	mu      sync.Mutex
	pending Batch
	renames []pendingRename
	changed chan struct{}
	now     func() time.Time
}

func NewCollector(root, assetsDir string, index Indexer, logger *zap.Logger) (*Collector, error) {
	if root == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}
	if index == nil {
		return nil, fmt.Errorf("index cannot be nil")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Collector{
		root:      root,
		assetsDir: assetsDir,
		index:     index,
		watcher:   watcher,
		logger:    logging.OrNop(logger),
		changed:   make(chan struct{}, 1),
		now:       time.Now,
	}, nil
}

// Start registers every directory below the asset root and processes
// events until ctx is done.
func (c *Collector) Start(ctx context.Context) error {
	abs := filepath.Join(c.root, filepath.FromSlash(c.assetsDir))
	if err := c.watchTree(abs); err != nil {
		return fmt.Errorf("initializing watcher: %w", err)
	}
	go c.watchLoop(ctx)
	return nil
}

// Changed is signalled whenever a new change is pending.
func (c *Collector) Changed() <-chan struct{} {
	return c.changed
}

// Drain returns everything collected since the last drain. Renames whose
// destination never appeared are reported as deletions.
func (c *Collector) Drain() Batch {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireRenames(time.Time{})
	batch := c.pending.Normalized()
	c.pending = Batch{}
	return batch
}

func (c *Collector) Close() error {
	return c.watcher.Close()
}

func (c *Collector) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.handleEvent(ctx, event)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (c *Collector) handleEvent(ctx context.Context, event fsnotify.Event) {
	p, ok := c.assetPath(event.Name)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireRenames(c.now().Add(-renameWindow))

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if err := c.watchTree(event.Name); err != nil {
				c.logger.Error("adding new directory to watcher", zap.Error(err))
			}
		}
		if err == nil {
			if from, ok := c.takeRename(info.IsDir()); ok {
				movedFrom, movedTo, err := c.index.Move(from, p)
				if err == nil {
					c.pending.MovedFrom = append(c.pending.MovedFrom, movedFrom...)
					c.pending.MovedTo = append(c.pending.MovedTo, movedTo...)
					break
				}
				c.logger.Warn("pairing rename", zap.String("from", from), zap.String("to", p), zap.Error(err))
			}
		}
		created, err := c.index.Import(ctx, p)
		if err != nil {
			c.logger.Error("importing path", zap.String("path", p), zap.Error(err))
			return
		}
		c.pending.Created = append(c.pending.Created, created...)

	case event.Has(fsnotify.Write):
		if c.index.PathToID(p) == "" {
			return
		}
		// modified content is reported as a reimport
		c.pending.Created = append(c.pending.Created, p)

	case event.Has(fsnotify.Remove):
		c.forget(p)

	case event.Has(fsnotify.Rename):
		if c.index.PathToID(p) == "" {
			return
		}
		c.renames = append(c.renames, pendingRename{path: p, folder: c.index.IsFolder(p), at: c.now()})

	default:
		return
	}

	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// takeRename removes and returns the oldest pending rename of the given kind.
func (c *Collector) takeRename(folder bool) (string, bool) {
	for i, r := range c.renames {
		if r.folder == folder {
			c.renames = append(c.renames[:i], c.renames[i+1:]...)
			return r.path, true
		}
	}
	return "", false
}

// expireRenames turns renames older than cutoff into deletions. A zero
// cutoff expires all of them.
func (c *Collector) expireRenames(cutoff time.Time) {
	kept := c.renames[:0]
	for _, r := range c.renames {
		if cutoff.IsZero() || r.at.Before(cutoff) {
			c.forget(r.path)
			continue
		}
		kept = append(kept, r)
	}
	c.renames = kept
}

func (c *Collector) forget(p string) {
	deleted, err := c.index.Forget(p)
	if err != nil {
		c.logger.Error("forgetting path", zap.String("path", p), zap.Error(err))
		return
	}
	c.pending.Deleted = append(c.pending.Deleted, deleted...)
}

// assetPath converts an event path to an asset path, rejecting anything
// outside the asset directory.
func (c *Collector) assetPath(name string) (string, bool) {
	rel, err := filepath.Rel(c.root, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel != c.assetsDir && !strings.HasPrefix(rel, c.assetsDir+"/") {
		return "", false
	}
	return rel, true
}

func (c *Collector) watchTree(abs string) error {
	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := c.watcher.Add(p); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}
