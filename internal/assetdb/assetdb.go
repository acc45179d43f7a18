// internal/assetdb/assetdb.go
package assetdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"assetgraph/internal/asset"
	"assetgraph/internal/logging"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("asset not found")

const (
	pathPrefix = "asset_path:"
	idPrefix   = "asset_id:"
)

// Record is what the database knows about one asset path.
type Record struct {
	ID         string     `json:"id"`
	Path       string     `json:"path"`
	Folder     bool       `json:"folder"`
	Kind       asset.Kind `json:"kind"`
	ImportedAt time.Time  `json:"imported_at"`
}

// Options configures a DB.
type Options struct {
	ProjectRoot string
	AssetsDir   string
	Rules       asset.Rules
	CacheSize   int
	Logger      *zap.Logger
}

// DB maps asset paths to stable identifiers that survive moves. Paths are
// slash-separated and relative to the project root.
type DB struct {
	db        *badger.DB
	root      string
	assetsDir string
	rules     asset.Rules
	cache     *lru.Cache[string, string] // id -> path
	logger    *zap.Logger
}

func New(db *badger.DB, opts Options) (*DB, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if opts.ProjectRoot == "" {
		return nil, fmt.Errorf("project root is required")
	}
	if opts.AssetsDir == "" {
		opts.AssetsDir = "Assets"
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = 4096
	}

	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &DB{
		db:        db,
		root:      opts.ProjectRoot,
		assetsDir: opts.AssetsDir,
		rules:     opts.Rules,
		cache:     cache,
		logger:    logging.OrNop(opts.Logger),
	}, nil
}

// Get returns the record for p.
func (d *DB) Get(p string) (*Record, error) {
	var rec Record
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pathKey(p))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// IsFolder reports whether p is an indexed directory.
func (d *DB) IsFolder(p string) bool {
	rec, err := d.Get(p)
	if err != nil {
		d.logUnexpected("checking folder", p, err)
		return false
	}
	return rec.Folder
}

// PathToID returns the identifier of p, or "" when p is not indexed.
func (d *DB) PathToID(p string) string {
	rec, err := d.Get(p)
	if err != nil {
		d.logUnexpected("resolving path", p, err)
		return ""
	}
	return rec.ID
}

// IDToPath returns the current path of id, or "" when id is unknown.
func (d *DB) IDToPath(id string) string {
	if id == "" {
		return ""
	}
	if p, ok := d.cache.Get(id); ok {
		return p
	}

	var p string
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		p = string(val)
		return nil
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			d.logger.Warn("resolving id", zap.String("id", id), zap.Error(err))
		}
		return ""
	}

	d.cache.Add(id, p)
	return p
}

// EnumerateUnder lists every indexed path below p in lexical order.
func (d *DB) EnumerateUnder(p string) ([]string, error) {
	prefix := pathKey(p + "/")
	if p == "" {
		prefix = []byte(pathPrefix)
	}

	var paths []string
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			paths = append(paths, strings.TrimPrefix(string(it.Item().Key()), pathPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", p, err)
	}
	return paths, nil
}

// Classify returns false when p is not indexed.
func (d *DB) Classify(p string) (asset.Classification, bool) {
	rec, err := d.Get(p)
	if err != nil {
		d.logUnexpected("classifying", p, err)
		return asset.Classification{}, false
	}
	return d.rules.Classify(p, rec.Folder), true
}

// Reference returns false when p is not indexed.
func (d *DB) Reference(p string) (*asset.Reference, bool) {
	rec, err := d.Get(p)
	if err != nil {
		d.logUnexpected("loading reference", p, err)
		return nil, false
	}
	return &asset.Reference{ID: rec.ID, ImportFrom: rec.Path, Kind: rec.Kind}, true
}

// Len returns the number of indexed paths.
func (d *DB) Len() (int, error) {
	paths, err := d.EnumerateUnder("")
	return len(paths), err
}

func (d *DB) logUnexpected(op, p string, err error) {
	if errors.Is(err, ErrNotFound) {
		return
	}
	d.logger.Warn(op, zap.String("path", p), zap.Error(err))
}

func newRecord(p string, folder bool) Record {
	kind := asset.KindOf(p)
	if folder {
		kind = asset.KindFolder
	}
	return Record{
		ID:         uuid.New().String(),
		Path:       p,
		Folder:     folder,
		Kind:       kind,
		ImportedAt: time.Now(),
	}
}

func putRecord(txn *badger.Txn, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if err := txn.Set(pathKey(rec.Path), data); err != nil {
		return err
	}
	return txn.Set(idKey(rec.ID), []byte(rec.Path))
}

func pathKey(p string) []byte {
	return []byte(pathPrefix + p)
}

func idKey(id string) []byte {
	return []byte(idPrefix + id)
}

// isUnder reports whether p is root or lies below it.
func isUnder(p, root string) bool {
	return p == root || strings.HasPrefix(p, root+"/")
}

func rebase(p, from, to string) string {
	if p == from {
		return to
	}
	return path.Join(to, strings.TrimPrefix(p, from+"/"))
}
