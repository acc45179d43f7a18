// internal/assetdb/import.go
package assetdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"assetgraph/internal/change"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Refresh brings the index in line with the asset directory on disk and
// returns what was added, removed and moved. A vanished folder whose whole
// tree reappears under exactly one new folder is taken as a rename and keeps
// its identifiers.
func (d *DB) Refresh(ctx context.Context) (change.Batch, error) {
	onDisk, err := d.walk(ctx, d.assetsDir)
	if err != nil {
		return change.Batch{}, err
	}

	indexed, err := d.snapshot(d.assetsDir)
	if err != nil {
		return change.Batch{}, err
	}

	gone := make(map[string]Record)
	for p, rec := range indexed {
		if folder, ok := onDisk[p]; !ok || folder != rec.Folder {
			gone[p] = rec
		}
	}
	added := make(map[string]bool)
	for p, folder := range onDisk {
		if rec, ok := indexed[p]; !ok || rec.Folder != folder {
			added[p] = folder
		}
	}
	moves := pairMoves(gone, added)

	var batch change.Batch
	err = d.db.Update(func(txn *badger.Txn) error {
		for _, m := range moves {
			for p, rec := range gone {
				if !isUnder(p, m.from) {
					continue
				}
				if err := txn.Delete(pathKey(p)); err != nil {
					return err
				}
				rec.Path = rebase(p, m.from, m.to)
				if err := putRecord(txn, rec); err != nil {
					return err
				}
				d.cache.Remove(rec.ID)
				delete(gone, p)
				delete(added, rec.Path)
				batch.MovedFrom = append(batch.MovedFrom, p)
				batch.MovedTo = append(batch.MovedTo, rec.Path)
			}
		}
		for p, rec := range gone {
			if err := deleteRecord(txn, rec); err != nil {
				return err
			}
			d.cache.Remove(rec.ID)
			batch.Deleted = append(batch.Deleted, p)
		}
		for p, folder := range added {
			if err := putRecord(txn, newRecord(p, folder)); err != nil {
				return err
			}
			batch.Created = append(batch.Created, p)
		}
		return nil
	})
	if err != nil {
		return change.Batch{}, fmt.Errorf("refreshing index: %w", err)
	}

	batch = batch.Normalized()
	d.logger.Debug("index refreshed",
		zap.Int("created", len(batch.Created)),
		zap.Int("deleted", len(batch.Deleted)),
		zap.Int("moved", len(batch.MovedTo)),
	)
	return batch, nil
}

type move struct {
	from, to string
}

// pairMoves matches the topmost vanished folders with the topmost new
// folders holding the same relative tree. Trees that match more than one
// candidate stay a deletion plus a creation.
func pairMoves(gone map[string]Record, added map[string]bool) []move {
	goneKinds := make(map[string]bool, len(gone))
	for p, rec := range gone {
		goneKinds[p] = rec.Folder
	}

	from := treeRoots(goneKinds)
	to := treeRoots(added)

	var moves []move
	for shape, roots := range from {
		targets := to[shape]
		if len(roots) != 1 || len(targets) != 1 {
			continue
		}
		moves = append(moves, move{from: roots[0], to: targets[0]})
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].from < moves[j].from })
	return moves
}

// treeRoots groups the folders of paths that have no parent in paths by the
// shape of the tree below them.
func treeRoots(paths map[string]bool) map[string][]string {
	roots := make(map[string][]string)
	for p, folder := range paths {
		if !folder {
			continue
		}
		if _, ok := paths[path.Dir(p)]; ok {
			continue
		}
		shape := treeShape(p, paths)
		roots[shape] = append(roots[shape], p)
	}
	return roots
}

func treeShape(root string, paths map[string]bool) string {
	var entries []string
	for p, folder := range paths {
		if isUnder(p, root) {
			entries = append(entries, fmt.Sprintf("%s:%t", strings.TrimPrefix(p, root), folder))
		}
	}
	sort.Strings(entries)
	return strings.Join(entries, "\n")
}

// Import indexes p and, for a directory, everything below it. Paths that are
// already indexed keep their identifiers. It returns the newly added paths.
func (d *DB) Import(ctx context.Context, p string) ([]string, error) {
	onDisk, err := d.walk(ctx, p)
	if err != nil {
		return nil, err
	}

	var created []string
	err = d.db.Update(func(txn *badger.Txn) error {
		for ap, folder := range onDisk {
			if _, err := txn.Get(pathKey(ap)); err == nil {
				continue
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if err := putRecord(txn, newRecord(ap, folder)); err != nil {
				return err
			}
			created = append(created, ap)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", p, err)
	}
	sort.Strings(created)
	return created, nil
}

// Forget drops p and everything below it. It returns the removed paths.
func (d *DB) Forget(p string) ([]string, error) {
	indexed, err := d.snapshot(p)
	if err != nil {
		return nil, err
	}

	var deleted []string
	err = d.db.Update(func(txn *badger.Txn) error {
		for ap, rec := range indexed {
			if err := deleteRecord(txn, rec); err != nil {
				return err
			}
			d.cache.Remove(rec.ID)
			deleted = append(deleted, ap)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("forgetting %s: %w", p, err)
	}
	sort.Strings(deleted)
	return deleted, nil
}

// Move re-homes from and everything below it at to, keeping identifiers.
// Anything previously indexed under to is replaced.
func (d *DB) Move(from, to string) (movedFrom, movedTo []string, err error) {
	if from == to {
		return nil, nil, nil
	}

	moving, err := d.snapshot(from)
	if err != nil {
		return nil, nil, err
	}
	if len(moving) == 0 {
		return nil, nil, fmt.Errorf("moving %s: %w", from, ErrNotFound)
	}
	replaced, err := d.snapshot(to)
	if err != nil {
		return nil, nil, err
	}

	err = d.db.Update(func(txn *badger.Txn) error {
		for _, rec := range replaced {
			if err := deleteRecord(txn, rec); err != nil {
				return err
			}
			d.cache.Remove(rec.ID)
		}
		for ap, rec := range moving {
			if err := txn.Delete(pathKey(ap)); err != nil {
				return err
			}
			rec.Path = rebase(ap, from, to)
			if err := putRecord(txn, rec); err != nil {
				return err
			}
			d.cache.Remove(rec.ID)
			movedFrom = append(movedFrom, ap)
			movedTo = append(movedTo, rec.Path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("moving %s to %s: %w", from, to, err)
	}

	sort.Strings(movedFrom)
	sort.Strings(movedTo)
	return movedFrom, movedTo, nil
}

// snapshot loads the records for p and everything below it.
func (d *DB) snapshot(p string) (map[string]Record, error) {
	records := make(map[string]Record)
	err := d.db.View(func(txn *badger.Txn) error {
		if item, err := txn.Get(pathKey(p)); err == nil {
			var rec Record
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return err
			}
			records[p] = rec
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		prefix := pathKey(p + "/")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			records[rec.Path] = rec
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading records under %s: %w", p, err)
	}
	return records, nil
}

// walk lists p and everything below it on disk as asset paths mapped to
// whether they are directories. A missing p yields an empty result.
func (d *DB) walk(ctx context.Context, p string) (map[string]bool, error) {
	found := make(map[string]bool)
	abs := filepath.Join(d.root, filepath.FromSlash(p))

	err := filepath.WalkDir(abs, func(fp string, entry fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && fp == abs {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(d.root, fp)
		if err != nil {
			return fmt.Errorf("getting relative path: %w", err)
		}
		found[filepath.ToSlash(rel)] = entry.IsDir()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", abs, err)
	}
	return found, nil
}

func deleteRecord(txn *badger.Txn, rec Record) error {
	if err := txn.Delete(pathKey(rec.Path)); err != nil {
		return err
	}
	return txn.Delete(idKey(rec.ID))
}
