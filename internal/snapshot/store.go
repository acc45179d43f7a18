// internal/snapshot/store.go
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"assetgraph/internal/node"
	"assetgraph/internal/target"

	"github.com/dgraph-io/badger/v4"
)

var ErrNoSnapshot = errors.New("no snapshot recorded")

// Snapshot is the output a node last published for one target.
type Snapshot struct {
	NodeID    string        `json:"node_id"`
	Target    target.Target `json:"target"`
	Groups    node.Groups   `json:"groups"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store keeps the last published output of every (node, target). Snapshots
// are replaced wholesale, never merged.
type Store struct {
	db    *badger.DB
	codec *codec
}

func NewStore(db *badger.DB, opts CodecOptions) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	c, err := newCodec(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, codec: c}, nil
}

func key(nodeID string, t target.Target) []byte {
	return []byte(fmt.Sprintf("snapshot:%s:%s", nodeID, t))
}

func nodePrefix(nodeID string) []byte {
	return []byte(fmt.Sprintf("snapshot:%s:", nodeID))
}

// Save replaces the snapshot for (nodeID, t).
func (s *Store) Save(nodeID string, t target.Target, groups node.Groups) error {
	if groups == nil {
		groups = node.Groups{}
	}
	data, err := json.Marshal(Snapshot{
		NodeID:    nodeID,
		Target:    t,
		Groups:    groups,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	payload := s.codec.encode(data)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(nodeID, t), payload)
	})
}

// Get returns the snapshot for (nodeID, t) or ErrNoSnapshot.
func (s *Store) Get(nodeID string, t target.Target) (*Snapshot, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(nodeID, t))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	data, err := s.codec.decode(raw)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	if snap.Groups == nil {
		snap.Groups = node.Groups{}
	}
	return &snap, nil
}

// FindAssetGroup returns the groups published for (nodeID, t), or nil when
// nothing was published yet.
func (s *Store) FindAssetGroup(nodeID string, t target.Target) (node.Groups, error) {
	snap, err := s.Get(nodeID, t)
	if errors.Is(err, ErrNoSnapshot) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.Groups, nil
}

// DeleteNode drops every snapshot of nodeID.
func (s *Store) DeleteNode(nodeID string) error {
	prefix := nodePrefix(nodeID)
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		var keys [][]byte
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
