package snapshot

import (
	"fmt"
	"testing"

	"assetgraph/internal/asset"
	"assetgraph/internal/node"
	"assetgraph/internal/target"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T, opts CodecOptions) *Store {
	t.Helper()

	dbOpts := badger.DefaultOptions("").WithInMemory(true)
	dbOpts.Logger = nil

	db, err := badger.Open(dbOpts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, opts)
	require.NoError(t, err)
	return store
}

func refs(n int) []*asset.Reference {
	out := make([]*asset.Reference, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &asset.Reference{
			ID:         fmt.Sprintf("id-%03d", i),
			ImportFrom: fmt.Sprintf("Assets/Scene/asset-%03d.png", i),
			Kind:       asset.KindTexture,
		})
	}
	return out
}

func TestStore(t *testing.T) {
	store := setupTestStore(t, DefaultCodecOptions())

	t.Run("missing snapshot", func(t *testing.T) {
		_, err := store.Get("node", target.Default)
		assert.ErrorIs(t, err, ErrNoSnapshot)

		groups, err := store.FindAssetGroup("node", target.Default)
		require.NoError(t, err)
		assert.Nil(t, groups)
	})

	t.Run("save replaces wholesale", func(t *testing.T) {
		require.NoError(t, store.Save("node", target.Default, node.Groups{node.DefaultOutput: refs(3)}))
		require.NoError(t, store.Save("node", target.Default, node.Groups{node.DefaultOutput: refs(1)}))

		groups, err := store.FindAssetGroup("node", target.Default)
		require.NoError(t, err)
		assert.Len(t, groups[node.DefaultOutput], 1)
	})

	t.Run("empty output is distinct from no output", func(t *testing.T) {
		require.NoError(t, store.Save("empty", target.Default, nil))

		groups, err := store.FindAssetGroup("empty", target.Default)
		require.NoError(t, err)
		assert.NotNil(t, groups)
		assert.Empty(t, groups[node.DefaultOutput])
	})

	t.Run("targets are independent", func(t *testing.T) {
		require.NoError(t, store.Save("multi", "Android", node.Groups{node.DefaultOutput: refs(2)}))

		groups, err := store.FindAssetGroup("multi", "iOS")
		require.NoError(t, err)
		assert.Nil(t, groups)
	})

	t.Run("delete node", func(t *testing.T) {
		require.NoError(t, store.Save("gone", target.Default, node.Groups{}))
		require.NoError(t, store.Save("gone", "Android", node.Groups{}))
		require.NoError(t, store.DeleteNode("gone"))

		_, err := store.Get("gone", "Android")
		assert.ErrorIs(t, err, ErrNoSnapshot)
	})
}

func TestStore_Compression(t *testing.T) {
	store := setupTestStore(t, CodecOptions{MinSize: 64, Level: 2})
	big := refs(200)

	require.NoError(t, store.Save("big", target.Default, node.Groups{node.DefaultOutput: big}))

	var raw []byte
	require.NoError(t, store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key("big", target.Default))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	}))
	assert.Equal(t, zstdMagic, raw[:4])

	snap, err := store.Get("big", target.Default)
	require.NoError(t, err)
	require.Len(t, snap.Groups[node.DefaultOutput], 200)
	assert.Equal(t, big[199].ID, snap.Groups[node.DefaultOutput][199].ID)
}
