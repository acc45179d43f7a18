package storage

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (i *item) GetID() string { return i.ID }

func setupTestStore(t *testing.T) *BadgerStore[*item] {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewBadgerStore[*item](db, "items")
}

func TestBadgerStore(t *testing.T) {
	store := setupTestStore(t)

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, store.Create(&item{ID: "a", Name: "first"}))

		got, err := store.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "first", got.Name)
	})

	t.Run("create duplicate", func(t *testing.T) {
		err := store.Create(&item{ID: "a"})
		assert.ErrorIs(t, err, ErrExists)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.Error(t, store.Create(&item{}))
		assert.Error(t, store.Put(&item{}))
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, store.Update(&item{ID: "a", Name: "renamed"}))
		got, err := store.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)

		assert.ErrorIs(t, store.Update(&item{ID: "missing"}), ErrNotFound)
	})

	t.Run("put upserts", func(t *testing.T) {
		require.NoError(t, store.Put(&item{ID: "b", Name: "second"}))
		ok, err := store.Exists("b")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("list in key order", func(t *testing.T) {
		items, err := store.List()
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].ID)
		assert.Equal(t, "b", items[1].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete("a"))
		_, err := store.Get("a")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Delete("a"), ErrNotFound)

		ok, err := store.Exists("a")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
