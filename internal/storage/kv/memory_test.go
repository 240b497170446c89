package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDBReadWrite(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	_, err := db.Read(ctx, []byte("missing"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
	got, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
	got, err = db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, db.Delete(ctx, []byte("k")))
	_, err = db.Read(ctx, []byte("k"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, db.Delete(ctx, []byte("k")))
}

func TestMemoryDBBatch(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	require.NoError(t, db.Write(ctx, []byte("old"), []byte("x")))
	ops := []BatchOperation{
		{Type: BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: BatchDelete, Key: []byte("old")},
	}
	require.NoError(t, db.Batch(ctx, ops))

	got, err := db.Read(ctx, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
	_, err = db.Read(ctx, []byte("old"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryDBForEach(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, []byte("a"), []byte("1")))
	require.NoError(t, db.Write(ctx, []byte("b"), []byte("2")))

	seen := 0
	require.NoError(t, db.ForEach(ctx, func(k, v []byte) bool {
		seen++
		return true
	}))
	assert.Equal(t, 2, seen)

	// Early stop.
	seen = 0
	require.NoError(t, db.ForEach(ctx, func(k, v []byte) bool {
		seen++
		return false
	}))
	assert.Equal(t, 1, seen)
}

func TestMemoryDBClosed(t *testing.T) {
	db := NewMemoryDB()
	require.NoError(t, db.Close())

	_, err := db.Read(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, ErrDBClosed)
	assert.ErrorIs(t, db.Write(context.Background(), []byte("k"), nil), ErrDBClosed)
}
