package pebble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solkeen/marinade-anchor/internal/storage/keyValueDb"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadWriteDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Read(ctx, []byte("missing"))
	require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)

	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
	got, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	require.NoError(t, db.Delete(ctx, []byte("k")))
	_, err = db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
}

func TestBatchAppliesAllOps(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, []byte("old"), []byte("x")))

	ops := []keyValueDb.BatchOperation{
		{Type: keyValueDb.BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: keyValueDb.BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: keyValueDb.BatchDelete, Key: []byte("old")},
	}
	require.NoError(t, db.Batch(ctx, ops))

	got, err := db.Read(ctx, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)
	got, err = db.Read(ctx, []byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)
	_, err = db.Read(ctx, []byte("old"))
	require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
}

func TestClosedDB(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ctx := context.Background()
	_, err = db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, keyValueDb.ErrClosed)
	require.ErrorIs(t, db.Write(ctx, []byte("k"), nil), keyValueDb.ErrClosed)

	// double close is a no-op
	require.NoError(t, db.Close())
}
