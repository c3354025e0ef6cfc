package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, AutoMigrate(db))
	return NewRepository(db)
}

func TestTransactionsUpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	txs := []Transaction{
		{ChainID: "1", Version: 10, Hash: "0xAA", Type: "user_transaction", Sender: "0x1"},
		{ChainID: "1", Version: 11, Hash: "bb", Type: "block_metadata_transaction"},
		{ChainID: "2", Version: 10, Hash: "0xaa", Type: "user_transaction"},
	}
	require.NoError(t, repo.UpsertTransactions(ctx, txs))

	got, err := repo.GetTransactionByHash(ctx, "1", "0xaa")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, uint64(10), got.Version)
	require.Equal(t, "0xaa", got.Hash)

	got, err = repo.GetTransactionByHash(ctx, "1", "BB")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, uint64(11), got.Version)

	got, err = repo.GetTransactionByHash(ctx, "1", "0xcc")
	require.NoError(t, err)
	require.Nil(t, got)

	// re-mirroring a version replaces the row
	require.NoError(t, repo.UpsertTransactions(ctx, []Transaction{
		{ChainID: "1", Version: 10, Hash: "0xaa", Type: "user_transaction", Success: true},
	}))
	got, err = repo.GetTransactionByHash(ctx, "1", "0xaa")
	require.NoError(t, err)
	require.True(t, got.Success)

	list, err := repo.ListTransactions(ctx, "1", 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, uint64(10), list[0].Version)
	require.Equal(t, uint64(11), list[1].Version)

	top, ok, err := repo.MaxVersion(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(11), top)

	_, ok, err = repo.MaxVersion(ctx, "9")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStateValueAndCursor(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	require.NoError(t, repo.PutStateValue(ctx, &StateValue{ChainID: "1", StateKey: "k", Version: 3, Value: []byte("a")}))
	require.NoError(t, repo.PutStateValue(ctx, &StateValue{ChainID: "1", StateKey: "k", Version: 9, Value: []byte("b")}))
	v, err := repo.GetStateValue(ctx, "1", "k", 8)
	require.NoError(t, err)
	require.Equal(t, []byte("a"), v.Value)
	v, err = repo.GetStateValue(ctx, "1", "k", 100)
	require.NoError(t, err)
	require.Equal(t, []byte("b"), v.Value)
	v, err = repo.GetStateValue(ctx, "1", "k", 2)
	require.NoError(t, err)
	require.Nil(t, v)
	v, err = repo.GetStateValue(ctx, "2", "k", 100)
	require.NoError(t, err)
	require.Nil(t, v)

	// rewriting a slot at the same version replaces it
	require.NoError(t, repo.PutStateValue(ctx, &StateValue{ChainID: "1", StateKey: "k", Version: 9, Value: []byte("c")}))
	v, err = repo.GetStateValue(ctx, "1", "k", 9)
	require.NoError(t, err)
	require.Equal(t, []byte("c"), v.Value)

	c, err := repo.GetSyncCursor(ctx, "1")
	require.NoError(t, err)
	require.Nil(t, c)

	require.NoError(t, repo.UpsertSyncCursor(ctx, &SyncCursor{ChainID: "1", NextVersion: 100, LastHash: "AB"}))
	require.NoError(t, repo.UpsertSyncCursor(ctx, &SyncCursor{ChainID: "1", NextVersion: 200}))
	c, err = repo.GetSyncCursor(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, uint64(200), c.NextVersion)
}
