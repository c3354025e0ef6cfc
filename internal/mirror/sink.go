package mirror

import (
	"context"

	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/store"
)

// Sink is where mirrored data lands.
type Sink interface {
	SaveTransactions(ctx context.Context, txs []*ledger.Transaction) error
	SaveRegistry(ctx context.Context, account string, version uint64, reg *ledger.PackageRegistry) error
	Cursor(ctx context.Context) (*store.SyncCursor, error)
	SaveCursor(ctx context.Context, cursor *store.SyncCursor) error
}

type StoreSink struct {
	*ledger.StoreSource
	repo *store.Repository
}

func NewStoreSink(repo *store.Repository, chainID string) *StoreSink {
	return &StoreSink{StoreSource: ledger.NewStoreSource(repo, chainID), repo: repo}
}

func (s *StoreSink) Cursor(ctx context.Context) (*store.SyncCursor, error) {
	return s.repo.GetSyncCursor(ctx, s.ChainID())
}

func (s *StoreSink) SaveCursor(ctx context.Context, cursor *store.SyncCursor) error {
	cursor.ChainID = s.ChainID()
	return s.repo.UpsertSyncCursor(ctx, cursor)
}
