package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("ledger: transaction not found")
	ErrPending  = errors.New("ledger: transaction pending")
)

// Source is the read side of a chain's committed ledger.
type Source interface {
	// TransactionByHash returns ErrNotFound for unknown hashes and
	// ErrPending for transactions not yet committed.
	TransactionByHash(ctx context.Context, hash string) (*Transaction, error)
	// PackageRegistry returns the registry of account as of version, nil
	// when the account publishes no packages.
	PackageRegistry(ctx context.Context, account string, version uint64) (*PackageRegistry, error)
	// Transactions lists up to limit committed transactions starting at version start.
	Transactions(ctx context.Context, start uint64, limit int) ([]*Transaction, error)
}

// StateReader exposes state slots as of a version. A nil value means the slot
// is empty at that version.
type StateReader interface {
	StateValue(ctx context.Context, key string, version uint64) ([]byte, error)
}

// ResourceKey names the state slot holding resource under account.
func ResourceKey(account, resource string) string {
	return account + "/" + resource
}

// ReadRegistry decodes the package registry of account from state.
func ReadRegistry(ctx context.Context, r StateReader, account string, version uint64) (*PackageRegistry, error) {
	raw, err := r.StateValue(ctx, ResourceKey(account, registryResource), version)
	if err != nil || raw == nil {
		return nil, err
	}
	var reg PackageRegistry
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("ledger: registry %s@%d: %w", account, version, err)
	}
	return &reg, nil
}
