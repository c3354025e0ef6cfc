package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ledgerwatch/log/v3"

	"github.com/sentioxyz/aptos-core/internal/store"
)

// StoreSource serves a chain from the local sqlite mirror. It is also the
// write side used by the mirror. Package registries live in state slots.
type StoreSource struct {
	repo     *store.Repository
	chainID  string
	upstream Source
	logger   log.Logger
}

func NewStoreSource(repo *store.Repository, chainID string) *StoreSource {
	return &StoreSource{repo: repo, chainID: chainID, logger: log.Root()}
}

// WithUpstream sends registry reads that find no slot in the store to up and
// keeps what it returns.
func (s *StoreSource) WithUpstream(up Source, logger log.Logger) *StoreSource {
	s.upstream = up
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *StoreSource) ChainID() string { return s.chainID }

func (s *StoreSource) TransactionByHash(ctx context.Context, hash string) (*Transaction, error) {
	row, err := s.repo.GetTransactionByHash(ctx, s.chainID, hash)
	if err != nil {
		return nil, fmt.Errorf("ledger: store lookup %s: %w", hash, err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return fromStoreTransaction(row)
}

func (s *StoreSource) PackageRegistry(ctx context.Context, account string, version uint64) (*PackageRegistry, error) {
	account, err := NormalizeAddress(account)
	if err != nil {
		return nil, err
	}
	reg, err := ReadRegistry(ctx, s, account, version)
	if err != nil {
		return nil, fmt.Errorf("ledger: store registry %s: %w", account, err)
	}
	if reg != nil || s.upstream == nil {
		return reg, nil
	}

	reg, err = s.upstream.PackageRegistry(ctx, account, version)
	if err != nil || reg == nil {
		return nil, err
	}
	if err := s.SaveRegistry(ctx, account, version, reg); err != nil {
		s.logger.Warn("Failed to keep upstream package registry", "account", account, "version", version, "err", err)
	}
	return reg, nil
}

func (s *StoreSource) Transactions(ctx context.Context, start uint64, limit int) ([]*Transaction, error) {
	rows, err := s.repo.ListTransactions(ctx, s.chainID, start, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*Transaction, 0, len(rows))
	for i := range rows {
		tx, err := fromStoreTransaction(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// StateValue returns nil when key has no value at or before version.
func (s *StoreSource) StateValue(ctx context.Context, key string, version uint64) ([]byte, error) {
	v, err := s.repo.GetStateValue(ctx, s.chainID, key, version)
	if err != nil || v == nil {
		return nil, err
	}
	return v.Value, nil
}

func (s *StoreSource) SaveTransactions(ctx context.Context, txs []*Transaction) error {
	rows := make([]store.Transaction, 0, len(txs))
	for _, tx := range txs {
		row, err := toStoreTransaction(s.chainID, tx)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return s.repo.UpsertTransactions(ctx, rows)
}

func (s *StoreSource) SaveRegistry(ctx context.Context, account string, version uint64, reg *PackageRegistry) error {
	account, err := NormalizeAddress(account)
	if err != nil {
		return err
	}
	data, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	return s.SaveStateValue(ctx, ResourceKey(account, registryResource), version, data)
}

func (s *StoreSource) SaveStateValue(ctx context.Context, key string, version uint64, value []byte) error {
	return s.repo.PutStateValue(ctx, &store.StateValue{
		ChainID:  s.chainID,
		StateKey: key,
		Version:  version,
		Value:    value,
	})
}

func toStoreTransaction(chainID string, tx *Transaction) (store.Transaction, error) {
	row := store.Transaction{
		ChainID:        chainID,
		Version:        tx.Version,
		Hash:           tx.Hash,
		Type:           tx.Type,
		Sender:         tx.Sender,
		SequenceNumber: tx.SequenceNumber,
		MaxGasAmount:   tx.MaxGasAmount,
		GasUsed:        tx.GasUsed,
		Success:        tx.Success,
		VMStatus:       tx.VMStatus,
		Timestamp:      tx.Timestamp,
	}
	if tx.Payload != nil {
		payload, err := json.Marshal(tx.Payload)
		if err != nil {
			return row, fmt.Errorf("ledger: encode payload of %s: %w", tx.Hash, err)
		}
		row.Payload = payload
	}
	return row, nil
}

func fromStoreTransaction(row *store.Transaction) (*Transaction, error) {
	tx := &Transaction{
		Version:        row.Version,
		Hash:           row.Hash,
		Type:           row.Type,
		Sender:         row.Sender,
		SequenceNumber: row.SequenceNumber,
		MaxGasAmount:   row.MaxGasAmount,
		GasUsed:        row.GasUsed,
		Success:        row.Success,
		VMStatus:       row.VMStatus,
		Timestamp:      row.Timestamp,
	}
	if len(row.Payload) > 0 {
		var p EntryFunction
		if err := json.Unmarshal(row.Payload, &p); err != nil {
			return nil, fmt.Errorf("ledger: decode payload of %s: %w", row.Hash, err)
		}
		tx.Payload = &p
	}
	return tx, nil
}
