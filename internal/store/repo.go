package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *DB) *Repository { return &Repository{db: db.DB} }

func (r *Repository) UpsertTransactions(ctx context.Context, txs []Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	for i := range txs {
		txs[i].Hash = normalizeHash(txs[i].Hash)
		txs[i].Sender = normalizeHash(txs[i].Sender)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chain_id"}, {Name: "version"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hash", "type", "sender", "sequence_number", "max_gas_amount",
			"gas_used", "success", "vm_status", "payload", "timestamp", "updated_at",
		}),
	}).Create(&txs).Error
}

func (r *Repository) GetTransactionByHash(ctx context.Context, chainID, hash string) (*Transaction, error) {
	var tx Transaction
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND hash = ?", chainID, normalizeHash(hash)).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// ListTransactions returns up to limit transactions with version >= start, in version order.
func (r *Repository) ListTransactions(ctx context.Context, chainID string, start uint64, limit int) ([]Transaction, error) {
	var txs []Transaction
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND version >= ?", chainID, start).
		Order("version asc").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

func (r *Repository) PutStateValue(ctx context.Context, v *StateValue) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}, {Name: "state_key"}, {Name: "version"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(v).Error
}

func (r *Repository) GetStateValue(ctx context.Context, chainID, key string, version uint64) (*StateValue, error) {
	var v StateValue
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND state_key = ? AND version <= ?", chainID, key, version).
		Order("version desc").
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *Repository) GetSyncCursor(ctx context.Context, chainID string) (*SyncCursor, error) {
	var cursor SyncCursor
	err := r.db.WithContext(ctx).Where("chain_id = ?", chainID).First(&cursor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cursor, nil
}

func (r *Repository) UpsertSyncCursor(ctx context.Context, cursor *SyncCursor) error {
	cursor.LastHash = normalizeHash(cursor.LastHash)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chain_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"next_version": cursor.NextVersion,
			"last_hash":    cursor.LastHash,
			"updated_at":   gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(cursor).Error
}

// MaxVersion reports the highest mirrored version for chainID, false when empty.
func (r *Repository) MaxVersion(ctx context.Context, chainID string) (uint64, bool, error) {
	var tx Transaction
	err := r.db.WithContext(ctx).
		Where("chain_id = ?", chainID).
		Order("version desc").
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return tx.Version, true, nil
}
