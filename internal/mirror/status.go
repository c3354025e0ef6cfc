package mirror

import (
	"context"
	"time"

	"github.com/sentioxyz/aptos-core/internal/store"
)

type Reader struct {
	repo *store.Repository
}

func NewReader(repo *store.Repository) *Reader {
	return &Reader{repo: repo}
}

// Status describes how far the local store has mirrored a chain.
type Status struct {
	ChainID       string     `json:"chain_id"`
	Empty         bool       `json:"empty"`
	LatestVersion uint64     `json:"latest_version"`
	NextVersion   uint64     `json:"next_version"`
	LastHash      string     `json:"last_hash,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func (r *Reader) Status(ctx context.Context, chainID string) (*Status, error) {
	latest, ok, err := r.repo.MaxVersion(ctx, chainID)
	if err != nil {
		return nil, err
	}
	cursor, err := r.repo.GetSyncCursor(ctx, chainID)
	if err != nil {
		return nil, err
	}
	st := &Status{ChainID: chainID, Empty: !ok, LatestVersion: latest}
	if ok {
		st.NextVersion = latest + 1
	}
	if cursor != nil {
		st.NextVersion = cursor.NextVersion
		st.LastHash = cursor.LastHash
		if !cursor.UpdatedAt.IsZero() {
			t := cursor.UpdatedAt
			st.UpdatedAt = &t
		}
	}
	return st, nil
}
