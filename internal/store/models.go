package store

import "time"

// Transaction is a committed transaction mirrored from a fullnode.
// Payload holds the JSON entry-function payload, empty for other kinds.
type Transaction struct {
	ID             uint   `gorm:"primaryKey"`
	ChainID        string `gorm:"size:32;uniqueIndex:idx_tx_version;uniqueIndex:idx_tx_hash;not null"`
	Version        uint64 `gorm:"uniqueIndex:idx_tx_version"`
	Hash           string `gorm:"size:66;uniqueIndex:idx_tx_hash;not null"`
	Type           string `gorm:"size:64"`
	Sender         string `gorm:"size:66;index"`
	SequenceNumber uint64
	MaxGasAmount   uint64
	GasUsed        uint64
	Success        bool
	VMStatus       string `gorm:"size:255"`
	Payload        []byte
	Timestamp      uint64
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// StateValue is one state slot as written at ledger Version. Reads take the
// newest row at or below the requested version.
type StateValue struct {
	ID        uint   `gorm:"primaryKey"`
	ChainID   string `gorm:"size:32;uniqueIndex:idx_state;not null"`
	StateKey  string `gorm:"size:512;uniqueIndex:idx_state;not null"`
	Version   uint64 `gorm:"uniqueIndex:idx_state"`
	Value     []byte
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// SyncCursor records the next version the mirror will fetch for a chain.
type SyncCursor struct {
	ID          uint   `gorm:"primaryKey"`
	ChainID     string `gorm:"size:32;uniqueIndex;not null"`
	NextVersion uint64
	LastHash    string    `gorm:"size:66"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
