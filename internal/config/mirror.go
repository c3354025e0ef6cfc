package config

import (
	"errors"
	"time"
)

// MirrorConfig drives copying a chain from a fullnode into the local store.
type MirrorConfig struct {
	ChainID      string        `yaml:"chain_id"`
	StartVersion uint64        `yaml:"start_version"`
	BatchSize    int           `yaml:"batch_size"`
	FetchWorkers int           `yaml:"fetch_workers"`
	WriteWorkers int           `yaml:"write_workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Registries   bool          `yaml:"registries"`
}

func defaultMirror() MirrorConfig {
	return MirrorConfig{
		ChainID:      "1",
		BatchSize:    100,
		FetchWorkers: 4,
		WriteWorkers: 1,
		PollInterval: 5 * time.Second,
		Registries:   true,
	}
}

func loadMirror(base MirrorConfig) MirrorConfig {
	return MirrorConfig{
		ChainID:      getenv("MIRROR_CHAIN_ID", base.ChainID),
		StartVersion: u64env("MIRROR_START_VERSION", base.StartVersion),
		BatchSize:    intEnv("MIRROR_BATCH_SIZE", base.BatchSize),
		FetchWorkers: intEnv("MIRROR_FETCH_WORKERS", base.FetchWorkers),
		WriteWorkers: intEnv("MIRROR_WRITE_WORKERS", base.WriteWorkers),
		PollInterval: durationEnvSeconds("MIRROR_POLL_INTERVAL", base.PollInterval),
		Registries:   boolenv("MIRROR_REGISTRIES", base.Registries),
	}
}

// ValidateMirror checks the settings the mirror command needs.
func (c Config) ValidateMirror() error {
	if c.Ledger.StorePath == "" {
		return errors.New("config: mirror needs a ledger store path")
	}
	if c.Ledger.Endpoints[c.Mirror.ChainID] == "" {
		return errors.New("config: no ledger endpoint for the mirrored chain " + c.Mirror.ChainID)
	}
	return nil
}
