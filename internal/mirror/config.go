package mirror

import "time"

type Config struct {
	ChainID      string
	StartVersion uint64
	// StopVersion ends the run once every version below it is stored. Zero
	// follows the chain head until the context is cancelled.
	StopVersion  uint64
	BatchSize    int
	FetchWorkers int
	WriteWorkers int
	PollInterval time.Duration
	RetryDelay   time.Duration
	Registries   bool
}

func (c Config) batchSize() int {
	if c.BatchSize <= 0 {
		return 100
	}
	return c.BatchSize
}

func (c Config) fetchWorkerCount() int {
	if c.FetchWorkers <= 0 {
		return 4
	}
	return c.FetchWorkers
}

func (c Config) writeWorkerCount() int {
	if c.WriteWorkers <= 0 {
		return 1
	}
	return c.WriteWorkers
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return 5 * time.Second
	}
	return c.PollInterval
}

func (c Config) retryDelay() time.Duration {
	if c.RetryDelay <= 0 {
		return 2 * time.Second
	}
	return c.RetryDelay
}
