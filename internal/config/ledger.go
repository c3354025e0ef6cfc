package config

import (
	"errors"
	"sort"
)

const MainnetEndpoint = "https://fullnode.mainnet.aptoslabs.com/v1"

// LedgerConfig selects where transactions and registries come from. A
// StorePath switches every chain in StoreChains to the local mirror;
// otherwise Endpoints maps chain ids to fullnode REST endpoints.
type LedgerConfig struct {
	StorePath      string            `yaml:"store_path"`
	StoreChains    []string          `yaml:"store_chains"`
	Endpoints      map[string]string `yaml:"endpoints"`
	ReplayEndpoint string            `yaml:"replay_endpoint"`
	Retries        int               `yaml:"retries"`
}

func defaultLedger() LedgerConfig {
	return LedgerConfig{
		StoreChains: []string{"1"},
		Endpoints:   map[string]string{"1": MainnetEndpoint},
		Retries:     2,
	}
}

func loadLedger(base LedgerConfig) LedgerConfig {
	return LedgerConfig{
		StorePath:      getenv("LEDGER_STORE_PATH", base.StorePath),
		StoreChains:    listEnv("LEDGER_STORE_CHAINS", base.StoreChains),
		Endpoints:      mapEnv("LEDGER_ENDPOINTS", base.Endpoints),
		ReplayEndpoint: getenv("REPLAY_ENDPOINT", base.ReplayEndpoint),
		Retries:        intEnv("LEDGER_RETRIES", base.Retries),
	}
}

func (l LedgerConfig) UseStore() bool { return l.StorePath != "" }

// Chains lists the chain ids served, sorted.
func (l LedgerConfig) Chains() []string {
	var out []string
	if l.UseStore() {
		out = append(out, l.StoreChains...)
	} else {
		for id := range l.Endpoints {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (l LedgerConfig) validate() error {
	if l.UseStore() {
		if len(l.StoreChains) == 0 {
			return errors.New("config: ledger store needs at least one chain id")
		}
	} else if len(l.Endpoints) == 0 {
		return errors.New("config: neither a ledger store path nor ledger endpoints are configured")
	}
	if l.ReplayEndpoint == "" {
		return errors.New("config: replay endpoint is not configured")
	}
	return nil
}
