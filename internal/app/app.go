// Package app wires configuration into ledger sources, executors and tracers.
package app

import (
	"fmt"

	"github.com/ledgerwatch/log/v3"

	"github.com/sentioxyz/aptos-core/internal/config"
	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/metadata"
	"github.com/sentioxyz/aptos-core/internal/replay"
	"github.com/sentioxyz/aptos-core/internal/store"
	"github.com/sentioxyz/aptos-core/internal/tracer"
)

// App holds what the commands share. Close releases the store.
type App struct {
	Service *tracer.Service
	Repo    *store.Repository
	db      *store.DB
}

func OpenStore(path string) (*store.DB, *store.Repository, error) {
	db, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	if err := store.AutoMigrate(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, store.NewRepository(db), nil
}

func MetadataSource(cfg config.CompileConfig, logger log.Logger) metadata.Source {
	if cfg.Remote() {
		return metadata.NewRemoteSource(metadata.RemoteOptions{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout,
			Retries:  cfg.Retries,
			Logger:   logger,
		})
	}
	return metadata.NewRegistrySource()
}

func RestSource(cfg config.Config, endpoint string, logger log.Logger) *ledger.RestSource {
	return ledger.NewRestSource(endpoint, ledger.RestOptions{
		Retries: cfg.Ledger.Retries,
		Timeout: cfg.Trace.FetchTimeout,
		Logger:  logger,
	})
}

func New(cfg config.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Root()
	}
	a := &App{}
	sources := make(map[string]ledger.Source)
	if cfg.Ledger.UseStore() {
		db, repo, err := OpenStore(cfg.Ledger.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open ledger store: %w", err)
		}
		a.db, a.Repo = db, repo
		for _, chainID := range cfg.Ledger.Chains() {
			store := ledger.NewStoreSource(repo, chainID)
			if endpoint := cfg.Ledger.Endpoints[chainID]; endpoint != "" {
				store = store.WithUpstream(RestSource(cfg, endpoint, logger), logger.New("chain", chainID))
			}
			sources[chainID] = store
		}
	} else {
		for _, chainID := range cfg.Ledger.Chains() {
			sources[chainID] = RestSource(cfg, cfg.Ledger.Endpoints[chainID], logger)
		}
	}

	executor := replay.NewNodeExecutor(cfg.Ledger.ReplayEndpoint, replay.NodeOptions{
		Timeout: cfg.Trace.ReplayTimeout,
		Retries: cfg.Ledger.Retries,
		Logger:  logger,
	})
	meta := MetadataSource(cfg.Compile, logger)
	logger.Info("Metadata source selected", "source", meta.Name())

	tracers := make([]*tracer.Tracer, 0, len(sources))
	for _, chainID := range cfg.Ledger.Chains() {
		tracers = append(tracers, tracer.New(chainID, sources[chainID], executor, meta, tracer.Options{
			FetchTimeout: cfg.Trace.FetchTimeout,
			Parallel:     cfg.Trace.Parallel,
			Logger:       logger,
		}))
	}
	a.Service = tracer.NewService(cfg.Trace.RequestTimeout, tracers...)
	return a, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
