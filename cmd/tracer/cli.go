package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledgerwatch/log/v3"
	"github.com/urfave/cli/v2"

	"github.com/sentioxyz/aptos-core/internal/app"
	"github.com/sentioxyz/aptos-core/internal/config"
	"github.com/sentioxyz/aptos-core/internal/mirror"
)

var (
	chainIDFlag = &cli.StringFlag{
		Name:  "chain-id",
		Usage: "Chain id the transaction belongs to",
		Value: "1",
	}
	replayEndpointFlag = &cli.StringFlag{
		Name:    "replay-endpoint",
		Usage:   "Replay node base URL",
		EnvVars: []string{"REPLAY_ENDPOINT"},
	}
	compileEndpointFlag = &cli.StringFlag{
		Name:    "compile-endpoint",
		Usage:   "Remote compile service; on-chain registries are used when empty",
		EnvVars: []string{"COMPILE_ENDPOINT"},
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "crit, error, warn, info, debug or trace",
		Value: "warn",
	}
	txnHashFlag = &cli.StringFlag{
		Name:     "txn-hash",
		Usage:    "Transaction hash to trace",
		Required: true,
	}
	endpointFlag = &cli.StringFlag{
		Name:  "endpoint",
		Usage: "Fullnode REST endpoint",
		Value: config.MainnetEndpoint,
	}
	pathFlag = &cli.StringFlag{
		Name:     "path",
		Usage:    "Path of the local ledger store",
		Required: true,
	}

	restCmd = &cli.Command{
		Name:   "rest",
		Usage:  "Trace a transaction read from a fullnode REST endpoint",
		Flags:  []cli.Flag{endpointFlag, txnHashFlag},
		Action: traceFromRest,
	}

	dbCmd = &cli.Command{
		Name:   "db",
		Usage:  "Trace a transaction read from the local ledger store",
		Flags:  []cli.Flag{pathFlag, txnHashFlag},
		Action: traceFromStore,
	}

	mirrorCmd = &cli.Command{
		Name:  "mirror",
		Usage: "Copy committed transactions and package registries into the local ledger store",
		Flags: []cli.Flag{
			pathFlag,
			endpointFlag,
			&cli.Uint64Flag{Name: "start", Usage: "First version to copy"},
			&cli.Uint64Flag{Name: "stop", Usage: "Stop before this version; 0 follows the chain"},
			&cli.IntFlag{Name: "batch", Usage: "Transactions per request"},
			&cli.BoolFlag{Name: "registries", Usage: "Also snapshot touched package registries"},
		},
		Action: runMirror,
	}
)

// baseConfig starts from the regular config sources and applies the global flags.
func baseConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	cfg.Log.Level = c.String(logLevelFlag.Name)
	if err := cfg.Log.Setup(); err != nil {
		return cfg, err
	}
	if v := c.String(replayEndpointFlag.Name); v != "" {
		cfg.Ledger.ReplayEndpoint = v
	}
	if v := c.String(compileEndpointFlag.Name); v != "" {
		cfg.Compile.Endpoint = v
	}
	return cfg, nil
}

func traceFromRest(c *cli.Context) error {
	cfg, err := baseConfig(c)
	if err != nil {
		return err
	}
	cfg.Ledger.StorePath = ""
	cfg.Ledger.Endpoints = map[string]string{c.String(chainIDFlag.Name): c.String(endpointFlag.Name)}
	return traceOne(c, cfg)
}

func traceFromStore(c *cli.Context) error {
	cfg, err := baseConfig(c)
	if err != nil {
		return err
	}
	cfg.Ledger.StorePath = c.String(pathFlag.Name)
	cfg.Ledger.StoreChains = []string{c.String(chainIDFlag.Name)}
	return traceOne(c, cfg)
}

func traceOne(c *cli.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a, err := app.New(cfg, log.Root())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Service.Trace(c.Context, c.String(chainIDFlag.Name), c.String(txnHashFlag.Name))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runMirror(c *cli.Context) error {
	cfg, err := baseConfig(c)
	if err != nil {
		return err
	}
	chainID := c.String(chainIDFlag.Name)
	cfg.Ledger.StorePath = c.String(pathFlag.Name)
	cfg.Ledger.Endpoints = map[string]string{chainID: c.String(endpointFlag.Name)}
	cfg.Mirror.ChainID = chainID
	if c.IsSet("start") {
		cfg.Mirror.StartVersion = c.Uint64("start")
	}
	if c.IsSet("batch") {
		cfg.Mirror.BatchSize = c.Int("batch")
	}
	if c.IsSet("registries") {
		cfg.Mirror.Registries = c.Bool("registries")
	}
	if err := cfg.ValidateMirror(); err != nil {
		return err
	}

	db, repo, err := app.OpenStore(cfg.Ledger.StorePath)
	if err != nil {
		return err
	}
	defer db.Close()

	m := mirror.New(mirror.Config{
		ChainID:      chainID,
		StartVersion: cfg.Mirror.StartVersion,
		StopVersion:  c.Uint64("stop"),
		BatchSize:    cfg.Mirror.BatchSize,
		FetchWorkers: cfg.Mirror.FetchWorkers,
		WriteWorkers: cfg.Mirror.WriteWorkers,
		PollInterval: cfg.Mirror.PollInterval,
		Registries:   cfg.Mirror.Registries,
	}, app.RestSource(cfg, cfg.Ledger.Endpoints[chainID], log.Root()), mirror.NewStoreSink(repo, chainID), log.Root())

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
