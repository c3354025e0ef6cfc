package tracer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ledgerwatch/log/v3"
	"golang.org/x/sync/errgroup"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/metadata"
	"github.com/sentioxyz/aptos-core/internal/replay"
)

type Options struct {
	// FetchTimeout bounds each ledger read.
	FetchTimeout time.Duration
	// Parallel bounds concurrent registry reads and sibling resolution.
	Parallel int
	Logger   log.Logger
}

func (o Options) parallel() int {
	if o.Parallel <= 0 {
		return 1
	}
	return o.Parallel
}

type TraceResult struct {
	ChainID    string               `json:"chain_id"`
	Hash       string               `json:"hash"`
	Version    uint64               `json:"version"`
	Sender     string               `json:"sender,omitempty"`
	Trace      *CallTraceWithSource `json:"trace"`
	GasSummary []ModuleGas          `json:"gas_summary"`
}

// Tracer produces source attributed call traces for one chain.
type Tracer struct {
	chainID  string
	source   ledger.Source
	executor replay.Executor
	meta     metadata.Source
	opts     Options
	logger   log.Logger
}

func New(chainID string, source ledger.Source, executor replay.Executor, meta metadata.Source, opts Options) *Tracer {
	if opts.Logger == nil {
		opts.Logger = log.Root()
	}
	return &Tracer{
		chainID:  chainID,
		source:   source,
		executor: executor,
		meta:     meta,
		opts:     opts,
		logger:   opts.Logger.New("chain", chainID),
	}
}

func (t *Tracer) ChainID() string { return t.chainID }

func (t *Tracer) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.opts.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.opts.FetchTimeout)
}

// TraceTransaction replays the transaction with the given hash and resolves
// the source location of every frame. Transactions other than entry function
// calls yield an empty trace. If ctx ends before the pass finishes no partial
// result is returned.
func (t *Tracer) TraceTransaction(ctx context.Context, hash string) (*TraceResult, error) {
	hash, err := ParseHash(hash)
	if err != nil {
		return nil, err
	}

	fctx, cancel := t.fetchContext(ctx)
	tx, err := t.source.TransactionByHash(fctx, hash)
	cancel()
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, ledger.ErrPending) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("tracer: load transaction %s: %w", hash, err)
	}

	res := &TraceResult{
		ChainID: t.chainID,
		Hash:    hash,
		Version: tx.Version,
		Sender:  tx.Sender,
	}
	if !tx.IsEntryFunction() {
		empty := EmptyTrace()
		res.Trace = &empty
		return res, nil
	}

	stack, err := t.replay(ctx, tx)
	if err != nil {
		return nil, err
	}
	root, ok := stack.Root()
	if !ok {
		empty := EmptyTrace()
		res.Trace = &empty
		return res, nil
	}

	registries, err := t.registries(ctx, stack.Accounts(), tx.Version)
	if err != nil {
		return nil, err
	}

	provider := t.meta.ForPass(ctx, metadata.Pass{ChainID: t.chainID, Registries: registries})
	resolver := NewResolver(provider, ResolverOptions{
		ChainID:  t.chainID,
		Parallel: t.opts.Parallel,
		Logger:   t.logger,
	})
	resolved, err := resolver.Resolve(ctx, root)
	if err != nil {
		return nil, err
	}

	trace := Project(resolved)
	res.Trace = &trace
	res.GasSummary = SummarizeGas(root)
	t.logger.Debug("traced transaction", "hash", hash, "version", tx.Version, "accounts", len(registries))
	return res, nil
}

func (t *Tracer) replay(ctx context.Context, tx *ledger.Transaction) (*calltrace.Stack, error) {
	call := replay.Call{
		Function:  tx.Payload.Function,
		TypeArgs:  tx.Payload.TypeArguments,
		Args:      tx.Payload.Arguments,
		Senders:   []string{tx.Sender},
		GasBudget: tx.MaxGasAmount,
	}
	view := replay.StateView{ChainID: t.chainID, Version: tx.Version}

	stack, err := t.executor.ReplayAndTrace(ctx, view, call)
	if err == nil {
		return stack, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var vmErr *calltrace.VMError
	if !errors.As(err, &vmErr) {
		return nil, fmt.Errorf("tracer: replay %s: %w", tx.Hash, err)
	}

	// the VM failed before recording a frame; report it on the entry function
	root := calltrace.NewFrame("", tx.Payload.ModuleID(), tx.Payload.FunctionName(), 0, 0, tx.MaxGasAmount)
	root.TypeArgs = tx.Payload.TypeArguments
	root.Err = vmErr
	stack = calltrace.NewStack()
	if err := stack.Push(root); err != nil {
		return nil, err
	}
	return stack, nil
}

// registries reads the package registry of every touched account. Accounts
// whose registry cannot be read are left out and their frames stay unresolved.
func (t *Tracer) registries(ctx context.Context, accounts []string, version uint64) (map[string]*ledger.PackageRegistry, error) {
	var mu sync.Mutex
	out := make(map[string]*ledger.PackageRegistry, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.parallel())
	for _, account := range accounts {
		account := account
		g.Go(func() error {
			norm, err := ledger.NormalizeAddress(account)
			if err != nil {
				t.logger.Warn("skipping account", "account", account, "err", err)
				return nil
			}
			fctx, cancel := t.fetchContext(gctx)
			reg, err := t.source.PackageRegistry(fctx, norm, version)
			cancel()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				t.logger.Warn("package registry unavailable", "account", norm, "version", version, "err", err)
				return nil
			}
			if reg == nil {
				return nil
			}
			mu.Lock()
			out[norm] = reg
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
