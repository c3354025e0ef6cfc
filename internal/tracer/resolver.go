package tracer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ledgerwatch/log/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/metadata"
	"github.com/sentioxyz/aptos-core/internal/metrics"
	"github.com/sentioxyz/aptos-core/internal/sourcemap"
)

// Location is a source span in one module, zero-based lines and columns.
type Location struct {
	Account string                `json:"account"`
	Module  string                `json:"module"`
	Lines   sourcemap.LineColSpan `json:"lines"`
}

type ResolvedFrame struct {
	Frame    *calltrace.Frame
	Location *Location
	Children []*ResolvedFrame
}

type ResolverOptions struct {
	ChainID string
	// Parallel > 1 resolves sibling subtrees concurrently, at most Parallel at a time per level.
	Parallel int
	Logger   log.Logger
}

// Resolver attributes frames of one trace to source locations. It caches
// decoded modules for its own lifetime, so build one per pass.
type Resolver struct {
	provider metadata.Provider
	opts     ResolverOptions
	logger   log.Logger

	group   singleflight.Group
	mu      sync.Mutex
	modules map[string]*moduleEntry
}

type moduleEntry struct {
	table *sourcemap.Table
	lines *sourcemap.LineIndex
	err   error
}

var errNoSource = errors.New("no source metadata")

func NewResolver(provider metadata.Provider, opts ResolverOptions) *Resolver {
	if opts.Logger == nil {
		opts.Logger = log.Root()
	}
	return &Resolver{
		provider: provider,
		opts:     opts,
		logger:   opts.Logger,
		modules:  make(map[string]*moduleEntry),
	}
}

// Resolve returns the resolved tree under root. Missing or broken metadata only
// leaves locations unset; the only error is cancellation of ctx, in which case
// no tree is returned.
func (r *Resolver) Resolve(ctx context.Context, root *calltrace.Frame) (*ResolvedFrame, error) {
	if root == nil {
		return nil, nil
	}
	out, err := r.resolve(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) resolve(ctx context.Context, f *calltrace.Frame) (*ResolvedFrame, error) {
	loc, err := r.locate(ctx, f)
	if err != nil {
		return nil, err
	}
	node := &ResolvedFrame{Frame: f, Location: loc, Children: make([]*ResolvedFrame, len(f.Children))}

	if r.opts.Parallel > 1 && len(f.Children) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Parallel)
		for i, child := range f.Children {
			i, child := i, child
			g.Go(func() error {
				c, err := r.resolve(gctx, child)
				if err != nil {
					return err
				}
				node.Children[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return node, nil
	}

	for i, child := range f.Children {
		c, err := r.resolve(ctx, child)
		if err != nil {
			return nil, err
		}
		node.Children[i] = c
	}
	return node, nil
}

// attribution returns the module whose source the frame points into: the
// calling module, or the callee for a frame without a caller.
func attribution(f *calltrace.Frame) string {
	if f.CallerModule != "" {
		return f.CallerModule
	}
	return f.Module
}

func (r *Resolver) locate(ctx context.Context, f *calltrace.Frame) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	moduleID := attribution(f)
	account, name := calltrace.SplitModuleID(moduleID)
	if account == "" || name == "" {
		r.unresolved(f, moduleID, fmt.Errorf("invalid module id %q", moduleID))
		return nil, nil
	}
	account, err := ledger.NormalizeAddress(account)
	if err != nil {
		r.unresolved(f, moduleID, err)
		return nil, nil
	}

	entry, err := r.module(ctx, account, name)
	if err != nil {
		return nil, err
	}
	if entry.err != nil {
		r.unresolved(f, moduleID, entry.err)
		return nil, nil
	}
	span, err := entry.table.Locate(f.FunctionIndex, f.PC)
	if err != nil {
		r.unresolved(f, moduleID, err)
		return nil, nil
	}
	lines, err := entry.lines.Span(span)
	if err != nil {
		r.unresolved(f, moduleID, err)
		return nil, nil
	}
	metrics.ResolvedFrames.WithLabelValues("resolved").Inc()
	return &Location{Account: account, Module: name, Lines: lines}, nil
}

func (r *Resolver) unresolved(f *calltrace.Frame, moduleID string, cause error) {
	metrics.ResolvedFrames.WithLabelValues("unresolved").Inc()
	if errors.Is(cause, errNoSource) {
		r.logger.Debug("frame without source", "module", moduleID, "fdef", f.FunctionIndex, "pc", f.PC)
		return
	}
	r.logger.Warn("source attribution failed", "module", moduleID, "fdef", f.FunctionIndex, "pc", f.PC, "err", cause)
}

// module loads and decodes a module once per resolver. Failures are cached as
// entries; only cancellation is returned as an error.
func (r *Resolver) module(ctx context.Context, account, name string) (*moduleEntry, error) {
	key := account + "::" + name
	r.mu.Lock()
	entry, ok := r.modules[key]
	r.mu.Unlock()
	if ok {
		return entry, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.Lock()
		if entry, ok := r.modules[key]; ok {
			r.mu.Unlock()
			return entry, nil
		}
		r.mu.Unlock()

		bundle, err := r.provider.Fetch(ctx, metadata.Request{Account: account, Module: name, ChainID: r.opts.ChainID})
		if err != nil {
			return nil, err
		}
		entry := load(bundle)
		r.mu.Lock()
		r.modules[key] = entry
		r.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*moduleEntry), nil
}

func load(b *metadata.Bundle) *moduleEntry {
	if !b.Resolvable() {
		return &moduleEntry{err: errNoSource}
	}
	raw, err := sourcemap.Prepare(b.SourceMap, b.Origin)
	if err != nil {
		return &moduleEntry{err: err}
	}
	table, err := sourcemap.Decode(raw)
	if err != nil {
		return &moduleEntry{err: err}
	}
	src, err := sourcemap.PrepareSource(b.Source, b.Origin)
	if err != nil {
		return &moduleEntry{err: err}
	}
	return &moduleEntry{table: table, lines: sourcemap.NewLineIndex(src)}
}
