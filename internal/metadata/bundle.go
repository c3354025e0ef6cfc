package metadata

import (
	"context"
	"encoding/json"

	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/sourcemap"
)

// Bundle holds the artifacts of one module. SourceMap and Source are kept as
// delivered; Origin tells sourcemap.Prepare how to read them.
type Bundle struct {
	Account   string
	Module    string
	Package   string
	SourceMap []byte
	Source    []byte
	Bytecode  []byte
	ABI       json.RawMessage
	Origin    sourcemap.Origin
}

// Resolvable reports whether the bundle carries both a source map and source text.
func (b *Bundle) Resolvable() bool {
	return b != nil && len(b.SourceMap) > 0 && len(b.Source) > 0
}

type Request struct {
	Account string
	Module  string
	// Package is an optional hint naming the package that holds Module.
	Package string
	ChainID string
}

func (r Request) Key() string { return moduleKey(r.Account, r.Module) }

func moduleKey(account, module string) string { return account + "::" + module }

// Provider fetches module artifacts. A missing module yields nil, nil; errors
// are reserved for a done context.
type Provider interface {
	Fetch(ctx context.Context, req Request) (*Bundle, error)
}

// Pass carries what a provider may use while tracing one transaction.
// Registries is keyed by normalised account address.
type Pass struct {
	ChainID    string
	Registries map[string]*ledger.PackageRegistry
}

// Source is chosen once at startup and hands out a fresh Provider per pass,
// so no fetched metadata outlives the pass that fetched it.
type Source interface {
	Name() string
	ForPass(ctx context.Context, pass Pass) Provider
}
