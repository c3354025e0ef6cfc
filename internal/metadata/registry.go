package metadata

import (
	"context"

	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/sourcemap"
)

// RegistrySource serves the source and source map embedded in on-chain package registries.
type RegistrySource struct{}

func NewRegistrySource() *RegistrySource { return &RegistrySource{} }

func (*RegistrySource) Name() string { return "registry" }

func (*RegistrySource) ForPass(_ context.Context, pass Pass) Provider {
	return &registryProvider{registries: pass.Registries}
}

type registryProvider struct {
	registries map[string]*ledger.PackageRegistry
}

func (p *registryProvider) Fetch(ctx context.Context, req Request) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, mod := p.registries[req.Account].FindModule(req.Module)
	if mod == nil {
		return nil, nil
	}
	return &Bundle{
		Account:   req.Account,
		Module:    mod.Name,
		Package:   pkg.Name,
		SourceMap: mod.SourceMap,
		Source:    mod.Source,
		Origin:    sourcemap.OriginRegistry,
	}, nil
}
