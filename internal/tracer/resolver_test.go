package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
	"github.com/sentioxyz/aptos-core/internal/metadata"
	"github.com/sentioxyz/aptos-core/internal/sourcemap"
)

type providerFunc func(ctx context.Context, req metadata.Request) (*metadata.Bundle, error)

func (f providerFunc) Fetch(ctx context.Context, req metadata.Request) (*metadata.Bundle, error) {
	return f(ctx, req)
}

func TestResolverAttributesToCaller(t *testing.T) {
	for _, parallel := range []int{0, 4} {
		ctx := context.Background()
		provider := metadata.NewRegistrySource().ForPass(ctx, metadata.Pass{ChainID: "1", Registries: testRegistries(t)})
		r := NewResolver(provider, ResolverOptions{ChainID: "1", Parallel: parallel})

		root, ok := buildStack(t).Root()
		require.True(t, ok)
		got, err := r.Resolve(ctx, root)
		require.NoError(t, err)

		// the entry frame has no caller and points into its own module
		require.Equal(t, &Location{
			Account: "0x7",
			Module:  "app",
			Lines: sourcemap.LineColSpan{
				Start: sourcemap.Position{Line: 1, Column: 4},
				End:   sourcemap.Position{Line: 1, Column: 11},
			},
		}, got.Location)

		require.Len(t, got.Children, 1)
		transfer := got.Children[0]
		require.Equal(t, "transfer", transfer.Frame.Function)
		require.Equal(t, "app", transfer.Location.Module)
		require.Equal(t, sourcemap.Position{Line: 2, Column: 8}, transfer.Location.Lines.Start)
		require.Equal(t, sourcemap.Position{Line: 2, Column: 24}, transfer.Location.Lines.End)
		require.False(t, transfer.Location.Lines.End.Before(transfer.Location.Lines.Start))

		// coin is published without source
		require.Len(t, transfer.Children, 1)
		require.Nil(t, transfer.Children[0].Location)
	}
}

func TestResolverEmptySourceLeavesLocationUnset(t *testing.T) {
	ctx := context.Background()
	provider := providerFunc(func(ctx context.Context, req metadata.Request) (*metadata.Bundle, error) {
		return &metadata.Bundle{Account: req.Account, Module: req.Module, SourceMap: []byte{0xff}, Origin: sourcemap.OriginRaw}, nil
	})
	r := NewResolver(provider, ResolverOptions{})
	got, err := r.Resolve(ctx, calltrace.NewFrame("", "0x1::m", "f", 0, 0, 10))
	require.NoError(t, err)
	require.Nil(t, got.Location)
}

func TestResolverToleratesBrokenMetadata(t *testing.T) {
	ctx := context.Background()
	calls := 0
	provider := providerFunc(func(ctx context.Context, req metadata.Request) (*metadata.Bundle, error) {
		calls++
		return &metadata.Bundle{SourceMap: []byte{1, 2, 3}, Source: []byte("x"), Origin: sourcemap.OriginRegistry}, nil
	})
	root := calltrace.NewFrame("", "0x1::m", "f", 0, 0, 10)
	root.Children = []*calltrace.Frame{
		calltrace.NewFrame("0x1::m", "0x1::n", "g", 0, 1, 5),
		calltrace.NewFrame("0x1::m", "0x1::n", "h", 0, 2, 5),
		calltrace.NewFrame("bogus", "0x1::n", "i", 0, 2, 5),
	}
	r := NewResolver(provider, ResolverOptions{})
	got, err := r.Resolve(ctx, root)
	require.NoError(t, err)
	require.Nil(t, got.Location)
	require.Len(t, got.Children, 3)
	for _, c := range got.Children {
		require.Nil(t, c.Location)
	}
	// one fetch per module per pass
	require.Equal(t, 1, calls)
}

func TestResolverPreservesChildOrder(t *testing.T) {
	ctx := context.Background()
	provider := providerFunc(func(ctx context.Context, req metadata.Request) (*metadata.Bundle, error) {
		return nil, nil
	})
	root := calltrace.NewFrame("", "0x1::m", "f", 0, 0, 0)
	for i := 0; i < 50; i++ {
		child := calltrace.NewFrame("0x1::m", "0x1::n", "g", uint16(i), uint16(i), 0)
		child.Children = []*calltrace.Frame{calltrace.NewFrame("0x1::n", "0x1::o", "h", 0, 0, 0)}
		root.Children = append(root.Children, child)
	}
	got, err := NewResolver(provider, ResolverOptions{Parallel: 8}).Resolve(ctx, root)
	require.NoError(t, err)
	require.Len(t, got.Children, 50)
	for i, c := range got.Children {
		require.Same(t, root.Children[i], c.Frame)
		require.Len(t, c.Children, 1)
	}
}

func TestResolverCancellationReturnsNoTree(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := providerFunc(func(fctx context.Context, req metadata.Request) (*metadata.Bundle, error) {
		cancel()
		return nil, fctx.Err()
	})
	root := calltrace.NewFrame("", "0x1::m", "f", 0, 0, 0)
	root.Children = []*calltrace.Frame{calltrace.NewFrame("0x1::m", "0x1::n", "g", 0, 0, 0)}

	got, err := NewResolver(provider, ResolverOptions{}).Resolve(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, got)
}
