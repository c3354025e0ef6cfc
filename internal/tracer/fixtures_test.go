package tracer

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/replay"
	"github.com/sentioxyz/aptos-core/internal/sourcemap"
)

var testHash = "0x" + strings.Repeat("ab", 32)

const appSource = "module 0x7::app {\n    fun run() {\n        coin::transfer();\n    }\n}\n"

func spanOf(t *testing.T, needle string) sourcemap.Loc {
	t.Helper()
	i := strings.Index(appSource, needle)
	require.GreaterOrEqual(t, i, 0, needle)
	return sourcemap.Loc{Start: uint32(i), End: uint32(i + len(needle))}
}

func appSourceMap(t *testing.T) []byte {
	t.Helper()
	tbl := sourcemap.NewTable(sourcemap.Loc{End: uint32(len(appSource))})
	tbl.Functions[0] = &sourcemap.FunctionMap{
		Code: []sourcemap.CodeEntry{
			{Offset: 0, Loc: spanOf(t, "fun run")},
			{Offset: 2, Loc: spanOf(t, "coin::transfer()")},
		},
	}
	raw, err := sourcemap.Encode(tbl)
	require.NoError(t, err)
	return raw
}

func gz(t *testing.T, b []byte) []byte {
	t.Helper()
	out, err := sourcemap.Compress(b)
	require.NoError(t, err)
	return out
}

func testRegistries(t *testing.T) map[string]*ledger.PackageRegistry {
	return map[string]*ledger.PackageRegistry{
		"0x7": {Packages: []ledger.PackageMetadata{{
			Name: "App",
			Modules: []ledger.ModuleMetadata{{
				Name:      "app",
				Source:    gz(t, []byte(appSource)),
				SourceMap: gz(t, appSourceMap(t)),
			}},
		}}},
		"0x1": {Packages: []ledger.PackageMetadata{{
			Name:    "AptosFramework",
			Modules: []ledger.ModuleMetadata{{Name: "coin"}, {Name: "event"}},
		}}},
	}
}

// buildStack records run -> transfer -> emit the way a replay drives the stack.
func buildStack(t *testing.T) *calltrace.Stack {
	t.Helper()
	s := calltrace.NewStack()
	require.NoError(t, s.Push(calltrace.NewFrame("", "0x7::app", "run", 0, 0, 1000)))
	require.NoError(t, s.Push(calltrace.NewFrame("0x7::app", "0x1::coin", "transfer", 0, 2, 900)))
	require.NoError(t, s.Push(calltrace.NewFrame("0x1::coin", "0x1::event", "emit", 4, 9, 800)))
	s.SetOutputs([]calltrace.Value{calltrace.U64(5)})
	s.SetGasEnd(700)
	emit, _ := s.Pop()
	s.AttachChild(emit)
	s.SetOutputs(nil)
	s.SetGasEnd(600)
	transfer, _ := s.Pop()
	s.AttachChild(transfer)
	s.SetOutputs([]calltrace.Value{calltrace.Bool(true)})
	s.SetGasEnd(400)
	return s
}

type stubLedger struct {
	txs        map[string]*ledger.Transaction
	registries map[string]*ledger.PackageRegistry
	regErr     error

	mu         sync.Mutex
	regQueries []string
}

func (l *stubLedger) TransactionByHash(ctx context.Context, hash string) (*ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, ok := l.txs[hash]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return tx, nil
}

func (l *stubLedger) PackageRegistry(ctx context.Context, account string, version uint64) (*ledger.PackageRegistry, error) {
	l.mu.Lock()
	l.regQueries = append(l.regQueries, account)
	l.mu.Unlock()
	if l.regErr != nil {
		return nil, l.regErr
	}
	return l.registries[account], nil
}

func (l *stubLedger) Transactions(ctx context.Context, start uint64, limit int) ([]*ledger.Transaction, error) {
	return nil, nil
}

type stubExecutor struct {
	build func() (*calltrace.Stack, error)
	calls []replay.Call
	views []replay.StateView
}

func (e *stubExecutor) ReplayAndTrace(ctx context.Context, view replay.StateView, call replay.Call) (*calltrace.Stack, error) {
	e.calls = append(e.calls, call)
	e.views = append(e.views, view)
	return e.build()
}

func entryTx() *ledger.Transaction {
	return &ledger.Transaction{
		Version:      55,
		Hash:         testHash,
		Type:         ledger.TypeUser,
		Sender:       "0x7",
		MaxGasAmount: 1000,
		Payload: &ledger.EntryFunction{
			Function:      "0x7::app::run",
			TypeArguments: []string{},
			Arguments:     []byte(`[]`),
		},
	}
}
