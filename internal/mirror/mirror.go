package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ledgerwatch/log/v3"
	"golang.org/x/sync/errgroup"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/metrics"
	"github.com/sentioxyz/aptos-core/internal/store"
)

const publishFunction = "0x1::code::publish_package_txn"

// frameworkAccounts are re-snapshotted after script transactions, which can
// upgrade framework code through governance.
var frameworkAccounts = []string{"0x1", "0x3", "0x4"}

// Mirror copies committed transactions, and optionally the package registries
// they touch, from an upstream ledger into a Sink.
type Mirror struct {
	cfg      Config
	upstream ledger.Source
	sink     Sink
	logger   log.Logger
}

func New(cfg Config, upstream ledger.Source, sink Sink, logger log.Logger) *Mirror {
	if logger == nil {
		logger = log.Root()
	}
	return &Mirror{
		cfg:      cfg,
		upstream: upstream,
		sink:     sink,
		logger:   logger.New("component", "mirror", "chain", cfg.ChainID),
	}
}

type registrySnapshot struct {
	account string
	version uint64
	reg     *ledger.PackageRegistry
}

type batch struct {
	start      uint64
	next       uint64
	txs        []*ledger.Transaction
	registries []registrySnapshot
}

func (m *Mirror) Run(ctx context.Context) error {
	start, err := m.resume(ctx)
	if err != nil {
		return err
	}
	m.logger.Info("Mirror starting", "from", start, "stop", m.cfg.StopVersion, "registries", m.cfg.Registries)

	g, ctx := errgroup.WithContext(ctx)
	fetchCh := make(chan *batch, m.cfg.fetchWorkerCount()*2)
	writeCh := make(chan *batch, m.cfg.writeWorkerCount()*2)
	prog := newProgress(start)

	g.Go(func() error {
		defer close(fetchCh)
		return m.stream(ctx, start, fetchCh)
	})

	var fetchWG sync.WaitGroup
	for n := 0; n < m.cfg.fetchWorkerCount(); n++ {
		fetchWG.Add(1)
		g.Go(func() error {
			defer fetchWG.Done()
			return m.runFetchWorker(ctx, fetchCh, writeCh)
		})
	}

	g.Go(func() error {
		fetchWG.Wait()
		close(writeCh)
		return nil
	})

	for n := 0; n < m.cfg.writeWorkerCount(); n++ {
		g.Go(func() error {
			return m.runWriteWorker(ctx, writeCh, prog)
		})
	}

	if err := g.Wait(); err != nil {
		m.logger.Warn("Mirror stopped with error", "next", prog.cursor(), "err", err)
		return err
	}
	m.logger.Info("Mirror stopped cleanly", "next", prog.cursor())
	return nil
}

func (m *Mirror) resume(ctx context.Context) (uint64, error) {
	start := m.cfg.StartVersion
	cursor, err := m.sink.Cursor(ctx)
	if err != nil {
		return 0, err
	}
	if cursor != nil && cursor.NextVersion > start {
		m.logger.Info("Cursor restored", "next", cursor.NextVersion, "lastHash", cursor.LastHash)
		start = cursor.NextVersion
	}
	return start, nil
}

// stream reads consecutive version ranges from upstream in order.
func (m *Mirror) stream(ctx context.Context, next uint64, out chan<- *batch) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		limit := m.cfg.batchSize()
		if stop := m.cfg.StopVersion; stop > 0 {
			if next >= stop {
				return nil
			}
			if remaining := stop - next; remaining < uint64(limit) {
				limit = int(remaining)
			}
		}

		txs, err := m.upstream.Transactions(ctx, next, limit)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			m.logger.Warn("Failed to fetch transactions", "start", next, "limit", limit, "err", err)
			if err := sleep(ctx, m.cfg.retryDelay()); err != nil {
				return err
			}
			continue
		}
		if len(txs) == 0 {
			m.logger.Debug("Waiting for new transactions", "next", next)
			if err := sleep(ctx, m.cfg.pollInterval()); err != nil {
				return err
			}
			continue
		}
		if first := txs[0].Version; first != next {
			m.logger.Warn("Upstream skipped versions", "expected", next, "got", first)
		}

		b := &batch{start: next, next: txs[len(txs)-1].Version + 1, txs: txs}
		m.logger.Debug("Fetched transactions", "from", b.start, "to", b.next-1, "count", len(txs))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- b:
		}
		next = b.next
	}
}

func (m *Mirror) runFetchWorker(ctx context.Context, in <-chan *batch, out chan<- *batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-in:
			if !ok {
				return nil
			}
			if m.cfg.Registries {
				if err := m.fetchRegistries(ctx, b); err != nil {
					return err
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- b:
			}
		}
	}
}

// fetchRegistries snapshots each touched account's registry at the first
// version that touches it in the batch, and again after every publish.
func (m *Mirror) fetchRegistries(ctx context.Context, b *batch) error {
	for _, t := range registryTouches(b.txs) {
		reg, err := m.upstream.PackageRegistry(ctx, t.account, t.version)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			m.logger.Warn("Failed to fetch package registry", "account", t.account, "version", t.version, "err", err)
			continue
		}
		if reg == nil {
			continue
		}
		b.registries = append(b.registries, registrySnapshot{account: t.account, version: t.version, reg: reg})
	}
	return nil
}

type touch struct {
	account string
	version uint64
}

func registryTouches(txs []*ledger.Transaction) []touch {
	seen := make(map[string]bool)
	var out []touch
	add := func(account string, version uint64, force bool) {
		norm, err := ledger.NormalizeAddress(account)
		if err != nil {
			return
		}
		if seen[norm] && !force {
			return
		}
		seen[norm] = true
		out = append(out, touch{account: norm, version: version})
	}
	for _, tx := range txs {
		if tx.Type == ledger.TypeUser && tx.Payload == nil {
			for _, account := range frameworkAccounts {
				add(account, tx.Version, true)
			}
			continue
		}
		if !tx.IsEntryFunction() {
			continue
		}
		add(calltrace.AccountOf(tx.Payload.ModuleID()), tx.Version, false)
		add(tx.Sender, tx.Version, tx.Payload.Function == publishFunction)
	}
	return out
}

func (m *Mirror) runWriteWorker(ctx context.Context, in <-chan *batch, prog *progress) error {
	for b := range in {
		callCtx := ctx
		if err := callCtx.Err(); err != nil {
			callCtx = context.Background()
		}
		committed := committedOnly(b.txs)
		if err := m.sink.SaveTransactions(callCtx, committed); err != nil {
			m.logger.Warn("Failed to store transactions", "from", b.start, "err", err)
			return err
		}
		for _, snap := range b.registries {
			if err := m.sink.SaveRegistry(callCtx, snap.account, snap.version, snap.reg); err != nil {
				m.logger.Warn("Failed to store package registry", "account", snap.account, "err", err)
				return err
			}
		}
		metrics.MirroredTransactions.WithLabelValues(m.cfg.ChainID).Add(float64(len(committed)))
		if err := prog.complete(callCtx, b, m.sink.SaveCursor); err != nil {
			return err
		}
		m.logger.Debug("Persisted batch", "from", b.start, "next", b.next, "registries", len(b.registries))
	}
	return ctx.Err()
}

func committedOnly(txs []*ledger.Transaction) []*ledger.Transaction {
	out := make([]*ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type != ledger.TypePending {
			out = append(out, tx)
		}
	}
	return out
}

// progress advances the cursor over contiguously persisted batches only, so a
// restart never skips a batch another writer had not finished.
type progress struct {
	mu       sync.Mutex
	next     uint64
	lastHash string
	pending  map[uint64]*batch
}

func newProgress(start uint64) *progress {
	return &progress{next: start, pending: make(map[uint64]*batch)}
}

func (p *progress) cursor() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

func (p *progress) complete(ctx context.Context, b *batch, save func(context.Context, *store.SyncCursor) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[b.start] = b
	advanced := false
	for {
		done, ok := p.pending[p.next]
		if !ok {
			break
		}
		delete(p.pending, p.next)
		p.next = done.next
		if n := len(done.txs); n > 0 {
			p.lastHash = done.txs[n-1].Hash
		}
		advanced = true
	}
	if !advanced {
		return nil
	}
	return save(ctx, &store.SyncCursor{NextVersion: p.next, LastHash: p.lastHash})
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
