package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ledgerwatch/log/v3"
	"golang.org/x/sync/singleflight"

	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/metrics"
	"github.com/sentioxyz/aptos-core/internal/sourcemap"
)

type RemoteOptions struct {
	Endpoint string
	// Timeout bounds one compile request, retries included.
	Timeout time.Duration
	Retries int
	Logger  log.Logger
}

// RemoteSource asks an external compile service for the artifacts of a
// package and its dependencies.
type RemoteSource struct {
	endpoint string
	timeout  time.Duration
	client   *retryablehttp.Client
	logger   log.Logger
}

func NewRemoteSource(opts RemoteOptions) *RemoteSource {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Root()
	}
	return &RemoteSource{
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		client:   ledger.NewRetryClient(opts.Retries, opts.Timeout, opts.Logger),
		logger:   opts.Logger.New("metadata", "remote"),
	}
}

func (*RemoteSource) Name() string { return "remote" }

func (s *RemoteSource) ForPass(_ context.Context, pass Pass) Provider {
	return &remoteProvider{
		src:     s,
		chainID: pass.ChainID,
		index:   NewPackageIndex(pass.Registries),
		modules: make(map[string]*Bundle),
		loaded:  make(map[string]struct{}),
	}
}

type compiledPackage struct {
	PackageName        string            `json:"packageName"`
	ModulesWithoutCode []string          `json:"modulesWithoutCode"`
	Modules            []compiledModule  `json:"modules"`
	Dependencies       []compiledPackage `json:"dependencies"`
}

type compiledModule struct {
	Name      string          `json:"name"`
	SourceMap string          `json:"sourceMap"`
	Source    string          `json:"source"`
	Bytecode  string          `json:"bytecode"`
	ABI       json.RawMessage `json:"abi,omitempty"`
}

type remoteProvider struct {
	src     *RemoteSource
	chainID string
	index   *PackageIndex
	group   singleflight.Group

	mu      sync.Mutex
	modules map[string]*Bundle
	// loaded holds "account::package" keys already requested, including failed ones.
	loaded map[string]struct{}
}

func (p *remoteProvider) Fetch(ctx context.Context, req Request) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b, ok := p.lookup(req.Key()); ok {
		return b, nil
	}

	pkg := req.Package
	if pkg == "" {
		var ok bool
		if pkg, ok = p.index.Package(req.Account, req.Module); !ok {
			p.src.logger.Debug("no package known for module", "module", req.Key())
			return nil, nil
		}
	}

	pkgKey := req.Account + "::" + pkg
	_, err, _ := p.group.Do(pkgKey, func() (any, error) {
		p.mu.Lock()
		_, done := p.loaded[pkgKey]
		p.mu.Unlock()
		if done {
			return nil, nil
		}
		return nil, p.load(ctx, req.Account, pkg, pkgKey)
	})
	if err != nil {
		return nil, err
	}
	b, _ := p.lookup(req.Key())
	return b, nil
}

func (p *remoteProvider) lookup(key string) (*Bundle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.modules[key]
	return b, ok
}

// load fetches one package. Only cancellation of ctx is returned; every other
// failure is logged, counted and remembered as an empty result.
func (p *remoteProvider) load(ctx context.Context, account, pkg, pkgKey string) error {
	res, err := p.request(ctx, account, pkg)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		reason := "transport"
		var re *responseError
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = "timeout"
		case errors.As(err, &re):
			reason = re.reason
		}
		metrics.RemoteCompileFailures.WithLabelValues(reason).Inc()
		p.src.logger.Warn("remote compile failed", "account", account, "package", pkg, "chain", p.chainID, "err", err)
		res = nil
	}

	indexed := make(map[string]*Bundle)
	if res != nil {
		p.indexPackage(indexed, account, res)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded[pkgKey] = struct{}{}
	for k, b := range indexed {
		if _, ok := p.modules[k]; !ok {
			p.modules[k] = b
		}
	}
	return nil
}

func (p *remoteProvider) indexPackage(out map[string]*Bundle, account string, pkg *compiledPackage) {
	for _, m := range pkg.Modules {
		b := &Bundle{
			Account:   account,
			Module:    m.Name,
			Package:   pkg.PackageName,
			SourceMap: []byte(m.SourceMap),
			Source:    []byte(m.Source),
			ABI:       m.ABI,
			Origin:    sourcemap.OriginRemote,
		}
		if m.Bytecode != "" {
			if code, err := sourcemap.Prepare([]byte(m.Bytecode), sourcemap.OriginRemote); err == nil {
				b.Bytecode = code
			}
		}
		out[moduleKey(account, m.Name)] = b
	}
	for i := range pkg.Dependencies {
		dep := &pkg.Dependencies[i]
		depAccount, ok := p.index.Account(dep.PackageName)
		if !ok {
			p.src.logger.Debug("dependency package has no known account", "package", dep.PackageName)
			continue
		}
		p.indexPackage(out, depAccount, dep)
	}
}

type responseError struct {
	reason string
	msg    string
}

func (e *responseError) Error() string { return e.msg }

func (p *remoteProvider) request(ctx context.Context, account, pkg string) (*compiledPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, p.src.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("account", account)
	q.Set("packageName", pkg)
	q.Set("networkId", p.chainID)
	q.Set("bytecode", "true")
	q.Set("source", "true")
	q.Set("sourceMap", "true")
	u := p.src.endpoint
	if strings.Contains(u, "?") {
		u += "&" + q.Encode()
	} else {
		u += "?" + q.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	metrics.RemoteCompileRequests.Inc()
	resp, err := p.src.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &responseError{
			reason: "status",
			msg:    fmt.Sprintf("compile service status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	var out compiledPackage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &responseError{reason: "malformed", msg: fmt.Sprintf("compile service response: %v", err)}
	}
	return &out, nil
}
