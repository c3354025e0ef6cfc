package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ledgerwatch/log/v3"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
	"github.com/sentioxyz/aptos-core/internal/ledger"
)

// StateView pins the ledger state a call is replayed against.
type StateView struct {
	ChainID string
	Version uint64
}

// Executor runs one call against a state view and returns the recorded call
// stack, holding the root frame. A VM failure before any frame was recorded is
// returned as a *calltrace.VMError.
type Executor interface {
	ReplayAndTrace(ctx context.Context, view StateView, call Call) (*calltrace.Stack, error)
}

type NodeOptions struct {
	Timeout time.Duration
	Retries int
	Logger  log.Logger
}

// NodeExecutor delegates execution to a replay node exposing
// POST /call_trace/replay.
type NodeExecutor struct {
	endpoint string
	client   *retryablehttp.Client
	logger   log.Logger
}

func NewNodeExecutor(endpoint string, opts NodeOptions) *NodeExecutor {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Root()
	}
	return &NodeExecutor{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   ledger.NewRetryClient(opts.Retries, opts.Timeout, opts.Logger),
		logger:   opts.Logger.New("replay", endpoint),
	}
}

type replayRequest struct {
	ChainID string `json:"chain_id"`
	Version uint64 `json:"version"`
	Call
}

func (e *NodeExecutor) ReplayAndTrace(ctx context.Context, view StateView, call Call) (*calltrace.Stack, error) {
	body, err := json.Marshal(replayRequest{ChainID: view.ChainID, Version: view.Version, Call: call})
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/call_trace/replay", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("replay: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("replay: node status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("replay: decode response: %w", err)
	}
	e.logger.Debug("replayed call", "function", call.Function, "version", view.Version, "frames", len(res.Trace), "elapsed", time.Since(start))

	if len(res.Trace) == 0 && res.Status != nil {
		return nil, res.Status
	}
	return Rebuild(&res)
}
