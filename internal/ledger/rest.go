package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ledgerwatch/log/v3"
)

const registryResource = "0x1::code::PackageRegistry"

type RestOptions struct {
	Retries int
	Timeout time.Duration
	Logger  log.Logger
}

func (o RestOptions) withDefaults() RestOptions {
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = log.Root()
	}
	return o
}

// RestSource reads the ledger through a fullnode's REST API, e.g.
// https://fullnode.mainnet.aptoslabs.com/v1.
type RestSource struct {
	endpoint string
	client   *retryablehttp.Client
	logger   log.Logger
}

func NewRestSource(endpoint string, opts RestOptions) *RestSource {
	opts = opts.withDefaults()
	return &RestSource{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   NewRetryClient(opts.Retries, opts.Timeout, opts.Logger),
		logger:   opts.Logger.New("ledger", endpoint),
	}
}

func (s *RestSource) Endpoint() string { return s.endpoint }

func (s *RestSource) TransactionByHash(ctx context.Context, hash string) (*Transaction, error) {
	var raw restTransaction
	found, err := s.getJSON(ctx, "/transactions/by_hash/"+url.PathEscape(hash), &raw)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	if raw.Type == TypePending {
		return nil, ErrPending
	}
	return raw.toTransaction(), nil
}

func (s *RestSource) PackageRegistry(ctx context.Context, account string, version uint64) (*PackageRegistry, error) {
	q := url.Values{}
	q.Set("ledger_version", strconv.FormatUint(version, 10))
	path := fmt.Sprintf("/accounts/%s/resource/%s?%s", url.PathEscape(account), registryResource, q.Encode())

	var res struct {
		Type string          `json:"type"`
		Data PackageRegistry `json:"data"`
	}
	found, err := s.getJSON(ctx, path, &res)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &res.Data, nil
}

func (s *RestSource) Transactions(ctx context.Context, start uint64, limit int) ([]*Transaction, error) {
	q := url.Values{}
	q.Set("start", strconv.FormatUint(start, 10))
	q.Set("limit", strconv.Itoa(limit))

	var raw []restTransaction
	if _, err := s.getJSON(ctx, "/transactions?"+q.Encode(), &raw); err != nil {
		return nil, err
	}
	out := make([]*Transaction, 0, len(raw))
	for i := range raw {
		out = append(out, raw[i].toTransaction())
	}
	return out, nil
}

// getJSON decodes the response body into out. A 404 reports found=false.
func (s *RestSource) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("ledger: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("ledger: GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("ledger: decode %s: %w", path, err)
	}
	return true, nil
}

type restTransaction struct {
	Type           string       `json:"type"`
	Version        U64          `json:"version"`
	Hash           string       `json:"hash"`
	Sender         string       `json:"sender"`
	SequenceNumber U64          `json:"sequence_number"`
	MaxGasAmount   U64          `json:"max_gas_amount"`
	GasUsed        U64          `json:"gas_used"`
	Success        bool         `json:"success"`
	VMStatus       string       `json:"vm_status"`
	Timestamp      U64          `json:"timestamp"`
	Payload        *restPayload `json:"payload"`
}

type restPayload struct {
	Type          string          `json:"type"`
	Function      string          `json:"function"`
	TypeArguments []string        `json:"type_arguments"`
	Arguments     json.RawMessage `json:"arguments"`
}

func (r *restTransaction) toTransaction() *Transaction {
	tx := &Transaction{
		Version:        uint64(r.Version),
		Hash:           r.Hash,
		Type:           r.Type,
		Sender:         r.Sender,
		SequenceNumber: uint64(r.SequenceNumber),
		MaxGasAmount:   uint64(r.MaxGasAmount),
		GasUsed:        uint64(r.GasUsed),
		Success:        r.Success,
		VMStatus:       r.VMStatus,
		Timestamp:      uint64(r.Timestamp),
	}
	if r.Payload != nil && r.Payload.Type == "entry_function_payload" {
		tx.Payload = &EntryFunction{
			Function:      r.Payload.Function,
			TypeArguments: r.Payload.TypeArguments,
			Arguments:     r.Payload.Arguments,
		}
	}
	return tx
}
