package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/mirror"
	"github.com/sentioxyz/aptos-core/internal/tracer"
)

var testHash = "0x" + strings.Repeat("ab", 32)

type stubService struct {
	calls int
	err   error
}

func (s *stubService) Trace(_ context.Context, chainID, hash string) (*tracer.TraceResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if chainID != "1" {
		return nil, fmt.Errorf("%w: %s", tracer.ErrUnknownChain, chainID)
	}
	root := calltrace.NewFrame("", "0x1::coin", "transfer", 3, 0, 1000)
	root.Gas.CloseFrame(400)
	trace := tracer.Project(&tracer.ResolvedFrame{Frame: root})
	return &tracer.TraceResult{
		ChainID: chainID,
		Hash:    hash,
		Version: 42,
		Trace:   &trace,
	}, nil
}

func (s *stubService) Chains() []string { return []string{"1"} }

func newTestRouter(t *testing.T, svc TraceService, cacheSize int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(svc, RouterOptions{CacheSize: cacheSize})
	require.NoError(t, err)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestCallTraceByHash(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(t, svc, 8)

	rec := get(r, "/1/call_trace/by_hash/"+strings.TrimPrefix(testHash, "0x"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, testHash, body["hash"])
	require.EqualValues(t, 42, body["version"])
	trace := body["trace"].(map[string]any)
	require.Equal(t, "transfer", trace["func_name"])
	require.EqualValues(t, 600, trace["gas_used"])

	// the 0x form hits the cache entry written above
	rec = get(r, "/1/call_trace/by_hash/"+strings.ToUpper(testHash[2:]))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, svc.calls)
}

func TestCallTraceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		chain  string
		hash   string
		status int
	}{
		{name: "malformed hash", chain: "1", hash: "0x1234", status: http.StatusBadRequest},
		{name: "unknown chain", chain: "7", hash: testHash, status: http.StatusNotFound},
		{name: "missing tx", err: ledger.ErrNotFound, chain: "1", hash: testHash, status: http.StatusNotFound},
		{name: "pending tx", err: ledger.ErrPending, chain: "1", hash: testHash, status: http.StatusNotFound},
		{name: "timeout", err: fmt.Errorf("replay: %w", context.DeadlineExceeded), chain: "1", hash: testHash, status: http.StatusGatewayTimeout},
		{name: "storage", err: errors.New("disk on fire"), chain: "1", hash: testHash, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, &stubService{err: tc.err}, 0)
			rec := get(r, "/"+tc.chain+"/call_trace/by_hash/"+tc.hash)
			require.Equal(t, tc.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body.Error)
		})
	}
}

func TestFailuresAreNotCached(t *testing.T) {
	svc := &stubService{err: ledger.ErrNotFound}
	r := newTestRouter(t, svc, 8)
	require.Equal(t, http.StatusNotFound, get(r, "/1/call_trace/by_hash/"+testHash).Code)

	svc.err = nil
	require.Equal(t, http.StatusOK, get(r, "/1/call_trace/by_hash/"+testHash).Code)
	require.Equal(t, 2, svc.calls)
}

func TestAuxiliaryRoutes(t *testing.T) {
	r := newTestRouter(t, &stubService{}, 0)

	require.Equal(t, http.StatusOK, get(r, "/healthz").Code)

	rec := get(r, "/chains")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"chains":["1"]}`, rec.Body.String())

	rec = get(r, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSwaggerDoc(t *testing.T) {
	r := newTestRouter(t, &stubService{}, 0)

	rec := get(r, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/{chain_id}/call_trace/by_hash/{hash}")
	require.Contains(t, rec.Body.String(), "/{chain_id}/ledger/status")
}

type stubStatus struct{}

func (stubStatus) Status(_ context.Context, chainID string) (*mirror.Status, error) {
	return &mirror.Status{ChainID: chainID, LatestVersion: 10, NextVersion: 11}, nil
}

func TestMirrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(&stubService{}, RouterOptions{Status: stubStatus{}, StoreChains: []string{"1"}})
	require.NoError(t, err)

	rec := get(r, "/1/ledger/status")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"chain_id":"1","empty":false,"latest_version":10,"next_version":11}`, rec.Body.String())

	require.Equal(t, http.StatusNotFound, get(r, "/2/ledger/status").Code)
	require.Equal(t, http.StatusNotFound, get(newTestRouter(t, &stubService{}, 0), "/1/ledger/status").Code)
}
