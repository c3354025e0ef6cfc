package replay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
)

func TestNodeExecutorReplay(t *testing.T) {
	var got replayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/call_trace/replay", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(nestedResult())
	}))
	defer srv.Close()

	exec := NewNodeExecutor(srv.URL+"/", NodeOptions{Timeout: time.Second})
	call := Call{
		Function:  "0x7::app::run",
		TypeArgs:  []string{"u64"},
		Args:      json.RawMessage(`["1"]`),
		Senders:   []string{"0x7"},
		GasBudget: 1000,
	}
	s, err := exec.ReplayAndTrace(context.Background(), StateView{ChainID: "1", Version: 42}, call)
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Version)
	require.Equal(t, "1", got.ChainID)
	require.Equal(t, call.Function, got.Function)
	require.Equal(t, []string{"0x7"}, got.Senders)

	root, ok := s.Root()
	require.True(t, ok)
	require.Len(t, root.Children, 2)
}

func TestNodeExecutorVMFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"trace":[],"vm_error":{"status_code":4016,"status":"LINKER_ERROR"}}`))
	}))
	defer srv.Close()

	exec := NewNodeExecutor(srv.URL, NodeOptions{Timeout: time.Second})
	_, err := exec.ReplayAndTrace(context.Background(), StateView{Version: 1}, Call{Function: "0x1::m::f"})
	require.Error(t, err)
	var vmErr *calltrace.VMError
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, uint64(4016), vmErr.StatusCode)
}

func TestNodeExecutorHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such version", http.StatusBadRequest)
	}))
	defer srv.Close()

	exec := NewNodeExecutor(srv.URL, NodeOptions{Timeout: time.Second})
	_, err := exec.ReplayAndTrace(context.Background(), StateView{Version: 1}, Call{})
	require.Error(t, err)
	var vmErr *calltrace.VMError
	require.False(t, errors.As(err, &vmErr))
	require.Contains(t, err.Error(), "no such version")
}
