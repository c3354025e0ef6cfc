package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.False(t, cfg.Server.Disable)
	require.Equal(t, "0.0.0.0:9102", cfg.Server.Addr())
	require.Equal(t, map[string]string{"1": MainnetEndpoint}, cfg.Ledger.Endpoints)
	require.False(t, cfg.Compile.Remote())
	require.Equal(t, []string{"1"}, cfg.Ledger.Chains())

	// no replay node configured yet
	require.Error(t, cfg.Validate())
	cfg.Ledger.ReplayEndpoint = "http://replay:8080"
	require.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_port: 8000
ledger:
  endpoints:
    "2": http://testnet/v1
  replay_endpoint: http://replay
trace:
  fetch_timeout: 3s
  parallel: 4
log:
  format: json
`), 0o644))

	t.Setenv("TRACER_CONFIG", path)
	t.Setenv("SERVER_LISTEN_ADDRESS", "127.0.0.1")
	t.Setenv("TRACE_PARALLEL", "8")
	t.Setenv("COMPILE_ENDPOINT", "http://compile/package")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8000", cfg.Server.Addr())
	// yaml merges into the default endpoint map
	require.Equal(t, []string{"1", "2"}, cfg.Ledger.Chains())
	require.Equal(t, "http://replay", cfg.Ledger.ReplayEndpoint)
	require.Equal(t, 3*time.Second, cfg.Trace.FetchTimeout)
	require.Equal(t, 8, cfg.Trace.Parallel)
	require.Equal(t, "json", cfg.Log.Format)
	require.True(t, cfg.Compile.Remote())
	require.Equal(t, 30*time.Second, cfg.Compile.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("TRACER_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestStoreModeAndEnvMaps(t *testing.T) {
	t.Setenv("TRACER_CONFIG", "")
	t.Setenv("LEDGER_STORE_PATH", "./data/ledger.db")
	t.Setenv("LEDGER_STORE_CHAINS", "1, 2,")
	t.Setenv("LEDGER_ENDPOINTS", "1=http://a/v1,bad,2=http://b/v1")
	t.Setenv("REPLAY_ENDPOINT", "http://replay")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Ledger.UseStore())
	require.Equal(t, []string{"1", "2"}, cfg.Ledger.Chains())
	require.Equal(t, map[string]string{"1": "http://a/v1", "2": "http://b/v1"}, cfg.Ledger.Endpoints)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateMirror())

	cfg.Mirror.ChainID = "9"
	require.Error(t, cfg.ValidateMirror())
}

func TestValidateRejects(t *testing.T) {
	cfg := Default()
	cfg.Ledger.ReplayEndpoint = "http://replay"

	bad := cfg
	bad.Ledger.Endpoints = nil
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Server.ListenPort = 70000
	require.Error(t, bad.Validate())
	bad.Server.Disable = true
	require.NoError(t, bad.Validate())

	bad = cfg
	bad.Log.Level = "loud"
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Log.Format = "xml"
	require.Error(t, bad.Validate())
}

func TestBoolEnv(t *testing.T) {
	t.Setenv("X_FLAG", "yes")
	require.True(t, boolenv("X_FLAG", false))
	t.Setenv("X_FLAG", "off")
	require.False(t, boolenv("X_FLAG", true))
	t.Setenv("X_FLAG", "maybe")
	require.True(t, boolenv("X_FLAG", true))
}
