package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultRPCEndpoint, cfg.RPC.Endpoint)
	assert.Equal(t, "wss://api.mainnet-beta.solana.com", cfg.RPC.WSEndpoint)
	assert.Equal(t, DefaultRPCTimeout, cfg.RPC.Timeout)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.False(t, cfg.CDN.Enabled)
	assert.Equal(t, "https://arweave.net/", cfg.CDN.From)
	assert.False(t, cfg.Rewriter().Enabled)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc:
  endpoint: http://localhost:8899
  timeout: 5s
cache:
  backend: pebble
  pebble_dir: /var/lib/art
cdn:
  enabled: true
ingest:
  mints: [MintA, MintB]
  creators: true
creators:
  - address: CreatorA
    name: Alice
    twitter: "@alice"
`), 0o644))

	cfg, err := Load(newFlagSet(), []string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8899", cfg.RPC.Endpoint)
	assert.Equal(t, "ws://localhost:8899", cfg.RPC.WSEndpoint)
	assert.Equal(t, 5*time.Second, cfg.RPC.Timeout)
	assert.Equal(t, BackendPebble, cfg.Cache.Backend)
	assert.Equal(t, "/var/lib/art", cfg.Cache.PebbleDir)
	assert.True(t, cfg.Rewriter().Enabled)
	assert.Equal(t, []string{"MintA", "MintB"}, cfg.Ingest.Mints)
	assert.True(t, cfg.Ingest.Creators)

	require.Len(t, cfg.Creators, 1)
	assert.Equal(t, "CreatorA", cfg.Creators[0].Address)
	assert.Equal(t, "Alice", cfg.Creators[0].Name)
	assert.Equal(t, "@alice", cfg.Creators[0].Twitter)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SOLANA_ART_HTTP_ADDR", ":9000")
	t.Setenv("SOLANA_ART_LOG_LEVEL", "debug")

	cfg, err := Load(newFlagSet(), []string{"--http-addr", ":7000", "--mint", "M1", "--mint", "M2"})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"M1", "M2"}, cfg.Ingest.Mints)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(newFlagSet(), []string{"--cache-backend", "redis"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(newFlagSet(), []string{"--cache-backend", "postgres"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(newFlagSet(), []string{"--config", "/nonexistent/artd.yaml"})
	assert.Error(t, err)
}

func TestWSEndpointFor(t *testing.T) {
	assert.Equal(t, "wss://rpc.example", WSEndpointFor("https://rpc.example"))
	assert.Equal(t, "ws://127.0.0.1:8899", WSEndpointFor("http://127.0.0.1:8899"))
	assert.Equal(t, "ws://already", WSEndpointFor("ws://already"))
}
