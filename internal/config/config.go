// Package config loads process configuration from flags, environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"solana-art-lab/internal/extended"
	"solana-art-lab/internal/registry"
)

// EnvPrefix is prepended to upper-cased keys, e.g. SOLANA_ART_RPC_ENDPOINT.
const EnvPrefix = "SOLANA_ART"

// Cache backends.
const (
	BackendMemory   = "memory"
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
)

// Default configuration values.
const (
	DefaultRPCEndpoint = "https://api.mainnet-beta.solana.com"
	DefaultRPCTimeout  = 30 * time.Second
	DefaultHTTPAddr    = ":8080"
	DefaultPebbleDir   = "./data"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config application configuration structure
type Config struct {
	RPC        RPCConfig
	Cache      CacheConfig
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	CDN        CDNConfig
	HTTP       HTTPConfig
	Log        LogConfig
	Ingest     IngestConfig

	// Creators are display profiles merged into the on-chain registry.
	Creators []registry.Profile
}

// RPCConfig Solana RPC configuration
type RPCConfig struct {
	Endpoint   string
	WSEndpoint string // derived from Endpoint when empty
	Timeout    time.Duration
}

// CacheConfig extended metadata cache configuration
type CacheConfig struct {
	Backend   string // memory, pebble, postgres
	PebbleDir string
}

// PostgresConfig PostgreSQL configuration
type PostgresConfig struct {
	DSN string
}

// ClickHouseConfig fetch event log configuration; empty DSN disables it
type ClickHouseConfig struct {
	DSN string
}

// CDNConfig content URI rewrite configuration
type CDNConfig struct {
	Enabled bool
	From    string
	To      string
}

// HTTPConfig HTTP server configuration
type HTTPConfig struct {
	Addr string
}

// LogConfig logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// IngestConfig record loading configuration
type IngestConfig struct {
	Mints     []string // loaded at startup
	Creators  bool     // load whitelisted creators at startup
	Subscribe bool     // follow program account changes
}

// Rewriter returns the configured CDN rewriter.
func (c *Config) Rewriter() extended.Rewriter {
	return extended.Rewriter{Enabled: c.CDN.Enabled, From: c.CDN.From, To: c.CDN.To}
}

// AddFlags registers command-line flags. Flag values take precedence over
// environment and file values.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("rpc-endpoint", "", "Solana JSON-RPC endpoint")
	fs.String("ws-endpoint", "", "Solana WebSocket endpoint (derived from --rpc-endpoint when empty)")
	fs.String("cache-backend", "", "extended metadata cache backend: memory, pebble, postgres")
	fs.String("pebble-dir", "", "PebbleDB data directory")
	fs.String("postgres-dsn", "", "PostgreSQL DSN")
	fs.String("clickhouse-dsn", "", "ClickHouse DSN for the fetch event log")
	fs.Bool("cdn", false, "rewrite content URIs onto the CDN")
	fs.String("http-addr", "", "HTTP listen address")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: json, console")
	fs.StringSlice("mint", nil, "mint to load at startup (repeatable)")
	fs.Bool("subscribe", false, "follow program account changes over WebSocket")
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"rpc-endpoint":   "rpc.endpoint",
	"ws-endpoint":    "rpc.ws_endpoint",
	"cache-backend":  "cache.backend",
	"pebble-dir":     "cache.pebble_dir",
	"postgres-dsn":   "postgres.dsn",
	"clickhouse-dsn": "clickhouse.dsn",
	"cdn":            "cdn.enabled",
	"http-addr":      "http.addr",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"mint":           "ingest.mints",
	"subscribe":      "ingest.subscribe",
}

// Load parses args into fs (which must carry AddFlags), then reads the
// optional config file and environment.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	path, _ := fs.GetString("config")
	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		RPC: RPCConfig{
			Endpoint:   v.GetString("rpc.endpoint"),
			WSEndpoint: v.GetString("rpc.ws_endpoint"),
			Timeout:    v.GetDuration("rpc.timeout"),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(v.GetString("cache.backend")),
			PebbleDir: v.GetString("cache.pebble_dir"),
		},
		Postgres:   PostgresConfig{DSN: v.GetString("postgres.dsn")},
		ClickHouse: ClickHouseConfig{DSN: v.GetString("clickhouse.dsn")},
		CDN: CDNConfig{
			Enabled: v.GetBool("cdn.enabled"),
			From:    v.GetString("cdn.from"),
			To:      v.GetString("cdn.to"),
		},
		HTTP: HTTPConfig{Addr: v.GetString("http.addr")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Ingest: IngestConfig{
			Mints:     v.GetStringSlice("ingest.mints"),
			Creators:  v.GetBool("ingest.creators"),
			Subscribe: v.GetBool("ingest.subscribe"),
		},
	}

	if err := v.UnmarshalKey("creators", &cfg.Creators); err != nil {
		return nil, fmt.Errorf("decode creators: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RPC.Endpoint == "" {
		c.RPC.Endpoint = DefaultRPCEndpoint
	}
	if c.RPC.WSEndpoint == "" {
		c.RPC.WSEndpoint = WSEndpointFor(c.RPC.Endpoint)
	}
	if c.RPC.Timeout <= 0 {
		c.RPC.Timeout = DefaultRPCTimeout
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	if c.Cache.PebbleDir == "" {
		c.Cache.PebbleDir = DefaultPebbleDir
	}
	if c.CDN.From == "" {
		c.CDN.From = extended.DefaultRewriteFrom
	}
	if c.CDN.To == "" {
		c.CDN.To = extended.DefaultRewriteTo
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendPebble:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("%w: cache.backend=postgres requires postgres.dsn", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache.backend %q", ErrInvalidConfig, c.Cache.Backend)
	}

	for i, p := range c.Creators {
		if p.Address == "" {
			return fmt.Errorf("%w: creators[%d] missing address", ErrInvalidConfig, i)
		}
	}
	return nil
}

// WSEndpointFor derives the WebSocket endpoint from an HTTP RPC endpoint.
func WSEndpointFor(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	default:
		return endpoint
	}
}
