// Package main resolves mints over RPC and prints their Art as JSON.
//
// Usage:
//
//	resolve [flags] <mint>...
//	resolve --extended --cdn <mint>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"solana-art-lab/internal/art"
	"solana-art-lab/internal/config"
	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/extended"
	"solana-art-lab/internal/fetch"
	"solana-art-lab/internal/ingestion"
	"solana-art-lab/internal/logging"
	"solana-art-lab/internal/solana"
	"solana-art-lab/internal/storage/backend"
	"solana-art-lab/internal/storage/memory"
)

// output is one printed line.
type output struct {
	Art      domain.Art               `json:"art"`
	Extended *domain.ExtendedMetadata `json:"extended,omitempty"`
}

func main() {
	fs := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
	config.AddFlags(fs)
	withExtended := fs.Bool("extended", false, "also fetch the off-chain JSON descriptor")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: resolve [flags] <mint>...")
		fs.PrintDefaults()
	}

	cfg, err := config.Load(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	mints := append(fs.Args(), cfg.Ingest.Mints...)
	if len(mints) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	// Diagnostics go to stderr; stdout carries only JSON.
	logger, err := logging.New(cfg.Log.Level, logging.FormatConsole)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, mints, *withExtended, os.Stdout, logger); err != nil {
		logger.Error("resolve failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, mints []string, withExtended bool, w io.Writer, logger *zap.Logger) error {
	records := memory.NewRecordStore()
	rpc := solana.NewHTTPClient(cfg.RPC.Endpoint,
		solana.WithTimeout(cfg.RPC.Timeout),
		solana.WithLogger(logger),
	)

	loader := ingestion.NewLoader(ingestion.LoaderOptions{RPC: rpc, Sink: records, Logger: logger})
	stats, err := loader.LoadMints(ctx, mints)
	if err != nil {
		return fmt.Errorf("load mints: %w", err)
	}
	if stats.Metadata < len(mints) {
		logger.Warn("some mints have no metadata account",
			zap.Int("requested", len(mints)), zap.Int("found", stats.Metadata))
	}

	resolver := art.NewResolver(records, art.WithProfiles(cfg.Creators), art.WithLogger(logger))

	var ext *extended.Loader
	if withExtended {
		cache, closeCache, err := backend.OpenExtendedCache(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		ext = extended.NewLoader(ctx, extended.NewRecordURISource(records),
			cache, fetch.NewHTTPFetcher(),
			extended.WithRewriter(cfg.Rewriter()),
			extended.WithLogger(logger),
		)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, mint := range mints {
		a, err := resolver.ResolveID(ctx, mint)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", mint, err)
		}
		out := output{Art: a}
		if ext != nil {
			meta, ok, err := ext.FetchExtended(ctx, mint)
			if err != nil {
				return fmt.Errorf("extended %s: %w", mint, err)
			}
			if ok {
				out.Extended = meta
			}
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
