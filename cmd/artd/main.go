// Package main runs the art resolution service: it loads on-chain records,
// follows program account changes and serves art, extended metadata and
// cached assets over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"solana-art-lab/internal/api"
	"solana-art-lab/internal/art"
	"solana-art-lab/internal/assetcache"
	"solana-art-lab/internal/config"
	"solana-art-lab/internal/extended"
	"solana-art-lab/internal/fetch"
	"solana-art-lab/internal/ingestion"
	"solana-art-lab/internal/logging"
	"solana-art-lab/internal/observability"
	"solana-art-lab/internal/solana"
	"solana-art-lab/internal/storage/backend"
	"solana-art-lab/internal/storage/memory"
)

const shutdownTimeout = 30 * time.Second

func main() {
	fs := pflag.NewFlagSet("artd", pflag.ContinueOnError)
	config.AddFlags(fs)
	cfg, err := config.Load(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("solana_art")

	cache, closeCache, err := backend.OpenExtendedCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	recorder, closeRecorder, err := backend.OpenRecorder(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRecorder()

	records := memory.NewRecordStore()
	rpc := solana.NewHTTPClient(cfg.RPC.Endpoint,
		solana.WithTimeout(cfg.RPC.Timeout),
		solana.WithMetrics(metrics),
		solana.WithLogger(logger.Named("rpc")),
	)

	loader := ingestion.NewLoader(ingestion.LoaderOptions{
		RPC:     rpc,
		Sink:    records,
		Metrics: metrics,
		Logger:  logger.Named("loader"),
	})
	if cfg.Ingest.Creators {
		if _, err := loader.LoadCreators(ctx); err != nil {
			return fmt.Errorf("load creators: %w", err)
		}
	}
	if len(cfg.Ingest.Mints) > 0 {
		if _, err := loader.LoadMints(ctx, cfg.Ingest.Mints); err != nil {
			return fmt.Errorf("load mints: %w", err)
		}
	}

	fetcher := fetch.NewHTTPFetcher()

	assetOpts := []assetcache.Option{
		assetcache.WithMetrics(metrics),
		assetcache.WithLogger(logger.Named("assets")),
	}
	extOpts := []extended.Option{
		extended.WithRewriter(cfg.Rewriter()),
		extended.WithMetrics(metrics),
		extended.WithLogger(logger.Named("extended")),
	}
	if recorder != nil {
		assetOpts = append(assetOpts, assetcache.WithRecorder(recorder))
		extOpts = append(extOpts, extended.WithRecorder(recorder))
	}

	server := api.New(api.Options{
		Addr: cfg.HTTP.Addr,
		Resolver: art.NewResolver(records,
			art.WithProfiles(cfg.Creators),
			art.WithMetrics(metrics),
			art.WithLogger(logger.Named("art")),
		),
		Extended: extended.NewLoader(ctx, extended.NewRecordURISource(records), cache, fetcher, extOpts...),
		Assets:   assetcache.New(fetcher, assetOpts...),
		Metrics:  metrics,
		Logger:   logger.Named("http"),
	})

	errCh := make(chan error, 2)

	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	if cfg.Ingest.Subscribe {
		wsCfg := solana.DefaultWSConfig()
		wsCfg.Logger = logger.Named("ws")
		ws, err := solana.NewWSClient(ctx, cfg.RPC.WSEndpoint, &wsCfg)
		if err != nil {
			return fmt.Errorf("connect websocket: %w", err)
		}
		defer ws.Close()

		watcher := ingestion.NewWatcher(ingestion.WatcherOptions{
			WS:      ws,
			Sink:    records,
			Metrics: metrics,
			Logger:  logger.Named("watcher"),
		})
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("watcher: %w", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
	case runErr = <-errCh:
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	return runErr
}
