package ingestion

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"solana-art-lab/internal/metaplex"
	"solana-art-lab/internal/observability"
	"solana-art-lab/internal/solana"
)

// Watcher keeps the sink current from program account subscriptions.
type Watcher struct {
	ws       solana.WSClient
	sink     RecordSink
	programs []string
	onRecord func(kind, address string)
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// WatcherOptions contains configuration for creating a Watcher.
type WatcherOptions struct {
	WS   solana.WSClient
	Sink RecordSink
	// Programs defaults to the token metadata and storefront programs.
	Programs []string
	// OnRecord is called after each stored record.
	OnRecord func(kind, address string)
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// NewWatcher creates a new Watcher.
func NewWatcher(opts WatcherOptions) *Watcher {
	programs := opts.Programs
	if len(programs) == 0 {
		programs = []string{metaplex.TokenMetadataProgramID, metaplex.MetaplexProgramID}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		ws:       opts.WS,
		sink:     opts.Sink,
		programs: programs,
		onRecord: opts.OnRecord,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// Run subscribes to every program and applies notifications until ctx is
// cancelled or a subscription channel closes.
func (w *Watcher) Run(ctx context.Context) error {
	merged := make(chan solana.AccountNotification)
	closed := make(chan string, len(w.programs))

	for _, program := range w.programs {
		ch, err := w.ws.ProgramSubscribe(ctx, program)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", program, err)
		}
		w.logger.Info("subscribed to program", zap.String("program", program))

		go func(program string, ch <-chan solana.AccountNotification) {
			for n := range ch {
				select {
				case merged <- n:
				case <-ctx.Done():
					return
				}
			}
			closed <- program
		}(program, ch)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping")
			return ctx.Err()

		case program := <-closed:
			w.logger.Warn("subscription channel closed", zap.String("program", program))
			return errors.New("subscription channel closed")

		case n := <-merged:
			w.handle(n)
		}
	}
}

func (w *Watcher) handle(n solana.AccountNotification) {
	acc, err := decodeInfo(n.Pubkey, &n.Account)
	if err != nil {
		// Most program accounts are not art records.
		if !errors.Is(err, metaplex.ErrUnknownKey) && !errors.Is(err, metaplex.ErrEmptyData) {
			w.metrics.RecordDecodeError(n.Account.Owner)
			w.logger.Debug("skip undecodable notification", zap.String("address", n.Pubkey), zap.Error(err))
		}
		return
	}

	kind, err := apply(w.sink, acc)
	if err != nil {
		w.logger.Warn("skip notification", zap.String("address", n.Pubkey), zap.Error(err))
		return
	}
	w.metrics.RecordIngested(kind)
	w.logger.Debug("record updated", zap.String("kind", kind), zap.String("address", n.Pubkey), zap.Int64("slot", n.Slot))

	if w.onRecord != nil {
		w.onRecord(kind, n.Pubkey)
	}
}
