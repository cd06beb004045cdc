package ingestion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solana-art-lab/internal/metaplex"
	"solana-art-lab/internal/observability"
	"solana-art-lab/internal/solana"
	"solana-art-lab/internal/storage"
)

// Loader fetches Metaplex records over RPC and upserts them into a sink.
type Loader struct {
	rpc     solana.RPCClient
	sink    RecordSink
	metrics *observability.Metrics
	logger  *zap.Logger
}

// LoaderOptions contains configuration for creating a Loader.
type LoaderOptions struct {
	RPC     solana.RPCClient
	Sink    RecordSink
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewLoader creates a new record loader.
func NewLoader(opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		rpc:     opts.RPC,
		sink:    opts.Sink,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// LoadStats counts records stored by one load.
type LoadStats struct {
	Metadata       int
	Editions       int
	MasterEditions int
	Creators       int
	Skipped        int // missing or undecodable accounts
}

func (s *LoadStats) add(kind string) {
	switch kind {
	case KindMetadata:
		s.Metadata++
	case KindEdition:
		s.Editions++
	case KindMasterEdition:
		s.MasterEditions++
	case KindCreator:
		s.Creators++
	}
}

// LoadMints loads the metadata and edition records of each mint, then the
// master editions that loaded editions point at.
func (l *Loader) LoadMints(ctx context.Context, mints []string) (LoadStats, error) {
	var stats LoadStats
	if len(mints) == 0 {
		return stats, nil
	}

	addresses := make([]string, 0, 2*len(mints))
	for _, m := range mints {
		mint, err := metaplex.ParsePublicKey(m)
		if err != nil {
			return stats, fmt.Errorf("mint %q: %w", m, storage.ErrInvalidInput)
		}
		metaAddr, err := metaplex.MetadataAddress(mint)
		if err != nil {
			return stats, fmt.Errorf("derive metadata address for %s: %w", m, err)
		}
		editionAddr, err := metaplex.EditionAddress(mint)
		if err != nil {
			return stats, fmt.Errorf("derive edition address for %s: %w", m, err)
		}
		addresses = append(addresses, metaAddr.String(), editionAddr.String())
	}

	accounts, err := l.rpc.GetMultipleAccounts(ctx, addresses)
	if err != nil {
		return stats, fmt.Errorf("fetch metadata accounts: %w", err)
	}

	parents := make(map[string]struct{})
	for i, info := range accounts {
		acc := l.decode(addresses[i], info, &stats)
		if acc == nil {
			continue
		}
		if acc.Edition != nil && acc.Edition.Parent != "" {
			parents[acc.Edition.Parent] = struct{}{}
		}
		l.store(acc, &stats)
	}

	if len(parents) == 0 {
		l.logLoaded("mints loaded", stats)
		return stats, nil
	}

	parentAddrs := make([]string, 0, len(parents))
	for p := range parents {
		parentAddrs = append(parentAddrs, p)
	}

	parentAccounts, err := l.rpc.GetMultipleAccounts(ctx, parentAddrs)
	if err != nil {
		return stats, fmt.Errorf("fetch master edition accounts: %w", err)
	}
	for i, info := range parentAccounts {
		if acc := l.decode(parentAddrs[i], info, &stats); acc != nil {
			l.store(acc, &stats)
		}
	}

	l.logLoaded("mints loaded", stats)
	return stats, nil
}

// LoadCreators loads every whitelisted creator account of the storefront program.
func (l *Loader) LoadCreators(ctx context.Context) (LoadStats, error) {
	var stats LoadStats

	accounts, err := l.rpc.GetProgramAccounts(ctx, metaplex.MetaplexProgramID, &solana.ProgramAccountsOpts{
		Memcmp: []solana.MemcmpFilter{{Offset: 0, Bytes: []byte{metaplex.KeyWhitelistedCreatorV1}}},
	})
	if err != nil {
		return stats, fmt.Errorf("fetch creator accounts: %w", err)
	}

	for i := range accounts {
		info := accounts[i].Account
		if acc := l.decode(accounts[i].Pubkey, &info, &stats); acc != nil {
			l.store(acc, &stats)
		}
	}

	l.logLoaded("creators loaded", stats)
	return stats, nil
}

func (l *Loader) decode(address string, info *solana.AccountInfo, stats *LoadStats) *metaplex.Account {
	if info == nil {
		stats.Skipped++
		return nil
	}
	acc, err := decodeInfo(address, info)
	if err != nil {
		stats.Skipped++
		l.metrics.RecordDecodeError(info.Owner)
		l.logger.Warn("skip undecodable account", zap.String("address", address), zap.String("owner", info.Owner), zap.Error(err))
		return nil
	}
	return acc
}

func (l *Loader) store(acc *metaplex.Account, stats *LoadStats) {
	kind, err := apply(l.sink, acc)
	if err != nil {
		stats.Skipped++
		l.logger.Warn("skip account", zap.String("address", acc.Address), zap.Error(err))
		return
	}
	stats.add(kind)
	l.metrics.RecordIngested(kind)
}

func (l *Loader) logLoaded(msg string, stats LoadStats) {
	l.logger.Info(msg,
		zap.Int("metadata", stats.Metadata),
		zap.Int("editions", stats.Editions),
		zap.Int("master_editions", stats.MasterEditions),
		zap.Int("creators", stats.Creators),
		zap.Int("skipped", stats.Skipped))
}

func decodeInfo(address string, info *solana.AccountInfo) (*metaplex.Account, error) {
	data, err := info.Bytes()
	if err != nil {
		return nil, err
	}
	return metaplex.DecodeAccount(address, info.Owner, data)
}
