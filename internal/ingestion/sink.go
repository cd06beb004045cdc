package ingestion

import (
	"fmt"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/metaplex"
)

// RecordSink receives decoded on-chain records. Upserts are idempotent.
type RecordSink interface {
	PutMetadata(address string, m *domain.Metadata) error
	PutEdition(address string, e *domain.Edition) error
	PutMasterEdition(address string, m domain.MasterEdition) error
	PutCreator(c *domain.WhitelistedCreator) error
}

// Record kinds used in stats and metrics.
const (
	KindMetadata      = "metadata"
	KindEdition       = "edition"
	KindMasterEdition = "master_edition"
	KindCreator       = "creator"
)

// apply upserts one decoded account and returns its kind.
func apply(sink RecordSink, acc *metaplex.Account) (string, error) {
	var (
		kind string
		err  error
	)

	switch {
	case acc.Metadata != nil:
		kind, err = KindMetadata, sink.PutMetadata(acc.Address, acc.Metadata)
	case acc.Edition != nil:
		kind, err = KindEdition, sink.PutEdition(acc.Address, acc.Edition)
	case acc.MasterEdition != nil:
		kind, err = KindMasterEdition, sink.PutMasterEdition(acc.Address, acc.MasterEdition)
	case acc.Creator != nil:
		kind, err = KindCreator, sink.PutCreator(acc.Creator)
	default:
		return "", fmt.Errorf("account %s decoded to no record", acc.Address)
	}

	if err != nil {
		return kind, fmt.Errorf("store %s %s: %w", kind, acc.Address, err)
	}
	return kind, nil
}
