package ingestion

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/require"

	"solana-art-lab/internal/metaplex"
	"solana-art-lab/internal/solana"
)

// Borsh layouts matching the on-chain accounts.

type testCreator struct {
	Address  metaplex.PublicKey
	Verified bool
	Share    uint8
}

type testData struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]testCreator
}

type testMetadata struct {
	Key                 uint8
	UpdateAuthority     metaplex.PublicKey
	Mint                metaplex.PublicKey
	Data                testData
	PrimarySaleHappened bool
	IsMutable           bool
}

type testEdition struct {
	Key    uint8
	Parent metaplex.PublicKey
	Number uint64
}

type testMasterEditionV2 struct {
	Key       uint8
	Supply    uint64
	MaxSupply *uint64
}

type testWhitelistedCreator struct {
	Key       uint8
	Address   metaplex.PublicKey
	Activated bool
}

func testKey(fill byte) metaplex.PublicKey {
	var pk metaplex.PublicKey
	for i := range pk {
		pk[i] = fill + byte(i)
	}
	return pk
}

func account(t *testing.T, owner string, v interface{}) *solana.AccountInfo {
	t.Helper()
	data, err := borsh.Serialize(v)
	require.NoError(t, err)
	return &solana.AccountInfo{Owner: owner, Data: base64.StdEncoding.EncodeToString(data), Lamports: 1}
}

func metadataAccount(t *testing.T, mint metaplex.PublicKey, name, uri string, creators ...testCreator) *solana.AccountInfo {
	t.Helper()
	raw := testMetadata{
		Key:  metaplex.KeyMetadataV1,
		Mint: mint,
		Data: testData{Name: name, URI: uri, SellerFeeBasisPoints: 250},
	}
	if len(creators) > 0 {
		raw.Data.Creators = &creators
	}
	return account(t, metaplex.TokenMetadataProgramID, raw)
}

func pdas(t *testing.T, mint metaplex.PublicKey) (string, string) {
	t.Helper()
	meta, err := metaplex.MetadataAddress(mint)
	require.NoError(t, err)
	edition, err := metaplex.EditionAddress(mint)
	require.NoError(t, err)
	return meta.String(), edition.String()
}

// stubRPC serves accounts from a map.
type stubRPC struct {
	mu       sync.Mutex
	accounts map[string]*solana.AccountInfo
	program  []solana.KeyedAccount
	calls    int
}

func newStubRPC() *stubRPC {
	return &stubRPC{accounts: make(map[string]*solana.AccountInfo)}
}

func (s *stubRPC) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.accounts[pubkey], nil
}

func (s *stubRPC) GetMultipleAccounts(_ context.Context, pubkeys []string) ([]*solana.AccountInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	out := make([]*solana.AccountInfo, len(pubkeys))
	for i, k := range pubkeys {
		out[i] = s.accounts[k]
	}
	return out, nil
}

func (s *stubRPC) GetProgramAccounts(_ context.Context, _ string, _ *solana.ProgramAccountsOpts) ([]solana.KeyedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.program, nil
}

// stubWS hands out channels the test feeds directly.
type stubWS struct {
	mu   sync.Mutex
	subs map[string]chan solana.AccountNotification
}

func newStubWS() *stubWS {
	return &stubWS{subs: make(map[string]chan solana.AccountNotification)}
}

func (s *stubWS) ProgramSubscribe(_ context.Context, programID string) (<-chan solana.AccountNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan solana.AccountNotification, 16)
	s.subs[programID] = ch
	return ch, nil
}

func (s *stubWS) channel(programID string) chan solana.AccountNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[programID]
}

func (s *stubWS) Close() error { return nil }
