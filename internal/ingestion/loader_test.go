package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-art-lab/internal/art"
	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/metaplex"
	"solana-art-lab/internal/solana"
	"solana-art-lab/internal/storage"
	"solana-art-lab/internal/storage/memory"
)

func TestLoader_LoadMints(t *testing.T) {
	rpc := newStubRPC()
	store := memory.NewRecordStore()

	printMint, nftMint, masterMint, parentMint := testKey(1), testKey(40), testKey(80), testKey(120)
	printMeta, printEdition := pdas(t, printMint)
	nftMeta, _ := pdas(t, nftMint)
	masterMeta, masterEdition := pdas(t, masterMint)
	_, parentEdition := pdas(t, parentMint)

	parentKey, err := metaplex.ParsePublicKey(parentEdition)
	require.NoError(t, err)
	maxSupply := uint64(50)

	rpc.accounts[printMeta] = metadataAccount(t, printMint, "Print", "https://x/print")
	rpc.accounts[printEdition] = account(t, metaplex.TokenMetadataProgramID, testEdition{
		Key: metaplex.KeyEditionV1, Parent: parentKey, Number: 7,
	})
	rpc.accounts[parentEdition] = account(t, metaplex.TokenMetadataProgramID, testMasterEditionV2{
		Key: metaplex.KeyMasterEditionV2, Supply: 12, MaxSupply: &maxSupply,
	})
	rpc.accounts[nftMeta] = metadataAccount(t, nftMint, "Solo", "https://x/solo")
	rpc.accounts[masterMeta] = metadataAccount(t, masterMint, "Master", "https://x/master")
	rpc.accounts[masterEdition] = account(t, metaplex.TokenMetadataProgramID, testMasterEditionV2{
		Key: metaplex.KeyMasterEditionV2, Supply: 3,
	})

	loader := NewLoader(LoaderOptions{RPC: rpc, Sink: store})
	stats, err := loader.LoadMints(context.Background(), []string{
		printMint.String(), nftMint.String(), masterMint.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Metadata)
	assert.Equal(t, 1, stats.Editions)
	assert.Equal(t, 2, stats.MasterEditions)
	assert.Equal(t, 1, stats.Skipped) // the plain NFT has no edition account
	assert.Equal(t, 2, rpc.calls)

	resolver := art.NewResolver(store)
	ctx := context.Background()

	printArt, err := resolver.ResolveID(ctx, printMint.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ArtTypePrint, printArt.Type)
	require.NotNil(t, printArt.EditionNumber)
	assert.Equal(t, uint64(7), *printArt.EditionNumber)
	require.NotNil(t, printArt.Supply)
	assert.Equal(t, uint64(12), *printArt.Supply)

	nftArt, err := resolver.ResolveID(ctx, nftMint.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ArtTypeNFT, nftArt.Type)

	masterArt, err := resolver.ResolveID(ctx, masterMint.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ArtTypeMaster, masterArt.Type)
	require.NotNil(t, masterArt.Supply)
	assert.Equal(t, uint64(3), *masterArt.Supply)
	assert.Nil(t, masterArt.MaxSupply)
}

func TestLoader_LoadMints_InvalidMint(t *testing.T) {
	loader := NewLoader(LoaderOptions{RPC: newStubRPC(), Sink: memory.NewRecordStore()})
	_, err := loader.LoadMints(context.Background(), []string{"not-base58-0OIl"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestLoader_LoadMints_SkipsUndecodable(t *testing.T) {
	rpc := newStubRPC()
	store := memory.NewRecordStore()

	mint := testKey(1)
	metaAddr, _ := pdas(t, mint)
	rpc.accounts[metaAddr] = &solana.AccountInfo{Owner: metaplex.TokenMetadataProgramID, Data: "CQ=="} // key 9

	stats, err := NewLoader(LoaderOptions{RPC: rpc, Sink: store}).LoadMints(context.Background(), []string{mint.String()})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Metadata)
	assert.Equal(t, 2, stats.Skipped)
}

func TestLoader_LoadCreators(t *testing.T) {
	rpc := newStubRPC()
	store := memory.NewRecordStore()

	for i, fill := range []byte{10, 60} {
		info := account(t, metaplex.MetaplexProgramID, testWhitelistedCreator{
			Key: metaplex.KeyWhitelistedCreatorV1, Address: testKey(fill), Activated: i == 0,
		})
		rpc.program = append(rpc.program, solana.KeyedAccount{Pubkey: testKey(fill + 100).String(), Account: *info})
	}

	stats, err := NewLoader(LoaderOptions{RPC: rpc, Sink: store}).LoadCreators(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Creators)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	c, ok := snap.Creators[testKey(10).String()]
	require.True(t, ok)
	assert.True(t, c.Activated)
	assert.False(t, snap.Creators[testKey(60).String()].Activated)
}
