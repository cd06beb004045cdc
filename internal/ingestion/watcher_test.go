package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-art-lab/internal/metaplex"
	"solana-art-lab/internal/solana"
	"solana-art-lab/internal/storage/memory"
)

func TestWatcher_AppliesNotifications(t *testing.T) {
	ws := newStubWS()
	store := memory.NewRecordStore()

	var mu sync.Mutex
	var seen []string
	w := NewWatcher(WatcherOptions{
		WS:   ws,
		Sink: store,
		OnRecord: func(kind, address string) {
			mu.Lock()
			seen = append(seen, kind)
			mu.Unlock()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return ws.channel(metaplex.TokenMetadataProgramID) != nil && ws.channel(metaplex.MetaplexProgramID) != nil
	}, time.Second, 5*time.Millisecond)

	mint := testKey(1)
	metaAddr, _ := pdas(t, mint)
	ws.channel(metaplex.TokenMetadataProgramID) <- solana.AccountNotification{
		Pubkey:  metaAddr,
		Slot:    10,
		Account: *metadataAccount(t, mint, "Streamed", "https://x/s"),
	}
	// not a record this service understands
	ws.channel(metaplex.TokenMetadataProgramID) <- solana.AccountNotification{
		Pubkey:  "other",
		Account: solana.AccountInfo{Owner: metaplex.TokenMetadataProgramID, Data: "CQ=="},
	}
	creator := account(t, metaplex.MetaplexProgramID, testWhitelistedCreator{
		Key: metaplex.KeyWhitelistedCreatorV1, Address: testKey(50), Activated: true,
	})
	ws.channel(metaplex.MetaplexProgramID) <- solana.AccountNotification{Pubkey: "wc", Account: *creator}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 5*time.Millisecond)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	meta := snap.FindMetadata(mint.String())
	require.NotNil(t, meta)
	assert.Equal(t, "Streamed", meta.Data.Name)
	assert.Contains(t, snap.Creators, testKey(50).String())

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_ChannelClosed(t *testing.T) {
	ws := newStubWS()
	w := NewWatcher(WatcherOptions{WS: ws, Sink: memory.NewRecordStore(), Programs: []string{"prog"}})

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	require.Eventually(t, func() bool { return ws.channel("prog") != nil }, time.Second, 5*time.Millisecond)
	close(ws.channel("prog"))

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
