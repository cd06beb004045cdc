package solana

import "context"

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// ProgramSubscribe streams account changes for accounts owned by programID.
	ProgramSubscribe(ctx context.Context, programID string) (<-chan AccountNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// AccountNotification represents a program subscription message.
type AccountNotification struct {
	Pubkey  string
	Slot    int64
	Account AccountInfo
}
