package solana

import "context"

// RPCClient defines the Solana JSON-RPC account reads used for record loading.
type RPCClient interface {
	// GetAccountInfo retrieves one account. Returns nil if it does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetMultipleAccounts retrieves accounts in request order.
	// Missing accounts are nil entries.
	GetMultipleAccounts(ctx context.Context, pubkeys []string) ([]*AccountInfo, error)

	// GetProgramAccounts retrieves all accounts owned by programID matching opts.
	GetProgramAccounts(ctx context.Context, programID string, opts *ProgramAccountsOpts) ([]KeyedAccount, error)
}
