package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"solana-art-lab/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0

	// MaxMultipleAccounts is the getMultipleAccounts per-request limit.
	MaxMultipleAccounts = 100
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithMetrics records per-method call latency.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	defer func() {
		c.metrics.RecordRPCLatency(method, time.Since(start))
	}()

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			c.logger.Debug("rpc attempt failed", zap.String("method", method), zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			c.logger.Debug("rpc rate limited", zap.String("method", method), zap.Int("attempt", attempt))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetAccountInfo retrieves account info by public key.
// Returns nil if account not found.
func (c *HTTPClient) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	params := []interface{}{
		pubkey,
		map[string]interface{}{
			"encoding": "base64",
		},
	}

	var result getAccountInfoResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	return result.Value.toAccountInfo(), nil
}

// GetMultipleAccounts retrieves accounts in request order, splitting into
// batches of MaxMultipleAccounts. Missing accounts are nil entries.
func (c *HTTPClient) GetMultipleAccounts(ctx context.Context, pubkeys []string) ([]*AccountInfo, error) {
	accounts := make([]*AccountInfo, 0, len(pubkeys))

	for start := 0; start < len(pubkeys); start += MaxMultipleAccounts {
		end := start + MaxMultipleAccounts
		if end > len(pubkeys) {
			end = len(pubkeys)
		}

		params := []interface{}{
			pubkeys[start:end],
			map[string]interface{}{
				"encoding": "base64",
			},
		}

		var result getMultipleAccountsResult
		if err := c.call(ctx, "getMultipleAccounts", params, &result); err != nil {
			return nil, err
		}
		if len(result.Value) != end-start {
			return nil, fmt.Errorf("getMultipleAccounts returned %d accounts for %d keys", len(result.Value), end-start)
		}

		for _, v := range result.Value {
			accounts = append(accounts, v.toAccountInfo())
		}
	}

	return accounts, nil
}

// GetProgramAccounts retrieves all accounts owned by programID matching opts.
func (c *HTTPClient) GetProgramAccounts(ctx context.Context, programID string, opts *ProgramAccountsOpts) ([]KeyedAccount, error) {
	config := map[string]interface{}{
		"encoding": "base64",
	}
	if opts != nil {
		var filters []interface{}
		if opts.DataSize > 0 {
			filters = append(filters, map[string]interface{}{"dataSize": opts.DataSize})
		}
		for _, m := range opts.Memcmp {
			filters = append(filters, map[string]interface{}{
				"memcmp": map[string]interface{}{
					"offset": m.Offset,
					"bytes":  base58.Encode(m.Bytes),
				},
			})
		}
		if len(filters) > 0 {
			config["filters"] = filters
		}
	}

	var result []getProgramAccountsItem
	if err := c.call(ctx, "getProgramAccounts", []interface{}{programID, config}, &result); err != nil {
		return nil, err
	}

	accounts := make([]KeyedAccount, 0, len(result))
	for _, item := range result {
		info := item.Account.toAccountInfo()
		if info == nil {
			continue
		}
		accounts = append(accounts, KeyedAccount{Pubkey: item.Pubkey, Account: *info})
	}
	return accounts, nil
}

type getAccountInfoResult struct {
	Value *accountValue `json:"value"`
}

type getMultipleAccountsResult struct {
	Value []*accountValue `json:"value"`
}

type getProgramAccountsItem struct {
	Pubkey  string        `json:"pubkey"`
	Account *accountValue `json:"account"`
}

type accountValue struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"` // [base64_data, encoding]
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
}

func (v *accountValue) toAccountInfo() *AccountInfo {
	if v == nil {
		return nil
	}

	info := &AccountInfo{
		Lamports:   v.Lamports,
		Owner:      v.Owner,
		Executable: v.Executable,
		RentEpoch:  v.RentEpoch,
	}
	if len(v.Data) >= 1 {
		info.Data = v.Data[0]
	}
	return info
}

var _ RPCClient = (*HTTPClient)(nil)
