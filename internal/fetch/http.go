package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 64 << 20
	DefaultUserAgent    = "solana-art-lab/1"
)

// HTTPFetcher implements Fetcher over net/http.
type HTTPFetcher struct {
	client       *http.Client
	maxBodyBytes int64
	userAgent    string
}

// Option configures HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithMaxBodyBytes caps the size of a fetched body.
func WithMaxBodyBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBodyBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:       &http.Client{Timeout: DefaultTimeout},
		maxBodyBytes: DefaultMaxBodyBytes,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a single GET. There are no retries here; callers decide
// whether a second attempt with another mode is worth it.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string, mode Mode) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	switch mode {
	case ModeBypassCache:
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	default:
		req.Header.Set("Cache-Control", "max-stale")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w %d for %s", ErrUnexpectedStatus, resp.StatusCode, uri)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("response for %s exceeds %d bytes", uri, f.maxBodyBytes)
	}

	return body, nil
}

// FetchJSON fetches uri and checks the body is valid JSON.
// The raw bytes are returned so callers can persist them verbatim.
func FetchJSON(ctx context.Context, f Fetcher, uri string, mode Mode) ([]byte, error) {
	body, err := f.Fetch(ctx, uri, mode)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s", ErrMalformedJSON, uri)
	}
	return body, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
