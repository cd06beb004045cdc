// Package fetch retrieves off-chain content over HTTP.
package fetch

import (
	"context"
	"errors"
)

// Mode selects how intermediary caches are treated.
type Mode int

const (
	// ModePreferCache accepts any cached response, however stale.
	ModePreferCache Mode = iota
	// ModeBypassCache forces revalidation with the origin.
	ModeBypassCache
)

// String returns the label used in logs and metrics.
func (m Mode) String() string {
	switch m {
	case ModePreferCache:
		return "prefer-cache"
	case ModeBypassCache:
		return "bypass-cache"
	default:
		return "unknown"
	}
}

// Fetch errors.
var (
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrMalformedJSON is returned when a body is not valid JSON.
	ErrMalformedJSON = errors.New("malformed json")
)

// Fetcher retrieves content by URI.
type Fetcher interface {
	// Fetch returns the body bytes of uri.
	Fetch(ctx context.Context, uri string, mode Mode) ([]byte, error)
}
