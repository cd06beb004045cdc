package assetcache

import "context"

// Request is a pending or completed asset lookup.
type Request struct {
	uri  string
	done chan struct{}

	// written once before done is closed
	handle   string
	ok       bool
	degraded bool
}

func newRequest(uri string) *Request {
	return &Request{uri: uri, done: make(chan struct{})}
}

func completedRequest(uri, handle string, ok bool) *Request {
	r := newRequest(uri)
	r.complete(handle, ok, false)
	return r
}

func (r *Request) complete(handle string, ok, degraded bool) {
	r.handle = handle
	r.ok = ok
	r.degraded = degraded
	close(r.done)
}

// URI returns the requested URI.
func (r *Request) URI() string {
	return r.uri
}

// Loading reports whether the request is still in flight.
// It transitions from true to false exactly once.
func (r *Request) Loading() bool {
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Done is closed when the request completes.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Handle returns the resolved handle. It reports false while loading and
// when the asset could not be obtained.
func (r *Request) Handle() (string, bool) {
	if r.Loading() {
		return "", false
	}
	return r.handle, r.ok
}

// Degraded reports whether the handle is the raw external URI rather than
// a locally held blob.
func (r *Request) Degraded() bool {
	if r.Loading() {
		return false
	}
	return r.degraded
}

// Wait blocks until the request completes or ctx is done.
func (r *Request) Wait(ctx context.Context) (string, bool, error) {
	select {
	case <-r.done:
		return r.handle, r.ok, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}
