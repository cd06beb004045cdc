package extended

import "strings"

// Default CDN rewrite pair.
const (
	DefaultRewriteFrom = "https://arweave.net/"
	DefaultRewriteTo   = "https://coldcdn.com/api/cdn/bronil/"
)

// Rewriter maps content URIs onto a CDN prefix.
type Rewriter struct {
	Enabled bool
	From    string
	To      string
}

// DefaultRewriter returns the disabled arweave rewrite.
func DefaultRewriter() Rewriter {
	return Rewriter{From: DefaultRewriteFrom, To: DefaultRewriteTo}
}

// Rewrite replaces the first occurrence of From with To when enabled.
func (r Rewriter) Rewrite(uri string) string {
	if !r.Enabled || r.From == "" {
		return uri
	}
	return strings.Replace(uri, r.From, r.To, 1)
}
