package search

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned before any request when the search provider
// has no credential.
var ErrMissingAPIKey = errors.New("search API key is not configured")

// Query is one provider request.
type Query struct {
	Q        string
	Num      int
	Country  string // gl
	Language string // hl
}

// Hit is one organic result in provider rank order.
type Hit struct {
	Link    string
	Title   string
	Snippet string
}

// Provider executes web searches.
type Provider interface {
	// Configured reports whether the provider has a credential.
	Configured() bool
	Search(ctx context.Context, q Query) ([]Hit, error)
}
