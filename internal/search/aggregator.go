package search

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"outreach/internal/metrics"
)

const (
	// HitsPerQuery is the number of raw hits requested per filter category.
	HitsPerQuery = 20
	// MaxResultsPerFilter caps accepted results per filter category.
	MaxResultsPerFilter = 5

	unknownSource = "unknown"
)

// Request describes one aggregation run.
type Request struct {
	Keywords     []string
	Language     Language
	Filters      []Filter
	UserKeywords []string
}

// Result is one accepted community page.
type Result struct {
	Title   string
	URL     string
	Snippet string
	Source  string
	Filter  Filter
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithPDFDetector replaces the default PDF detector.
func WithPDFDetector(d *PDFDetector) AggregatorOption {
	return func(a *Aggregator) {
		if d != nil {
			a.pdf = d
		}
	}
}

// WithDefaultFilters sets the filters used when a request names none.
func WithDefaultFilters(filters []Filter) AggregatorOption {
	return func(a *Aggregator) {
		if len(filters) > 0 {
			a.defaultFilters = append([]Filter(nil), filters...)
		}
	}
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(logger *zap.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger.Named("search")
		}
	}
}

// Aggregator runs one query per filter category and merges the results.
type Aggregator struct {
	provider       Provider
	pdf            *PDFDetector
	defaultFilters []Filter
	logger         *zap.Logger
}

// NewAggregator creates an Aggregator backed by provider.
func NewAggregator(provider Provider, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		provider:       provider,
		pdf:            NewPDFDetector(),
		defaultFilters: []Filter{DefaultFilter},
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// EffectiveFilters returns the categories a search over filters queries, in
// order. An empty list resolves to the default filters.
func (a *Aggregator) EffectiveFilters(filters []Filter) []Filter {
	if collapsed := CollapseFilters(filters); len(collapsed) > 0 {
		return collapsed
	}
	return append([]Filter(nil), a.defaultFilters...)
}

// Search normalizes the keywords and queries every requested filter category
// in order. A category whose provider request fails is logged and skipped.
// Results never repeat a URL, never point at PDFs, and hold at most
// MaxResultsPerFilter entries per category.
func (a *Aggregator) Search(ctx context.Context, req Request) ([]Result, error) {
	if a.provider == nil || !a.provider.Configured() {
		return nil, ErrMissingAPIKey
	}

	keywords := NormalizeKeywords(req.Keywords, req.UserKeywords)
	if len(keywords) == 0 {
		a.logger.Info("no usable keywords, skipping search")
		return []Result{}, nil
	}

	filters := a.EffectiveFilters(req.Filters)
	locale := LocaleFor(req.Language)

	a.logger.Debug("searching related pages",
		zap.Strings("keywords", keywords),
		zap.Int("filters", len(filters)),
		zap.String("gl", locale.Country),
		zap.String("hl", locale.Language),
	)

	seen := make(map[string]struct{})
	results := make([]Result, 0)
	for _, f := range filters {
		query := BuildSearchQuery(keywords, f)
		hits, err := a.provider.Search(ctx, Query{
			Q:        query,
			Num:      HitsPerQuery,
			Country:  locale.Country,
			Language: locale.Language,
		})
		if err != nil {
			a.logger.Warn("search category failed",
				zap.String("filter", string(f)),
				zap.String("query", query),
				zap.Error(err),
			)
			metrics.RecordSearch(string(f), metrics.OutcomeFailed, 0)
			continue
		}

		accepted := 0
		for _, hit := range hits {
			if accepted == MaxResultsPerFilter {
				break
			}
			if hit.Link == "" {
				continue
			}
			if _, dup := seen[hit.Link]; dup {
				continue
			}
			if a.pdf.IsPDF(hit.Link, hit.Title) {
				continue
			}
			seen[hit.Link] = struct{}{}
			results = append(results, Result{
				Title:   hit.Title,
				URL:     hit.Link,
				Snippet: hit.Snippet,
				Source:  ExtractDomain(hit.Link),
				Filter:  f,
			})
			accepted++
		}
		metrics.RecordSearch(string(f), metrics.OutcomeSuccess, accepted)
	}

	return results, nil
}

// ExtractDomain returns the URL's host without a leading "www.", or "unknown"
// when the URL cannot be parsed.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return unknownSource
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
