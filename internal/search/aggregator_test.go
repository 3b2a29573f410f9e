package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	configured bool
	hits       map[Filter][]Hit
	fail       map[Filter]error
	queries    []Query
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) Search(_ context.Context, q Query) ([]Hit, error) {
	f.queries = append(f.queries, q)
	filter := filterFromQuery(q.Q)
	if err := f.fail[filter]; err != nil {
		return nil, err
	}
	return f.hits[filter], nil
}

// filterFromQuery maps a query back to its filter by its site expression.
func filterFromQuery(q string) Filter {
	for _, f := range Filters() {
		if sf := BuildSiteFilter(f); sf != "" && strings.HasPrefix(q, sf) {
			return f
		}
	}
	return FilterAll
}

func hitsFor(domain string, n int) []Hit {
	hits := make([]Hit, n)
	for i := range hits {
		hits[i] = Hit{
			Link:    fmt.Sprintf("https://www.%s/post/%d", domain, i),
			Title:   fmt.Sprintf("post %d", i),
			Snippet: "snippet",
		}
	}
	return hits
}

func TestAggregatorMissingKey(t *testing.T) {
	p := &fakeProvider{configured: false}
	_, err := NewAggregator(p).Search(context.Background(), Request{Keywords: []string{"beam"}})
	require.True(t, errors.Is(err, ErrMissingAPIKey))
	require.Empty(t, p.queries)
}

func TestAggregatorNoKeywords(t *testing.T) {
	p := &fakeProvider{configured: true}
	results, err := NewAggregator(p).Search(context.Background(), Request{Keywords: []string{"(only)", "  "}})
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
	require.Empty(t, p.queries)
}

func TestAggregatorDefaultsToReddit(t *testing.T) {
	p := &fakeProvider{configured: true, hits: map[Filter][]Hit{FilterReddit: hitsFor("reddit.com", 2)}}
	results, err := NewAggregator(p).Search(context.Background(), Request{Keywords: []string{"beam"}, Language: LanguageEnglish})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, p.queries, 1)
	require.Equal(t, "(site:reddit.com) beam", p.queries[0].Q)
	require.Equal(t, HitsPerQuery, p.queries[0].Num)
	require.Equal(t, "us", p.queries[0].Country)
	require.Equal(t, "en", p.queries[0].Language)
	require.Equal(t, "reddit.com", results[0].Source)
	require.Equal(t, FilterReddit, results[0].Filter)
}

func TestAggregatorAllHasNoSiteRestriction(t *testing.T) {
	p := &fakeProvider{configured: true, hits: map[Filter][]Hit{FilterAll: hitsFor("example.com", 3)}}
	_, err := NewAggregator(p).Search(context.Background(), Request{
		Keywords: []string{"beam", "steel"},
		Filters:  []Filter{FilterReddit, FilterAll},
	})
	require.NoError(t, err)
	require.Len(t, p.queries, 1)
	require.Equal(t, "beam steel", p.queries[0].Q)
	require.NotContains(t, p.queries[0].Q, "site:")
}

func TestAggregatorCapsAndDeduplicates(t *testing.T) {
	shared := Hit{Link: "https://www.reddit.com/post/0", Title: "shared"}
	p := &fakeProvider{configured: true, hits: map[Filter][]Hit{
		FilterReddit: hitsFor("reddit.com", 20),
		FilterQuora:  append([]Hit{shared}, hitsFor("quora.com", 20)...),
	}}

	results, err := NewAggregator(p).Search(context.Background(), Request{
		Keywords: []string{"beam"},
		Filters:  []Filter{FilterReddit, FilterQuora},
	})
	require.NoError(t, err)
	require.LessOrEqual(t, len(results), 2*MaxResultsPerFilter)
	require.Len(t, results, 10)

	seen := map[string]bool{}
	for _, r := range results {
		require.False(t, seen[r.URL], "duplicate url %s", r.URL)
		seen[r.URL] = true
	}
	require.Equal(t, FilterReddit, results[0].Filter)
	require.Equal(t, FilterQuora, results[5].Filter)
	require.Equal(t, "quora.com", results[5].Source)
}

func TestAggregatorSkipsPDFs(t *testing.T) {
	p := &fakeProvider{configured: true, hits: map[Filter][]Hit{FilterReddit: {
		{Link: "https://reddit.com/files/datasheet.pdf", Title: "datasheet"},
		{Link: "https://reddit.com/r/a", Title: "[PDF] manual"},
		{Link: "https://reddit.com/r/b", Title: "discussion"},
	}}}

	results, err := NewAggregator(p).Search(context.Background(), Request{Keywords: []string{"beam"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "https://reddit.com/r/b", results[0].URL)
}

func TestAggregatorCustomPDFMarkers(t *testing.T) {
	p := &fakeProvider{configured: true, hits: map[Filter][]Hit{FilterReddit: {
		{Link: "https://reddit.com/r/a", Title: "Slides deck"},
	}}}

	a := NewAggregator(p, WithPDFDetector(NewPDFDetector("slides")))
	results, err := a.Search(context.Background(), Request{Keywords: []string{"beam"}})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestAggregatorCategoryFailureIsSkipped(t *testing.T) {
	p := &fakeProvider{
		configured: true,
		hits:       map[Filter][]Hit{FilterQuora: hitsFor("quora.com", 3)},
		fail:       map[Filter]error{FilterReddit: errors.New("boom")},
	}

	results, err := NewAggregator(p).Search(context.Background(), Request{
		Keywords: []string{"beam"},
		Filters:  []Filter{FilterReddit, FilterQuora},
	})
	require.NoError(t, err)
	require.Len(t, p.queries, 2)
	require.Len(t, results, 3)
	for _, r := range results {
		require.Equal(t, FilterQuora, r.Filter)
	}
}

func TestAggregatorDefaultFiltersOption(t *testing.T) {
	p := &fakeProvider{configured: true}
	a := NewAggregator(p, WithDefaultFilters([]Filter{FilterVelog, FilterTistory}))
	_, err := a.Search(context.Background(), Request{Keywords: []string{"beam"}})
	require.NoError(t, err)
	require.Len(t, p.queries, 2)
	require.True(t, strings.HasPrefix(p.queries[0].Q, "(site:velog.io)"))
	require.Equal(t, []Filter{FilterVelog, FilterTistory}, a.EffectiveFilters(nil))
}

func TestAggregatorEffectiveFilters(t *testing.T) {
	a := NewAggregator(&fakeProvider{configured: true})
	require.Equal(t, []Filter{DefaultFilter}, a.EffectiveFilters(nil))
	require.Equal(t, []Filter{FilterQuora, FilterReddit}, a.EffectiveFilters([]Filter{FilterQuora, FilterReddit}))
	require.Equal(t, []Filter{FilterAll}, a.EffectiveFilters([]Filter{FilterQuora, FilterAll}))
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.reddit.com/r/x", "reddit.com"},
		{"https://cafe.naver.com/abc", "cafe.naver.com"},
		{"https://www.example.com:8443/a", "example.com"},
		{"not a url", "unknown"},
		{"", "unknown"},
		{"://bad", "unknown"},
	}

	for _, tt := range tests {
		if got := ExtractDomain(tt.input); got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
