// Package search finds community pages related to a set of keywords.
//
// Keywords are normalized, turned into one query per filter category (a named
// group of community sites), sent to an external search provider, and the
// hits are deduplicated and capped across the whole run.
package search

import (
	"errors"
	"fmt"
	"strings"
)

// Filter is a named group of community site domains used to scope a search.
type Filter string

// Filter categories. The set is closed; FilterAll carries no domain restriction.
const (
	FilterAll           Filter = "all"
	FilterReddit        Filter = "reddit"
	FilterQuora         Filter = "quora"
	FilterLinkedIn      Filter = "linkedin"
	FilterEngineerForum Filter = "engineer_forum"
	FilterMedium        Filter = "medium"
	FilterVelog         Filter = "velog"
	FilterTistory       Filter = "tistory"
	FilterNaver         Filter = "naver"
	FilterBrunch        Filter = "brunch"
	FilterDaum          Filter = "daum"
)

// DefaultFilter is used when a request names no filters.
const DefaultFilter = FilterReddit

// MaxQueryKeywords is the number of keywords joined into one query.
const MaxQueryKeywords = 5

// ErrUnknownFilter is returned when a filter name is not in the catalog.
var ErrUnknownFilter = errors.New("unknown search filter")

// catalog lists every filter with its domains, in declaration order.
var catalog = []struct {
	filter  Filter
	domains []string
}{
	{FilterAll, nil},
	{FilterReddit, []string{"reddit.com"}},
	{FilterQuora, []string{"quora.com"}},
	{FilterLinkedIn, []string{"linkedin.com"}},
	{FilterEngineerForum, []string{"eng-tips.com", "engineering.com", "engineerboards.com"}},
	{FilterMedium, []string{"medium.com"}},
	{FilterVelog, []string{"velog.io"}},
	{FilterTistory, []string{"tistory.com"}},
	{FilterNaver, []string{"blog.naver.com", "cafe.naver.com"}},
	{FilterBrunch, []string{"brunch.co.kr"}},
	{FilterDaum, []string{"cafe.daum.net"}},
}

var catalogIndex = func() map[Filter]int {
	idx := make(map[Filter]int, len(catalog))
	for i, entry := range catalog {
		idx[entry.filter] = i
	}
	return idx
}()

// Filters returns every known filter in catalog order.
func Filters() []Filter {
	filters := make([]Filter, 0, len(catalog))
	for _, entry := range catalog {
		filters = append(filters, entry.filter)
	}
	return filters
}

// Domains returns a copy of the domains registered for a filter.
// Unknown filters and FilterAll have no domains.
func Domains(f Filter) []string {
	i, ok := catalogIndex[f]
	if !ok {
		return nil
	}
	return append([]string(nil), catalog[i].domains...)
}

// IsKnown reports whether f is in the catalog.
func (f Filter) IsKnown() bool {
	_, ok := catalogIndex[f]
	return ok
}

// ParseFilter converts a filter name to a Filter.
func ParseFilter(name string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(name)))
	if !f.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return f, nil
}

// ParseFilters converts filter names, failing on the first unknown name.
func ParseFilters(names []string) ([]Filter, error) {
	filters := make([]Filter, 0, len(names))
	for _, name := range names {
		f, err := ParseFilter(name)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// CollapseFilters returns ["all"] when filters contains FilterAll,
// otherwise filters unchanged.
func CollapseFilters(filters []Filter) []Filter {
	for _, f := range filters {
		if f == FilterAll {
			return []Filter{FilterAll}
		}
	}
	return filters
}

// BuildSiteFilter returns a "(site:a OR site:b)" expression for the filter's
// domains, or "" when the filter has no domain restriction.
func BuildSiteFilter(f Filter) string {
	domains := Domains(f)
	if len(domains) == 0 {
		return ""
	}

	parts := make([]string, len(domains))
	for i, domain := range domains {
		parts[i] = "site:" + domain
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// BuildSearchQuery joins at most MaxQueryKeywords keywords with spaces and
// prefixes the filter's site expression. Empty keywords give an empty query.
func BuildSearchQuery(keywords []string, f Filter) string {
	if len(keywords) == 0 {
		return ""
	}

	if len(keywords) > MaxQueryKeywords {
		keywords = keywords[:MaxQueryKeywords]
	}
	base := strings.Join(keywords, " ")

	if siteFilter := BuildSiteFilter(f); siteFilter != "" {
		return siteFilter + " " + base
	}
	return base
}
