package search

import (
	"errors"
	"testing"
)

func TestBuildSiteFilter(t *testing.T) {
	tests := []struct {
		filter Filter
		want   string
	}{
		{FilterAll, ""},
		{FilterReddit, "(site:reddit.com)"},
		{FilterEngineerForum, "(site:eng-tips.com OR site:engineering.com OR site:engineerboards.com)"},
		{FilterNaver, "(site:blog.naver.com OR site:cafe.naver.com)"},
		{Filter("myspace"), ""},
	}

	for _, tt := range tests {
		if got := BuildSiteFilter(tt.filter); got != tt.want {
			t.Errorf("BuildSiteFilter(%q) = %q, want %q", tt.filter, got, tt.want)
		}
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		filter   Filter
		want     string
	}{
		{"single keyword with site", []string{"steel"}, FilterReddit, "(site:reddit.com) steel"},
		{"all has no restriction", []string{"steel", "beam"}, FilterAll, "steel beam"},
		{"first five only", []string{"a", "b", "c", "d", "e", "f"}, FilterReddit, "(site:reddit.com) a b c d e"},
		{"unknown filter", []string{"x"}, Filter("nope"), "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchQuery(tt.keywords, tt.filter); got != tt.want {
				t.Errorf("BuildSearchQuery(%v, %q) = %q, want %q", tt.keywords, tt.filter, got, tt.want)
			}
		})
	}
}

func TestBuildSearchQueryEmptyKeywords(t *testing.T) {
	for _, f := range Filters() {
		if got := BuildSearchQuery(nil, f); got != "" {
			t.Errorf("BuildSearchQuery(nil, %q) = %q, want empty", f, got)
		}
		if got := BuildSearchQuery([]string{}, f); got != "" {
			t.Errorf("BuildSearchQuery([], %q) = %q, want empty", f, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Filter
		wantErr bool
	}{
		{"reddit", FilterReddit, false},
		{" Quora ", FilterQuora, false},
		{"engineer_forum", FilterEngineerForum, false},
		{"all", FilterAll, false},
		{"facebook", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFilter) {
				t.Errorf("ParseFilter(%q) error = %v, want ErrUnknownFilter", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFilter(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseFiltersStopsOnUnknown(t *testing.T) {
	if _, err := ParseFilters([]string{"reddit", "bogus"}); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("ParseFilters() error = %v, want ErrUnknownFilter", err)
	}
}

func TestCollapseFilters(t *testing.T) {
	got := CollapseFilters([]Filter{FilterReddit, FilterAll, FilterQuora})
	if len(got) != 1 || got[0] != FilterAll {
		t.Errorf("CollapseFilters() = %v, want [all]", got)
	}

	in := []Filter{FilterReddit, FilterQuora}
	got = CollapseFilters(in)
	if len(got) != 2 || got[0] != FilterReddit || got[1] != FilterQuora {
		t.Errorf("CollapseFilters(%v) = %v, want unchanged", in, got)
	}
}

func TestFiltersCatalogOrder(t *testing.T) {
	got := Filters()
	if len(got) != 11 {
		t.Fatalf("Filters() returned %d entries, want 11", len(got))
	}
	if got[0] != FilterAll || got[1] != FilterReddit || got[len(got)-1] != FilterDaum {
		t.Errorf("Filters() order = %v", got)
	}
}

func TestDomainsReturnsCopy(t *testing.T) {
	d := Domains(FilterNaver)
	d[0] = "evil.example"
	if Domains(FilterNaver)[0] != "blog.naver.com" {
		t.Error("Domains() exposed the catalog slice")
	}
}

func TestLocaleFor(t *testing.T) {
	tests := []struct {
		lang Language
		want Locale
	}{
		{LanguageKorean, Locale{"kr", "ko"}},
		{LanguageEnglish, Locale{"us", "en"}},
		{LanguageBoth, Locale{"kr", "ko"}},
		{Language(""), Locale{"kr", "ko"}},
	}

	for _, tt := range tests {
		if got := LocaleFor(tt.lang); got != tt.want {
			t.Errorf("LocaleFor(%q) = %+v, want %+v", tt.lang, got, tt.want)
		}
	}
}
