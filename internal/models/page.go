package models

// SEOInfo holds the search-engine metadata found on a scraped page.
type SEOInfo struct {
	Description   string   `json:"description,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	OGTitle       string   `json:"og_title,omitempty"`
	OGDescription string   `json:"og_description,omitempty"`
	OGKeywords    string   `json:"og_keywords,omitempty"`
}

// IsEmpty reports whether no SEO field was found.
func (s SEOInfo) IsEmpty() bool {
	return s.Description == "" && len(s.Keywords) == 0 &&
		s.OGTitle == "" && s.OGDescription == "" && s.OGKeywords == ""
}

// Page is the cleaned content of a scraped URL.
type Page struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	SEO     SEOInfo `json:"seo_info"`
}
