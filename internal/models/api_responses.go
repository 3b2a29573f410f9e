package models

// FilterInfo describes one search filter category for API clients.
type FilterInfo struct {
	Name       string   `json:"name"`
	Domains    []string `json:"domains"`
	SiteFilter string   `json:"site_filter,omitempty"`
}

// TrackingURLResponse contains a generated tracking URL.
type TrackingURLResponse struct {
	OriginalURL string `json:"original_url"`
	TrackingURL string `json:"tracking_url"`
	Source      string `json:"source"`
	Medium      string `json:"medium"`
	Campaign    string `json:"campaign"`
}

// SearchResponse contains the related pages found for a keyword set.
type SearchResponse struct {
	Keywords     []string      `json:"keywords"`
	Filters      []string      `json:"filters"`
	RelatedPages []RelatedPage `json:"related_pages"`
}

// DeleteResponse reports whether a record was removed.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
