package models

import "time"

// MediumComment is the utm_medium value for every outreach link.
const MediumComment = "comment"

// TrackingRecord is one generated tracking link kept in the record log.
type TrackingRecord struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	TrackingURL string    `json:"tracking_url"`
	Source      string    `json:"source"`
	Medium      string    `json:"medium"`
	Campaign    string    `json:"campaign"`
	Title       string    `json:"title,omitempty"`
	Filter      string    `json:"filter,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TrackingStats aggregates the record log.
type TrackingStats struct {
	Total       int            `json:"total"`
	BySource    map[string]int `json:"by_source"`
	ByCampaign  map[string]int `json:"by_campaign"`
	RecentCount int            `json:"recent_count"`
}
