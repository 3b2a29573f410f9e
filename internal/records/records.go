// Package records keeps the log of generated tracking links.
package records

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"outreach/internal/models"
)

const (
	// DefaultMaxRecords is the number of records kept; older ones are dropped.
	DefaultMaxRecords = 1000
	// RecentWindow is the age limit for TrackingStats.RecentCount.
	RecentWindow = 7 * 24 * time.Hour
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("tracking record not found")

// NewRecord holds the caller-supplied fields of a record.
type NewRecord struct {
	OriginalURL string
	TrackingURL string
	Source      string
	Medium      string
	Campaign    string
	Title       string
	Filter      string
}

// Store persists tracking records, most recent first.
type Store interface {
	// Save assigns an id and creation time, prepends the record and drops
	// records beyond the store's cap.
	Save(ctx context.Context, rec NewRecord) (models.TrackingRecord, error)
	List(ctx context.Context) ([]models.TrackingRecord, error)
	Get(ctx context.Context, id string) (models.TrackingRecord, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
	Stats(ctx context.Context, now time.Time) (models.TrackingStats, error)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a lexically sortable id for a record created at t. Ids
// minted within the same millisecond increase in call order.
func NewID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ComputeStats aggregates records by source and campaign and counts those
// created within RecentWindow of now.
func ComputeStats(recs []models.TrackingRecord, now time.Time) models.TrackingStats {
	stats := models.TrackingStats{
		Total:      len(recs),
		BySource:   make(map[string]int),
		ByCampaign: make(map[string]int),
	}
	cutoff := now.Add(-RecentWindow)
	for _, r := range recs {
		stats.BySource[r.Source]++
		stats.ByCampaign[r.Campaign]++
		if r.CreatedAt.After(cutoff) {
			stats.RecentCount++
		}
	}
	return stats
}

// ToModel builds the stored form of r. An empty medium becomes
// models.MediumComment.
func (r NewRecord) ToModel(id string, createdAt time.Time) models.TrackingRecord {
	medium := r.Medium
	if medium == "" {
		medium = models.MediumComment
	}
	return models.TrackingRecord{
		ID:          id,
		OriginalURL: r.OriginalURL,
		TrackingURL: r.TrackingURL,
		Source:      r.Source,
		Medium:      medium,
		Campaign:    r.Campaign,
		Title:       r.Title,
		Filter:      r.Filter,
		CreatedAt:   createdAt,
	}
}
