package records

import (
	"context"
	"sync"
	"time"

	"outreach/internal/models"
)

// MemoryStore is a Store backed by a slice. It is the default when no
// database is configured and loses its contents on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.TrackingRecord
	max     int
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore keeping at most max records.
// A non-positive max uses DefaultMaxRecords.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	return &MemoryStore{max: max, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, rec NewRecord) (models.TrackingRecord, error) {
	now := s.now().UTC()
	saved := rec.ToModel(NewID(now), now)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]models.TrackingRecord{saved}, s.records...)
	if len(s.records) > s.max {
		s.records = s.records[:s.max]
	}
	return saved, nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.TrackingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TrackingRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.TrackingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return models.TrackingRecord{}, ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Stats(_ context.Context, now time.Time) (models.TrackingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.records, now), nil
}
