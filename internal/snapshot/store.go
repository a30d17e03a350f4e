// Package snapshot holds the single latest aggregation result. The store is
// passive: it has no notification duty, push delivery is driven elsewhere.
package snapshot

import (
	"sync/atomic"
	"time"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

// Store is a single-slot holder for the latest snapshot. Publish swaps a
// pointer, so readers always observe either the previous or the new
// snapshot in full, never a torn mix.
type Store struct {
	cur atomic.Pointer[models.Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Publish replaces the held snapshot. The previous one is discarded, not
// merged; callers still holding it keep a valid immutable value.
func (s *Store) Publish(sn *models.Snapshot) {
	s.cur.Store(sn)
}

// Latest returns the current snapshot, or nil before the first cycle.
func (s *Store) Latest() *models.Snapshot {
	return s.cur.Load()
}

// Age reports staleness of the held snapshot; ok is false before the first
// publish.
func (s *Store) Age(now time.Time) (time.Duration, bool) {
	sn := s.cur.Load()
	if sn == nil {
		return 0, false
	}
	return sn.Age(now), true
}
