package storage

import (
	"sync"

	"h2s_bot/internal/model"
)

// Snapshot holds the set of listings as of the last successful fetch
// cycle. It is replaced as a single unit, only by the poller, and is left
// untouched when a fetch fails.
type Snapshot struct {
	mu       sync.Mutex
	listings model.ListingSet
}

// NewSnapshot creates an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{listings: make(model.ListingSet)}
}

// Current returns a copy of the baseline set. Mutating the result does
// not affect the store.
func (s *Snapshot) Current() model.ListingSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings.Clone()
}

// Replace swaps in a new baseline set atomically.
func (s *Snapshot) Replace(listings model.ListingSet) {
	cp := listings.Clone()
	s.mu.Lock()
	s.listings = cp
	s.mu.Unlock()
}
