// Package storage implements the per-destination bundle store with
// dedup-by-id and expiry sweeping.
package storage

import "dtnsim/internal/bundlemodel"

// Store holds bundles keyed by destination, plus the set of every bundle id
// ever accepted (grow-only for the lifetime of a run).
type Store struct {
	byDest map[string][]bundlemodel.Bundle
	seen   map[string]bool

	// NumRepeatedReceives counts store attempts for ids already seen,
	// surfaced on the agent snapshot as num_repeated_bundle_receives.
	NumRepeatedReceives int
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byDest: make(map[string][]bundlemodel.Bundle),
		seen:   make(map[string]bool),
	}
}

// StoreBundle inserts b at the tail of its destination's queue unless its
// id has already been seen, in which case the attempt is ignored and true
// is returned. Returns false when the bundle was newly accepted.
func (s *Store) StoreBundle(dest string, b bundlemodel.Bundle) (duplicate bool) {
	if s.seen[b.ID] {
		s.NumRepeatedReceives++
		return true
	}
	s.seen[b.ID] = true
	s.byDest[dest] = append(s.byDest[dest], b)
	return false
}

// Seen reports whether a bundle id has ever been accepted locally.
func (s *Store) Seen(id string) bool {
	return s.seen[id]
}

// MarkSeen records id in the dedup set without queuing any bundle for
// later forwarding, for destinations (i.e. the local node itself) whose
// bundles are dispatched immediately rather than stored. Returns whether
// the id had already been seen.
func (s *Store) MarkSeen(id string) (duplicate bool) {
	if s.seen[id] {
		s.NumRepeatedReceives++
		return true
	}
	s.seen[id] = true
	return false
}

// GetAllBundleDestIDs returns the destination keys currently holding
// bundles.
func (s *Store) GetAllBundleDestIDs() []string {
	ids := make([]string, 0, len(s.byDest))
	for dest := range s.byDest {
		ids = append(ids, dest)
	}
	return ids
}

// GetAllBundles returns every stored bundle across all destinations.
func (s *Store) GetAllBundles() []bundlemodel.Bundle {
	var all []bundlemodel.Bundle
	for _, bundles := range s.byDest {
		all = append(all, bundles...)
	}
	return all
}

// GetAllBundlesForDest returns the bundles queued for dest, without
// removing them.
func (s *Store) GetAllBundlesForDest(dest string) []bundlemodel.Bundle {
	return append([]bundlemodel.Bundle(nil), s.byDest[dest]...)
}

// RemoveAllBundlesForDest removes and returns the bundles queued for dest;
// the key vanishes from the store.
func (s *Store) RemoveAllBundlesForDest(dest string) []bundlemodel.Bundle {
	bundles := s.byDest[dest]
	delete(s.byDest, dest)
	return bundles
}

// Refresh drops every bundle with ExpirationTS <= now, and removes any
// destination key left with an empty list.
func (s *Store) Refresh(now int64) {
	for dest, bundles := range s.byDest {
		kept := bundles[:0]
		for _, b := range bundles {
			if !b.Expired(now) {
				kept = append(kept, b)
			}
		}
		if len(kept) == 0 {
			delete(s.byDest, dest)
		} else {
			s.byDest[dest] = kept
		}
	}
}

// Count returns the total number of bundles currently stored across all
// destinations, used for the cumulative storage-overhead metric.
func (s *Store) Count() int {
	total := 0
	for _, bundles := range s.byDest {
		total += len(bundles)
	}
	return total
}
