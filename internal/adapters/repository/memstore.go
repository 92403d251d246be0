package repository

import (
	"context"
	"sort"
	"sync"

	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"
)

// memStore implements Store with an in-memory slice behind an RWMutex.
// The tracker loop is the only writer; HTTP handlers read concurrently.
type memStore struct {
	mu   sync.RWMutex
	pubs []model.Pub
}

// NewMemStore creates an empty in-memory candidate store.
func NewMemStore(_ context.Context) Store {
	return &memStore{}
}

func (s *memStore) ReplaceCandidates(_ context.Context, pubs []model.Pub) {
	// Copy so later mutations of the caller's slice cannot leak in.
	next := make([]model.Pub, len(pubs))
	copy(next, pubs)

	s.mu.Lock()
	s.pubs = next
	s.mu.Unlock()
}

func (s *memStore) ResolveTarget(_ context.Context, origin geo.Coordinate, selection string) (model.Pub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.pubs) == 0 {
		return model.Pub{}, false
	}

	if selection != "" {
		for _, p := range s.pubs {
			if p.ID == selection {
				return p, true
			}
		}
	}

	// Nearest wins; on equal distance the earlier candidate stays.
	best := s.pubs[0]
	bestDist := geo.DistanceMeters(origin, best.Location)
	for _, p := range s.pubs[1:] {
		if d := geo.DistanceMeters(origin, p.Location); d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best, true
}

func (s *memStore) SortedByDistance(_ context.Context, origin geo.Coordinate) []model.Pub {
	s.mu.RLock()
	out := make([]model.Pub, len(s.pubs))
	copy(out, s.pubs)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return geo.DistanceMeters(origin, out[i].Location) < geo.DistanceMeters(origin, out[j].Location)
	})
	return out
}

func (s *memStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pubs)
}
