// Package repository holds the candidate pub set and answers target
// resolution and ordering queries against it.
package repository

import (
	"context"

	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"
)

// Store provides read/write access to the candidate set.
//
// The candidate set is replaced wholesale on each successful fetch and never
// mutated in place; readers always observe either the previous set or the new
// one, never a mix.
type Store interface {
	// ReplaceCandidates atomically swaps the candidate set. No merging with
	// the previous set takes place.
	ReplaceCandidates(ctx context.Context, pubs []model.Pub)

	// ResolveTarget returns the pub the compass should point at: the
	// selected id when it is present in the current set, otherwise the
	// nearest candidate to origin (ties broken by insertion order). The
	// second return is false when no candidates are held.
	ResolveTarget(ctx context.Context, origin geo.Coordinate, selection string) (model.Pub, bool)

	// SortedByDistance returns a fresh slice of candidates in ascending
	// distance from origin. The stored order is never disturbed.
	SortedByDistance(ctx context.Context, origin geo.Coordinate) []model.Pub

	// Count returns the number of candidates currently held.
	Count(ctx context.Context) int
}
