package query

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/store"
	"github.com/c360/semkernel/types"
)

// Pattern fixes predicate and object and leaves the subject free. Object
// may be the wildcard 0, matching any subject that carries the predicate.
type Pattern struct {
	Predicate types.ID `json:"predicate"`
	Object    types.ID `json:"object"`
}

// Join evaluates ordered pattern lists by bitset intersection and union.
// Intermediate bitsets are transient; nothing is cached across calls.
type Join struct {
	store *store.Store
}

// NewJoin creates a join engine over the store.
func NewJoin(st *store.Store) *Join {
	return &Join{store: st}
}

// Join returns the subjects matching every pattern. The first pattern's
// subject set seeds the running bitset; each subsequent pattern's set is
// intersected in, short-circuiting as soon as the intersection is empty.
// Complexity is O(total matching subjects across patterns).
func (j *Join) Join(patterns []Pattern) (*bitset.BitSet, error) {
	if len(patterns) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Join", "Join",
			"at least one pattern is required")
	}
	for _, p := range patterns {
		if p.Predicate == types.Wildcard {
			return nil, errors.WrapInvalid(errors.ErrReservedIdentifier, "Join", "Join",
				"join patterns must bind the predicate")
		}
	}

	result := j.materialize(patterns[0])
	for _, p := range patterns[1:] {
		if result.None() {
			return result, nil // short-circuit: intersection is already empty
		}
		result.InPlaceIntersection(j.materialize(p))
	}
	return result, nil
}

// Union returns the subjects matching at least one pattern. Dual of Join.
func (j *Join) Union(patterns []Pattern) (*bitset.BitSet, error) {
	if len(patterns) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Join", "Union",
			"at least one pattern is required")
	}
	for _, p := range patterns {
		if p.Predicate == types.Wildcard {
			return nil, errors.WrapInvalid(errors.ErrReservedIdentifier, "Join", "Union",
				"join patterns must bind the predicate")
		}
	}

	result := j.materialize(patterns[0])
	for _, p := range patterns[1:] {
		result.InPlaceUnion(j.materialize(p))
	}
	return result, nil
}

// materialize clones the matching subject set for one pattern. Cloning
// keeps the store's index bitsets out of caller hands; the clone is the
// transient working set for this call only.
func (j *Join) materialize(p Pattern) *bitset.BitSet {
	var src *bitset.BitSet
	if p.Object == types.Wildcard {
		src = j.store.SubjectsForPredicate(p.Predicate)
	} else {
		src = j.store.SubjectsFor(p.Predicate, p.Object)
	}
	if src == nil {
		return bitset.New(uint(j.store.MaxSubjects()) + 1)
	}
	return src.Clone()
}

// Collect expands a subject bitset into a sorted identifier slice.
func Collect(bs *bitset.BitSet) []types.ID {
	if bs == nil {
		return nil
	}
	out := make([]types.ID, 0, bs.Count())
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		out = append(out, types.ID(i))
	}
	return out
}
