// Package store holds (subject, predicate, object) identifier triples and
// the hash indexes that make pattern queries O(1) expected time.
//
// Two indexes are maintained on every insert:
//
//   - (predicate, subject) → ordered, deduplicated object list, serving
//     existence tests and ObjectsFor enumeration.
//   - (predicate, object) → subject bitset, serving reverse lookups for
//     the join engine.
//
// A per-predicate subject bitset and an append-only triple log round out
// the rare query shapes (object-wildcard joins, predicate-wildcard scans).
//
// Capacity is fixed at construction. Identifiers outside the configured
// ranges are a configuration error; the store never grows its identifier
// space at runtime.
package store

import (
	"fmt"
	"log/slog"

	"github.com/bits-and-blooms/bitset"

	"github.com/c360/semkernel/config"
	"github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/types"
)

// psKey indexes by (predicate, subject).
type psKey struct {
	p types.ID
	s types.ID
}

// poKey indexes by (predicate, object).
type poKey struct {
	p types.ID
	o types.ID
}

// objectSet keeps objects for one (predicate, subject) pair in insertion
// order with O(1) membership.
type objectSet struct {
	list []types.ID
	seen map[types.ID]struct{}
}

func (os *objectSet) add(o types.ID) bool {
	if _, dup := os.seen[o]; dup {
		return false
	}
	os.seen[o] = struct{}{}
	os.list = append(os.list, o)
	return true
}

// Store is the in-memory triple index. Not safe for concurrent mutation;
// see the engine's bulk-load-then-query contract.
type Store struct {
	cfg    config.CapacityConfig
	logger *slog.Logger

	objects     map[psKey]*objectSet     // primary: (p,s) -> objects
	subjects    map[poKey]*bitset.BitSet // reverse: (p,o) -> subjects
	byPredicate map[types.ID]*bitset.BitSet

	log        []types.Triple // append-only, for predicate-wildcard scans
	count      uint64         // distinct triples
	generation uint64         // bumped on every effective write
}

// New creates a store from validated capacity configuration.
func New(cfg config.CapacityConfig, logger *slog.Logger) (*Store, error) {
	if cfg.MaxSubjects == 0 || cfg.MaxPredicates == 0 || cfg.MaxObjects == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Store", "New",
			"capacity limits must be > 0")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:         cfg,
		logger:      logger,
		objects:     make(map[psKey]*objectSet),
		subjects:    make(map[poKey]*bitset.BitSet),
		byPredicate: make(map[types.ID]*bitset.BitSet),
	}, nil
}

// Add inserts a triple. Duplicates are idempotent: adding the same triple
// twice has the same observable effect as adding it once.
func (st *Store) Add(s, p, o types.ID) error {
	if s == 0 || p == 0 || o == 0 {
		return errors.WrapInvalid(errors.ErrReservedIdentifier, "Store", "Add",
			"triple fields must be non-zero")
	}
	if uint32(s) > st.cfg.MaxSubjects {
		return errors.WrapInvalid(errors.ErrCapacityExceeded, "Store", "Add",
			fmt.Sprintf("subject %d exceeds max_subjects %d", s, st.cfg.MaxSubjects))
	}
	if uint32(p) > st.cfg.MaxPredicates {
		return errors.WrapInvalid(errors.ErrCapacityExceeded, "Store", "Add",
			fmt.Sprintf("predicate %d exceeds max_predicates %d", p, st.cfg.MaxPredicates))
	}
	if uint32(o) > st.cfg.MaxObjects {
		return errors.WrapInvalid(errors.ErrCapacityExceeded, "Store", "Add",
			fmt.Sprintf("object %d exceeds max_objects %d", o, st.cfg.MaxObjects))
	}

	ps := psKey{p: p, s: s}
	set, ok := st.objects[ps]
	if !ok {
		set = &objectSet{seen: make(map[types.ID]struct{}, 4)}
		st.objects[ps] = set
	}
	if !set.add(o) {
		return nil // duplicate
	}

	po := poKey{p: p, o: o}
	subs, ok := st.subjects[po]
	if !ok {
		subs = bitset.New(uint(st.cfg.MaxSubjects) + 1)
		st.subjects[po] = subs
	}
	subs.Set(uint(s))

	pred, ok := st.byPredicate[p]
	if !ok {
		pred = bitset.New(uint(st.cfg.MaxSubjects) + 1)
		st.byPredicate[p] = pred
	}
	pred.Set(uint(s))

	st.log = append(st.log, types.Triple{Subject: s, Predicate: p, Object: o})
	st.count++
	st.generation++
	return nil
}

// Contains reports whether at least one stored triple matches the pattern.
// Any field may be the wildcard 0. Fully or partially bound patterns with
// a bound predicate resolve through the hash indexes; a wildcard predicate
// falls back to a scan of the triple log.
func (st *Store) Contains(s, p, o types.ID) bool {
	if p == types.Wildcard {
		return st.scan(s, o)
	}

	switch {
	case s != types.Wildcard && o != types.Wildcard:
		set, ok := st.objects[psKey{p: p, s: s}]
		if !ok {
			return false
		}
		_, found := set.seen[o]
		return found
	case s != types.Wildcard:
		set, ok := st.objects[psKey{p: p, s: s}]
		return ok && len(set.list) > 0
	case o != types.Wildcard:
		subs, ok := st.subjects[poKey{p: p, o: o}]
		return ok && subs.Any()
	default:
		pred, ok := st.byPredicate[p]
		return ok && pred.Any()
	}
}

// ObjectsFor returns all objects stored for the (predicate, subject) pair
// as a zero-copy view into the index. The slice must not be modified and
// is only valid until the next write.
func (st *Store) ObjectsFor(p, s types.ID) []types.ID {
	set, ok := st.objects[psKey{p: p, s: s}]
	if !ok {
		return nil
	}
	return set.list
}

// SubjectsFor returns the subject bitset for a (predicate, object) pair,
// or nil if no triple matches. The bitset is a read-only view owned by
// the store.
func (st *Store) SubjectsFor(p, o types.ID) *bitset.BitSet {
	return st.subjects[poKey{p: p, o: o}]
}

// SubjectsForPredicate returns the bitset of all subjects carrying the
// predicate, or nil. Read-only view owned by the store.
func (st *Store) SubjectsForPredicate(p types.ID) *bitset.BitSet {
	return st.byPredicate[p]
}

// Len returns the number of distinct stored triples.
func (st *Store) Len() uint64 {
	return st.count
}

// Generation returns a counter bumped on every effective write. Callers
// caching derived results can compare generations to detect staleness.
func (st *Store) Generation() uint64 {
	return st.generation
}

// MaxSubjects returns the configured subject identifier ceiling.
func (st *Store) MaxSubjects() uint32 {
	return st.cfg.MaxSubjects
}

// Triples returns the append-only triple log. Read-only view owned by the
// store; valid until the next write.
func (st *Store) Triples() []types.Triple {
	return st.log
}

// scan answers predicate-wildcard patterns from the triple log. O(n), so
// callers on the hot path should always bind the predicate.
func (st *Store) scan(s, o types.ID) bool {
	for _, t := range st.log {
		if s != types.Wildcard && t.Subject != s {
			continue
		}
		if o != types.Wildcard && t.Object != o {
			continue
		}
		return true
	}
	return false
}
