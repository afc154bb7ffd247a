// Package owl maintains class and property axioms and computes bit-vector
// ancestor closures for reasoning-augmented queries.
//
// Closures are computed by fixpoint iteration: each pass unions every
// class's direct superclasses' closures into its own until no bit changes
// or the configured iteration budget is reached. Subclass cycles are
// tolerated, never rejected: the budget bounds work on cyclic graphs and
// exhaustion is surfaced as a best-effort flag, not an error that hides
// results.
//
// The reasoner moves through Dirty -> Computing -> Clean. A new reasoner
// holds no axioms, and empty closures are trivially complete, so it starts
// Clean and answers immediately. Any axiom write returns it to Dirty;
// stale closures are never served silently.
package owl

import (
	"fmt"
	"log/slog"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"

	"github.com/c360/semkernel/config"
	"github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/store"
	"github.com/c360/semkernel/types"
)

// State is the closure lifecycle state.
type State int

const (
	// Dirty means axioms changed since closures were last computed.
	Dirty State = iota
	// Computing means a fixpoint pass is in progress.
	Computing
	// Clean means closures reflect all recorded axioms.
	Clean
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Computing:
		return "computing"
	case Clean:
		return "clean"
	default:
		return "unknown"
	}
}

// Reasoner records subclass/equivalence edges and transitive-property
// flags, and answers closure-membership queries once ComputeClosures has
// run. Not safe for concurrent mutation; ComputeClosures is a write.
type Reasoner struct {
	store  *store.Store
	logger *slog.Logger

	maxClasses    uint32
	maxIterations int
	typePredicate types.ID

	supers     map[types.ID][]types.ID // direct subclass -> superclass edges
	transitive map[types.ID]struct{}

	closures       map[types.ID]*bitset.BitSet
	state          State
	budgetExceeded bool
	passes         int
}

// New creates a reasoner over the store. typePredicate is the interned
// rdf:type identifier used to route membership queries through closures.
func New(st *store.Store, cfg config.ReasonerConfig, maxClasses uint32, typePredicate types.ID, logger *slog.Logger) (*Reasoner, error) {
	if maxClasses == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Reasoner", "New",
			"max classes must be > 0")
	}
	if cfg.MaxIterations < 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Reasoner", "New",
			"max iterations must be >= 1")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reasoner{
		store:         st,
		logger:        logger,
		maxClasses:    maxClasses,
		maxIterations: cfg.MaxIterations,
		typePredicate: typePredicate,
		supers:        make(map[types.ID][]types.ID),
		transitive:    make(map[types.ID]struct{}),
		closures:      make(map[types.ID]*bitset.BitSet),
		// No axioms yet: empty closures already reflect them.
		state: Clean,
	}, nil
}

// ValidateClasses checks that every identifier fits the class space. It
// lets callers reject an axiom before committing side effects elsewhere.
func (r *Reasoner) ValidateClasses(ids ...types.ID) error {
	return r.validateClasses("ValidateClasses", ids...)
}

func (r *Reasoner) validateClasses(op string, ids ...types.ID) error {
	for _, id := range ids {
		if id == 0 {
			return errors.WrapInvalid(errors.ErrReservedIdentifier, "Reasoner", op,
				"class identifiers must be non-zero")
		}
		if uint32(id) > r.maxClasses {
			return errors.WrapInvalid(errors.ErrCapacityExceeded, "Reasoner", op,
				fmt.Sprintf("class id %d exceeds max_classes %d", id, r.maxClasses))
		}
	}
	return nil
}

// AddSubclass records a directed subclass -> superclass edge and marks
// closures dirty.
func (r *Reasoner) AddSubclass(sub, super types.ID) error {
	if err := r.validateClasses("AddSubclass", sub, super); err != nil {
		return err
	}

	for _, existing := range r.supers[sub] {
		if existing == super {
			return nil // idempotent
		}
	}
	r.supers[sub] = append(r.supers[sub], super)
	r.markDirty("AddSubclass")
	return nil
}

// AddEquivalentClass records class equivalence as a pair of subclass
// edges in both directions.
func (r *Reasoner) AddEquivalentClass(a, b types.ID) error {
	if err := r.AddSubclass(a, b); err != nil {
		return err
	}
	return r.AddSubclass(b, a)
}

// SetTransitiveProperty flags a property identifier as transitive.
func (r *Reasoner) SetTransitiveProperty(p types.ID) error {
	if p == 0 {
		return errors.WrapInvalid(errors.ErrReservedIdentifier, "Reasoner", "SetTransitiveProperty",
			"property identifier must be non-zero")
	}
	if _, exists := r.transitive[p]; exists {
		return nil
	}
	r.transitive[p] = struct{}{}
	r.markDirty("SetTransitiveProperty")
	return nil
}

// IsTransitive reports whether a property was flagged transitive.
func (r *Reasoner) IsTransitive(p types.ID) bool {
	_, ok := r.transitive[p]
	return ok
}

// State returns the current closure lifecycle state.
func (r *Reasoner) State() State {
	return r.state
}

// BudgetExceeded reports whether the last ComputeClosures hit the
// iteration budget before stabilizing. Results are best-effort when true.
func (r *Reasoner) BudgetExceeded() bool {
	return r.budgetExceeded
}

// Passes returns the number of fixpoint passes the last computation ran.
func (r *Reasoner) Passes() int {
	return r.passes
}

// ComputeClosures runs the fixpoint computation. For every class the
// closure starts as {self} ∪ direct superclasses, then passes union in
// superclass closures until a full pass changes nothing. Non-termination
// on cyclic graphs is detected by comparing a hash of all closure words
// across passes; the iteration budget caps cost either way.
func (r *Reasoner) ComputeClosures() error {
	if r.state == Computing {
		return errors.WrapInvalid(errors.ErrComputing, "Reasoner", "ComputeClosures",
			"computation already in progress")
	}
	r.state = Computing
	r.budgetExceeded = false

	// Seed: every class mentioned in an edge gets a closure with its own
	// bit set, so membership checks are uniform for direct types.
	r.closures = make(map[types.ID]*bitset.BitSet, len(r.supers))
	seed := func(c types.ID) {
		if _, ok := r.closures[c]; !ok {
			bs := bitset.New(uint(r.maxClasses) + 1)
			bs.Set(uint(c))
			r.closures[c] = bs
		}
	}
	for sub, supers := range r.supers {
		seed(sub)
		for _, super := range supers {
			seed(super)
		}
	}

	prevHash := r.stateHash()
	r.passes = 0
	for r.passes < r.maxIterations {
		r.passes++
		changed := false
		for sub, supers := range r.supers {
			own := r.closures[sub]
			before := own.Count()
			for _, super := range supers {
				own.InPlaceUnion(r.closures[super])
			}
			if own.Count() != before {
				changed = true
			}
		}

		hash := r.stateHash()
		if !changed || hash == prevHash {
			r.state = Clean
			r.logger.Debug("closures stabilized",
				"passes", r.passes, "classes", len(r.closures))
			return nil
		}
		prevHash = hash
	}

	// Budget exhausted: keep best-effort bits, flag the condition.
	r.budgetExceeded = true
	r.state = Clean
	r.logger.Warn("closure fixpoint hit iteration budget",
		"passes", r.passes, "max_iterations", r.maxIterations)
	return nil
}

// Superclasses returns the computed ancestor set for a class, including
// the class itself. The bitset is a read-only view owned by the reasoner.
// Returns ErrStaleClosure while Dirty.
func (r *Reasoner) Superclasses(class types.ID) (*bitset.BitSet, error) {
	if r.state != Clean {
		return nil, errors.WrapStale(errors.ErrStaleClosure, "Reasoner", "Superclasses",
			"closures not computed since last axiom write")
	}
	bs, ok := r.closures[class]
	if !ok {
		// Class never appeared in an axiom: its closure is just itself.
		bs = bitset.New(uint(r.maxClasses) + 1)
		if class != 0 && uint32(class) <= r.maxClasses {
			bs.Set(uint(class))
		}
	}
	return bs, nil
}

// IsSubclassOf reports whether sub's closure contains super. Requires
// Clean state.
func (r *Reasoner) IsSubclassOf(sub, super types.ID) (bool, error) {
	bs, err := r.Superclasses(sub)
	if err != nil {
		return false, err
	}
	return bs.Test(uint(super)), nil
}

// Ask answers a reasoning-augmented pattern. Type queries check closure
// membership over the entity's direct types; patterns over transitive
// properties follow property chains; everything else falls back to a
// direct index lookup.
func (r *Reasoner) Ask(s, p, o types.ID) (bool, error) {
	if r.state != Clean {
		return false, errors.WrapStale(errors.ErrStaleClosure, "Reasoner", "Ask",
			"closures not computed since last axiom write")
	}

	if p != types.Wildcard && p == r.typePredicate && s != types.Wildcard && o != types.Wildcard {
		return r.hasType(s, o)
	}
	if r.IsTransitive(p) && s != types.Wildcard && o != types.Wildcard {
		return r.reachable(s, p, o), nil
	}
	return r.store.Contains(s, p, o), nil
}

// hasType reports whether any direct type of the entity has o in its
// closure. Direct triples win without closure lookups.
func (r *Reasoner) hasType(entity, class types.ID) (bool, error) {
	if r.store.Contains(entity, r.typePredicate, class) {
		return true, nil
	}
	for _, direct := range r.store.ObjectsFor(r.typePredicate, entity) {
		bs, err := r.Superclasses(direct)
		if err != nil {
			return false, err
		}
		if bs.Test(uint(class)) {
			return true, nil
		}
	}
	return false, nil
}

// reachable walks transitive property edges breadth-first from s looking
// for o. The frontier is a bitset over subject space; depth is capped by
// the iteration budget so cyclic data terminates.
func (r *Reasoner) reachable(s, p, o types.ID) bool {
	visited := bitset.New(uint(r.store.MaxSubjects()) + 1)
	frontier := []types.ID{s}
	visited.Set(uint(s))

	for depth := 0; depth < r.maxIterations && len(frontier) > 0; depth++ {
		var next []types.ID
		for _, node := range frontier {
			for _, obj := range r.store.ObjectsFor(p, node) {
				if obj == o {
					return true
				}
				if uint32(obj) <= r.store.MaxSubjects() && !visited.Test(uint(obj)) {
					visited.Set(uint(obj))
					next = append(next, obj)
				}
			}
		}
		frontier = next
	}
	return false
}

// markDirty transitions Clean -> Dirty on axiom writes.
func (r *Reasoner) markDirty(op string) {
	if r.state == Clean {
		r.logger.Debug("closures invalidated", "operation", op)
	}
	r.state = Dirty
}

// stateHash summarizes every closure's words into one 64-bit value so a
// full pass with no effective change is cheap to detect. Per-class hashes
// are combined with XOR, making the result independent of map iteration
// order.
func (r *Reasoner) stateHash() uint64 {
	var acc uint64
	var buf [8]byte
	for class, bs := range r.closures {
		var digest xxhash.Digest
		digest.Reset()
		putUint64(&buf, uint64(class))
		_, _ = digest.Write(buf[:])
		for _, word := range bs.Bytes() {
			putUint64(&buf, word)
			_, _ = digest.Write(buf[:])
		}
		acc ^= digest.Sum64()
	}
	return acc
}

func putUint64(buf *[8]byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}
