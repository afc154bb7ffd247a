// Package query answers pattern and join queries against the triple
// store. The matcher serves single-pattern existence and enumeration; the
// join engine intersects per-pattern subject bitsets for multi-pattern
// queries.
package query

import (
	"github.com/c360/semkernel/store"
	"github.com/c360/semkernel/types"
)

// Kind tags a query with its dispatch mode, resolved once at the call
// site instead of re-derived from the predicate on every call.
type Kind int

const (
	// PlainPattern is a direct index lookup with no semantic expansion.
	PlainPattern Kind = iota
	// TypeWithReasoning is an rdf:type membership query answered through
	// the reasoner's closure bits.
	TypeWithReasoning
)

// Query is a tagged pattern. The engine builds these so the reasoning
// branch is chosen exactly once per query, not per evaluation.
type Query struct {
	Kind    Kind
	Pattern types.Pattern
}

// Matcher answers single-pattern queries. Ask performs no allocation and
// no string work: identifiers must already be interned by the caller.
type Matcher struct {
	store *store.Store
}

// NewMatcher creates a matcher over the store.
func NewMatcher(st *store.Store) *Matcher {
	return &Matcher{store: st}
}

// Ask reports whether at least one triple matches the pattern. Any field
// may be the wildcard 0. No side effects.
func (m *Matcher) Ask(s, p, o types.ID) bool {
	return m.store.Contains(s, p, o)
}

// Objects returns the object set for a fixed (predicate, subject) pair as
// a zero-copy view into the store. Valid until the next write.
func (m *Matcher) Objects(p, s types.ID) []types.ID {
	return m.store.ObjectsFor(p, s)
}
