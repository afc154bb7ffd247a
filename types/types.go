// Package types defines the identifier and triple types shared by every
// layer of the engine. It has no dependencies so that any package can
// import it without cycles.
package types

// ID is a dense 32-bit identifier issued by the interner. The zero value
// is reserved: it means "wildcard" in query positions and "none" in data
// positions, and is never a valid interned identifier.
type ID uint32

// Wildcard is the reserved ID used to leave a pattern field unbound.
const Wildcard ID = 0

// IsWildcard reports whether the ID is the reserved wildcard value.
func (id ID) IsWildcard() bool { return id == Wildcard }

// Triple is a (subject, predicate, object) fact over interned identifiers.
// Stored triples are immutable; duplicates are idempotent.
type Triple struct {
	Subject   ID `json:"subject"`
	Predicate ID `json:"predicate"`
	Object    ID `json:"object"`
}

// Pattern is a triple with zero or more wildcard fields, used for
// existence and enumeration queries.
type Pattern struct {
	Subject   ID `json:"subject"`
	Predicate ID `json:"predicate"`
	Object    ID `json:"object"`
}

// Bound reports how many fields of the pattern are bound (non-wildcard).
func (p Pattern) Bound() int {
	n := 0
	if p.Subject != Wildcard {
		n++
	}
	if p.Predicate != Wildcard {
		n++
	}
	if p.Object != Wildcard {
		n++
	}
	return n
}
