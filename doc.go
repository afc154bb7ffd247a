// Package semkernel provides an in-memory semantic data engine: string
// interning, triple storage with O(1)-class pattern lookup, bit-vector joins,
// SHACL-style shape validation, and OWL-style subclass closure reasoning.
//
// # Architecture
//
// The engine is a layered library. Lower layers never import upper ones:
//
//	┌─────────────────────────────────────┐
//	│           engine.Engine             │  Facade: the public
//	│  (intern, add, ask, join, validate) │  operation surface
//	└─────────────────────────────────────┘
//	           ↓ composes
//	┌──────────┬──────────┬───────────────┐
//	│  shacl   │   owl    │    query      │  Validation, reasoning,
//	│Validator │ Reasoner │ Matcher/Join  │  pattern and join queries
//	└──────────┴──────────┴───────────────┘
//	           ↓ read
//	┌─────────────────────────────────────┐
//	│            store.Store              │  (p,s) and (p,o) hash
//	│      triple indexes + bitsets       │  indexes over dense IDs
//	└─────────────────────────────────────┘
//	           ↓ resolves via
//	┌─────────────────────────────────────┐
//	│          intern.Interner            │  bytes ↔ dense uint32
//	└─────────────────────────────────────┘
//
// # Lifecycle
//
// The engine is built for a bulk-load-then-query workload:
//
//	eng, err := engine.New(config.DefaultConfig(), logger)
//	s, _ := eng.Intern("urn:drone/1")
//	p, _ := eng.Intern("urn:prop/status")
//	o, _ := eng.Intern("armed")
//	eng.AddTriple(s, p, o)
//	eng.ComputeClosures()
//	ok := eng.Ask(s, p, o)
//
// Writers (Intern, AddTriple, AddSubclass, DefineShape, ComputeClosures)
// are expected to complete before readers (Ask, Objects, Join, Validate,
// AskWithReasoning) begin. The core is single-threaded by contract and
// carries no internal locking; callers needing concurrent readers must
// freeze the engine after load and synchronize that transition themselves.
//
// # Remote access
//
// The service package exposes the read-side operations over NATS
// request/reply for deployments where queries arrive from other processes.
// The engine itself persists nothing; all state is volatile and owned by
// one Engine value.
package semkernel
