// Package engine assembles the interner, triple store, query engines,
// shape validator, and reasoner behind one facade. An Engine value is the
// explicit context every operation runs against; there is no process-wide
// singleton.
//
// Lifecycle: created explicitly with New, destroyed explicitly with
// Close. Closing invalidates all derived identifiers and handles. The
// engine follows a bulk-load-then-query discipline and carries no
// internal locking; see the package semkernel documentation.
package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360/semkernel/config"
	"github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/intern"
	"github.com/c360/semkernel/owl"
	"github.com/c360/semkernel/query"
	"github.com/c360/semkernel/shacl"
	"github.com/c360/semkernel/store"
	"github.com/c360/semkernel/types"
	"github.com/c360/semkernel/vocabulary"
)

// Engine owns one interner, one triple store, and the query, validation,
// and reasoning layers over them.
type Engine struct {
	id     string
	cfg    *config.Config
	logger *slog.Logger

	interner *intern.Interner
	store    *store.Store
	matcher  *query.Matcher
	join     *query.Join
	shapes   *shacl.Validator
	reasoner *owl.Reasoner
	terms    *vocabulary.Terms

	metrics *engineMetrics
	closed  bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithMetrics registers engine metrics with the given registry.
func WithMetrics(reg metricRegistrar) Option {
	return func(e *Engine) {
		m, err := newEngineMetrics(reg)
		if err != nil {
			e.logger.Error("failed to initialize engine metrics", "error", err)
			return // continue without metrics
		}
		e.metrics = m
	}
}

// New creates an engine from the configuration. The built-in vocabulary
// terms are interned first, so they always receive the lowest ids.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	interner, err := intern.New(cfg.Interner)
	if err != nil {
		return nil, err
	}
	terms, err := vocabulary.InternTerms(interner)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.Capacity, logger)
	if err != nil {
		return nil, err
	}
	reasoner, err := owl.New(st, cfg.Reasoner, cfg.Capacity.MaxClasses, terms.Type, logger)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	e := &Engine{
		id:       id,
		cfg:      cfg,
		logger:   logger.With("engine_id", id[:8]),
		interner: interner,
		store:    st,
		matcher:  query.NewMatcher(st),
		join:     query.NewJoin(st),
		reasoner: reasoner,
		terms:    terms,
	}
	e.shapes = shacl.New(st, reasoner, terms.Type, e.logger)

	for _, opt := range opts {
		opt(e)
	}

	e.logger.Info("engine created",
		"max_subjects", cfg.Capacity.MaxSubjects,
		"max_classes", cfg.Capacity.MaxClasses)
	return e, nil
}

// ID returns the engine's unique instance id.
func (e *Engine) ID() string { return e.id }

// Terms returns the interned built-in vocabulary identifiers.
func (e *Engine) Terms() *vocabulary.Terms { return e.terms }

// Intern returns the identifier for s, issuing one if needed.
func (e *Engine) Intern(s string) (types.ID, error) {
	if err := e.open("Intern"); err != nil {
		return 0, err
	}
	id, err := e.interner.Intern(s)
	if err == nil && e.metrics != nil {
		e.metrics.internedStrings.Set(float64(e.interner.Len()))
	}
	return id, err
}

// Lookup returns the identifier for s without interning it.
func (e *Engine) Lookup(s string) (types.ID, bool) {
	if e.closed {
		return 0, false
	}
	return e.interner.Lookup(s)
}

// Resolve returns the string for a previously issued identifier.
func (e *Engine) Resolve(id types.ID) (string, error) {
	if err := e.open("Resolve"); err != nil {
		return "", err
	}
	return e.interner.Resolve(id)
}

// AddTriple stores a triple. Triples over the built-in vocabulary are
// additionally routed into the reasoner: rdfs:subClassOf edges,
// owl:equivalentClass pairs, and rdf:type owl:TransitiveProperty flags.
func (e *Engine) AddTriple(s, p, o types.ID) error {
	if err := e.open("AddTriple"); err != nil {
		return err
	}
	// Class axioms are validated before the store write so a rejected
	// axiom never leaves the store and reasoner disagreeing (there is no
	// triple removal to roll back with).
	if p == e.terms.SubClassOf || p == e.terms.EquivalentClass {
		if err := e.reasoner.ValidateClasses(s, o); err != nil {
			return err
		}
	}
	if err := e.store.Add(s, p, o); err != nil {
		return err
	}

	switch p {
	case e.terms.SubClassOf:
		if err := e.reasoner.AddSubclass(s, o); err != nil {
			return err
		}
	case e.terms.EquivalentClass:
		if err := e.reasoner.AddEquivalentClass(s, o); err != nil {
			return err
		}
	case e.terms.Type:
		if o == e.terms.TransitiveProperty {
			if err := e.reasoner.SetTransitiveProperty(s); err != nil {
				return err
			}
		}
	}

	if e.metrics != nil {
		e.metrics.triples.Set(float64(e.store.Len()))
	}
	return nil
}

// Ask reports whether at least one triple matches the pattern. Any field
// may be the wildcard 0. Identifiers must already be interned.
func (e *Engine) Ask(s, p, o types.ID) bool {
	if e.closed {
		return false
	}
	if e.metrics != nil {
		e.metrics.asks.Inc()
	}
	return e.matcher.Ask(s, p, o)
}

// Objects returns all objects for a (predicate, subject) pair as a
// zero-copy view into the store. Valid until the next write.
func (e *Engine) Objects(p, s types.ID) []types.ID {
	if e.closed {
		return nil
	}
	return e.matcher.Objects(p, s)
}

// Join returns the subjects matching every pattern, via bit-vector
// intersection with short-circuit on empty.
func (e *Engine) Join(patterns []query.Pattern) ([]types.ID, error) {
	if err := e.open("Join"); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.joins.Inc()
	}
	bs, err := e.join.Join(patterns)
	if err != nil {
		return nil, err
	}
	return query.Collect(bs), nil
}

// Union returns the subjects matching at least one pattern.
func (e *Engine) Union(patterns []query.Pattern) ([]types.ID, error) {
	if err := e.open("Union"); err != nil {
		return nil, err
	}
	bs, err := e.join.Union(patterns)
	if err != nil {
		return nil, err
	}
	return query.Collect(bs), nil
}

// DefineShape registers a SHACL-style shape under a caller-chosen id,
// overwriting any prior definition.
func (e *Engine) DefineShape(id string, shape shacl.Shape) error {
	if err := e.open("DefineShape"); err != nil {
		return err
	}
	if err := e.shapes.DefineShape(id, shape); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.shapes.Set(float64(e.shapes.Len()))
	}
	return nil
}

// Validate evaluates every registered shape against the entity.
func (e *Engine) Validate(entity types.ID) (map[string]bool, error) {
	if err := e.open("Validate"); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.validations.Inc()
	}
	return e.validateMaybeRecompute(entity)
}

// CheckClass reports whether the entity belongs to the class, through
// closures when available.
func (e *Engine) CheckClass(entity, class types.ID) (bool, error) {
	if err := e.open("CheckClass"); err != nil {
		return false, err
	}
	ok, err := e.shapes.CheckClass(entity, class)
	if errors.IsStale(err) && e.cfg.Reasoner.AutoRecompute {
		if rerr := e.ComputeClosures(); rerr != nil {
			return false, rerr
		}
		return e.shapes.CheckClass(entity, class)
	}
	return ok, err
}

// CheckMinCount reports whether the entity carries at least min distinct
// objects for the property.
func (e *Engine) CheckMinCount(entity, property types.ID, min uint32) bool {
	if e.closed {
		return false
	}
	return e.shapes.CheckMinCount(entity, property, min)
}

// CheckMaxCount reports whether the entity carries at most max distinct
// objects for the property.
func (e *Engine) CheckMaxCount(entity, property types.ID, max uint32) bool {
	if e.closed {
		return false
	}
	return e.shapes.CheckMaxCount(entity, property, max)
}

// AddSubclass records a subclass -> superclass edge.
func (e *Engine) AddSubclass(sub, super types.ID) error {
	if err := e.open("AddSubclass"); err != nil {
		return err
	}
	return e.reasoner.AddSubclass(sub, super)
}

// AddEquivalentClass records class equivalence in both directions.
func (e *Engine) AddEquivalentClass(a, b types.ID) error {
	if err := e.open("AddEquivalentClass"); err != nil {
		return err
	}
	return e.reasoner.AddEquivalentClass(a, b)
}

// SetTransitiveProperty flags a property as transitive.
func (e *Engine) SetTransitiveProperty(p types.ID) error {
	if err := e.open("SetTransitiveProperty"); err != nil {
		return err
	}
	return e.reasoner.SetTransitiveProperty(p)
}

// ComputeClosures runs the reasoner fixpoint. Must run before reasoning
// queries are trusted; treated as a write under the load/query discipline.
func (e *Engine) ComputeClosures() error {
	if err := e.open("ComputeClosures"); err != nil {
		return err
	}
	if err := e.reasoner.ComputeClosures(); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.closurePasses.Set(float64(e.reasoner.Passes()))
	}
	return nil
}

// AskWithReasoning answers a pattern with semantic expansion: rdf:type
// queries through subclass closures, transitive-property patterns through
// chain reachability, everything else by direct lookup. With
// AutoRecompute configured, a dirty reasoner is recomputed first;
// otherwise ErrStaleClosure is returned.
func (e *Engine) AskWithReasoning(s, p, o types.ID) (bool, error) {
	if err := e.open("AskWithReasoning"); err != nil {
		return false, err
	}
	if e.metrics != nil {
		e.metrics.reasoningAsks.Inc()
	}
	ok, err := e.reasoner.Ask(s, p, o)
	if errors.IsStale(err) && e.cfg.Reasoner.AutoRecompute {
		if rerr := e.ComputeClosures(); rerr != nil {
			return false, rerr
		}
		return e.reasoner.Ask(s, p, o)
	}
	return ok, err
}

// ClassifyQuery resolves the dispatch mode once at the call site: type
// queries go through reasoning, everything else stays a plain pattern.
func (e *Engine) ClassifyQuery(s, p, o types.ID) query.Query {
	kind := query.PlainPattern
	if p == e.terms.Type {
		kind = query.TypeWithReasoning
	}
	return query.Query{
		Kind:    kind,
		Pattern: types.Pattern{Subject: s, Predicate: p, Object: o},
	}
}

// ReasonerState returns the closure lifecycle state.
func (e *Engine) ReasonerState() owl.State {
	return e.reasoner.State()
}

// Generation returns the store's write generation, for external caches.
func (e *Engine) Generation() uint64 {
	return e.store.Generation()
}

// Stats returns a point-in-time snapshot of engine state.
func (e *Engine) Stats() Stats {
	return Stats{
		EngineID:        e.id,
		InternedStrings: e.interner.Len(),
		Triples:         e.store.Len(),
		Shapes:          e.shapes.Len(),
		ReasonerState:   e.reasoner.State().String(),
		ClosurePasses:   e.reasoner.Passes(),
		BudgetExceeded:  e.reasoner.BudgetExceeded(),
		Generation:      e.store.Generation(),
	}
}

// Stats is a snapshot of engine state for health reporting.
type Stats struct {
	EngineID        string `json:"engine_id"`
	InternedStrings int    `json:"interned_strings"`
	Triples         uint64 `json:"triples"`
	Shapes          int    `json:"shapes"`
	ReasonerState   string `json:"reasoner_state"`
	ClosurePasses   int    `json:"closure_passes"`
	BudgetExceeded  bool   `json:"budget_exceeded"`
	Generation      uint64 `json:"generation"`
}

// Close destroys the engine. All derived identifiers and handles are
// invalidated; subsequent operations fail with ErrEngineClosed.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.logger.Info("engine closed",
		"triples", e.store.Len(),
		"interned", e.interner.Len())
	return nil
}

// validateMaybeRecompute runs shape validation, recomputing stale
// closures first when configured to.
func (e *Engine) validateMaybeRecompute(entity types.ID) (map[string]bool, error) {
	results, err := e.shapes.Validate(entity)
	if errors.IsStale(err) && e.cfg.Reasoner.AutoRecompute {
		if rerr := e.ComputeClosures(); rerr != nil {
			return nil, rerr
		}
		return e.shapes.Validate(entity)
	}
	return results, err
}

// open guards every operation against use after Close.
func (e *Engine) open(op string) error {
	if e.closed {
		return errors.WrapInvalid(errors.ErrEngineClosed, "Engine", op, "")
	}
	return nil
}
