package engine

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semkernel/config"
	kerrors "github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/metric"
	"github.com/c360/semkernel/owl"
	"github.com/c360/semkernel/query"
	"github.com/c360/semkernel/shacl"
	"github.com/c360/semkernel/types"
	"github.com/c360/semkernel/vocabulary"
)

func newTestEngine(t *testing.T, mutate func(*config.Config)) *Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Capacity = config.CapacityConfig{
		MaxSubjects:   8192,
		MaxPredicates: 1024,
		MaxObjects:    8192,
		MaxClasses:    512,
	}
	if mutate != nil {
		mutate(cfg)
	}
	e, err := New(cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEndToEndLoadAndQuery(t *testing.T) {
	e := newTestEngine(t, nil)

	drone, err := e.Intern("urn:drone/1")
	require.NoError(t, err)
	status, err := e.Intern("urn:prop/status")
	require.NoError(t, err)
	armed, err := e.Intern("armed")
	require.NoError(t, err)

	require.NoError(t, e.AddTriple(drone, status, armed))

	assert.True(t, e.Ask(drone, status, armed))
	assert.True(t, e.Ask(drone, status, 0))
	assert.False(t, e.Ask(drone, status, drone))
	assert.Equal(t, []types.ID{armed}, e.Objects(status, drone))

	s, err := e.Resolve(drone)
	require.NoError(t, err)
	assert.Equal(t, "urn:drone/1", s)
}

func TestVocabularyTriplesRouteToReasoner(t *testing.T) {
	e := newTestEngine(t, nil)
	terms := e.Terms()

	droneClass, err := e.Intern("urn:class/Drone")
	require.NoError(t, err)
	vehicleClass, err := e.Intern("urn:class/Vehicle")
	require.NoError(t, err)
	entity, err := e.Intern("urn:drone/1")
	require.NoError(t, err)

	// Axioms arrive as plain triples over the built-in vocabulary.
	require.NoError(t, e.AddTriple(droneClass, terms.SubClassOf, vehicleClass))
	require.NoError(t, e.AddTriple(entity, terms.Type, droneClass))
	require.NoError(t, e.ComputeClosures())

	ok, err := e.AskWithReasoning(entity, terms.Type, vehicleClass)
	require.NoError(t, err)
	assert.True(t, ok, "membership through subclass closure")

	// The triple itself is also stored.
	assert.True(t, e.Ask(droneClass, terms.SubClassOf, vehicleClass))
}

func TestTransitivePropertyViaTriple(t *testing.T) {
	e := newTestEngine(t, nil)
	terms := e.Terms()

	partOf, err := e.Intern("urn:prop/partOf")
	require.NoError(t, err)
	a, err := e.Intern("urn:part/a")
	require.NoError(t, err)
	b, err := e.Intern("urn:part/b")
	require.NoError(t, err)
	c, err := e.Intern("urn:part/c")
	require.NoError(t, err)

	transitiveProperty, err := e.Resolve(terms.TransitiveProperty)
	require.NoError(t, err)
	assert.Equal(t, vocabulary.OwlTransitiveProperty, transitiveProperty)

	require.NoError(t, e.AddTriple(partOf, terms.Type, terms.TransitiveProperty))
	require.NoError(t, e.AddTriple(a, partOf, b))
	require.NoError(t, e.AddTriple(b, partOf, c))
	require.NoError(t, e.ComputeClosures())

	ok, err := e.AskWithReasoning(a, partOf, c)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStaleClosuresWithoutAutoRecompute(t *testing.T) {
	e := newTestEngine(t, nil)
	terms := e.Terms()

	a, _ := e.Intern("urn:class/A")
	b, _ := e.Intern("urn:class/B")
	entity, _ := e.Intern("urn:x")
	require.NoError(t, e.AddTriple(entity, terms.Type, a))
	require.NoError(t, e.AddSubclass(a, b))
	require.NoError(t, e.ComputeClosures())
	assert.Equal(t, owl.Clean, e.ReasonerState())

	// Axiom write after computation: reasoning must refuse, not serve
	// half-updated bits.
	c, _ := e.Intern("urn:class/C")
	require.NoError(t, e.AddSubclass(b, c))
	assert.Equal(t, owl.Dirty, e.ReasonerState())

	_, err := e.AskWithReasoning(entity, terms.Type, c)
	require.Error(t, err)
	assert.True(t, kerrors.IsStale(err))

	require.NoError(t, e.ComputeClosures())
	ok, err := e.AskWithReasoning(entity, terms.Type, c)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStaleClosuresWithAutoRecompute(t *testing.T) {
	e := newTestEngine(t, func(cfg *config.Config) {
		cfg.Reasoner.AutoRecompute = true
	})
	terms := e.Terms()

	a, _ := e.Intern("urn:class/A")
	b, _ := e.Intern("urn:class/B")
	entity, _ := e.Intern("urn:x")
	require.NoError(t, e.AddTriple(entity, terms.Type, a))
	require.NoError(t, e.AddSubclass(a, b))

	// Axioms written but never computed: auto-recompute kicks in
	// transparently.
	ok, err := e.AskWithReasoning(entity, terms.Type, b)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, owl.Clean, e.ReasonerState())
}

func TestJoinThroughFacade(t *testing.T) {
	e := newTestEngine(t, nil)

	hasStatus, _ := e.Intern("urn:prop/status")
	hasRegion, _ := e.Intern("urn:prop/region")
	armed, _ := e.Intern("armed")
	gulf, _ := e.Intern("gulf")

	s1, _ := e.Intern("urn:drone/1")
	s2, _ := e.Intern("urn:drone/2")
	s3, _ := e.Intern("urn:drone/3")

	require.NoError(t, e.AddTriple(s1, hasStatus, armed))
	require.NoError(t, e.AddTriple(s2, hasStatus, armed))
	require.NoError(t, e.AddTriple(s2, hasRegion, gulf))
	require.NoError(t, e.AddTriple(s3, hasRegion, gulf))

	ids, err := e.Join([]query.Pattern{
		{Predicate: hasStatus, Object: armed},
		{Predicate: hasRegion, Object: gulf},
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, s2, ids[0])

	union, err := e.Union([]query.Pattern{
		{Predicate: hasStatus, Object: armed},
		{Predicate: hasRegion, Object: gulf},
	})
	require.NoError(t, err)
	assert.Len(t, union, 3)
}

func TestValidateOnFreshEngineWithoutClosures(t *testing.T) {
	e := newTestEngine(t, nil)
	terms := e.Terms()

	// The minimal workflow: intern, add data, define a shape, validate.
	// No OWL axioms and no ComputeClosures call anywhere.
	droneClass, _ := e.Intern("urn:class/Drone")
	alias, _ := e.Intern("urn:prop/alias")
	entity, _ := e.Intern("urn:drone/1")
	aliasVal, _ := e.Intern("alpha")

	require.NoError(t, e.AddTriple(entity, terms.Type, droneClass))
	require.NoError(t, e.AddTriple(entity, alias, aliasVal))

	require.NoError(t, e.DefineShape("drone-shape", shacl.Shape{
		TargetClass: droneClass,
		Constraints: []shacl.PropertyConstraint{{Property: alias, MinCount: 1}},
	}))

	results, err := e.Validate(entity)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"drone-shape": true}, results)

	ok, err := e.CheckClass(entity, droneClass)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, owl.Clean, e.ReasonerState())
}

func TestClassAxiomCapacityRejectedBeforeStoreWrite(t *testing.T) {
	e := newTestEngine(t, func(cfg *config.Config) {
		// Only the built-in vocabulary ids fit the class space, so any
		// freshly interned class is over capacity.
		cfg.Capacity.MaxClasses = 4
	})
	terms := e.Terms()

	sub, _ := e.Intern("urn:class/Sub")
	super, _ := e.Intern("urn:class/Super")
	gen := e.Generation()

	err := e.AddTriple(sub, terms.SubClassOf, super)
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrCapacityExceeded)

	// The rejected axiom must not leave a triple behind or bump the
	// generation: store and reasoner stay in agreement.
	assert.False(t, e.Ask(sub, terms.SubClassOf, super))
	assert.Equal(t, gen, e.Generation())
	assert.Equal(t, uint64(0), e.Stats().Triples)

	err = e.AddTriple(sub, terms.EquivalentClass, super)
	require.Error(t, err)
	assert.Equal(t, uint64(0), e.Stats().Triples)
}

func TestShapeValidationThroughFacade(t *testing.T) {
	e := newTestEngine(t, nil)
	terms := e.Terms()

	droneClass, _ := e.Intern("urn:class/Drone")
	alias, _ := e.Intern("urn:prop/alias")
	entity, _ := e.Intern("urn:drone/1")

	require.NoError(t, e.AddTriple(entity, terms.Type, droneClass))
	for _, a := range []string{"alpha", "bravo", "charlie"} {
		o, err := e.Intern(a)
		require.NoError(t, err)
		require.NoError(t, e.AddTriple(entity, alias, o))
	}
	require.NoError(t, e.ComputeClosures())

	assert.True(t, e.CheckMinCount(entity, alias, 1))
	assert.False(t, e.CheckMaxCount(entity, alias, 1))
	assert.True(t, e.CheckMaxCount(entity, alias, 3))

	one := uint32(1)
	require.NoError(t, e.DefineShape("single-alias", shacl.Shape{
		TargetClass: droneClass,
		Constraints: []shacl.PropertyConstraint{
			{Property: alias, MinCount: 1, MaxCount: &one},
		},
	}))

	results, err := e.Validate(entity)
	require.NoError(t, err)
	assert.False(t, results["single-alias"], "three aliases violate maxCount 1")
}

func TestClassifyQuery(t *testing.T) {
	e := newTestEngine(t, nil)
	terms := e.Terms()

	q := e.ClassifyQuery(1, terms.Type, 2)
	assert.Equal(t, query.TypeWithReasoning, q.Kind)

	p, _ := e.Intern("urn:prop/other")
	q = e.ClassifyQuery(1, p, 2)
	assert.Equal(t, query.PlainPattern, q.Kind)
}

func TestCloseInvalidatesEngine(t *testing.T) {
	e := newTestEngine(t, nil)

	id, err := e.Intern("urn:x")
	require.NoError(t, err)
	require.NoError(t, e.Close())

	_, err = e.Intern("urn:y")
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrEngineClosed)

	_, err = e.Resolve(id)
	require.Error(t, err)

	assert.False(t, e.Ask(id, id, id))
	assert.Nil(t, e.Objects(id, id))

	// Close is idempotent.
	require.NoError(t, e.Close())
}

func TestStatsSnapshot(t *testing.T) {
	e := newTestEngine(t, nil)
	terms := e.Terms()

	a, _ := e.Intern("urn:class/A")
	b, _ := e.Intern("urn:class/B")
	require.NoError(t, e.AddTriple(a, terms.SubClassOf, b))
	require.NoError(t, e.ComputeClosures())

	stats := e.Stats()
	assert.Equal(t, e.ID(), stats.EngineID)
	assert.Equal(t, uint64(1), stats.Triples)
	assert.Equal(t, "clean", stats.ReasonerState)
	assert.False(t, stats.BudgetExceeded)
	assert.Greater(t, stats.InternedStrings, 2)
}

func TestWithMetricsRegistersCollectors(t *testing.T) {
	reg := metric.NewRegistry()
	cfg := config.DefaultConfig()
	e, err := New(cfg, slog.Default(), WithMetrics(reg))
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	id, err := e.Intern("urn:x")
	require.NoError(t, err)
	require.NoError(t, e.AddTriple(id, id, id))
	_ = e.Ask(id, id, id)

	families, err := reg.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["semkernel_engine_triples"])
	assert.True(t, names["semkernel_engine_asks_total"])
}
