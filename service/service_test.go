package service

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semkernel/config"
	"github.com/c360/semkernel/engine"
	"github.com/c360/semkernel/pkg/cache"
	"github.com/c360/semkernel/shacl"
)

// newTestService builds a service around a preloaded engine without a
// NATS connection; handlers are pure functions over payloads.
func newTestService(t *testing.T) (*Service, *engine.Engine) {
	t.Helper()

	e, err := engine.New(config.DefaultConfig(), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	joinCache, err := cache.NewLRU[[]string](16)
	require.NoError(t, err)

	s := &Service{
		engine:    e,
		cfg:       DefaultConfig(),
		logger:    slog.Default(),
		joinCache: joinCache,
	}
	return s, e
}

func loadFleet(t *testing.T, e *engine.Engine) {
	t.Helper()

	status, _ := e.Intern("urn:prop/status")
	region, _ := e.Intern("urn:prop/region")
	armed, _ := e.Intern("armed")
	gulf, _ := e.Intern("gulf")

	d1, _ := e.Intern("urn:drone/1")
	d2, _ := e.Intern("urn:drone/2")
	d3, _ := e.Intern("urn:drone/3")

	require.NoError(t, e.AddTriple(d1, status, armed))
	require.NoError(t, e.AddTriple(d2, status, armed))
	require.NoError(t, e.AddTriple(d2, region, gulf))
	require.NoError(t, e.AddTriple(d3, region, gulf))
}

func TestHandleAsk(t *testing.T) {
	s, e := newTestService(t)
	loadFleet(t, e)

	tests := []struct {
		name  string
		req   AskRequest
		found bool
	}{
		{"bound match", AskRequest{Subject: "urn:drone/1", Predicate: "urn:prop/status", Object: "armed"}, true},
		{"wildcard object", AskRequest{Subject: "urn:drone/1", Predicate: "urn:prop/status"}, true},
		{"no match", AskRequest{Subject: "urn:drone/1", Predicate: "urn:prop/region", Object: "gulf"}, false},
		{"unknown term", AskRequest{Subject: "urn:drone/99", Predicate: "urn:prop/status"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.req)
			require.NoError(t, err)

			var resp AskResponse
			require.NoError(t, json.Unmarshal(s.handleAsk(payload), &resp))
			assert.Empty(t, resp.Error)
			assert.Equal(t, tt.found, resp.Found)
		})
	}
}

func TestHandleAskMalformedPayload(t *testing.T) {
	s, _ := newTestService(t)

	var resp AskResponse
	require.NoError(t, json.Unmarshal(s.handleAsk([]byte(`{broken`)), &resp))
	assert.Contains(t, resp.Error, "malformed request")
}

func TestHandleObjects(t *testing.T) {
	s, e := newTestService(t)
	loadFleet(t, e)

	payload, _ := json.Marshal(ObjectsRequest{Predicate: "urn:prop/status", Subject: "urn:drone/2"})
	var resp ObjectsResponse
	require.NoError(t, json.Unmarshal(s.handleObjects(payload), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, []string{"armed"}, resp.Objects)

	// Unknown subject yields an empty result, not an error.
	payload, _ = json.Marshal(ObjectsRequest{Predicate: "urn:prop/status", Subject: "urn:drone/99"})
	require.NoError(t, json.Unmarshal(s.handleObjects(payload), &resp))
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Objects)
}

func TestHandleJoin(t *testing.T) {
	s, e := newTestService(t)
	loadFleet(t, e)

	req := JoinRequest{Patterns: []JoinPattern{
		{Predicate: "urn:prop/status", Object: "armed"},
		{Predicate: "urn:prop/region", Object: "gulf"},
	}}
	payload, _ := json.Marshal(req)

	var resp JoinResponse
	require.NoError(t, json.Unmarshal(s.handleJoin(payload), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, []string{"urn:drone/2"}, resp.Subjects)
	assert.False(t, resp.Cached)

	// Second identical request on an unchanged store is served from cache.
	require.NoError(t, json.Unmarshal(s.handleJoin(payload), &resp))
	assert.Equal(t, []string{"urn:drone/2"}, resp.Subjects)
	assert.True(t, resp.Cached)
}

func TestHandleJoinCacheInvalidatedByWrite(t *testing.T) {
	s, e := newTestService(t)
	loadFleet(t, e)

	req := JoinRequest{Patterns: []JoinPattern{
		{Predicate: "urn:prop/status", Object: "armed"},
		{Predicate: "urn:prop/region", Object: "gulf"},
	}}
	payload, _ := json.Marshal(req)

	var resp JoinResponse
	require.NoError(t, json.Unmarshal(s.handleJoin(payload), &resp))
	require.Equal(t, []string{"urn:drone/2"}, resp.Subjects)

	// A write bumps the generation; the cached entry no longer applies.
	status, _ := e.Lookup("urn:prop/status")
	armed, _ := e.Lookup("armed")
	d3, _ := e.Lookup("urn:drone/3")
	require.NoError(t, e.AddTriple(d3, status, armed))

	require.NoError(t, json.Unmarshal(s.handleJoin(payload), &resp))
	assert.False(t, resp.Cached)
	assert.Equal(t, []string{"urn:drone/2", "urn:drone/3"}, resp.Subjects)
}

func TestHandleJoinUnion(t *testing.T) {
	s, e := newTestService(t)
	loadFleet(t, e)

	req := JoinRequest{
		Patterns: []JoinPattern{
			{Predicate: "urn:prop/status", Object: "armed"},
			{Predicate: "urn:prop/region", Object: "gulf"},
		},
		Union: true,
	}
	payload, _ := json.Marshal(req)

	var resp JoinResponse
	require.NoError(t, json.Unmarshal(s.handleJoin(payload), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, []string{"urn:drone/1", "urn:drone/2", "urn:drone/3"}, resp.Subjects)
}

func TestHandleJoinUnknownPredicate(t *testing.T) {
	s, e := newTestService(t)
	loadFleet(t, e)

	req := JoinRequest{Patterns: []JoinPattern{
		{Predicate: "urn:prop/nonexistent", Object: "armed"},
	}}
	payload, _ := json.Marshal(req)

	var resp JoinResponse
	require.NoError(t, json.Unmarshal(s.handleJoin(payload), &resp))
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Subjects)
}

func TestHandleJoinRejectsEmptyPatterns(t *testing.T) {
	s, _ := newTestService(t)

	var resp JoinResponse
	require.NoError(t, json.Unmarshal(s.handleJoin([]byte(`{"patterns":[]}`)), &resp))
	assert.Contains(t, resp.Error, "at least one pattern")
}

func TestHandleValidate(t *testing.T) {
	s, e := newTestService(t)
	terms := e.Terms()

	droneClass, _ := e.Intern("urn:class/Drone")
	alias, _ := e.Intern("urn:prop/alias")
	entity, _ := e.Intern("urn:drone/1")
	aliasVal, _ := e.Intern("alpha")

	require.NoError(t, e.AddTriple(entity, terms.Type, droneClass))
	require.NoError(t, e.AddTriple(entity, alias, aliasVal))
	require.NoError(t, e.ComputeClosures())

	one := uint32(1)
	require.NoError(t, e.DefineShape("single-alias", shacl.Shape{
		TargetClass: droneClass,
		Constraints: []shacl.PropertyConstraint{
			{Property: alias, MinCount: 1, MaxCount: &one},
		},
	}))

	payload, _ := json.Marshal(ValidateRequest{Entity: "urn:drone/1"})
	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(s.handleValidate(payload), &resp))
	assert.Empty(t, resp.Error)
	assert.True(t, resp.Results["single-alias"])

	// Unknown entity is a request error, not a crash.
	payload, _ = json.Marshal(ValidateRequest{Entity: "urn:drone/99"})
	require.NoError(t, json.Unmarshal(s.handleValidate(payload), &resp))
	assert.Contains(t, resp.Error, "unknown entity")
}

func TestHandleReasonStaleClosure(t *testing.T) {
	s, e := newTestService(t)
	terms := e.Terms()

	a, _ := e.Intern("urn:class/A")
	b, _ := e.Intern("urn:class/B")
	entity, _ := e.Intern("urn:x")
	require.NoError(t, e.AddTriple(entity, terms.Type, a))
	require.NoError(t, e.AddSubclass(a, b))

	typeIRI, err := e.Resolve(terms.Type)
	require.NoError(t, err)

	payload, _ := json.Marshal(AskRequest{Subject: "urn:x", Predicate: typeIRI, Object: "urn:class/B"})
	var resp AskResponse
	require.NoError(t, json.Unmarshal(s.handleReason(payload), &resp))
	assert.Contains(t, resp.Error, "stale")

	require.NoError(t, e.ComputeClosures())
	resp = AskResponse{}
	require.NoError(t, json.Unmarshal(s.handleReason(payload), &resp))
	assert.Empty(t, resp.Error)
	assert.True(t, resp.Found)
}

func TestHandleStats(t *testing.T) {
	s, e := newTestService(t)
	loadFleet(t, e)

	var stats engine.Stats
	require.NoError(t, json.Unmarshal(s.handleStats(nil), &stats))
	assert.Equal(t, e.ID(), stats.EngineID)
	assert.Equal(t, uint64(4), stats.Triples)
}

func TestNewRejectsNilDependencies(t *testing.T) {
	e, err := engine.New(config.DefaultConfig(), slog.Default())
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	_, err = New(nil, e, DefaultConfig(), slog.Default())
	require.Error(t, err)
}
