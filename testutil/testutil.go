// Package testutil provides engine builders and synthetic datasets for
// tests and benchmarks.
package testutil

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/c360/semkernel/config"
	"github.com/c360/semkernel/engine"
	"github.com/c360/semkernel/types"
)

// NewEngine builds an engine with test-sized capacities, closed on test
// cleanup. mutate may adjust the configuration before construction.
func NewEngine(tb testing.TB, mutate func(*config.Config)) *engine.Engine {
	tb.Helper()

	cfg := config.DefaultConfig()
	cfg.Capacity = config.CapacityConfig{
		MaxSubjects:   1 << 14,
		MaxPredicates: 1 << 10,
		MaxObjects:    1 << 14,
		MaxClasses:    1 << 9,
	}
	if mutate != nil {
		mutate(cfg)
	}

	e, err := engine.New(cfg, slog.Default())
	if err != nil {
		tb.Fatalf("failed to build engine: %v", err)
	}
	tb.Cleanup(func() { _ = e.Close() })
	return e
}

// MustIntern interns a term or fails the test.
func MustIntern(tb testing.TB, e *engine.Engine, s string) types.ID {
	tb.Helper()
	id, err := e.Intern(s)
	if err != nil {
		tb.Fatalf("failed to intern %q: %v", s, err)
	}
	return id
}

// LoadClassChain interns classes urn:class/0 .. urn:class/depth and links
// each to the next with subclass edges. Returns the class ids in order.
func LoadClassChain(tb testing.TB, e *engine.Engine, depth int) []types.ID {
	tb.Helper()

	classes := make([]types.ID, depth+1)
	for i := range classes {
		classes[i] = MustIntern(tb, e, fmt.Sprintf("urn:class/%d", i))
	}
	for i := 0; i < depth; i++ {
		if err := e.AddSubclass(classes[i], classes[i+1]); err != nil {
			tb.Fatalf("failed to add subclass edge: %v", err)
		}
	}
	return classes
}

// LoadSubjects interns n subjects urn:subject/1 .. urn:subject/n and
// asserts (subject, predicate, object) for each. Returns the subject ids.
func LoadSubjects(tb testing.TB, e *engine.Engine, n int, predicate, object types.ID) []types.ID {
	tb.Helper()

	subjects := make([]types.ID, n)
	for i := range subjects {
		subjects[i] = MustIntern(tb, e, fmt.Sprintf("urn:subject/%d", i+1))
		if err := e.AddTriple(subjects[i], predicate, object); err != nil {
			tb.Fatalf("failed to add triple: %v", err)
		}
	}
	return subjects
}
