package store

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semkernel/config"
	kerrors "github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/types"
)

func testCapacity() config.CapacityConfig {
	return config.CapacityConfig{
		MaxSubjects:   4096,
		MaxPredicates: 256,
		MaxObjects:    4096,
		MaxClasses:    256,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(testCapacity(), slog.Default())
	require.NoError(t, err)
	return st
}

func TestAddAndContains(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Add(1, 2, 3))

	assert.True(t, st.Contains(1, 2, 3))
	assert.False(t, st.Contains(1, 2, 4))
	assert.False(t, st.Contains(2, 2, 3))
	assert.Equal(t, uint64(1), st.Len())
}

func TestAddIdempotent(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Add(1, 2, 3))
	gen := st.Generation()
	require.NoError(t, st.Add(1, 2, 3))

	assert.Equal(t, uint64(1), st.Len())
	assert.Equal(t, gen, st.Generation(), "duplicate add must not bump generation")
	assert.Len(t, st.ObjectsFor(2, 1), 1)
	assert.True(t, st.Contains(1, 2, 3))
}

func TestWildcardPatterns(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Add(1, 2, 3))
	require.NoError(t, st.Add(1, 2, 4))
	require.NoError(t, st.Add(5, 6, 3))

	// Object wildcard: true iff ObjectsFor is non-empty.
	assert.True(t, st.Contains(1, 2, types.Wildcard))
	assert.False(t, st.Contains(9, 2, types.Wildcard))

	// Subject wildcard through the reverse index.
	assert.True(t, st.Contains(types.Wildcard, 2, 3))
	assert.True(t, st.Contains(types.Wildcard, 6, 3))
	assert.False(t, st.Contains(types.Wildcard, 6, 4))

	// Predicate-only pattern.
	assert.True(t, st.Contains(types.Wildcard, 2, types.Wildcard))
	assert.False(t, st.Contains(types.Wildcard, 99, types.Wildcard))

	// Predicate wildcard falls back to the scan path.
	assert.True(t, st.Contains(1, types.Wildcard, 4))
	assert.True(t, st.Contains(5, types.Wildcard, types.Wildcard))
	assert.False(t, st.Contains(5, types.Wildcard, 4))
	assert.True(t, st.Contains(types.Wildcard, types.Wildcard, types.Wildcard))
}

func TestObjectsForEnumeration(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Add(1, 2, 30))
	require.NoError(t, st.Add(1, 2, 10))
	require.NoError(t, st.Add(1, 2, 20))
	require.NoError(t, st.Add(1, 2, 10)) // duplicate

	objs := st.ObjectsFor(2, 1)
	assert.Equal(t, []types.ID{30, 10, 20}, objs, "insertion order, deduplicated")

	assert.Nil(t, st.ObjectsFor(2, 99))
	assert.Nil(t, st.ObjectsFor(99, 1))
}

func TestSubjectsForReverseIndex(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Add(10, 2, 3))
	require.NoError(t, st.Add(20, 2, 3))
	require.NoError(t, st.Add(30, 2, 4))

	subs := st.SubjectsFor(2, 3)
	require.NotNil(t, subs)
	assert.True(t, subs.Test(10))
	assert.True(t, subs.Test(20))
	assert.False(t, subs.Test(30))
	assert.Equal(t, uint(2), subs.Count())

	assert.Nil(t, st.SubjectsFor(2, 99))

	pred := st.SubjectsForPredicate(2)
	require.NotNil(t, pred)
	assert.Equal(t, uint(3), pred.Count())
}

func TestAddRejectsReservedZero(t *testing.T) {
	st := newTestStore(t)

	cases := []types.Triple{
		{Subject: 0, Predicate: 2, Object: 3},
		{Subject: 1, Predicate: 0, Object: 3},
		{Subject: 1, Predicate: 2, Object: 0},
	}
	for _, tr := range cases {
		err := st.Add(tr.Subject, tr.Predicate, tr.Object)
		require.Error(t, err)
		assert.ErrorIs(t, err, kerrors.ErrReservedIdentifier)
	}
	assert.Equal(t, uint64(0), st.Len())
}

func TestAddRejectsOutOfRangeIdentifiers(t *testing.T) {
	st := newTestStore(t)

	err := st.Add(types.ID(testCapacity().MaxSubjects+1), 2, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrCapacityExceeded)

	err = st.Add(1, types.ID(testCapacity().MaxPredicates+1), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrCapacityExceeded)

	err = st.Add(1, 2, types.ID(testCapacity().MaxObjects+1))
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrCapacityExceeded)
}

func TestGenerationTracksWrites(t *testing.T) {
	st := newTestStore(t)

	g0 := st.Generation()
	require.NoError(t, st.Add(1, 2, 3))
	g1 := st.Generation()
	assert.Greater(t, g1, g0)

	require.NoError(t, st.Add(1, 2, 3)) // no-op
	assert.Equal(t, g1, st.Generation())

	require.NoError(t, st.Add(1, 2, 4))
	assert.Greater(t, st.Generation(), g1)
}

func BenchmarkContainsExact(b *testing.B) {
	st, err := New(config.CapacityConfig{
		MaxSubjects: 1 << 16, MaxPredicates: 256, MaxObjects: 1 << 16, MaxClasses: 256,
	}, slog.Default())
	if err != nil {
		b.Fatal(err)
	}
	for i := types.ID(1); i <= 10000; i++ {
		if err := st.Add(i, 7, i); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		id := types.ID(i%10000 + 1)
		if !st.Contains(id, 7, id) {
			b.Fatal("expected hit")
		}
	}
}

func BenchmarkObjectsFor(b *testing.B) {
	st, err := New(config.CapacityConfig{
		MaxSubjects: 1 << 16, MaxPredicates: 256, MaxObjects: 1 << 16, MaxClasses: 256,
	}, slog.Default())
	if err != nil {
		b.Fatal(err)
	}
	for i := types.ID(1); i <= 100; i++ {
		if err := st.Add(1, 7, i); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if len(st.ObjectsFor(7, 1)) != 100 {
			b.Fatal("expected 100 objects")
		}
	}
}
