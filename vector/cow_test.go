package vector

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyCount instruments a vector's element copier, modelling a copy
// constructor whose invocations we can count — and, with panicAt set, one
// that fails on its n-th call.
type copyCount struct {
	copies  int
	panicAt int // 0 = never
}

func (c *copyCount) fn() func(int) int {
	return func(item int) int {
		c.copies++
		if c.panicAt > 0 && c.copies == c.panicAt {
			panic("copier: simulated copy failure")
		}
		return item
	}
}

func countedVector(c *copyCount, items ...int) Vector[int] {
	v := New[int](Copier(c.fn()))
	for _, item := range items {
		v.Push(item)
	}
	return v
}

func TestCloneSharesWithoutCopying(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	counter := &copyCount{}
	v := countedVector(counter, 1, 2, 3, 4, 5)
	counter.copies = 0
	w := v.Clone()
	assert.Zero(t, counter.copies, "cloning a heap-backed vector must not copy elements")
	assert.Same(t, v.dyn, w.dyn, "clone must share the source's block")
	assert.Equal(t, 2, v.dyn.refcnt)
	assert.Equal(t, collect(&v), collect(&w))
}

func TestMutationDiverges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	counter := &copyCount{}
	v := countedVector(counter, 1, 2, 3, 4, 5)
	w := v.Clone()
	w.Set(0, 99)
	assert.NotSame(t, v.dyn, w.dyn, "mutation must detach the mutator from sharers")
	assert.Equal(t, 1, v.dyn.refcnt)
	assert.Equal(t, 1, w.dyn.refcnt)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, collect(&v))
	assert.Equal(t, []int{99, 2, 3, 4, 5}, collect(&w))
	// divergence the other way round
	v.Set(4, 55)
	assert.Equal(t, []int{99, 2, 3, 4, 5}, collect(&w))
}

func TestCowIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	counter := &copyCount{}
	v := countedVector(counter, 1, 2, 3, 4, 5)
	w := v.Clone()
	w.Set(0, 99)
	after := counter.copies
	w.Set(1, 98)
	w.Set(2, 97)
	assert.Equal(t, after, counter.copies, "repeated writes on an exclusive block must not copy again")
}

func TestPopOnSharedDiverges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	counter := &copyCount{}
	v := countedVector(counter, 1, 2, 3, 4, 5)
	w := v.Clone()
	w.Pop()
	assert.Equal(t, 4, w.Len())
	assert.Equal(t, 2*SmallSize, w.Cap(), "popping a sharer keeps the capacity")
	assert.Equal(t, []int{1, 2, 3, 4, 5}, collect(&v))
	assert.Equal(t, 1, v.dyn.refcnt)
}

func TestAmortizedGrowth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	const n = 1024
	counter := &copyCount{}
	v := New[int](Copier(counter.fn()))
	for i := 0; i < n; i++ {
		v.Push(i)
	}
	require.Equal(t, n, v.Len())
	// with doubling, total element migrations stay linear in n
	assert.LessOrEqual(t, counter.copies, 4*n,
		"expected amortized O(1) copies per push, saw %d copies over %d pushes", counter.copies, n)
}

func TestPushPanicLeavesVectorIntact(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	counter := &copyCount{}
	v := countedVector(counter, 1, 2, 3, 4, 5, 6, 7, 8) // exactly full: next push reallocates
	require.Equal(t, v.Len(), v.Cap())
	counter.copies = 0
	counter.panicAt = 3
	require.Panics(t, func() { v.Push(9) })
	assert.Equal(t, 8, v.Len())
	assert.Equal(t, 8, v.Cap())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, collect(&v))
}

func TestInsertPanicLeavesSharersIntact(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	counter := &copyCount{}
	v := countedVector(counter, 1, 2, 3, 4, 5)
	w := v.Clone()
	counter.copies = 0
	counter.panicAt = 4
	require.Panics(t, func() { w.Insert(2, 99) })
	assert.Same(t, v.dyn, w.dyn, "failed insert must not detach the sharer")
	assert.Equal(t, 2, v.dyn.refcnt)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, collect(&v))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, collect(&w))
}

func TestAssignPanicLeavesTargetIntact(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	target := &copyCount{}
	v := countedVector(target, 1, 2, 3, 4, 5) // heap-backed target
	counter := &copyCount{}
	src := countedVector(counter, 7, 8)
	counter.copies = 0
	counter.panicAt = 2
	require.Panics(t, func() { v.Assign(&src) })
	assert.False(t, v.IsInline(), "failed assignment must leave the target on its original block")
	assert.Equal(t, []int{1, 2, 3, 4, 5}, collect(&v))
	assert.Equal(t, []int{7, 8}, collect(&src))
}

func TestShrinkPanicLeavesVectorIntact(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	counter := &copyCount{}
	v := countedVector(counter, 1, 2, 3, 4, 5)
	v.Pop()
	v.Pop() // heap-backed, fits inline
	counter.copies = 0
	counter.panicAt = 2
	require.Panics(t, func() { v.Shrink() })
	assert.False(t, v.IsInline())
	assert.Equal(t, 2*SmallSize, v.Cap())
	assert.Equal(t, []int{1, 2, 3}, collect(&v))
}

func TestSwapNeverCopies(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "socow.vector")
	defer teardown()
	//
	counter := &copyCount{}
	v := countedVector(counter, 1, 2, 3, 4, 5)
	w := countedVector(counter, 6, 7)
	counter.copies = 0
	v.Swap(&w)
	assert.Zero(t, counter.copies, "swap moves elements, it must not copy them")
	assert.Equal(t, []int{6, 7}, collect(&v))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, collect(&w))
}

// --- Benchmarks ------------------------------------------------------------

func BenchmarkPush(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var v Vector[int]
		for j := 0; j < 256; j++ {
			v.Push(j)
		}
	}
}

func BenchmarkCloneDiverge(b *testing.B) {
	var v Vector[int]
	for j := 0; j < 256; j++ {
		v.Push(j)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := v.Clone()
		w.Set(0, i)
		w.Release()
	}
}
