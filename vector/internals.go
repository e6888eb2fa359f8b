package vector

import "fmt"

// block is a heap allocation shared by one or more vector handles. Its
// capacity is fixed at allocation time; the live prefix length is tracked
// by the owning handle, not the block. While refcnt > 1 all sharing handles
// agree on length and element values, because a shared block is read-only
// until one owner detaches via copy-on-write.
//
// refcnt is a plain int: vectors are single-owner-thread structures.
type block[T any] struct {
	refcnt int
	data   []T // len(data) is the block's capacity
}

func newBlock[T any](capacity int) *block[T] {
	return &block[T]{refcnt: 1, data: make([]T, capacity)}
}

// copiedBlock builds a fresh exclusive block of the given capacity holding
// copies of the first n live elements. A panicking copier aborts the build
// before the vector is touched; the partial block is left to the garbage
// collector.
func (v *Vector[T]) copiedBlock(n, capacity int) *block[T] {
	assertThat(capacity >= n, "block capacity %d too small for %d items", capacity, n)
	blk := newBlock[T](capacity)
	src := v.read()
	for i := 0; i < n; i++ {
		blk.data[i] = v.cp(src[i])
	}
	return blk
}

// cp copies a single item, through the configured copier if there is one.
func (v *Vector[T]) cp(item T) T {
	if v.copier == nil {
		return item
	}
	return v.copier(item)
}

// read returns the live elements for reading only. Reading never allocates
// and never touches a reference count.
func (v *Vector[T]) read() []T {
	if v.dyn == nil {
		return v.inline[:v.length]
	}
	return v.dyn.data[:v.length]
}

// slots returns the full writable storage. Callers must hold exclusive
// ownership, i.e. be inline or the block's only referent.
func (v *Vector[T]) slots() []T {
	if v.dyn == nil {
		return v.inline[:]
	}
	assertThat(v.dyn.refcnt == 1, "mutable access to a shared block")
	return v.dyn.data
}

// copied is true while the vector's block is shared with other handles.
func (v *Vector[T]) copied() bool {
	return v.dyn != nil && v.dyn.refcnt > 1
}

// ensureWritable establishes the invariant behind every mutable access
// path: inline storage and exclusively owned blocks pass through untouched;
// a shared block is cloned at its current capacity. Calling it when already
// exclusive is free.
func (v *Vector[T]) ensureWritable() {
	if v.copied() {
		v.cow(v.Cap())
	}
}

// cow clones the live elements into a fresh exclusive block of the given
// capacity and adopts it, dropping the reference to the old storage. This
// is the only way sharing handles ever diverge.
func (v *Vector[T]) cow(capacity int) {
	tracer().Debugf("cow: cloning %d items into a fresh block of capacity %d", v.length, capacity)
	blk := v.copiedBlock(v.length, capacity)
	v.adopt(blk)
}

// adopt commits a fully built block as the vector's storage. Everything
// that can fail has happened by the time adopt runs.
func (v *Vector[T]) adopt(blk *block[T]) {
	v.release()
	v.dyn = blk
}

// toInline moves the live elements of a heap-backed vector into the
// handle's inline storage and drops the block reference. A panicking
// copier leaves the vector on its original block.
func (v *Vector[T]) toInline() {
	assertThat(v.dyn != nil, "vector is already inline")
	assertThat(v.length <= SmallSize, "%d items do not fit inline", v.length)
	tracer().Debugf("block of capacity %d converts back to inline storage", v.Cap())
	var tmp [SmallSize]T
	for i := 0; i < v.length; i++ {
		tmp[i] = v.cp(v.dyn.data[i])
	}
	v.release()
	v.inline = tmp
}

// release drops one reference to the current storage: inline slots are
// zeroed, a block's refcount is decremented and the handle detached. This
// is the single exit path used by Assign, Clear, Release and every
// adopting mutation. An orphaned block is reclaimed by the garbage
// collector.
func (v *Vector[T]) release() {
	if v.dyn == nil {
		clearSlots(v.inline[:v.length])
		return
	}
	v.dyn.refcnt--
	assertThat(v.dyn.refcnt >= 0, "block reference count dropped below zero")
	v.dyn = nil
}

// clearSlots zeroes vacated slots so the garbage collector can reclaim
// whatever the elements referenced.
func clearSlots[T any](s []T) {
	var none T
	for i := range s {
		s[i] = none
	}
}

// --- Helpers ---------------------------------------------------------------

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("vector: "+msg, msgargs...)
		panic(msg)
	}
}
