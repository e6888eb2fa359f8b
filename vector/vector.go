package vector

import (
	"fmt"
	"strings"

	"github.com/npillmayer/fp/maybe"
)

// SmallSize is the number of elements a vector can hold inline in its
// handle. Vectors never allocate heap memory while their length stays
// within it.
const SmallSize = 4

// Vector is a value-semantic sequence of items of type T. The zero value is
// an empty vector, ready for use, i.e. this is legal:
//
//     var v vector.Vector[int]
//     v.Push(42)
//
// Copies made with Clone (or Assign) share the underlying heap block until
// one side mutates; the mutating side then clones its own private block
// first. A Vector must therefore not be duplicated by plain struct
// assignment — use Clone or Assign, which maintain the block's reference
// count.
//
// Vectors are not safe for concurrent use.
type Vector[T any] struct {
	length int
	inline [SmallSize]T
	dyn    *block[T] // nil ⇒ elements live in inline storage
	copier func(T) T
}

// New constructs a vector with options, if you need any.
// Use it like this:
//
//     vec := vector.New[*Node](vector.Copier(cloneNode))
//
func New[T any](opts ...Option[T]) Vector[T] {
	v := Vector[T]{}
	for _, option := range opts {
		v = option(v)
	}
	return v
}

// Option is a type to help initializing vectors at creation time.
type Option[T any] func(Vector[T]) Vector[T]

// Copier is an option to set the element copy function for a vector.
// Whenever the vector has to duplicate elements it already holds — during
// copy-on-write cloning, growth, shrinking to inline storage, Clone of an
// inline vector or Assign — it runs each element through cp. Without this
// option elements are duplicated by plain assignment, which is the right
// choice for value-ish item types.
//
// A panic raised by cp aborts the triggering operation and propagates to
// the caller, leaving the vector exactly as it was before the call.
func Copier[T any](cp func(T) T) Option[T] {
	return func(v Vector[T]) Vector[T] {
		v.copier = cp
		return v
	}
}

// --- API -------------------------------------------------------------------

// Len returns the number of elements in the vector.
func (v *Vector[T]) Len() int {
	return v.length
}

// Cap returns the capacity of the vector's current storage. While the
// vector is inline, Cap is always exactly SmallSize.
func (v *Vector[T]) Cap() int {
	if v.dyn == nil {
		return SmallSize
	}
	return len(v.dyn.data)
}

// Empty returns true if the vector holds no elements.
func (v *Vector[T]) Empty() bool {
	return v.length == 0
}

// IsInline returns true if the elements currently live in the handle's
// inline storage rather than in a heap block.
func (v *Vector[T]) IsInline() bool {
	return v.dyn == nil
}

// Get returns the element at position i. Reading never allocates, never
// copies and never changes a block's reference count.
// i out of bounds is a contract violation and panics.
func (v *Vector[T]) Get(i int) T {
	assertThat(i >= 0 && i < v.length, "vector index out of bounds: %d with length %d", i, v.length)
	return v.read()[i]
}

// Set replaces the element at position i. Set is a mutating access and will
// detach the vector from sharers first (copy-on-write).
// i out of bounds is a contract violation and panics.
func (v *Vector[T]) Set(i int, item T) {
	assertThat(i >= 0 && i < v.length, "vector index out of bounds: %d with length %d", i, v.length)
	v.ensureWritable()
	v.slots()[i] = item
}

// First returns the first element, if there is one.
func (v *Vector[T]) First() maybe.Maybe[T] {
	if v.length == 0 {
		return maybe.Nothing[T]()
	}
	return maybe.Just(v.read()[0])
}

// Last returns the last element, if there is one.
func (v *Vector[T]) Last() maybe.Maybe[T] {
	if v.length == 0 {
		return maybe.Nothing[T]()
	}
	return maybe.Just(v.read()[v.length-1])
}

// Each calls f for every element, in order, reading through shared storage
// without copying it.
func (v *Vector[T]) Each(f func(i int, item T)) {
	for i, item := range v.read() {
		f(i, item)
	}
}

// Slice returns the live elements as a slice backed by the vector's own
// storage. It is a mutable access path and detaches the vector from sharers
// first (copy-on-write). The returned slice is invalidated by any later
// call that grows, shrinks or clones the storage.
func (v *Vector[T]) Slice() []T {
	v.ensureWritable()
	return v.slots()[:v.length]
}

// Push appends an element. If the storage is full or shared, all elements
// migrate into a fresh block of twice the current capacity first; the
// migration is all-or-nothing.
func (v *Vector[T]) Push(item T) {
	if v.length == v.Cap() || v.copied() {
		blk := v.copiedBlock(v.length, 2*v.Cap())
		blk.data[v.length] = item
		v.adopt(blk)
		v.length++
		return
	}
	v.slots()[v.length] = item
	v.length++
}

// Pop removes the last element. Popping a shared vector rebuilds a private
// block without the last element, so sharers are unaffected.
// Popping an empty vector is a contract violation and panics.
func (v *Vector[T]) Pop() {
	assertThat(v.length > 0, "attempt to pop from an empty vector")
	if v.copied() {
		blk := v.copiedBlock(v.length-1, v.Cap())
		v.adopt(blk)
		v.length--
		return
	}
	var none T
	v.slots()[v.length-1] = none
	v.length--
}

// Insert places item at position at, shifting the elements from at onwards
// one slot to the right. at == Len() appends.
//
// A full-but-exclusive vector grows to twice its capacity; a shared vector
// rebuilds at capacity+1. Both rebuilds are all-or-nothing. Otherwise the
// item is appended and bubbled into place by adjacent swaps, without
// allocating.
func (v *Vector[T]) Insert(at int, item T) {
	assertThat(at >= 0 && at <= v.length, "insert position out of bounds: %d with length %d", at, v.length)
	if v.length == v.Cap() || v.copied() {
		newcap := 2 * v.Cap()
		if v.copied() {
			newcap = v.Cap() + 1
		}
		tracer().Debugf("insert rebuilds %d items into block of capacity %d", v.length+1, newcap)
		src := v.read()
		blk := newBlock[T](newcap)
		for i := 0; i < at; i++ {
			blk.data[i] = v.cp(src[i])
		}
		blk.data[at] = item
		for i := at; i < v.length; i++ {
			blk.data[i+1] = v.cp(src[i])
		}
		v.adopt(blk)
		v.length++
		return
	}
	v.Push(item)
	s := v.slots()
	for i := v.length - 1; i > at; i-- {
		s[i], s[i-1] = s[i-1], s[i]
	}
}

// Remove deletes the element at position at.
func (v *Vector[T]) Remove(at int) {
	v.RemoveRange(at, at+1)
}

// RemoveRange deletes the elements in [from, to), preserving the relative
// order of the survivors. An empty range is a no-op.
//
// Removing from a shared vector rebuilds a private storage of capacity
// Cap()−(to−from); if that fits inline the vector drops back to inline
// storage. An exclusive vector shifts the surviving tail left in place.
func (v *Vector[T]) RemoveRange(from, to int) {
	assertThat(0 <= from && from <= to && to <= v.length,
		"remove range out of bounds: [%d,%d) with length %d", from, to, v.length)
	n := to - from
	if n == 0 {
		return
	}
	if v.copied() {
		src := v.read()
		if v.Cap()-n <= SmallSize {
			tracer().Debugf("remove detaches shared block, %d items drop back to inline", v.length-n)
			var tmp [SmallSize]T
			k := 0
			for i := 0; i < from; i++ {
				tmp[k] = v.cp(src[i])
				k++
			}
			for i := to; i < v.length; i++ {
				tmp[k] = v.cp(src[i])
				k++
			}
			v.release()
			v.inline = tmp
			v.length = k
			return
		}
		blk := newBlock[T](v.Cap() - n)
		k := 0
		for i := 0; i < from; i++ {
			blk.data[k] = v.cp(src[i])
			k++
		}
		for i := to; i < v.length; i++ {
			blk.data[k] = v.cp(src[i])
			k++
		}
		v.adopt(blk)
		v.length = k
		return
	}
	s := v.slots()
	for i := from; i < v.length-n; i++ {
		s[i], s[i+n] = s[i+n], s[i]
	}
	for i := 0; i < n; i++ {
		v.Pop()
	}
}

// Clear removes all elements. An inline or exclusively owned vector keeps
// its storage and capacity. Clearing a shared vector never copies: the
// handle simply detaches from the block and resets to the empty inline
// representation, leaving sharers untouched.
func (v *Vector[T]) Clear() {
	if v.copied() {
		tracer().Debugf("clear detaches shared block of capacity %d", v.Cap())
		v.release()
		v.length = 0
		return
	}
	clearSlots(v.slots()[:v.length])
	v.length = 0
}

// Reserve ensures storage for at least newcap elements. It is a no-op for
// newcap ≤ Len(), and for an inline vector whose SmallSize already covers
// newcap. A shared vector asked for newcap ≤ SmallSize converts back to
// inline storage. In every other case — inline, shared, or exclusively
// owned and growing — the elements migrate into a fresh exclusive block of
// exactly newcap slots.
func (v *Vector[T]) Reserve(newcap int) {
	if newcap <= v.length {
		return
	}
	if v.dyn == nil && newcap <= SmallSize {
		return
	}
	if v.copied() && newcap <= SmallSize {
		v.toInline()
		return
	}
	if v.dyn == nil || v.copied() || newcap > v.Cap() {
		v.cow(newcap)
	}
}

// Shrink reduces the capacity to the smallest representation that holds the
// current elements: inline storage if they fit, otherwise a block of
// exactly Len() slots. A vector already inline or exactly full is left
// alone.
func (v *Vector[T]) Shrink() {
	if v.dyn == nil || v.length == v.Cap() {
		return
	}
	if v.length <= SmallSize {
		v.toInline()
		return
	}
	v.cow(v.length)
}

// Swap exchanges the contents of two vectors in O(SmallSize) at worst:
// blocks change hands by pointer, inline elements by array copy. Swap
// never invokes the element copier and cannot fail halfway.
func (v *Vector[T]) Swap(other *Vector[T]) {
	if v == other {
		return
	}
	switch {
	case v.dyn != nil && other.dyn != nil:
		v.dyn, other.dyn = other.dyn, v.dyn
	case v.dyn == nil && other.dyn == nil:
		v.inline, other.inline = other.inline, v.inline
	case v.dyn == nil: // inline meets heap: elements change homes, the block changes hands
		blk := other.dyn
		other.dyn = nil
		other.inline = v.inline
		v.inline = [SmallSize]T{}
		v.dyn = blk
	default: // heap meets inline: mirror case
		other.Swap(v)
		return
	}
	v.length, other.length = other.length, v.length
	v.copier, other.copier = other.copier, v.copier
}

// Clone returns a copy of the vector. Cloning a heap-backed vector is O(1):
// the copy shares the block and only the reference count changes. Cloning
// an inline vector copies its elements, at O(Len()).
func (v *Vector[T]) Clone() Vector[T] {
	w := Vector[T]{length: v.length, copier: v.copier}
	if v.dyn != nil {
		v.dyn.refcnt++
		w.dyn = v.dyn
		return w
	}
	for i := 0; i < v.length; i++ {
		w.inline[i] = v.cp(v.inline[i])
	}
	return w
}

// Assign makes v a copy of other, releasing whatever v held before. A
// heap-backed source is shared in O(1), except that a source small enough
// for inline storage is deep-copied into an inline target. An inline source
// is always deep-copied. If copying an element panics, v is left exactly as
// it was.
func (v *Vector[T]) Assign(other *Vector[T]) {
	if v == other {
		return
	}
	switch {
	case other.dyn == nil:
		var tmp [SmallSize]T
		for i := 0; i < other.length; i++ {
			tmp[i] = other.cp(other.inline[i])
		}
		v.release()
		v.inline = tmp
	case v.dyn == nil && other.length <= SmallSize:
		var tmp [SmallSize]T
		for i := 0; i < other.length; i++ {
			tmp[i] = other.cp(other.dyn.data[i])
		}
		v.release()
		v.inline = tmp
	default:
		other.dyn.refcnt++ // before release: v and other may share one block
		v.release()
		v.dyn = other.dyn
	}
	v.length = other.length
	v.copier = other.copier
}

// Release drops the handle's reference to its storage and resets the
// vector to the empty inline representation. Sharers are unaffected.
//
// Calling Release is never required for memory safety — an abandoned
// handle is garbage collected — but an abandoned handle's reference is
// still counted, which may cost a sharer one superfluous copy on its next
// mutation. Release is the explicit way out.
func (v *Vector[T]) Release() {
	v.release()
	v.length = 0
}

func (v *Vector[T]) String() string {
	b := strings.Builder{}
	b.WriteByte('[')
	for i, item := range v.read() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%v", item))
	}
	b.WriteByte(']')
	return b.String()
}
