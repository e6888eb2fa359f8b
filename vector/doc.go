/*
Package vector implements a generic, value-semantic vector with small-object
optimization and copy-on-write sharing.

Sequences of up to SmallSize elements live directly inside the vector handle
and never touch the heap. Longer sequences spill into a reference-counted
heap block; cloning such a vector is O(1) and merely shares the block. The
cost of the copy is deferred until one of the sharers mutates, at which
point the mutator transparently clones its own private block first
(copy-on-write). All of this is invisible to clients: a Vector behaves
observably like a plain dynamic array.

Vectors are single-owner-thread structures: reference counts are not
synchronized, and sharing handles across goroutines without external
locking is undefined.

Status

Requires Go 1.18 with generics.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package vector

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'socow.vector'.
func tracer() tracing.Trace {
	return tracing.Select("socow.vector")
}
