// Package memview provides typed, stride-scaled reads over memory owned by
// someone else.
//
// A Source names where the memory-view facility lives: the current process
// ([Process]) or a WebAssembly renderer guest ([Guest]). [Resolve] looks the
// facility up once and returns a [Binder]; a source without the facility is a
// fatal binding_unavailable error and the lookup is never retried.
//
//	b, err := memview.Resolve(memview.Guest(ctx, mod))
//	if err != nil {
//	    return err // renderer is unusable
//	}
//	desc, err := b.View(framePtr).Bind(48)
//	pixels, err := desc.Pointer(0)
//
// A [View] wraps one fixed address. It must be bound to a capacity before any
// read. Offsets are expressed in elements of 1<<shift bytes (8 by default),
// matching native structures laid out as arrays of fixed-size records.
//
// The process-wide binder ([Default]) is resolved on first use, from the
// source given to [Install] or from [Process] when none was installed.
package memview
