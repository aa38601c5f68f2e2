// Package buffer provides leased float64 sample buffers.
//
// Short-lived renderers (noise bursts, clicks) take a [Buffer] from a [Pool]
// when they are created and release it from their completion path. The pool
// counts outstanding leases so callers can verify that every renderer gave
// its memory back.
package buffer
