// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package arena provides a bump allocator over chained fixed-size blocks.
// Allocation is pointer arithmetic; freeing is bulk via Reset, or scoped via
// Checkpoint and Restore. Memory handed out by an arena stays reachable
// until the arena itself is released, so callers never hold dangling slices
// inside a live arena scope.
package arena

import "unsafe"

// DefaultBlockSize is the block size used when New is given zero.
const DefaultBlockSize = 64 * 1024

const alignment = 16

type block struct {
	buf  []byte
	used int
}

// Arena is a growable bump allocator. It is not safe for concurrent use;
// give each worker its own arena.
type Arena struct {
	blocks    []*block
	cur       int
	blockSize int
	peak      int
}

// Checkpoint marks a position in an arena. Restoring to it frees every
// allocation made after the mark.
type Checkpoint struct {
	block int
	used  int
}

// New returns an arena whose blocks hold blockSize bytes each. A blockSize
// of zero selects DefaultBlockSize.
func New(blockSize int) *Arena {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	a := &Arena{blockSize: blockSize}
	a.blocks = append(a.blocks, &block{buf: make([]byte, blockSize)})
	return a
}

func alignUp(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// Alloc returns a zeroed slice of size bytes, aligned to 16. Requests larger
// than the block size get a dedicated oversized block.
func (a *Arena) Alloc(size int) []byte {
	if size == 0 {
		return nil
	}
	b := a.blocks[a.cur]
	off := alignUp(b.used)
	if off+size > len(b.buf) {
		b = a.nextBlock(size)
		off = 0
	}
	b.used = off + size
	out := b.buf[off : off+size : off+size]
	clear(out)
	if u := a.Used(); u > a.peak {
		a.peak = u
	}
	return out
}

// nextBlock advances to a block with at least size free bytes, reusing
// previously grown blocks before appending a new one.
func (a *Arena) nextBlock(size int) *block {
	for a.cur+1 < len(a.blocks) {
		a.cur++
		b := a.blocks[a.cur]
		b.used = 0
		if size <= len(b.buf) {
			return b
		}
	}
	n := a.blockSize
	if size > n {
		n = alignUp(size)
	}
	b := &block{buf: make([]byte, n)}
	a.blocks = append(a.blocks, b)
	a.cur = len(a.blocks) - 1
	return b
}

// Checkpoint captures the current allocation position.
func (a *Arena) Checkpoint() Checkpoint {
	return Checkpoint{block: a.cur, used: a.blocks[a.cur].used}
}

// Restore rewinds the arena to a previously captured checkpoint. Slices
// allocated after the checkpoint become dead and will be reused.
func (a *Arena) Restore(cp Checkpoint) {
	if cp.block >= len(a.blocks) {
		return
	}
	for i := cp.block + 1; i <= a.cur; i++ {
		a.blocks[i].used = 0
	}
	a.cur = cp.block
	a.blocks[a.cur].used = cp.used
}

// Reset frees every allocation while keeping the grown blocks for reuse.
func (a *Arena) Reset() {
	for _, b := range a.blocks {
		b.used = 0
	}
	a.cur = 0
}

// Used returns the number of live allocated bytes.
func (a *Arena) Used() int {
	n := 0
	for i := 0; i <= a.cur; i++ {
		n += a.blocks[i].used
	}
	return n
}

// Peak returns the high-water mark of Used over the arena's lifetime.
func (a *Arena) Peak() int {
	return a.peak
}

// Destroy releases all blocks. The arena must not be used afterwards.
func (a *Arena) Destroy() {
	a.blocks = nil
	a.cur = 0
}

// Make allocates a zeroed []T of length n inside the arena. T must not
// contain pointers; the collector does not scan arena blocks as typed
// memory.
func Make[T any](a *Arena, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	buf := a.Alloc(n * size)
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n)
}
