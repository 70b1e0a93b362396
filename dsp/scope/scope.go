// Package scope captures recent output of a module for display. The audio
// thread pushes samples without locking; readers take snapshots or a
// magnitude spectrum from any goroutine.
package scope

import (
	"math"
	"sync/atomic"
)

// DefaultSize is the number of samples a Buffer retains.
const DefaultSize = 1024

// Buffer is a single-writer ring of the most recent samples.
type Buffer struct {
	slots []atomic.Uint64
	write atomic.Uint64
}

// New returns a ring holding size samples (DefaultSize if size <= 0).
func New(size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Buffer{slots: make([]atomic.Uint64, size)}
}

// Len returns the ring capacity.
func (b *Buffer) Len() int { return len(b.slots) }

// Push appends one sample. Only one goroutine may push.
func (b *Buffer) Push(x float64) {
	w := b.write.Load()
	b.slots[w%uint64(len(b.slots))].Store(math.Float64bits(x))
	b.write.Store(w + 1)
}

// PushBlock appends a block of samples.
func (b *Buffer) PushBlock(block []float64) {
	w := b.write.Load()
	n := uint64(len(b.slots))
	for _, x := range block {
		b.slots[w%n].Store(math.Float64bits(x))
		w++
	}
	b.write.Store(w)
}

// Written returns the total number of samples pushed so far.
func (b *Buffer) Written() uint64 { return b.write.Load() }

// Snapshot copies the most recent samples into dst, oldest first, and
// returns how many were copied. Samples never written read as zero.
func (b *Buffer) Snapshot(dst []float64) int {
	n := min(len(dst), len(b.slots))
	w := b.write.Load()
	size := uint64(len(b.slots))
	start := w + size - uint64(n)
	for i := range n {
		dst[i] = math.Float64frombits(b.slots[(start+uint64(i))%size].Load())
	}
	return n
}
