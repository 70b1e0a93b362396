package midi

import "sync/atomic"

// Queue is a bounded single-producer single-consumer event queue. A
// control goroutine pushes; the audio thread drains into a Buffer.
type Queue struct {
	slots []Event
	mask  uint64
	head  atomic.Uint64
	tail  atomic.Uint64
}

// NewQueue returns a queue whose capacity is size rounded up to a power
// of two.
func NewQueue(size int) *Queue {
	capacity := 1
	for capacity < size {
		capacity <<= 1
	}
	return &Queue{slots: make([]Event, capacity), mask: uint64(capacity - 1)}
}

// Push enqueues e and reports false if the queue is full.
func (q *Queue) Push(e Event) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.slots)) {
		return false
	}
	q.slots[tail&q.mask] = e
	q.tail.Store(tail + 1)
	return true
}

// DrainInto moves every queued event into dst at the given offset.
func (q *Queue) DrainInto(dst *Buffer, offset int) int {
	head := q.head.Load()
	tail := q.tail.Load()
	n := 0
	for ; head != tail; head++ {
		e := q.slots[head&q.mask]
		e.Offset = offset
		dst.Add(e)
		n++
	}
	q.head.Store(head)
	return n
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}
