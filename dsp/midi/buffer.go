package midi

// DefaultCapacity is the event capacity used for graph buffers.
const DefaultCapacity = 512

// Buffer is a fixed-capacity list of events kept in offset order. Events
// with equal offsets keep their insertion order.
type Buffer struct {
	events  []Event
	dropped int
}

// NewBuffer allocates a buffer holding up to capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{events: make([]Event, 0, capacity)}
}

// Add inserts e in offset order. When the buffer is full the event is
// dropped and Add returns false.
func (b *Buffer) Add(e Event) bool {
	n := len(b.events)
	if n == cap(b.events) {
		b.dropped++
		return false
	}

	b.events = b.events[:n+1]
	i := n
	for i > 0 && b.events[i-1].Offset > e.Offset {
		b.events[i] = b.events[i-1]
		i--
	}
	b.events[i] = e
	return true
}

// AddAll merges every event of src, shifted by offsetDelta.
func (b *Buffer) AddAll(src *Buffer, offsetDelta int) {
	for _, e := range src.events {
		e.Offset += offsetDelta
		b.Add(e)
	}
}

// AddRange merges the events of src whose offsets lie in [start, end),
// re-based so that start becomes offset zero.
func (b *Buffer) AddRange(src *Buffer, start, end int) {
	for _, e := range src.events {
		if e.Offset < start || e.Offset >= end {
			continue
		}
		e.Offset -= start
		b.Add(e)
	}
}

// Events returns the events in offset order. The slice is only valid
// until the buffer is next modified.
func (b *Buffer) Events() []Event { return b.events }

// Len returns the number of events.
func (b *Buffer) Len() int { return len(b.events) }

// Cap returns the capacity.
func (b *Buffer) Cap() int { return cap(b.events) }

// Dropped returns how many events were discarded because the buffer was full.
func (b *Buffer) Dropped() int { return b.dropped }

// Clear removes every event.
func (b *Buffer) Clear() {
	b.events = b.events[:0]
}
