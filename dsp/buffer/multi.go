package buffer

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Multi is a fixed-capacity multi-channel block.
type Multi struct {
	data     [][]float64
	view     [][]float64
	capacity int
}

// NewMulti allocates channels*capacity samples.
func NewMulti(channels, capacity int) *Multi {
	if channels < 0 {
		channels = 0
	}
	if capacity < 0 {
		capacity = 0
	}

	backing := make([]float64, channels*capacity)
	m := &Multi{
		data:     make([][]float64, channels),
		view:     make([][]float64, channels),
		capacity: capacity,
	}
	for ch := range m.data {
		m.data[ch] = backing[ch*capacity : (ch+1)*capacity : (ch+1)*capacity]
		m.view[ch] = m.data[ch]
	}
	return m
}

// NumChannels returns the channel count.
func (m *Multi) NumChannels() int {
	return len(m.data)
}

// Capacity returns the maximum block length.
func (m *Multi) Capacity() int {
	return m.capacity
}

// Block returns every channel sliced to n samples. The returned slice is
// reused by subsequent calls and must not be retained.
func (m *Multi) Block(n int) [][]float64 {
	n = m.clampLen(n)
	for ch := range m.data {
		m.view[ch] = m.data[ch][:n]
	}
	return m.view
}

// Channel returns the first n samples of channel ch.
func (m *Multi) Channel(ch, n int) []float64 {
	return m.data[ch][:m.clampLen(n)]
}

// Zero clears the first n samples of every channel.
func (m *Multi) Zero(n int) {
	n = m.clampLen(n)
	for _, ch := range m.data {
		clear(ch[:n])
	}
}

func (m *Multi) clampLen(n int) int {
	if n < 0 {
		return 0
	}
	if n > m.capacity {
		return m.capacity
	}
	return n
}

// Accumulate adds src into dst sample by sample over the shorter length.
func Accumulate(dst, src []float64) {
	n := min(len(dst), len(src))
	if n == 0 {
		return
	}
	vecmath.AddBlockInPlace(dst[:n], src[:n])
}

// Multiply multiplies dst by src sample by sample over the shorter length.
func Multiply(dst, src []float64) {
	n := min(len(dst), len(src))
	if n == 0 {
		return
	}
	vecmath.MulBlockInPlace(dst[:n], src[:n])
}

// Scale multiplies every sample of buf by gain.
func Scale(buf []float64, gain float64) {
	if len(buf) == 0 || gain == 1 {
		return
	}
	vecmath.ScaleBlock(buf, buf, gain)
}
