// Package audio pulls blocks from a processing graph and hands them to
// the sound device as interleaved float32 PCM.
package audio

import (
	"encoding/binary"
	"math"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
)

// Channels is the device channel count.
const Channels = graph.HostChannels

const bytesPerSample = 4

// Renderer adapts a graph to a pull-based device. It renders one block
// at a time and serves frames from it; it is not safe for concurrent
// reads.
type Renderer struct {
	g     *graph.Graph
	block [][]float64
	pos   int
}

// NewRenderer renders g in blocks of blockSize frames.
func NewRenderer(g *graph.Graph, blockSize int) *Renderer {
	blockSize = max(blockSize, 1)
	block := make([][]float64, Channels)
	for ch := range block {
		block[ch] = make([]float64, blockSize)
	}
	return &Renderer{g: g, block: block, pos: blockSize}
}

func (r *Renderer) next() (l, rr float64) {
	if r.pos == len(r.block[0]) {
		r.g.Process(r.block, nil)
		r.pos = 0
	}
	l, rr = r.block[0][r.pos], r.block[1][r.pos]
	r.pos++
	return l, rr
}

// Render fills dst with interleaved stereo frames. A trailing odd sample
// is zeroed.
func (r *Renderer) Render(dst []float32) {
	frames := len(dst) / Channels
	for i := range frames {
		l, rr := r.next()
		dst[2*i] = float32(l)
		dst[2*i+1] = float32(rr)
	}
	clear(dst[frames*Channels:])
}

// Read implements io.Reader with little-endian float32 frames. It always
// fills whole frames and never fails.
func (r *Renderer) Read(p []byte) (int, error) {
	frameBytes := Channels * bytesPerSample
	frames := len(p) / frameBytes
	for i := range frames {
		l, rr := r.next()
		off := i * frameBytes
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(l)))
		binary.LittleEndian.PutUint32(p[off+bytesPerSample:], math.Float32bits(float32(rr)))
	}
	return frames * frameBytes, nil
}
