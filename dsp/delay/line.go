package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modsynth/dsp/interp"
)

// Line is a circular delay line. The write position advances monotonically
// modulo the buffer length; reads address samples relative to it.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional read kernel used by ReadFractional.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		d.mode = mode
	}
}

// New returns a delay line of fixed size. Fractional reads default to
// linear interpolation.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	d := &Line{buffer: make([]float64, size), mode: interp.Linear}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay writes ago; Read(1) is the most
// recent one.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := (d.writePos - delay) % size
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads a non-integer delay using the configured kernel.
// The delay is clamped to the range the kernel can address.
func (d *Line) ReadFractional(delay float64) float64 {
	if d.mode == interp.Hermite {
		return d.readHermite(delay)
	}
	return d.ReadLinear(delay)
}

// ReadLinear interpolates linearly between the two cells around delay.
func (d *Line) ReadLinear(delay float64) float64 {
	maxDelay := float64(len(d.buffer) - 1)
	if delay < 1 {
		delay = 1
	}
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)
	if t == 0 {
		return d.Read(p)
	}
	return interp.Linear2(t, d.Read(p), d.Read(p+1))
}

func (d *Line) readHermite(delay float64) float64 {
	maxDelay := float64(len(d.buffer) - 3)
	if delay < 1 {
		delay = 1
	}
	if delay > maxDelay {
		delay = math.Max(1, maxDelay)
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	xm1 := d.Read(max(1, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)
	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
