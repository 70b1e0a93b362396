package scope

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Analyzer computes windowed magnitude spectra of a Buffer. It owns its
// scratch space and is not safe for concurrent use.
type Analyzer struct {
	size   int
	plan   *algofft.Plan[complex128]
	window []float64
	frame  []float64
	freq   []complex128
	re, im []float64
}

// NewAnalyzer prepares an FFT of the given power-of-two size.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("scope: analyzer size must be a power of two >= 2: %d", size)
	}
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("scope: create fft plan: %w", err)
	}

	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}

	bins := size/2 + 1
	return &Analyzer{
		size:   size,
		plan:   plan,
		window: window,
		frame:  make([]float64, size),
		freq:   make([]complex128, size),
		re:     make([]float64, bins),
		im:     make([]float64, bins),
	}, nil
}

// Bins returns the number of magnitude values Magnitudes produces.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// Magnitudes analyses the most recent samples of buf and writes
// Bins() magnitudes, normalized so a full-scale sine peaks near 1.
func (a *Analyzer) Magnitudes(buf *Buffer, dst []float64) error {
	if len(dst) < a.Bins() {
		return fmt.Errorf("scope: destination too short: %d < %d", len(dst), a.Bins())
	}

	clear(a.frame)
	buf.Snapshot(a.frame)
	vecmath.MulBlockInPlace(a.frame, a.window)

	for i, x := range a.frame {
		a.freq[i] = complex(x, 0)
	}
	if err := a.plan.Forward(a.freq, a.freq); err != nil {
		return fmt.Errorf("scope: forward fft: %w", err)
	}

	// A Hann window halves the coherent gain; a one-sided sine spectrum
	// halves it again.
	norm := 4 / float64(a.size)
	for i := range a.re {
		a.re[i] = real(a.freq[i]) * norm
		a.im[i] = imag(a.freq[i]) * norm
	}
	vecmath.Magnitude(dst[:a.Bins()], a.re, a.im)
	return nil
}
