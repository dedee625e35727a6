package engine

import (
	"fmt"

	"github.com/tphakala/go-overdraw/internal/simdops"
)

// Decimator halves the sample rate of a stream: it lowpass filters and keeps
// every even-indexed sample. Like Interpolator it is zero-primed, so 2n input
// samples always yield n output samples, and it never allocates in Process.
type Decimator[F simdops.Float] struct {
	kernel   []F // reversed prototype
	history  []F
	maxBlock int // in output samples

	ops *simdops.Ops[F]
}

// NewDecimator builds a 2x decimator from prototype lowpass coefficients
// designed at the input rate with unity DC gain. maxBlock bounds the output
// length of a single call.
func NewDecimator[F simdops.Float](coeffs []float64, maxBlock int) (*Decimator[F], error) {
	if len(coeffs) < minStageTaps {
		return nil, fmt.Errorf("decimator needs at least %d taps, got %d", minStageTaps, len(coeffs))
	}
	if maxBlock < 1 {
		return nil, fmt.Errorf("decimator block size must be positive: %d", maxBlock)
	}

	kernel := make([]F, len(coeffs))
	for i, c := range coeffs {
		kernel[len(coeffs)-1-i] = F(c)
	}

	return &Decimator[F]{
		kernel:   kernel,
		history:  make([]F, len(coeffs)-1, len(coeffs)-1+maxBlock*factor),
		maxBlock: maxBlock,
		ops:      simdops.For[F](),
	}, nil
}

// Process consumes an even number of samples and writes half as many to dst.
// It returns the number of samples written, or 0 for an odd, oversized or
// empty input.
func (d *Decimator[F]) Process(dst, input []F) int {
	n := len(input) / factor
	if n == 0 || len(input)%factor != 0 || n > d.maxBlock || len(dst) < n {
		return 0
	}

	keep := len(d.kernel) - 1
	taps := len(d.kernel)
	history := d.history[:keep+len(input)]
	copy(history[keep:], input)

	for i := range n {
		start := i * factor
		dst[i] = d.ops.DotProductUnsafe(history[start:start+taps], d.kernel)
	}

	copy(d.history[:keep], history[len(input):])

	return n
}

// Reset clears the history back to zeros.
func (d *Decimator[F]) Reset() {
	clear(d.history)
}

// Taps returns the filter length.
func (d *Decimator[F]) Taps() int {
	return len(d.kernel)
}

// MemoryUsage returns the approximate footprint in samples.
func (d *Decimator[F]) MemoryUsage() int {
	return len(d.kernel) + cap(d.history)
}
