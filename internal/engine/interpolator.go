package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-overdraw/internal/simdops"
)

const (
	// factor is the rate change of one stage.
	factor = 2

	// Branch 0 of a half-band filter holds a single tap near 1.0 after scaling.
	halfBandThreshold = 1e-8
	halfBandTolerance = 0.01

	minStageTaps = 3
)

// Interpolator doubles the sample rate of a stream using polyphase
// decomposition of a lowpass FIR, so the inserted zeros are never multiplied.
//
// The input history is primed with zeros, so every call produces exactly
// twice as many samples as it consumes. Buffers are sized once for maxBlock
// input samples; Process never allocates.
type Interpolator[F simdops.Float] struct {
	// Branch coefficients, reversed for ConvolveValid and scaled by the factor.
	polyCoeffs   [][]F
	tapsPerPhase int

	// Half-band filters turn branch 0 into a scaled delay line.
	isHalfBand      bool
	phase0TapOffset int
	phase0TapScale  F

	history   []F
	phaseBufs [][]F
	phaseOut  [][]F
	maxBlock  int

	ops *simdops.Ops[F]
}

// NewInterpolator builds a 2x interpolator from prototype lowpass
// coefficients designed at the output rate with unity DC gain.
func NewInterpolator[F simdops.Float](coeffs []float64, maxBlock int) (*Interpolator[F], error) {
	if len(coeffs) < minStageTaps {
		return nil, fmt.Errorf("interpolator needs at least %d taps, got %d", minStageTaps, len(coeffs))
	}
	if maxBlock < 1 {
		return nil, fmt.Errorf("interpolator block size must be positive: %d", maxBlock)
	}

	// coeffs[phase][tap] = prototype[tap*factor + phase], stored reversed
	tapsPerPhase := (len(coeffs) + factor - 1) / factor
	polyCoeffs := make([][]F, factor)
	for phase := range factor {
		polyCoeffs[phase] = make([]F, tapsPerPhase)
		for tap := range tapsPerPhase {
			if idx := tap*factor + phase; idx < len(coeffs) {
				polyCoeffs[phase][tapsPerPhase-1-tap] = F(coeffs[idx] * factor)
			}
		}
	}

	s := &Interpolator[F]{
		polyCoeffs:   polyCoeffs,
		tapsPerPhase: tapsPerPhase,
		history:      make([]F, tapsPerPhase-1, tapsPerPhase-1+maxBlock),
		phaseBufs:    [][]F{make([]F, maxBlock), make([]F, maxBlock)},
		phaseOut:     make([][]F, factor),
		maxBlock:     maxBlock,
		ops:          simdops.For[F](),
	}
	s.detectHalfBand()

	return s, nil
}

func (s *Interpolator[F]) detectHalfBand() {
	significant := 0
	var idx int
	var val F
	for i, c := range s.polyCoeffs[0] {
		if math.Abs(float64(c)) > halfBandThreshold {
			significant++
			idx = i
			val = c
		}
	}

	if significant == 1 && math.Abs(float64(val)-1.0) < halfBandTolerance {
		s.isHalfBand = true
		s.phase0TapOffset = idx
		s.phase0TapScale = val
	}
}

// Process writes 2*len(input) samples to dst and returns that count.
// It returns 0 without touching its state when the input exceeds the
// prepared block size or dst is too short.
func (s *Interpolator[F]) Process(dst, input []F) int {
	n := len(input)
	if n == 0 || n > s.maxBlock || len(dst) < n*factor {
		return 0
	}

	keep := s.tapsPerPhase - 1
	history := s.history[:keep+n]
	copy(history[keep:], input)

	p0 := s.phaseBufs[0][:n]
	p1 := s.phaseBufs[1][:n]

	if s.isHalfBand {
		offset := s.phase0TapOffset
		scale := s.phase0TapScale
		for i := range p0 {
			p0[i] = history[i+offset] * scale
		}
		s.ops.ConvolveValid(p1, history, s.polyCoeffs[1])
	} else {
		s.phaseOut[0] = p0
		s.phaseOut[1] = p1
		s.ops.ConvolveValidMulti(s.phaseOut, history, s.polyCoeffs)
	}

	s.ops.Interleave2(dst[:n*factor], p0, p1)

	// Keep the newest keep samples for the next call.
	copy(s.history[:keep], history[n:])

	return n * factor
}

// Reset clears the history back to zeros.
func (s *Interpolator[F]) Reset() {
	clear(s.history)
}

// TapsPerPhase returns the branch length.
func (s *Interpolator[F]) TapsPerPhase() int {
	return s.tapsPerPhase
}

// IsHalfBand reports whether branch 0 is a pure delay.
func (s *Interpolator[F]) IsHalfBand() bool {
	return s.isHalfBand
}

// MemoryUsage returns the approximate footprint in samples.
func (s *Interpolator[F]) MemoryUsage() int {
	return factor*s.tapsPerPhase + cap(s.history) + factor*s.maxBlock
}
