package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FFT oversizing against the filter length keeps cepstral aliasing low.
	minPhaseFFTOversize = 16

	// Magnitude floor relative to the peak before taking the logarithm.
	minPhaseMagnitudeFloor = 1e-10
)

// MinimumPhase converts an FIR to the minimum-phase filter with the same
// magnitude response, using the folded real cepstrum. The result has the
// input's length and DC gain.
func MinimumPhase(h []float64) ([]float64, error) {
	n := len(h)
	if n < minFilterTaps {
		return nil, fmt.Errorf("minimum phase: filter too short: %d taps", n)
	}

	size := 1
	for size < n*minPhaseFFTOversize {
		size <<= 1
	}
	fft := fourier.NewFFT(size)
	invSize := 1.0 / float64(size)

	padded := make([]float64, size)
	copy(padded, h)
	spectrum := fft.Coefficients(nil, padded)

	var peak float64
	for _, c := range spectrum {
		peak = math.Max(peak, cmplx.Abs(c))
	}
	if peak == 0 {
		return nil, fmt.Errorf("minimum phase: filter has no energy")
	}
	floor := peak * minPhaseMagnitudeFloor

	logMag := make([]complex128, len(spectrum))
	for i, c := range spectrum {
		logMag[i] = complex(math.Log(math.Max(cmplx.Abs(c), floor)), 0)
	}
	cepstrum := fft.Sequence(nil, logMag)

	// Fold the anti-causal half onto the causal half.
	half := size / 2
	folded := make([]float64, size)
	folded[0] = cepstrum[0] * invSize
	for i := 1; i < half; i++ {
		folded[i] = 2 * cepstrum[i] * invSize
	}
	folded[half] = cepstrum[half] * invSize

	minSpectrum := fft.Coefficients(nil, folded)
	for i, c := range minSpectrum {
		minSpectrum[i] = cmplx.Exp(c)
	}
	impulse := fft.Sequence(nil, minSpectrum)

	out := make([]float64, n)
	var sumIn, sumOut float64
	for i := range out {
		out[i] = impulse[i] * invSize
		sumOut += out[i]
		sumIn += h[i]
	}
	if sumOut != 0 {
		scale := sumIn / sumOut
		for i := range out {
			out[i] *= scale
		}
	}

	return out, nil
}
