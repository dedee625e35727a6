// Package filter designs the FIR filters used by the oversampling stages.
package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-overdraw/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 8191

	defaultResponsePoints = 512

	// MagnitudeFloorDB is the lowest level MagnitudeDB reports.
	MagnitudeFloorDB = -200.0
)

// KaiserWindow returns a symmetric Kaiser window of the given length,
// peaking at 1 in the middle.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	w := make([]float64, length)
	if length == 1 {
		w[0] = 1
		return w
	}

	half := float64(length-1) / 2
	norm := 1 / mathutil.BesselI0(beta)
	for i := range (length + 1) / 2 {
		r := (float64(i) - half) / half
		v := mathutil.BesselI0(beta*math.Sqrt(1-r*r)) * norm
		w[i], w[length-1-i] = v, v
	}
	return w
}

// FilterParams describes a windowed-sinc lowpass.
type FilterParams struct {
	NumTaps     int     // odd for a type I linear-phase filter
	CutoffFreq  float64 // cycles per sample, in (0, 0.5)
	Attenuation float64 // stopband target in dB, sets the window shape
	Gain        float64 // DC gain after normalization
}

// Validate reports the first out of range field.
func (fp *FilterParams) Validate() error {
	switch {
	case fp.NumTaps < minFilterTaps || fp.NumTaps > maxFilterTaps:
		return fmt.Errorf("filter length %d outside %d..%d", fp.NumTaps, minFilterTaps, maxFilterTaps)
	case fp.CutoffFreq <= 0 || fp.CutoffFreq >= 0.5:
		return fmt.Errorf("cutoff %g outside (0, 0.5)", fp.CutoffFreq)
	case fp.Attenuation < 0:
		return fmt.Errorf("negative attenuation %g dB", fp.Attenuation)
	case fp.Gain <= 0:
		return fmt.Errorf("non-positive gain %g", fp.Gain)
	}
	return nil
}

// DesignLowPassFilter builds a Kaiser windowed sinc lowpass. The taps are
// symmetric and sum to params.Gain.
func DesignLowPassFilter(params FilterParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := params.NumTaps
	w := KaiserWindow(n, mathutil.KaiserBeta(params.Attenuation))
	h := make([]float64, n)
	mid := (n - 1) / 2
	fc := params.CutoffFreq

	h[mid] = 2 * fc * w[mid]
	for k := 1; k <= mid; k++ {
		x := float64(k)
		v := math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
		h[mid-k] = v * w[mid-k]
		h[mid+k] = h[mid-k]
	}

	if sum := f64.Sum(h); sum != 0 {
		f64.Scale(h, h, params.Gain/sum)
	}
	return h, nil
}

// FilterResponse is a sampled frequency response.
type FilterResponse struct {
	Frequencies []float64 // cycles per sample, [0, 0.5)
	Magnitude   []float64 // linear
	Phase       []float64 // radians
}

// ComputeFrequencyResponse evaluates the transfer function of an FIR at
// points evenly spaced from DC up to Nyquist, excluding Nyquist.
func ComputeFrequencyResponse(coeffs []float64, points int) FilterResponse {
	if points <= 0 {
		points = defaultResponsePoints
	}
	r := FilterResponse{
		Frequencies: make([]float64, points),
		Magnitude:   make([]float64, points),
		Phase:       make([]float64, points),
	}

	for k := range points {
		f := 0.5 * float64(k) / float64(points)
		step := cmplx.Rect(1, -2*math.Pi*f)
		z := complex(1, 0)
		var acc complex128
		for _, c := range coeffs {
			acc += complex(c, 0) * z
			z *= step
		}
		r.Frequencies[k] = f
		r.Magnitude[k] = cmplx.Abs(acc)
		r.Phase[k] = cmplx.Phase(acc)
	}
	return r
}

// MagnitudeDB converts a linear magnitude to dB, floored at MagnitudeFloorDB.
func MagnitudeDB(m float64) float64 {
	if m <= 0 {
		return MagnitudeFloorDB
	}
	return max(20*math.Log10(m), MagnitudeFloorDB)
}
