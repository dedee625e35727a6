// Package testutil holds assertions and signal generators shared by the DSP tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

// AssertSymmetric checks s[i] == s[len-1-i] within tolerance.
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if !assert.InDelta(t, s[i], s[j], tolerance, "taps %d and %d differ", i, j) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf fails on the first non-finite sample.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return assert.Fail(t, "non-finite sample", "s[%d] = %v", i, v)
		}
	}
	return true
}

// AssertAllInRange checks every sample lies in [lo, hi].
func AssertAllInRange(t *testing.T, s []float64, lo, hi float64) bool {
	t.Helper()
	for i, v := range s {
		if v < lo || v > hi {
			return assert.Fail(t, "sample out of range", "s[%d] = %g, want [%g, %g]", i, v, lo, hi)
		}
	}
	return true
}

// AssertDCGain checks that the taps sum to want.
func AssertDCGain(t *testing.T, coeffs []float64, want, tolerance float64) bool {
	t.Helper()
	return assert.InDelta(t, want, floats.Sum(coeffs), tolerance, "DC gain")
}

// AssertCenterIsMax checks that no element exceeds the middle one.
func AssertCenterIsMax(t *testing.T, s []float64) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice")
	}
	mid := len(s) / 2
	if i := floats.MaxIdx(s); s[i] > s[mid] {
		return assert.Fail(t, "peak off center", "s[%d] = %g > s[%d] = %g", i, s[i], mid, s[mid])
	}
	return true
}

// AssertRelativeError checks |actual-expected| <= tolerance*|expected|.
// A zero expectation falls back to an absolute comparison.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	return assert.InEpsilon(t, expected, actual, tolerance, msgAndArgs...)
}

// AssertOddLength checks that s has an odd number of elements.
func AssertOddLength(t *testing.T, s []float64) bool {
	t.Helper()
	return assert.Equal(t, 1, len(s)%2, "length %d is even", len(s))
}

// AssertSilent checks that every sample is exactly zero.
func AssertSilent(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "signal not silent", "s[%d] = %g", i, v)
		}
	}
	return true
}

// AssertBitIdentical compares two buffers bit for bit.
func AssertBitIdentical(t *testing.T, expected, actual []float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Float64bits(expected[i]) != math.Float64bits(actual[i]) {
			return assert.Fail(t, "buffers differ",
				"index %d: expected %v, got %v", i, expected[i], actual[i])
		}
	}
	return true
}

// AssertClose checks the largest absolute difference between two buffers.
func AssertClose(t *testing.T, expected, actual []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	dist := floats.Distance(expected, actual, math.Inf(1))
	return assert.LessOrEqual(t, dist, tolerance, "max abs difference %e", dist)
}

// Sine returns n samples of a sine wave with the given amplitude.
func Sine(n int, freq, sampleRate, amplitude float64) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i))
	}
	return out
}

// RMS returns the root mean square of s.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(s, s) / float64(len(s)))
}

// Peak returns the largest absolute sample value.
func Peak(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(s)), math.Abs(floats.Min(s)))
}
