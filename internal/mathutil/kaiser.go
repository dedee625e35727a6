// Package mathutil provides numeric helpers for filter design and level conversion.
package mathutil

import "math"

// horner evaluates c[0] + c[1]t + c[2]t² + ...
func horner(c []float64, t float64) float64 {
	acc := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*t + c[i]
	}
	return acc
}

// BesselI0 returns the zeroth order modified Bessel function of the first
// kind. The polynomial fits hold to better than 1e-6 relative.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < i0Split {
		r := ax / i0Split
		return horner(i0SmallPoly[:], r*r)
	}
	return math.Exp(ax) / math.Sqrt(ax) * horner(i0LargePoly[:], i0Split/ax)
}

// KaiserBeta maps a stopband attenuation in dB to the Kaiser window shape
// parameter. Attenuations below 21 dB give a rectangular window.
func KaiserBeta(att float64) float64 {
	switch {
	case att > betaStrongAtt:
		return 0.1102 * (att - 8.7)
	case att >= betaWeakAtt:
		d := att - betaWeakAtt
		return 0.5842*math.Pow(d, 0.4) + 0.07886*d
	default:
		return 0
	}
}

// EstimateFilterLength returns an odd Kaiser FIR length reaching att dB
// across a transition band of width tw, in cycles per sample.
func EstimateFilterLength(att, tw float64) int {
	if tw <= 0 {
		return maxFilterLength
	}
	n := int(math.Ceil((att-lengthAttBias)/(lengthSlope*tw))) + 1
	n |= 1
	return min(max(n, minFilterLength), maxFilterLength)
}
