// Package simdops binds the SIMD kernels of the oversampling stages and the
// gain stage to a generic sample type.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the sample type constraint.
type Float interface {
	float32 | float64
}

// Ops is the kernel table for one sample type. Every kernel writes into
// caller-owned slices and never allocates.
type Ops[F Float] struct {
	// DotProductUnsafe is the FIR tap sum used by the decimators. a and b
	// must have equal length.
	DotProductUnsafe func(a, b []F) F

	// ConvolveValid slides kernel over signal: dst[i] = sum_k signal[i+k]*kernel[k].
	ConvolveValid func(dst, signal, kernel []F)

	// ConvolveValidMulti runs ConvolveValid for each polyphase branch over
	// the same history.
	ConvolveValidMulti func(dsts [][]F, signal []F, kernels [][]F)

	// Interleave2 merges two polyphase branches (or two channels) into
	// one stream.
	Interleave2 func(dst, a, b []F)

	// Deinterleave2 splits an a0 b0 a1 b1 ... stream into a and b.
	Deinterleave2 func(a, b, src []F)

	// Scale sets dst[i] = a[i] * s.
	Scale func(dst, a []F, s F)
}

// ApplyGain scales buf in place. Unity gain leaves buf untouched so a
// transparent gain stage stays bit exact.
func (o *Ops[F]) ApplyGain(buf []F, gain F) {
	if gain == 1 {
		return
	}
	o.Scale(buf, buf, gain)
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe:   f32.DotProductUnsafe,
		ConvolveValid:      f32.ConvolveValid,
		ConvolveValidMulti: f32.ConvolveValidMulti,
		Interleave2:        f32.Interleave2,
		Deinterleave2:      f32.Deinterleave2,
		Scale:              f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe:   f64.DotProductUnsafe,
		ConvolveValid:      f64.ConvolveValid,
		ConvolveValidMulti: f64.ConvolveValidMulti,
		Interleave2:        f64.Interleave2,
		Deinterleave2:      f64.Deinterleave2,
		Scale:              f64.Scale,
	}
)

// For returns the shared kernel table for F. Resolve it once when a stage
// is built, not per block.
func For[F Float]() *Ops[F] {
	var table any = &ops64
	if _, single := any(F(0)).(float32); single {
		table = &ops32
	}
	return table.(*Ops[F])
}
