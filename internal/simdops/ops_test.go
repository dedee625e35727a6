package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_ReturnsSharedInstance(t *testing.T) {
	assert.Same(t, &ops64, For[float64]())
	assert.Same(t, &ops32, For[float32]())
}

func testKernels[F Float](t *testing.T) {
	t.Helper()
	ops := For[F]()

	a := []F{1, 2, 3, 4}
	b := []F{4, 3, 2, 1}
	assert.InDelta(t, 20.0, float64(ops.DotProductUnsafe(a, b)), 1e-6)

	scaled := make([]F, len(a))
	ops.Scale(scaled, a, 0.5)
	assert.Equal(t, []F{0.5, 1, 1.5, 2}, scaled)

	ops.ApplyGain(scaled, 2)
	assert.Equal(t, a, scaled)
	ops.ApplyGain(scaled, 1)
	assert.Equal(t, a, scaled)

	inter := make([]F, 2*len(a))
	ops.Interleave2(inter, a, b)
	assert.Equal(t, []F{1, 4, 2, 3, 3, 2, 4, 1}, inter)

	left, right := make([]F, len(a)), make([]F, len(b))
	ops.Deinterleave2(left, right, inter)
	assert.Equal(t, a, left)
	assert.Equal(t, b, right)

	// Valid convolution with a reversed kernel is a sliding dot product.
	signal := []F{1, 1, 2, 3, 5, 8}
	kernel := []F{1, 0, -1}
	dst := make([]F, len(signal)-len(kernel)+1)
	ops.ConvolveValid(dst, signal, kernel)
	require.Len(t, dst, 4)
	for i := range dst {
		want := signal[i] - signal[i+2]
		assert.InDelta(t, float64(want), float64(dst[i]), 1e-6, "dst[%d]", i)
	}

	multi := [][]F{make([]F, len(dst)), make([]F, len(dst))}
	ops.ConvolveValidMulti(multi, signal, [][]F{kernel, {0, 1, 0}})
	assert.Equal(t, dst, multi[0])
	assert.Equal(t, signal[1:5], multi[1])
}

func TestKernels_Float64(t *testing.T) { testKernels[float64](t) }

func TestKernels_Float32(t *testing.T) { testKernels[float32](t) }
