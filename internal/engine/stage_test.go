package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-overdraw/internal/filter"
	"github.com/tphakala/go-overdraw/internal/testutil"
)

const testBlock = 256

func stageCoeffs(t testing.TB, minimumPhase bool) []float64 {
	t.Helper()
	coeffs, err := filter.DesignStage(filter.StageSpec{
		Stage:        1,
		Attenuation:  QualityHigh.Attenuation(),
		MinimumPhase: minimumPhase,
	})
	require.NoError(t, err)
	return coeffs
}

func TestNewInterpolator_Validation(t *testing.T) {
	_, err := NewInterpolator[float64]([]float64{1, 0}, testBlock)
	require.Error(t, err)

	_, err = NewInterpolator[float64](stageCoeffs(t, false), 0)
	require.Error(t, err)
}

func TestInterpolator_HalfBandDetection(t *testing.T) {
	linear, err := NewInterpolator[float64](stageCoeffs(t, false), testBlock)
	require.NoError(t, err)
	assert.True(t, linear.IsHalfBand())

	minimum, err := NewInterpolator[float64](stageCoeffs(t, true), testBlock)
	require.NoError(t, err)
	assert.False(t, minimum.IsHalfBand())
}

func TestInterpolator_ImpulseResponse(t *testing.T) {
	for _, minimumPhase := range []bool{false, true} {
		coeffs := stageCoeffs(t, minimumPhase)
		s, err := NewInterpolator[float64](coeffs, testBlock)
		require.NoError(t, err)

		input := make([]float64, testBlock)
		input[0] = 1
		out := make([]float64, 2*testBlock)
		require.Equal(t, 2*testBlock, s.Process(out, input))

		for m, h := range coeffs {
			assert.InDelta(t, 2*h, out[m], 1e-12, "minimumPhase=%v tap %d", minimumPhase, m)
		}
	}
}

func TestInterpolator_ProducesTwiceInput(t *testing.T) {
	s, err := NewInterpolator[float64](stageCoeffs(t, false), testBlock)
	require.NoError(t, err)

	out := make([]float64, 2*testBlock)
	for _, n := range []int{1, 7, 64, testBlock} {
		assert.Equal(t, 2*n, s.Process(out, make([]float64, n)))
	}
}

func TestInterpolator_RejectsOversizedBlock(t *testing.T) {
	s, err := NewInterpolator[float64](stageCoeffs(t, false), testBlock)
	require.NoError(t, err)

	out := make([]float64, 4*testBlock)
	assert.Zero(t, s.Process(out, make([]float64, testBlock+1)))
	assert.Zero(t, s.Process(out[:3], make([]float64, 2)))
	assert.Zero(t, s.Process(out, nil))
}

func TestInterpolator_DCGain(t *testing.T) {
	s, err := NewInterpolator[float64](stageCoeffs(t, false), testBlock)
	require.NoError(t, err)

	ones := make([]float64, testBlock)
	for i := range ones {
		ones[i] = 1
	}
	out := make([]float64, 2*testBlock)
	s.Process(out, ones)
	s.Process(out, ones)

	testutil.AssertAllInRange(t, out, 1-1e-5, 1+1e-5)
}

func TestInterpolator_BlockSizeInvariance(t *testing.T) {
	coeffs := stageCoeffs(t, false)
	input := testutil.Sine(4*testBlock, 1000, 48000, 0.8)

	whole, err := NewInterpolator[float64](coeffs, 4*testBlock)
	require.NoError(t, err)
	want := make([]float64, 8*testBlock)
	whole.Process(want, input)

	chunked, err := NewInterpolator[float64](coeffs, testBlock)
	require.NoError(t, err)
	got := make([]float64, 0, len(want))
	out := make([]float64, 2*testBlock)
	for start := 0; start < len(input); {
		n := min(37+start%91, testBlock, len(input)-start)
		produced := chunked.Process(out, input[start:start+n])
		got = append(got, out[:produced]...)
		start += n
	}

	testutil.AssertClose(t, want, got, 1e-12)
}

func TestInterpolator_Reset(t *testing.T) {
	coeffs := stageCoeffs(t, false)
	input := testutil.Sine(testBlock, 440, 44100, 1)

	s, err := NewInterpolator[float64](coeffs, testBlock)
	require.NoError(t, err)
	first := make([]float64, 2*testBlock)
	s.Process(first, input)

	s.Reset()
	second := make([]float64, 2*testBlock)
	s.Process(second, input)

	testutil.AssertBitIdentical(t, first, second)
}

func TestDecimator_ImpulseResponse(t *testing.T) {
	coeffs := stageCoeffs(t, false)
	d, err := NewDecimator[float64](coeffs, testBlock)
	require.NoError(t, err)

	input := make([]float64, 2*testBlock)
	input[0] = 1
	out := make([]float64, testBlock)
	require.Equal(t, testBlock, d.Process(out, input))

	for i := 0; 2*i < len(coeffs); i++ {
		assert.InDelta(t, coeffs[2*i], out[i], 1e-15, "output %d", i)
	}
}

func TestDecimator_RejectsBadInput(t *testing.T) {
	d, err := NewDecimator[float64](stageCoeffs(t, false), testBlock)
	require.NoError(t, err)

	out := make([]float64, 2*testBlock)
	assert.Zero(t, d.Process(out, make([]float64, 3)), "odd length")
	assert.Zero(t, d.Process(out, make([]float64, 2*testBlock+2)), "oversized")
	assert.Zero(t, d.Process(out[:1], make([]float64, 4)), "short dst")

	_, err = NewDecimator[float64]([]float64{1}, testBlock)
	require.Error(t, err)
}

func TestStages_RoundTripDelay(t *testing.T) {
	coeffs := stageCoeffs(t, false)
	up, err := NewInterpolator[float64](coeffs, testBlock)
	require.NoError(t, err)
	down, err := NewDecimator[float64](coeffs, testBlock)
	require.NoError(t, err)

	const total = 4 * testBlock
	input := make([]float64, total)
	for i := range input {
		input[i] = math.Sin(2*math.Pi*0.1*float64(i) + 0.3)
	}

	output := make([]float64, 0, total)
	upBuf := make([]float64, 2*testBlock)
	downBuf := make([]float64, testBlock)
	for start := 0; start < total; start += testBlock {
		produced := up.Process(upBuf, input[start:start+testBlock])
		produced = down.Process(downBuf, upBuf[:produced])
		output = append(output, downBuf[:produced]...)
	}

	delay := (len(coeffs) - 1) / 2
	assert.InDelta(t, float64(delay), filter.CascadeLatency(1, QualityHigh.Attenuation()), 1e-12)
	for i := 2 * len(coeffs); i < total; i++ {
		assert.InDelta(t, input[i-delay], output[i], 1e-6, "sample %d", i)
	}
}

func TestStages_Float32(t *testing.T) {
	coeffs := stageCoeffs(t, false)
	up, err := NewInterpolator[float32](coeffs, testBlock)
	require.NoError(t, err)
	down, err := NewDecimator[float32](coeffs, testBlock)
	require.NoError(t, err)

	input := make([]float32, testBlock)
	for i := range input {
		input[i] = 0.5
	}
	upBuf := make([]float32, 2*testBlock)
	downBuf := make([]float32, testBlock)
	for range 3 {
		down.Process(downBuf, upBuf[:up.Process(upBuf, input)])
	}
	for i, v := range downBuf {
		assert.InDelta(t, 0.5, float64(v), 1e-4, "sample %d", i)
	}
}

func BenchmarkInterpolator(b *testing.B) {
	s, err := NewInterpolator[float64](stageCoeffs(b, false), testBlock)
	require.NoError(b, err)
	input := testutil.Sine(testBlock, 1000, 48000, 1)
	out := make([]float64, 2*testBlock)

	for b.Loop() {
		s.Process(out, input)
	}
}

func BenchmarkDecimator(b *testing.B) {
	d, err := NewDecimator[float64](stageCoeffs(b, false), testBlock)
	require.NoError(b, err)
	input := testutil.Sine(2*testBlock, 1000, 96000, 1)
	out := make([]float64, testBlock)

	for b.Loop() {
		d.Process(out, input)
	}
}
