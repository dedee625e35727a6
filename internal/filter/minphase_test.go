package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-overdraw/internal/testutil"
	"gonum.org/v1/gonum/floats"
)

func designTestStage(t *testing.T, minimumPhase bool) []float64 {
	t.Helper()
	coeffs, err := DesignStage(StageSpec{Stage: 1, Attenuation: testAttenuation100, MinimumPhase: minimumPhase})
	require.NoError(t, err)
	return coeffs
}

func TestMinimumPhase_PreservesLengthAndGain(t *testing.T) {
	linear := designTestStage(t, false)
	minimum := designTestStage(t, true)

	require.Len(t, minimum, len(linear))
	testutil.AssertDCGain(t, minimum, 1.0, 1e-9)
	testutil.AssertNoNaNOrInf(t, minimum)
}

func TestMinimumPhase_EnergyFrontLoaded(t *testing.T) {
	linear := designTestStage(t, false)
	minimum := designTestStage(t, true)

	quarter := len(minimum) / 4
	total := floats.Dot(minimum, minimum)
	head := floats.Dot(minimum[:quarter], minimum[:quarter])
	assert.Greater(t, head/total, 0.9, "minimum-phase energy should sit in the first quarter")

	assert.Less(t, floats.MaxIdx(minimum), quarter)
	assert.Equal(t, (len(linear)-1)/2, floats.MaxIdx(linear))
}

func TestMinimumPhase_KeepsMagnitude(t *testing.T) {
	linear := designTestStage(t, false)
	minimum := designTestStage(t, true)

	pass, stop := StageSpec{Stage: 1}.Edges()
	lin := ComputeFrequencyResponse(linear, testNumPoints512)
	mp := ComputeFrequencyResponse(minimum, testNumPoints512)

	for i, freq := range lin.Frequencies {
		switch {
		case freq <= pass:
			assert.InDelta(t, MagnitudeDB(lin.Magnitude[i]), MagnitudeDB(mp.Magnitude[i]), 0.05,
				"passband mismatch at %f", freq)
		case freq >= stop:
			assert.LessOrEqual(t, MagnitudeDB(mp.Magnitude[i]), -testAttenuation100+20,
				"stopband leak at %f", freq)
		}
	}
}

func TestMinimumPhase_TooShort(t *testing.T) {
	_, err := MinimumPhase([]float64{1, 0})
	assert.Error(t, err)

	_, err = MinimumPhase([]float64{0, 0, 0})
	assert.Error(t, err)
}

func TestMinimumPhase_AlreadyMinimum(t *testing.T) {
	// A decaying exponential is minimum phase already.
	h := make([]float64, 64)
	for i := range h {
		h[i] = math.Pow(0.5, float64(i))
	}
	got, err := MinimumPhase(h)
	require.NoError(t, err)
	testutil.AssertClose(t, h, got, 1e-6)
}
