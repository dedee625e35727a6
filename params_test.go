package overdraw

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-overdraw/internal/curve"
	"github.com/tphakala/go-overdraw/internal/stereo"
	"github.com/tphakala/go-overdraw/internal/tone"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := New(DefaultConfig())
	require.NoError(t, err)
	return p
}

func TestParamInfo_Names(t *testing.T) {
	tests := []struct {
		id   ParamID
		name string
	}{
		{ParamMidSide, "Mid-Side"},
		{ParamOversampling, "Oversampling"},
		{ParamLinearPhase, "Linear-Phase-Oversampling"},
		{ParamWetLink, "Wet_is_linked"},
		{ParamWet0, "Wet_ch0"},
		{ParamWet1, "Wet_ch1"},
		{ParamInputGain1, "Input-Gain_ch1"},
		{ParamFilterType0, "Filter-Type_ch0"},
		{KnotParam(0, KnotX), "Knot-0-X"},
		{KnotParam(14, KnotTension), "Knot-14-Tension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.id.String())
			id, err := ParamByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
		})
	}

	_, err := ParamByName("Drive")
	assert.ErrorIs(t, err, ErrUnknownParameter)
	assert.Equal(t, "ParamID(-1)", ParamID(-1).String())
}

func TestParameters_CoverEveryID(t *testing.T) {
	p := newTestProcessor(t)
	infos := p.Parameters()
	require.Len(t, infos, numParams)

	seen := make(map[string]bool, len(infos))
	for i, info := range infos {
		assert.Equal(t, ParamID(i), info.ID)
		assert.NotEmpty(t, info.Name)
		assert.False(t, seen[info.Name], "duplicate name %q", info.Name)
		seen[info.Name] = true
		assert.LessOrEqual(t, info.Min, info.Default, info.Name)
		assert.GreaterOrEqual(t, info.Max, info.Default, info.Name)
	}
}

func TestParameter_Defaults(t *testing.T) {
	p := newTestProcessor(t)
	defaults := curve.DefaultKnots()

	for _, info := range p.Parameters() {
		v, err := p.Parameter(info.ID)
		require.NoError(t, err)
		assert.Equal(t, info.Default, v, info.Name)
	}

	v, err := p.Parameter(KnotParam(3, KnotX))
	require.NoError(t, err)
	assert.Equal(t, defaults[3].X, v)

	knots, active := p.Knots()
	assert.Len(t, knots, MaxKnots)
	assert.Equal(t, curve.DefaultActiveKnots, active)
}

func TestSetParameter_Clamps(t *testing.T) {
	tests := []struct {
		name string
		id   ParamID
		in   float64
		want float64
	}{
		{"wet_above", ParamWet0, 250, 100},
		{"wet_below", ParamWet0, -5, 0},
		{"gain_above", ParamInputGain0, 100, 48},
		{"oversampling_rounds", ParamOversampling, 2.4, 2},
		{"oversampling_above", ParamOversampling, 9, 5},
		{"bool_rounds", ParamMidSide, 0.7, 1},
		{"filter_type_above", ParamFilterType1, 42, float64(tone.Count() - 1)},
		{"cutoff_below", ParamCutoff0, 1, tone.MinCutoff},
		{"nan_is_default", ParamSmoothingTime, math.NaN(), 50},
		{"knot_x", KnotParam(4, KnotX), -7, curve.MinCoord},
		{"knot_tension", KnotParam(4, KnotTension), 99, curve.MaxTension},
		{"active_knots", ParamActiveKnots, 20, MaxKnots},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t)
			require.NoError(t, p.SetParameter(tt.id, tt.in))
			got, err := p.Parameter(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetParameter_UnknownID(t *testing.T) {
	p := newTestProcessor(t)
	for _, id := range []ParamID{-1, ParamID(numParams), ParamID(numParams + 10)} {
		assert.ErrorIs(t, p.SetParameter(id, 1), ErrUnknownParameter)
		_, err := p.Parameter(id)
		assert.ErrorIs(t, err, ErrUnknownParameter)
		_, err = p.ParamInfo(id)
		assert.ErrorIs(t, err, ErrUnknownParameter)
	}
}

func TestSetParameter_KnotsRouteToStore(t *testing.T) {
	p := newTestProcessor(t)
	before := p.knots.Load().Generation

	require.NoError(t, p.SetParameter(KnotParam(1, KnotY), 0.25))
	require.NoError(t, p.SetParameter(KnotParam(1, KnotTension), -3))
	require.NoError(t, p.SetParameter(ParamActiveKnots, 5))

	ks := p.knots.Load()
	assert.Equal(t, before+3, ks.Generation)
	assert.Equal(t, 0.25, ks.Knots[1].Y)
	assert.Equal(t, -3.0, ks.Knots[1].Tension)
	assert.Equal(t, 5, ks.Active)

	assert.ErrorIs(t, p.SetKnot(MaxKnots, Knot{}), ErrKnotIndex)
}

func TestRegistry_LinkedResolution(t *testing.T) {
	p := newTestProcessor(t)
	require.NoError(t, p.SetParameter(ParamWet0, 30))
	require.NoError(t, p.SetParameter(ParamWet1, 80))
	require.NoError(t, p.SetParameter(ParamInputGain0, 20))
	require.NoError(t, p.SetParameter(ParamInputGain1, -20))
	require.NoError(t, p.SetParameter(ParamSymmetry1, 0))

	var bp blockParams
	p.params.resolve(&bp)
	assert.Equal(t, stereo.Vec2{0.3, 0.3}, bp.wet, "linked channel 1 follows channel 0")
	assert.InDelta(t, 10, bp.inputGain[1], 1e-12)
	assert.Equal(t, [2]bool{true, true}, bp.symmetric)

	for _, link := range []ParamID{ParamWetLink, ParamInputGainLink, ParamSymmetryLink} {
		require.NoError(t, p.SetParameter(link, 0))
	}
	p.params.resolve(&bp)
	assert.Equal(t, stereo.Vec2{0.3, 0.8}, bp.wet)
	assert.InDelta(t, 10, bp.inputGain[0], 1e-12)
	assert.InDelta(t, 0.1, bp.inputGain[1], 1e-12)
	assert.Equal(t, [2]bool{true, false}, bp.symmetric)
	assert.Equal(t, stereo.Vec2{1, 1}, bp.outputGain)
}

func TestRegistry_ToneSettings(t *testing.T) {
	p := newTestProcessor(t)
	require.NoError(t, p.SetParameter(ParamFilterTypeLink, 0))
	require.NoError(t, p.SetParameter(ParamFilterType0, float64(tone.LowPass12)))
	require.NoError(t, p.SetParameter(ParamFilterType1, float64(tone.BandPass12)))
	require.NoError(t, p.SetParameter(ParamCutoff0, 2500))
	require.NoError(t, p.SetParameter(ParamBandwidth0, 2))

	var bp blockParams
	p.params.resolve(&bp)
	assert.Equal(t, [2]tone.FilterType{tone.LowPass12, tone.BandPass12}, bp.tone.Type)
	assert.Equal(t, stereo.Vec2{2500, 2500}, bp.tone.Cutoff)
	assert.Equal(t, stereo.Vec2{2, 2}, bp.tone.Bandwidth)
	assert.InDelta(t, math.Sqrt2/2, bp.tone.Resonance[0], 1e-15)
}
