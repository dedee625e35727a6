package overdraw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RoundTrip(t *testing.T) {
	src := newTestProcessor(t)
	require.NoError(t, src.SetParameter(ParamMidSide, 1))
	require.NoError(t, src.SetParameter(ParamWetLink, 0))
	require.NoError(t, src.SetParameter(ParamWet1, 35))
	require.NoError(t, src.SetParameter(ParamFilterType0, 3))
	require.NoError(t, src.SetKnot(1, Knot{X: 0.1, Y: 0.4, Tension: 2}))
	src.SetActiveKnots(4)

	state := src.State()
	assert.NotContains(t, state.Params, "Active-Knots")
	assert.NotContains(t, state.Params, "Knot-0-X")
	assert.Len(t, state.Knots, MaxKnots)
	assert.Equal(t, 4, state.ActiveKnots)

	dst := newTestProcessor(t)
	require.NoError(t, dst.SetState(state))
	assert.Equal(t, state, dst.State())

	v, err := dst.Parameter(ParamWet1)
	require.NoError(t, err)
	assert.Equal(t, 35.0, v)
}

func TestSetState_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		state State
	}{
		{"unknown_name", State{Params: map[string]float64{"Drive": 1}}},
		{"knot_param", State{Params: map[string]float64{"Knot-2-Y": 1}}},
		{"active_knots_param", State{Params: map[string]float64{"Active-Knots": 2}}},
		{"too_many_knots", State{Knots: make([]Knot, MaxKnots+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t)
			before := p.State()
			err := p.SetState(tt.state)
			assert.ErrorIs(t, err, ErrInvalidState)
			assert.Equal(t, before, p.State(), "rejected state must not apply")
		})
	}
}

func TestSetState_EmptyKnotsKeepCurve(t *testing.T) {
	p := newTestProcessor(t)
	require.NoError(t, p.SetKnot(0, Knot{X: -1.5, Y: -0.5}))
	want, active := p.Knots()

	require.NoError(t, p.SetState(State{Params: map[string]float64{"Wet_ch0": 60}}))

	got, gotActive := p.Knots()
	assert.Equal(t, want, got)
	assert.Equal(t, active, gotActive)
}

func TestPreset_YAMLRoundTrip(t *testing.T) {
	src := newTestProcessor(t)
	require.NoError(t, src.SetParameter(ParamOversampling, 3))
	require.NoError(t, src.SetParameter(ParamInputGain0, 9.5))
	require.NoError(t, src.SetKnot(2, Knot{X: 1, Y: 0.75, Tension: -4}))

	var buf bytes.Buffer
	require.NoError(t, SavePreset(&buf, src.State()))
	assert.Contains(t, buf.String(), "Input-Gain_ch0: 9.5")
	assert.Contains(t, buf.String(), "tension: -4")

	loaded, err := LoadPreset(&buf)
	require.NoError(t, err)
	assert.Equal(t, src.State(), loaded)
}

func TestLoadPreset(t *testing.T) {
	const preset = `
params:
  Wet_ch0: 80
  Oversampling: 2
active_knots: 2
knots:
  - {x: -1, y: -0.5}
  - {x: 1, y: 0.5, tension: 3}
`
	s, err := LoadPreset(strings.NewReader(preset))
	require.NoError(t, err)
	assert.Equal(t, 80.0, s.Params["Wet_ch0"])
	assert.Equal(t, 2, s.ActiveKnots)
	require.Len(t, s.Knots, 2)
	assert.Equal(t, Knot{X: 1, Y: 0.5, Tension: 3}, s.Knots[1])

	p := newTestProcessor(t)
	require.NoError(t, p.SetState(s))
	knots, active := p.Knots()
	assert.Equal(t, 2, active)
	assert.Equal(t, Knot{X: -1, Y: -0.5}, knots[0])

	t.Run("unknown_field", func(t *testing.T) {
		_, err := LoadPreset(strings.NewReader("drive: 11\n"))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := LoadPreset(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}
