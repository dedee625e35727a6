package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	overdraw "github.com/tphakala/go-overdraw"
	"github.com/tphakala/go-overdraw/internal/curve"
)

func TestSample_DefaultCurveIsIdentity(t *testing.T) {
	var sp curve.Spline
	ks := curve.NewStore().Load()
	sp.Build(ks.Sorted())

	rows := sample(&sp, -2, 2, 9, true)
	require.Len(t, rows, 9)
	assert.Equal(t, -2.0, rows[0].x)
	assert.Equal(t, 2.0, rows[8].x)
	for _, r := range rows {
		assert.InDelta(t, r.x, r.y, 1e-12)
		assert.InDelta(t, 1, r.slope, 1e-12)
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "*   |    ", bar(-2, 9))
	assert.Equal(t, "    *    ", bar(0, 9))
	assert.Equal(t, "    |   *", bar(2, 9))
	assert.Equal(t, "    |   *", bar(5, 9))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	preset := filepath.Join(dir, "clip.yaml")

	var buf bytes.Buffer
	require.NoError(t, overdraw.SavePreset(&buf, overdraw.State{
		ActiveKnots: 3,
		Knots: []overdraw.Knot{
			{X: 0, Y: 0},
			{X: 0.5, Y: 0.5},
			{X: 1, Y: 0.5},
		},
	}))
	require.NoError(t, os.WriteFile(preset, buf.Bytes(), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(&out, &CLI{Preset: preset, Points: 5, From: -1, To: 1}))
	assert.Contains(t, out.String(), "x=+0.500")
	assert.Contains(t, out.String(), "  +1.0000   +0.5000   +0.0000")
	assert.Contains(t, out.String(), "  -1.0000   -0.5000   +0.0000")

	t.Run("bad_range", func(t *testing.T) {
		assert.ErrorIs(t, run(&out, &CLI{Points: 5, From: 1, To: 1}), errRange)
		assert.ErrorIs(t, run(&out, &CLI{Points: 1, From: -1, To: 1}), errRange)
	})

	t.Run("missing_preset", func(t *testing.T) {
		assert.Error(t, run(&out, &CLI{Preset: filepath.Join(dir, "none.yaml"), Points: 5, From: -1, To: 1}))
	})
}
