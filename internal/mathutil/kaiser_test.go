package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-overdraw/internal/testutil"
)

func TestBesselI0(t *testing.T) {
	// Reference values from the power series sum (x/2)^2k / (k!)^2.
	series := func(x float64) float64 {
		sum, term := 1.0, 1.0
		q := x * x / 4
		for k := 1; k < 200; k++ {
			term *= q / float64(k*k)
			sum += term
		}
		return sum
	}

	for _, x := range []float64{0, 0.25, 1, 2.5, 3.7499, 3.75, 6, 12.5, 25} {
		testutil.AssertRelativeError(t, series(x), BesselI0(x), 1e-6, "x=%v", x)
		assert.Equal(t, BesselI0(x), BesselI0(-x), "I0 is even")
	}
	assert.Equal(t, 1.0, BesselI0(0))
}

func TestKaiserBeta(t *testing.T) {
	assert.Zero(t, KaiserBeta(10))
	assert.Zero(t, KaiserBeta(21))
	assert.InDelta(t, 0.1102*(126-8.7), KaiserBeta(126), 1e-12)

	// The two branches meet closely at 50 dB.
	assert.InDelta(t, KaiserBeta(50), KaiserBeta(math.Nextafter(50, 51)), 0.05)

	prev := 0.0
	for att := 21.0; att <= 200; att += 0.5 {
		b := KaiserBeta(att)
		assert.GreaterOrEqual(t, b, prev, "att=%v", att)
		prev = b
	}
}

func TestEstimateFilterLength(t *testing.T) {
	tests := []struct {
		name string
		att  float64
		tw   float64
		want int
	}{
		{"half_band_stage", 126, 0.275, 31},
		{"narrow", 100, 0.01, 643},
		{"weak_floor", 5, 0.4, minFilterLength},
		{"ceiling", 200, 1e-4, maxFilterLength},
		{"no_transition", 100, 0, maxFilterLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := EstimateFilterLength(tt.att, tt.tw)
			assert.Equal(t, tt.want, n)
			assert.Equal(t, 1, n%2)
		})
	}
}

func BenchmarkBesselI0(b *testing.B) {
	x := 0.0
	for b.Loop() {
		x += BesselI0(7.5)
	}
	_ = x
}
