package meter

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-overdraw/internal/stereo"
	"github.com/tphakala/go-overdraw/internal/testutil"
)

func feed(m *Meter, wetGain float64, n int) {
	sig := testutil.Sine(n, 1000, 48000, 0.5)
	for _, v := range sig {
		m.Update(stereo.Splat(wetGain*v), stereo.Splat(v))
	}
}

func TestMeter_Alpha(t *testing.T) {
	m := New(48000)
	assert.InDelta(t, math.Exp(-2*math.Pi*10/48000), m.Alpha(), 1e-15)

	m.SetSampleRate(96000)
	assert.Greater(t, m.Alpha(), math.Exp(-2*math.Pi*10/48000))
}

func TestMeter_EnvelopeTracksMeanSquare(t *testing.T) {
	m := New(48000)
	feed(m, 1, 48000)

	dry, wet := m.Envelopes()
	testutil.AssertRelativeError(t, 0.125, dry[0], 0.02)
	testutil.AssertRelativeError(t, 0.125, wet[1], 0.02)
}

func TestMeter_Readings(t *testing.T) {
	tests := []struct {
		name    string
		wetGain float64
		offset  float64
		wantDB  float64
	}{
		{"transparent", 1, 1, 0},
		{"wet_louder", 2, 1, 20 * math.Log10(2)},
		{"wet_quieter", 0.5, 1, -20 * math.Log10(2)},
		{"gain_offset_compensated", 2, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(48000)
			feed(m, tt.wetGain, 4800)
			m.Publish(stereo.Splat(tt.offset))

			got := m.Snapshot()
			assert.InDelta(t, tt.wantDB, got[0], 1e-9)
			assert.InDelta(t, tt.wantDB, got[1], 1e-9)
		})
	}
}

func TestMeter_SilenceReadsZero(t *testing.T) {
	m := New(44100)
	m.Publish(stereo.Splat(1))
	assert.Equal(t, stereo.Vec2{}, m.Snapshot())
}

func TestMeter_ResetAndPublishZero(t *testing.T) {
	m := New(48000)
	feed(m, 3, 1000)
	m.Publish(stereo.Splat(1))
	assert.NotZero(t, m.Snapshot()[0])

	m.PublishZero()
	assert.Equal(t, stereo.Vec2{}, m.Snapshot())

	m.Reset()
	dry, wet := m.Envelopes()
	assert.Equal(t, stereo.Vec2{}, dry)
	assert.Equal(t, stereo.Vec2{}, wet)
}

func TestMeter_ConcurrentReads(t *testing.T) {
	m := New(48000)

	var wg sync.WaitGroup
	done := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					r := m.Snapshot()
					if math.IsNaN(r[0]) || math.IsNaN(r[1]) {
						t.Error("torn reading")
						return
					}
				}
			}
		}()
	}

	for range 1000 {
		feed(m, 1.5, 64)
		m.Publish(stereo.Splat(1))
	}
	close(done)
	wg.Wait()

	assert.InDelta(t, 20*math.Log10(1.5), m.Snapshot()[0], 1e-9)
}
