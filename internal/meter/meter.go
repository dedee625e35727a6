// Package meter tracks the level difference between the wet and dry signal.
package meter

import (
	"math"
	"sync/atomic"

	"github.com/tphakala/go-overdraw/internal/mathutil"
	"github.com/tphakala/go-overdraw/internal/stereo"
)

// Corner is the envelope follower corner frequency in Hz.
const Corner = 10.0

// Meter follows the mean square of the wet and dry signal per channel. The
// audio thread updates the envelopes every sample and publishes the dB
// difference once per block; any goroutine may read the published value.
type Meter struct {
	alpha float64
	dry   stereo.Vec2
	wet   stereo.Vec2

	published [2]atomic.Uint64
}

// New returns a meter for the given host sample rate.
func New(sampleRate float64) *Meter {
	m := &Meter{}
	m.SetSampleRate(sampleRate)
	return m
}

// SetSampleRate recomputes the envelope coefficient.
func (m *Meter) SetSampleRate(sampleRate float64) {
	m.alpha = math.Exp(-2 * math.Pi * Corner / sampleRate)
}

// Alpha returns the envelope coefficient.
func (m *Meter) Alpha() float64 { return m.alpha }

// Update feeds one wet and dry sample pair into the envelopes.
func (m *Meter) Update(wet, dry stereo.Vec2) {
	for ch := range 2 {
		w2 := wet[ch] * wet[ch]
		d2 := dry[ch] * dry[ch]
		m.wet[ch] = m.alpha*(m.wet[ch]-w2) + w2
		m.dry[ch] = m.alpha*(m.dry[ch]-d2) + d2
	}
}

// Envelopes returns the current dry and wet mean-square envelopes.
func (m *Meter) Envelopes() (dry, wet stereo.Vec2) { return m.dry, m.wet }

// Publish stores the wet level relative to the dry level in dB. gainOffset
// is the combined linear input and output gain, so a transparent curve
// reads 0 dB whatever the gain staging.
func (m *Meter) Publish(gainOffset stereo.Vec2) {
	for ch := range 2 {
		g2 := gainOffset[ch] * gainOffset[ch]
		db := mathutil.PowerToDB(m.wet[ch]) - mathutil.PowerToDB(g2*m.dry[ch])
		m.published[ch].Store(math.Float64bits(db))
	}
}

// PublishZero stores 0 dB for both channels.
func (m *Meter) PublishZero() {
	m.published[0].Store(0)
	m.published[1].Store(0)
}

// Snapshot returns the last published reading in dB per channel.
func (m *Meter) Snapshot() stereo.Vec2 {
	return stereo.Vec2{
		math.Float64frombits(m.published[0].Load()),
		math.Float64frombits(m.published[1].Load()),
	}
}

// Reset clears the envelopes and the published reading.
func (m *Meter) Reset() {
	m.dry = stereo.Vec2{}
	m.wet = stereo.Vec2{}
	m.PublishZero()
}
