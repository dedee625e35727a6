package tone

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// DC blocker defaults.
const (
	DefaultDCCutoff = 5.0
	dcBlockerQ      = 0.7071067811865476
)

// DCBlocker removes the DC offset an asymmetric curve adds to the wet
// signal, one highpass biquad per channel.
type DCBlocker struct {
	sections [2]*biquad.Section
	cutoff   float64
}

// NewDCBlocker designs the highpass for the host sample rate. A
// non-positive cutoff selects DefaultDCCutoff.
func NewDCBlocker(cutoff, sampleRate float64) *DCBlocker {
	if cutoff <= 0 {
		cutoff = DefaultDCCutoff
	}
	coeffs := design.Highpass(cutoff, dcBlockerQ, sampleRate)
	return &DCBlocker{
		sections: [2]*biquad.Section{biquad.NewSection(coeffs), biquad.NewSection(coeffs)},
		cutoff:   cutoff,
	}
}

// Cutoff returns the corner frequency in Hz.
func (d *DCBlocker) Cutoff() float64 { return d.cutoff }

// ProcessBlock filters both channels in place.
func (d *DCBlocker) ProcessBlock(left, right []float64) {
	d.sections[0].ProcessBlock(left)
	d.sections[1].ProcessBlock(right)
}

// Reset clears the filter state.
func (d *DCBlocker) Reset() {
	d.sections[0].Reset()
	d.sections[1].Reset()
}
