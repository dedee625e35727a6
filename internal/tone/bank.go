package tone

import (
	"math"

	"github.com/tphakala/go-overdraw/internal/smoothing"
	"github.com/tphakala/go-overdraw/internal/stereo"
)

// Cutoff and resonance limits.
const (
	MinCutoff    = 20.0
	MaxCutoff    = 20000.0
	MinResonance = 0.1
	MaxResonance = 10.0
	MinBandwidth = 0.1
	MaxBandwidth = 6.0

	// Highest cutoff as a fraction of the processing rate; keeps tan() finite.
	maxCutoffRatio = 0.49
)

// Settings are the per-block tone filter targets of both channels.
type Settings struct {
	Type      [2]FilterType
	Cutoff    stereo.Vec2 // Hz
	Resonance stereo.Vec2 // Q of the 12 dB low and high pass
	Bandwidth stereo.Vec2 // octaves, band pass only
}

// BandwidthToQ converts a band pass width in octaves to a quality factor.
func BandwidthToQ(octaves float64) float64 {
	p := math.Exp2(octaves)
	return math.Sqrt(p) / (p - 1)
}

// filter outputs blended by the mask
const (
	outPass = iota
	outLow6
	outHigh6
	outLow12
	outBand12
	outHigh12
	numOutputs
)

// Bank runs the tone filters of both channels at the oversampled rate.
// Every filter runs on every sample; the per-channel mask selects which
// output reaches the wet path, so no branching happens per sample.
type Bank struct {
	rate float64

	cutoff smoothing.Stereo
	q      smoothing.Stereo

	cutoffTarget stereo.Vec2
	qTarget      stereo.Vec2
	settled      bool

	mask    [numOutputs]stereo.Vec2
	engaged bool

	// one-pole
	onePoleG stereo.Vec2
	s1       stereo.Vec2

	// state-variable
	k          stereo.Vec2
	a1, a2, a3 stereo.Vec2
	ic1, ic2   stereo.Vec2
}

// NewBank returns a bank passing everything through.
func NewBank() *Bank {
	b := &Bank{}
	b.mask[outPass] = stereo.Splat(1)
	b.cutoffTarget = stereo.Splat(MaxCutoff)
	b.qTarget = stereo.Splat(math.Sqrt2 / 2)
	b.Reset()
	return b
}

// Configure applies the block's settings at the given processing rate.
func (b *Bank) Configure(s Settings, rate float64) {
	b.engaged = false
	for ch := range 2 {
		ft := s.Type[ch]
		for o := range b.mask {
			b.mask[o][ch] = 0
		}
		switch ft {
		case LowPass6:
			b.mask[outLow6][ch] = 1
		case HighPass6:
			b.mask[outHigh6][ch] = 1
		case LowPass12:
			b.mask[outLow12][ch] = 1
		case HighPass12:
			b.mask[outHigh12][ch] = 1
		case BandPass12:
			b.mask[outBand12][ch] = 1
		default:
			b.mask[outPass][ch] = 1
		}
		b.engaged = b.engaged || ft.Engaged()

		maxCutoff := min(MaxCutoff, maxCutoffRatio*rate)
		b.cutoffTarget[ch] = clampRange(s.Cutoff[ch], MinCutoff, maxCutoff)
		if ft == BandPass12 {
			b.qTarget[ch] = BandwidthToQ(clampRange(s.Bandwidth[ch], MinBandwidth, MaxBandwidth))
		} else {
			b.qTarget[ch] = clampRange(s.Resonance[ch], MinResonance, MaxResonance)
		}
	}

	if rate != b.rate {
		b.rate = rate
		b.updateCoefficients()
	}
	b.settled = b.cutoff.Settled(b.cutoffTarget) && b.q.Settled(b.qTarget)
}

// Engaged reports whether any channel has a filter selected.
func (b *Bank) Engaged() bool { return b.engaged }

// Settled reports whether cutoff and resonance have reached their targets,
// so coefficients are no longer recomputed per sample.
func (b *Bank) Settled() bool { return b.settled }

// Reset snaps cutoff and resonance to their targets and clears the filter state.
func (b *Bank) Reset() {
	b.cutoff.Snap(b.cutoffTarget)
	b.q.Snap(b.qTarget)
	b.settled = true
	b.s1 = stereo.Vec2{}
	b.ic1 = stereo.Vec2{}
	b.ic2 = stereo.Vec2{}
	if b.rate > 0 {
		b.updateCoefficients()
	}
}

// Process filters one sample pair. alpha smooths cutoff and resonance.
func (b *Bank) Process(x stereo.Vec2, alpha float64) stereo.Vec2 {
	if !b.settled {
		a := stereo.Splat(alpha)
		b.cutoff.Advance(b.cutoffTarget, a)
		b.q.Advance(b.qTarget, a)
		b.updateCoefficients()
		b.settled = b.cutoff.Settled(b.cutoffTarget) && b.q.Settled(b.qTarget)
	}

	var y stereo.Vec2
	for ch := range 2 {
		in := x[ch]

		// topology-preserving one-pole
		v := (in - b.s1[ch]) * b.onePoleG[ch]
		low6 := v + b.s1[ch]
		b.s1[ch] = low6 + v
		high6 := in - low6

		// topology-preserving state-variable filter
		v3 := in - b.ic2[ch]
		v1 := b.a1[ch]*b.ic1[ch] + b.a2[ch]*v3
		v2 := b.ic2[ch] + b.a2[ch]*b.ic1[ch] + b.a3[ch]*v3
		b.ic1[ch] = 2*v1 - b.ic1[ch]
		b.ic2[ch] = 2*v2 - b.ic2[ch]
		low12 := v2
		band12 := b.k[ch] * v1
		high12 := in - b.k[ch]*v1 - v2

		y[ch] = b.mask[outPass][ch]*in +
			b.mask[outLow6][ch]*low6 +
			b.mask[outHigh6][ch]*high6 +
			b.mask[outLow12][ch]*low12 +
			b.mask[outBand12][ch]*band12 +
			b.mask[outHigh12][ch]*high12
	}
	return y
}

// ProcessBlock filters two equally long buffers in place.
func (b *Bank) ProcessBlock(left, right []float64, alpha float64) {
	right = right[:len(left)]
	for i := range left {
		y := b.Process(stereo.Vec2{left[i], right[i]}, alpha)
		left[i], right[i] = y[0], y[1]
	}
}

func (b *Bank) updateCoefficients() {
	cutoff := b.cutoff.Value()
	q := b.q.Value()
	for ch := range 2 {
		fc := math.Min(cutoff[ch], maxCutoffRatio*b.rate)
		g := math.Tan(math.Pi * fc / b.rate)
		b.onePoleG[ch] = g / (1 + g)

		k := 1 / q[ch]
		b.k[ch] = k
		b.a1[ch] = 1 / (1 + g*(g+k))
		b.a2[ch] = g * b.a1[ch]
		b.a3[ch] = g * b.a2[ch]
	}
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
