package overdraw

import (
	"context"
	"fmt"

	"github.com/tphakala/go-overdraw/internal/simdops"
)

const stereoChannels = 2

// NewStereo creates a processor for the given host sample rate with the
// default block size and QualityHigh oversampling.
func NewStereo(sampleRate float64) (*Processor, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = sampleRate
	return New(cfg)
}

// Render is a convenience function for offline processing of a whole
// stereo signal. It applies state, waits for the oversampler, and returns
// output aligned with the input: the processing latency is flushed with
// trailing silence and trimmed from the front.
func Render(ctx context.Context, left, right []float64, sampleRate float64, state *State) (leftOut, rightOut []float64, err error) {
	p, err := NewStereo(sampleRate)
	if err != nil {
		return nil, nil, err
	}
	return p.Render(ctx, left, right, state)
}

// Render processes a whole stereo signal offline with this processor. See
// the package-level Render. It must not be used while another goroutine
// drives the Process methods.
func (p *Processor) Render(ctx context.Context, left, right []float64, state *State) (leftOut, rightOut []float64, err error) {
	if len(left) != len(right) {
		return nil, nil, fmt.Errorf("%w: channel lengths differ (%d vs %d)", ErrInvalidConfig, len(left), len(right))
	}

	if state != nil {
		if err := p.SetState(*state); err != nil {
			return nil, nil, err
		}
	}
	if err := p.WaitReady(ctx); err != nil {
		return nil, nil, fmt.Errorf("prepare oversampler: %w", err)
	}
	p.Reset()

	latency := p.Latency()
	total := len(left) + latency
	l := make([]float64, total)
	r := make([]float64, total)
	copy(l, left)
	copy(r, right)

	p.ProcessFloat64(l, r)

	return l[latency:], r[latency:], nil
}

// InterleaveToStereo packs two channels into L0 R0 L1 R1 ... order. The
// longer channel is truncated.
func InterleaveToStereo(left, right []float64) []float64 {
	n := min(len(left), len(right))
	out := make([]float64, n*stereoChannels)
	simdops.For[float64]().Interleave2(out, left[:n], right[:n])
	return out
}

// DeinterleaveFromStereo splits L0 R0 L1 R1 ... into two channels. A
// trailing odd sample is dropped.
func DeinterleaveFromStereo(frames []float64) (left, right []float64) {
	n := len(frames) / stereoChannels
	left, right = make([]float64, n), make([]float64, n)
	simdops.For[float64]().Deinterleave2(left, right, frames[:n*stereoChannels])
	return left, right
}
