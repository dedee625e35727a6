package filter

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-overdraw/internal/mathutil"
)

const (
	// PassbandFraction is the audio band kept intact, as a fraction of the host rate.
	PassbandFraction = 0.45

	// MaxStages is the deepest cascade: 2^5 = 32x.
	MaxStages = 5

	// Every 2x stage filter is centered on a quarter of its output rate,
	// which makes the linear-phase design a half-band filter.
	stageCutoff = 0.25

	// Stage lengths are kept at 4m+1 so the center tap lands in polyphase branch 0.
	halfBandLengthModulo = 4
)

// ErrInvalidStage is returned for a stage outside 1..MaxStages.
var ErrInvalidStage = errors.New("invalid oversampling stage")

// StageSpec describes the lowpass shared by the interpolator and decimator
// of one 2x stage. Stage 1 runs between the host rate and twice the host rate.
type StageSpec struct {
	Stage        int
	Attenuation  float64
	MinimumPhase bool
}

// Validate checks the stage index and attenuation.
func (s StageSpec) Validate() error {
	if s.Stage < 1 || s.Stage > MaxStages {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidStage, s.Stage, MaxStages)
	}
	if s.Attenuation <= 0 {
		return fmt.Errorf("%w: attenuation %f dB", ErrInvalidStage, s.Attenuation)
	}
	return nil
}

// Edges returns the passband and stopband edges normalized to the stage's
// output rate.
func (s StageSpec) Edges() (pass, stop float64) {
	pass = PassbandFraction / float64(int(1)<<s.Stage)
	return pass, 0.5 - pass
}

// Length returns the tap count DesignStage will produce.
func (s StageSpec) Length() int {
	pass, stop := s.Edges()
	n := mathutil.EstimateFilterLength(s.Attenuation, stop-pass)
	for (n-1)%halfBandLengthModulo != 0 {
		n++
	}
	return n
}

// DesignStage designs the stage filter with unity DC gain.
func DesignStage(spec StageSpec) ([]float64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	coeffs, err := DesignLowPassFilter(FilterParams{
		NumTaps:     spec.Length(),
		CutoffFreq:  stageCutoff,
		Attenuation: spec.Attenuation,
		Gain:        1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("stage %d: %w", spec.Stage, err)
	}

	if spec.MinimumPhase {
		coeffs, err = MinimumPhase(coeffs)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", spec.Stage, err)
		}
	}

	return coeffs, nil
}

// CascadeLatency returns the group delay, in host-rate samples, of an
// up/down cascade of the given order built from linear-phase stages.
func CascadeLatency(order int, attenuation float64) float64 {
	var delay float64
	for stage := 1; stage <= order; stage++ {
		n := StageSpec{Stage: stage, Attenuation: attenuation}.Length()
		// (n-1)/2 samples at 2^stage times the host rate, once up and once down.
		delay += float64(n-1) / float64(int(1)<<stage)
	}
	return delay
}
