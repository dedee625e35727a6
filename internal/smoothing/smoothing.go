// Package smoothing implements the one-pole exponential smoother used for
// every continuously variable control.
package smoothing

import (
	"math"

	"github.com/tphakala/go-overdraw/internal/stereo"
)

const (
	msPerSecond = 1000.0
	twoPi       = 2 * math.Pi

	// SnapThreshold is the distance, relative to the target once the
	// target exceeds 1 in magnitude, below which a smoother lands exactly
	// on its target. Without it the recurrence stalls a few ulps short or
	// decays into denormals.
	SnapThreshold = 1e-9
)

// step advances one channel and snaps it onto target once within reach.
func step(state, target, alpha float64) float64 {
	next := target + alpha*(state-target)
	if math.Abs(next-target) <= SnapThreshold*max(1, math.Abs(target)) {
		return target
	}
	return next
}

// Alpha returns the one-pole coefficient for a smoothing time in seconds at
// the given rate. A non-positive time or rate yields 0 (no smoothing).
func Alpha(seconds, rate float64) float64 {
	if seconds <= 0 || rate <= 0 {
		return 0
	}
	return math.Exp(-twoPi / (seconds * rate))
}

// AlphaMs is Alpha with the smoothing time in milliseconds.
func AlphaMs(ms, rate float64) float64 {
	return Alpha(ms/msPerSecond, rate)
}

// SettleSamples returns how many samples a step needs to come within
// tolerance (as a fraction of the step) of its target.
func SettleSamples(alpha, tolerance float64) int {
	if alpha <= 0 {
		return 1
	}
	if tolerance <= 0 || tolerance >= 1 || alpha >= 1 {
		return math.MaxInt
	}
	return int(math.Ceil(math.Log(tolerance) / math.Log(alpha)))
}

// OnePole smooths a single scalar toward a target.
type OnePole struct {
	state float64
}

// Advance moves one step toward target and returns the new state.
func (s *OnePole) Advance(target, alpha float64) float64 {
	s.state = step(s.state, target, alpha)
	return s.state
}

// Value returns the current state.
func (s *OnePole) Value() float64 { return s.state }

// Snap sets the state directly.
func (s *OnePole) Snap(v float64) { s.state = v }

// Stereo smooths a channel pair with per-channel targets and coefficients.
type Stereo struct {
	state stereo.Vec2
}

// Advance moves both channels one step toward target and returns the new state.
func (s *Stereo) Advance(target, alpha stereo.Vec2) stereo.Vec2 {
	s.state[0] = step(s.state[0], target[0], alpha[0])
	s.state[1] = step(s.state[1], target[1], alpha[1])
	return s.state
}

// Value returns the current state.
func (s *Stereo) Value() stereo.Vec2 { return s.state }

// Snap sets the state directly.
func (s *Stereo) Snap(v stereo.Vec2) { s.state = v }

// Settled reports whether both channels equal target exactly. Advance
// snaps onto the target, so a converged smoother always settles.
func (s *Stereo) Settled(target stereo.Vec2) bool {
	return s.state == target
}
