package curve

import "math"

// settleThreshold is the largest knot distance treated as arrived.
const settleThreshold = 1e-9

// Automator owns the audio thread's view of the curve. It consumes published
// snapshots and glides the evaluated knots toward them with a one-pole
// smoother, so automated knot moves do not step. A change in the active
// count snaps immediately.
type Automator struct {
	generation uint64
	active     int

	target [MaxKnots]Knot
	state  [MaxKnots]Knot

	spline  Spline
	settled bool
}

// NewAutomator returns an automator snapped to ks.
func NewAutomator(ks *KnotSet) *Automator {
	a := &Automator{}
	a.Consume(ks)
	a.Snap()
	return a
}

// Consume picks up ks when its generation differs from the last one seen.
// It reports whether anything changed.
func (a *Automator) Consume(ks *KnotSet) bool {
	if ks == nil || ks.Generation == a.generation {
		return false
	}
	a.generation = ks.Generation

	sorted := ks.Sorted()
	copy(a.target[:], sorted)

	if len(sorted) != a.active {
		a.active = len(sorted)
		a.Snap()
		return true
	}
	a.settled = false
	return true
}

// Snap jumps the evaluated knots to the targets.
func (a *Automator) Snap() {
	a.state = a.target
	a.spline.Build(a.state[:a.active])
	a.settled = true
}

// Step advances the glide by one sample. Alpha 0 snaps.
func (a *Automator) Step(alpha float64) {
	if a.settled {
		return
	}
	if alpha <= 0 {
		a.Snap()
		return
	}

	dist := 0.0
	for i := range a.active {
		s, t := &a.state[i], a.target[i]
		s.X = t.X + alpha*(s.X-t.X)
		s.Y = t.Y + alpha*(s.Y-t.Y)
		s.Tension = t.Tension + alpha*(s.Tension-t.Tension)
		dist = max(dist, math.Abs(s.X-t.X), math.Abs(s.Y-t.Y), math.Abs(s.Tension-t.Tension))
	}

	if dist < settleThreshold {
		a.Snap()
		return
	}
	a.spline.Build(a.state[:a.active])
}

// Settled reports whether the evaluated knots have reached the targets.
func (a *Automator) Settled() bool { return a.settled }

// Generation returns the generation of the last consumed snapshot.
func (a *Automator) Generation() uint64 { return a.generation }

// Spline returns the curve for the current glide position.
func (a *Automator) Spline() *Spline { return &a.spline }

// IsIdentity reports whether the curve passes input through unchanged and
// will keep doing so until the next snapshot.
func (a *Automator) IsIdentity() bool {
	return a.active < 2 || (a.settled && a.spline.IsIdentity())
}
