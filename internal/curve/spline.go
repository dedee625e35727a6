package curve

import "math"

const (
	// Below this tension magnitude a segment is a straight line.
	linearTension = 1e-9

	// Knots closer than this in x do not form a segment.
	minSegmentWidth = 1e-9
)

// segment is the cached form of the curve between two neighboring knots:
// y = y0 + dy * s((x-x0)/dx) with s(u) = expm1(t*u)/expm1(t).
type segment struct {
	x0, x1 float64
	y0, dy float64
	invDx  float64
	t      float64
	invExp float64 // 1/expm1(t), unused when linear
	linear bool
}

func (s *segment) shape(u float64) float64 {
	if s.linear {
		return u
	}
	return math.Expm1(s.t*u) * s.invExp
}

// slope returns dy/dx at normalized position u.
func (s *segment) slope(u float64) float64 {
	if s.linear {
		return s.dy * s.invDx
	}
	return s.dy * s.invDx * s.t * math.Exp(s.t*u) * s.invExp
}

// Spline evaluates the transfer function through a set of knots ordered by x.
// The zero value is the identity. Build never allocates.
type Spline struct {
	segs [MaxKnots - 1]segment
	n    int

	leftSlope, rightSlope float64
}

// Build recomputes the segment cache from knots, which must be ordered by x.
func (sp *Spline) Build(knots []Knot) {
	sp.n = 0
	for i := 0; i+1 < len(knots) && i+1 < MaxKnots; i++ {
		a, b := knots[i], knots[i+1]
		dx := b.X - a.X
		if dx < minSegmentWidth {
			continue
		}

		s := segment{
			x0:    a.X,
			x1:    b.X,
			y0:    a.Y,
			dy:    b.Y - a.Y,
			invDx: 1 / dx,
			t:     a.Tension,
		}
		if math.Abs(s.t) < linearTension {
			s.linear = true
		} else {
			s.invExp = 1 / math.Expm1(s.t)
		}
		sp.segs[sp.n] = s
		sp.n++
	}

	if sp.n > 0 {
		sp.leftSlope = sp.segs[0].slope(0)
		sp.rightSlope = sp.segs[sp.n-1].slope(1)
	}
}

// IsIdentity reports whether the curve passes its input through unchanged
// because fewer than two distinct knots are active.
func (sp *Spline) IsIdentity() bool { return sp.n == 0 }

// Segments returns the number of cached segments.
func (sp *Spline) Segments() int { return sp.n }

// Eval returns f(x). In symmetric mode it returns sign(x)*f(|x|).
func (sp *Spline) Eval(x float64, symmetric bool) float64 {
	if sp.n == 0 {
		return x
	}
	if symmetric && math.Signbit(x) {
		return -sp.eval(-x)
	}
	return sp.eval(x)
}

// Derivative returns f'(x), mirrored the same way as Eval.
func (sp *Spline) Derivative(x float64, symmetric bool) float64 {
	if sp.n == 0 {
		return 1
	}
	if symmetric {
		x = math.Abs(x)
	}

	first := &sp.segs[0]
	if x <= first.x0 {
		return sp.leftSlope
	}
	last := &sp.segs[sp.n-1]
	if x >= last.x1 {
		return sp.rightSlope
	}

	s := sp.find(x)
	return s.slope((x - s.x0) * s.invDx)
}

func (sp *Spline) eval(x float64) float64 {
	first := &sp.segs[0]
	if x <= first.x0 {
		return first.y0 + sp.leftSlope*(x-first.x0)
	}
	last := &sp.segs[sp.n-1]
	if x >= last.x1 {
		return last.y0 + last.dy + sp.rightSlope*(x-last.x1)
	}

	s := sp.find(x)
	return s.y0 + s.dy*s.shape((x-s.x0)*s.invDx)
}

// find returns the segment covering x, which lies inside the knot range.
// Gaps left by coincident knots resolve to the following segment.
func (sp *Spline) find(x float64) *segment {
	for i := 0; i < sp.n-1; i++ {
		if x < sp.segs[i].x1 {
			return &sp.segs[i]
		}
	}
	return &sp.segs[sp.n-1]
}
