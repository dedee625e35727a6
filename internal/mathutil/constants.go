package mathutil

// Polynomial fits for I0 from Abramowitz and Stegun 9.8.1 and 9.8.2,
// lowest order first.
var (
	i0SmallPoly = [...]float64{1, 3.5156229, 3.0899424, 1.2067492, 0.2659732, 0.0360768, 0.0045813}
	i0LargePoly = [...]float64{
		0.39894228, 0.01328592, 0.00225319, -0.00157565, 0.00916281,
		-0.02057706, 0.02635537, -0.01647633, 0.00392377,
	}
)

const (
	// i0Split is where the small argument series hands over to the
	// scaled asymptotic fit.
	i0Split = 3.75

	// Kaiser's empirical beta and length formulas.
	betaStrongAtt = 50.0
	betaWeakAtt   = 21.0
	lengthAttBias = 7.95
	lengthSlope   = 14.36

	minFilterLength = 3
	maxFilterLength = 8191
)

const (
	// Ln10 is the natural logarithm of 10.
	Ln10 = 2.30258509299404568402

	// dbToLinear scales decibels into the exponent of exp().
	dbToLinear = Ln10 / 20.0

	// powerToDB maps ln(power) to decibels.
	powerToDB = 10.0 / Ln10

	// LevelEpsilon keeps the logarithm finite for silent input.
	// It is the smallest normal float32.
	LevelEpsilon = 1.17549435082228750797e-38
)
