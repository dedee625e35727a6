package mathutil

import "math"

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Exp(dbToLinear * db)
}

// PowerToDB converts a mean-square (power) value to decibels.
// Zero maps to a large negative number instead of -Inf.
func PowerToDB(power float64) float64 {
	return powerToDB * math.Log(power+LevelEpsilon)
}
