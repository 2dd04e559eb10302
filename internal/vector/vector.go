package vector

import "math"

// Sample is a single 3-axis measurement. Magnitude is derived, never set by
// producers; the dispatcher fills it in before encoding.
type Sample struct {
	X         float64
	Y         float64
	Z         float64
	Magnitude float64
}

// Magnitude returns the Euclidean norm of (x, y, z). NaN and Inf inputs
// propagate per IEEE 754.
func Magnitude(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
