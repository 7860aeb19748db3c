package gamemath

import "math"

// Direction returns 1 for positive values and -1 otherwise. Zero maps to -1,
// so callers always get a usable push direction.
func Direction(v float64) float64 {
	if v > 0 {
		return 1
	}
	return -1
}

// Lerp moves from a toward b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Damp scales a velocity by (1 - amount), the per-step air drag.
func Damp(v, amount float64) float64 {
	return v * (1 - amount)
}

// Overlap returns how far two centered extents overlap on one axis. A
// negative result is the gap between them.
func Overlap(centerA, halfA, centerB, halfB float64) float64 {
	return halfA + halfB - math.Abs(centerB-centerA)
}

// Dot is the unclamped 2D dot product. vector.Vector.Dot clamps to [-1, 1],
// which only suits unit vectors.
func Dot(ax, ay, bx, by float64) float64 {
	return ax*bx + ay*by
}
