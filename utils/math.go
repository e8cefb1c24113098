package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less
// than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// MetersToMM converts meters to millimeters.
func MetersToMM(m float64) float64 {
	return m * 1000
}

// MMToMeters converts millimeters to meters.
func MMToMeters(mm float64) float64 {
	return mm / 1000
}
