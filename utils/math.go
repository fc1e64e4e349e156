// Package utils contains small numeric helpers shared by the kinematics and workspace packages.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// ScaleByRatio returns floor(n * ratio), never below zero.
func ScaleByRatio(n int, ratio float64) int {
	scaled := int(math.Floor(float64(n) * ratio))
	if scaled < 0 {
		return 0
	}
	return scaled
}

// IsMissing reports whether v is the missing-value marker (NaN).
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Missing returns the missing-value marker.
func Missing() float64 {
	return math.NaN()
}
