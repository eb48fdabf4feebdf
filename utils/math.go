package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// SquareInt returns n*n.
func SquareInt(n int) int {
	return n * n
}

// ClampFloat restricts f to [lo, hi].
func ClampFloat(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float64AlmostEqual reports whether a and b differ by at most epsilon. NaN is never almost equal.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// OutOfFrame is a pixel coordinate that lies outside every image.
const OutOfFrame = math.MinInt32

// PixelCoord converts a floating point pixel coordinate to an int the way a
// cast to a 32-bit integer does, except that NaN, infinities and values beyond
// the int32 range become OutOfFrame instead of wrapping.
func PixelCoord(f float64) int {
	if !IsFinite(f) || f <= math.MinInt32 || f > math.MaxInt32 {
		return OutOfFrame
	}
	return int(f)
}
