package systems

import "math"

// Interpolation primitives used by the force profile.

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// InverseLerp returns where v sits between a and b (0 at a, 1 at b).
// Callers must ensure a != b.
func InverseLerp(a, b, v float32) float32 {
	return (v - a) / (b - a)
}

// Remap maps v from [a, b] onto [c, d]. A zero-width source band yields 0
// so degenerate parameters cannot push NaN or Inf into particle state.
func Remap(v, a, b, c, d float32) float32 {
	if b == a {
		return 0
	}
	return Lerp(c, d, InverseLerp(a, b, v))
}

// Clamp functions for common value ranges

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// nonNegative maps negative and NaN values to zero.
func nonNegative(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	return v
}

// expf is exp for float32 callers.
func expf(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

// sqrtf is sqrt for float32 callers.
func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
