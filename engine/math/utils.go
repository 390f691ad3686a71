package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ScaledExtent applies a resolution scale to a pixel extent, never
// returning a dimension below one pixel.
func ScaledExtent(width, height uint32, scale float32) (uint32, uint32) {
	if scale <= 0 {
		scale = 1.0
	}
	w := uint32(float32(width) * scale)
	h := uint32(float32(height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
