package warp

// ColorMatrix is a 4x5 color transformation in row-major order:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
//
// The fifth column provides bias values in the 0..255 range. Renderers
// that support color filtering apply the matrix as a chained pass after
// the warp; see ColorFilterer.
type ColorMatrix [20]float32

// IdentityColorMatrix returns the matrix that passes colors through
// unchanged.
func IdentityColorMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0, // R
		0, 1, 0, 0, 0, // G
		0, 0, 1, 0, 0, // B
		0, 0, 0, 1, 0, // A
	}
}

// BrightnessMatrix scales color channels by factor.
// 0.0 = black, 1.0 = unchanged, 2.0 = twice as bright.
func BrightnessMatrix(factor float32) ColorMatrix {
	return ColorMatrix{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix adjusts contrast around mid-gray.
// 0.0 = gray, 1.0 = unchanged, 2.0 = high contrast.
func ContrastMatrix(factor float32) ColorMatrix {
	offset := 128 * (1 - factor)
	return ColorMatrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// SaturationMatrix adjusts color saturation using Rec. 709 luminance
// weights. 0.0 = grayscale, 1.0 = unchanged, 2.0 = oversaturated.
func SaturationMatrix(factor float32) ColorMatrix {
	const (
		lumR = 0.2126
		lumG = 0.7152
		lumB = 0.0722
	)
	inv := 1 - factor
	r := inv * lumR
	g := inv * lumG
	b := inv * lumB
	return ColorMatrix{
		r + factor, g, b, 0, 0,
		r, g + factor, b, 0, 0,
		r, g, b + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// IsIdentity reports whether the matrix is exactly the identity.
func (m ColorMatrix) IsIdentity() bool {
	return m == IdentityColorMatrix()
}

// ColorFilterer is implemented by renderers that can apply a color matrix
// as an additional pass chained after the warp. SetColorFilter with the
// identity matrix (or ClearColorFilter) disables the pass.
type ColorFilterer interface {
	SetColorFilter(m ColorMatrix)
	ClearColorFilter()
}
