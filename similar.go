package pixel2svg

import "image/color"

// Similar reports whether two colors are close enough to be merged into the same rectangle.
// Identical colors are always similar. Otherwise the squared euclidean distance
// over the red, green and blue channels must be strictly less than the sensitivity.
// The alpha channel never takes part in the comparison, which means
// a zero sensitivity degrades to an exact match.
func Similar(a, b color.NRGBA, sensitivity int) bool {
	if a == b {
		return true
	}
	return distanceRGB(a, b) < sensitivity
}

// distanceRGB returns the sum of squared channel differences, alpha excluded.
func distanceRGB(a, b color.NRGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
