package pixel2svg

import (
	"image"
	"image/color"

	"seehuhn.de/go/geom/vec"
)

// Rect is an axis aligned block of same or similar colored pixels,
// expressed in pixel grid coordinates.
type Rect struct {
	X, Y  int
	W, H  int
	Color color.NRGBA // color of the seed pixel, alpha included
}

// Bounds returns the pixel footprint of the rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Area returns the number of pixels covered by the rectangle.
func (r Rect) Area() int {
	return r.W * r.H
}

// Anchor is the point used to represent the rectangle in the path optimizer.
func (r Rect) Anchor() vec.Vec2 {
	return vec.Vec2{X: float64(r.X), Y: float64(r.Y)}
}

// Opaque reports whether the seed alpha is fully opaque.
func (r Rect) Opaque() bool {
	return r.Color.A == 0xff
}

// Opacity returns the rendering opacity derived from the seed alpha.
func (r Rect) Opacity() float64 {
	return float64(r.Color.A) / 255
}
