package pixel2svg

import "image/color"

// Coalescer scans a pixel grid and carves it into rectangles.
// The source grid is left untouched, consumed pixels are tracked in a separate bitmap.
type Coalescer struct {
	Sensitivity int
	Combine     bool

	grid    *Grid
	visited *bitmap
}

// NewCoalescer initializes a coalescer over the grid.
func NewCoalescer(g *Grid, sensitivity int, combine bool) *Coalescer {
	return &Coalescer{
		Sensitivity: sensitivity,
		Combine:     combine,
		grid:        g,
		visited:     newBitmap(g.Width, g.Height),
	}
}

// Coalesce returns the rectangles covering every non transparent pixel of the grid.
// It panics on a grid which has not been validated; use NewGrid to build one.
func Coalesce(g *Grid, sensitivity int, combine bool) []Rect {
	return NewCoalescer(g, sensitivity, combine).Run()
}

// Run carves the rectangles following a strict row-major scan:
//   - every pixel which is transparent or already part of a rectangle is skipped;
//   - otherwise it becomes the seed of a new rectangle, growing rightward
//     as long as the pixels are similar to the seed;
//   - the rectangle then grows downward one full row at a time,
//     as long as the whole span of the next row matches the seed.
//
// The width fixed on the seed row is never revisited, and all comparisons
// are anchored to the seed color, not to the previous pixel.
func (c *Coalescer) Run() []Rect {
	var rects []Rect

	for y := 0; y < c.grid.Height; y++ {
		for x := 0; x < c.grid.Width; {
			if !c.available(x, y) {
				x++
				continue
			}
			seed := c.grid.At(x, y)

			w := 1
			if c.Combine {
				for x+w < c.grid.Width && c.matches(x+w, y, seed) {
					w++
				}
			}
			h := 1
			if c.Combine {
				for y+h < c.grid.Height && c.rowMatches(x, y+h, w, seed) {
					h++
				}
			}
			c.visited.fill(x, y, w, h)

			rects = append(rects, Rect{X: x, Y: y, W: w, H: h, Color: seed})
			x += w
		}
	}
	return rects
}

// available reports whether the pixel can still seed or join a rectangle.
func (c *Coalescer) available(x, y int) bool {
	return c.grid.At(x, y).A != 0 && !c.visited.get(x, y)
}

func (c *Coalescer) matches(x, y int, seed color.NRGBA) bool {
	return c.available(x, y) && Similar(c.grid.At(x, y), seed, c.Sensitivity)
}

// rowMatches reports whether all the w pixels starting at (x, y) match the seed.
func (c *Coalescer) rowMatches(x, y, w int, seed color.NRGBA) bool {
	for i := x; i < x+w; i++ {
		if !c.matches(i, y, seed) {
			return false
		}
	}
	return true
}
