package pixel2svg

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Grid is the pixel grid consumed by the coalescer.
// Pixels are stored in row-major order, non-premultiplied.
type Grid struct {
	Width  int
	Height int
	Pix    []color.NRGBA
}

// NewGrid wraps the pixel samples into a grid after checking that
// the dimensions are positive and that exactly width*height samples are provided.
func NewGrid(width, height int, pix []color.NRGBA) (*Grid, error) {
	g := &Grid{Width: width, Height: height, Pix: pix}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGridFromImage converts any image type to a grid with the min-point at (0, 0).
func NewGridFromImage(img image.Image) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidGrid)
	}
	// imaging.Clone always returns an NRGBA image anchored at the origin.
	src := imaging.Clone(img)
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()

	pix := make([]color.NRGBA, 0, dx*dy)
	for y := 0; y < dy; y++ {
		i := src.PixOffset(0, y)
		for x := 0; x < dx; x++ {
			pix = append(pix, color.NRGBA{
				R: src.Pix[i+0],
				G: src.Pix[i+1],
				B: src.Pix[i+2],
				A: src.Pix[i+3],
			})
			i += 4
		}
	}
	return NewGrid(dx, dy, pix)
}

// At returns the pixel at the (x, y) coordinate.
func (g *Grid) At(x, y int) color.NRGBA {
	return g.Pix[y*g.Width+x]
}

func (g *Grid) validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidGrid, g.Width, g.Height)
	}
	if len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("%w: expected %d pixels, got %d", ErrInvalidGrid, g.Width*g.Height, len(g.Pix))
	}
	return nil
}
