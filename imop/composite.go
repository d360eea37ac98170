// Package imop implements the Porter-Duff source-over and destination-over
// composition operations on non-premultiplied images.
//
// It is used to rasterize the vectorized rectangles back into a bitmap,
// for previewing the result over an optional backdrop and for checking
// the conversion correctness.
package imop

import (
	"image"
	"image/color"
	"math"

	"github.com/doj/pixel2svg-fork/utils"
)

const (
	// SrcOver draws the source over the backdrop.
	SrcOver = "src_over"
	// DstOver draws the backdrop over the source.
	DstOver = "dst_over"
)

// Bitmap holds the image the operations are drawn into.
type Bitmap struct {
	Img *image.NRGBA
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// NewBitmap returns a fully transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// InitOp initializes a new composition with SrcOver as the active operation.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops:     []string{SrcOver, DstOver},
	}
}

// Set activates one of the supported composition operations.
// Unsupported operations are ignored.
func (op *Composite) Set(cop string) {
	if utils.Contains(op.ops, cop) {
		op.current = cop
	}
}

// Get returns the active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composites the src image with the dst backdrop using the active operation
// and stores the result into the bitmap.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA) {
	b := src.Bounds().Intersect(dst.Bounds()).Intersect(bitmap.Img.Bounds())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			bitmap.Img.SetNRGBA(x, y, op.Apply(src.NRGBAAt(x, y), dst.NRGBAAt(x, y)))
		}
	}
}

// DrawRect fills the rectangle with a uniform color composited over the bitmap content.
func (op *Composite) DrawRect(bitmap *Bitmap, rect image.Rectangle, c color.NRGBA) {
	b := rect.Intersect(bitmap.Img.Bounds())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			bitmap.Img.SetNRGBA(x, y, op.Apply(c, bitmap.Img.NRGBAAt(x, y)))
		}
	}
}

// Apply returns the result of the active operation for a single source and backdrop color.
func (op *Composite) Apply(src, dst color.NRGBA) color.NRGBA {
	var rn, gn, bn, an float64

	rsn := float64(src.R) / 255
	gsn := float64(src.G) / 255
	bsn := float64(src.B) / 255
	asn := float64(src.A) / 255

	rbn := float64(dst.R) / 255
	gbn := float64(dst.G) / 255
	bbn := float64(dst.B) / 255
	abn := float64(dst.A) / 255

	// applying the alpha composition formula, the color components are premultiplied
	switch op.current {
	case SrcOver:
		rn = asn*rsn + abn*rbn*(1-asn)
		gn = asn*gsn + abn*gbn*(1-asn)
		bn = asn*bsn + abn*bbn*(1-asn)
		an = asn + abn*(1-asn)
	case DstOver:
		rn = asn*rsn*(1-abn) + abn*rbn
		gn = asn*gsn*(1-abn) + abn*gbn
		bn = asn*bsn*(1-abn) + abn*bbn
		an = asn*(1-abn) + abn
	}

	if an == 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: toByte(rn / an),
		G: toByte(gn / an),
		B: toByte(bn / an),
		A: toByte(an),
	}
}

func toByte(v float64) uint8 {
	return uint8(utils.Min(utils.Max(math.Round(v*255), 0), 255))
}
