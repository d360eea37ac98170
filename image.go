package pixel2svg

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/doj/pixel2svg-fork/imop"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeImg decodes the source into an image, applying the EXIF orientation if present.
func decodeImg(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	return img, nil
}

// encodeImg encodes the preview image to a destination of type io.Writer.
// The encoder is selected by the file extension, the default one being PNG.
func encodeImg(w io.Writer, img image.Image) error {
	switch w := w.(type) {
	case *os.File:
		switch filepath.Ext(w.Name()) {
		case "", ".png":
			return png.Encode(w, img)
		case ".jpg", ".jpeg":
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
		case ".bmp":
			return bmp.Encode(w, img)
		default:
			return errors.New("unsupported preview image format")
		}
	default:
		return png.Encode(w, img)
	}
}

// EncodePreview renders the groups, scales the result by the given factor
// using nearest neighbor sampling and encodes it into the writer.
// A non transparent background is composited behind the rectangles.
func (p *Processor) EncodePreview(w io.Writer, groups []Group, width, height, scale int, background color.NRGBA) error {
	img, err := p.Render(groups, width, height)
	if err != nil {
		return err
	}
	if background.A != 0 {
		img = withBackdrop(img, background)
	}
	var dst image.Image = img
	if scale > 1 {
		dst = imaging.Resize(img, width*scale, height*scale, imaging.NearestNeighbor)
	}
	return encodeImg(w, dst)
}

// renderGroups draws every rectangle, group after group, in drawing order.
func renderGroups(groups []Group, width, height int) *image.NRGBA {
	bitmap := imop.NewBitmap(image.Rect(0, 0, width, height))
	op := imop.InitOp()
	op.Set(imop.SrcOver)

	for _, g := range groups {
		for _, r := range g.Rects {
			op.DrawRect(bitmap, r.Bounds(), r.Color)
		}
	}
	return bitmap.Img
}

// withBackdrop places a uniform backdrop behind the rendered image.
func withBackdrop(img *image.NRGBA, background color.NRGBA) *image.NRGBA {
	backdrop := imop.NewBitmap(img.Bounds())
	op := imop.InitOp()
	op.DrawRect(backdrop, img.Bounds(), background)

	// Destination over: the rendering stays on top of the backdrop.
	out := imop.NewBitmap(img.Bounds())
	op.Set(imop.DstOver)
	op.Draw(out, backdrop.Img, img)

	return out.Img
}
