package pixel2svg

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// Version indicates the current library version, written into the generated documents.
var Version = "0.6.0"

// SVGOptions describes the generated document.
type SVGOptions struct {
	Width, Height int // source grid dimensions, in pixels
	SquareSize    int // size of the vector square of one pixel
	Overlap       bool
	Layers        bool     // one Inkscape sub-layer for each color group
	Comments      []string // metadata appended after the document
}

const (
	inkscapeNS = `xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"`
	sodipodiNS = `xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"`
)

// errWriter keeps the first write error, since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// WriteSVG serializes the color groups into an SVG document.
// All the rectangles are placed into a locked Inkscape layer, scaled by the square size.
func WriteSVG(w io.Writer, groups []Group, opts SVGOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return errors.New("svg: the document dimensions must be positive")
	}
	size := opts.SquareSize
	if size <= 0 {
		size = DefaultSquareSize
	}
	overlap := 0
	if opts.Overlap {
		overlap = 1
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	dw, dh := opts.Width*size, opts.Height*size
	canvas.Startunit(dw, dh, "px", fmt.Sprintf(`viewBox="0 0 %d %d"`, dw, dh), inkscapeNS, sodipodiNS)
	canvas.Group(
		`id="layer1"`,
		`inkscape:groupmode="layer"`,
		`inkscape:label="Top Layer"`,
		`sodipodi:insensitive="true"`,
	)
	for i, g := range groups {
		if opts.Layers {
			canvas.Group(
				fmt.Sprintf(`id="group%d"`, i+1),
				`inkscape:groupmode="layer"`,
				fmt.Sprintf(`inkscape:label="%s"`, g.Label()),
			)
		}
		fill := fmt.Sprintf(`fill="rgb(%d,%d,%d)"`, g.Color.R, g.Color.G, g.Color.B)
		for _, r := range g.Rects {
			attrs := []string{fill}
			if !r.Opaque() {
				attrs = append(attrs, `opacity="`+strconv.FormatFloat(r.Opacity(), 'g', 6, 64)+`"`)
			}
			canvas.Rect(r.X*size, r.Y*size, r.W*size+overlap, r.H*size+overlap, attrs...)
		}
		if opts.Layers {
			canvas.Gend()
		}
	}
	canvas.Gend()
	canvas.End()

	for _, c := range opts.Comments {
		// "--" is not allowed inside an XML comment.
		fmt.Fprintf(ew, "<!-- %s -->\n", strings.ReplaceAll(c, "--", "- -"))
	}
	return ew.err
}
