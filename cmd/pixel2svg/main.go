package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	pixel2svg "github.com/doj/pixel2svg-fork"
	"github.com/doj/pixel2svg-fork/utils"
)

const helpBanner = `
┌─┐┬─┐ ┬┌─┐┬  ┌─┐┌─┐┬  ┬┌─┐
├─┘│┌┴┬┘├┤ │  ┌─┘└─┐└┐┌┘│ ┬
┴  ┴┴ └─└─┘┴─┘└─┘└─┘ └┘ └─┘

Convert pixel art to SVG.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

var (
	// Flags
	source       = flag.String("in", pipeName, "Source image, directory or URL")
	destination  = flag.String("out", "", "Destination SVG file or directory (default: source name with .svg extension)")
	squareSize   = flag.Int("squaresize", pixel2svg.DefaultSquareSize, "Width and height of vector squares in pixels")
	overlap      = flag.Bool("overlap", false, "Overlap vector squares by 1px")
	combine      = flag.Bool("combine", false, "Combine similar pixels into rectangles")
	combineh     = flag.Bool("combineh", false, "Alias of -combine")
	sensitivity  = flag.Int("sensitivity", 0, "Color similarity threshold (sum of squared RGB differences), 0 means exact match")
	optimize     = flag.Bool("optimize", false, "Reorder the rectangles of each color to reduce the drawing travel")
	reverse      = flag.Bool("reverse", false, "Reverse the drawing order of each color")
	iterations   = flag.Int("iterations", pixel2svg.DefaultMaxIterations, "Maximum number of moves evaluated by the path optimizer")
	timeout      = flag.Duration("timeout", 0, "Time limit of the path optimizer for each color (0 means no limit)")
	seed         = flag.Int64("seed", 1, "Random seed of the path optimizer")
	layers       = flag.Bool("layers", false, "Put every color into its own Inkscape layer")
	preview      = flag.String("preview", "", "Write a raster preview of the result (.png, .jpg or .bmp)")
	previewScale = flag.Int("pscale", 1, "Scale factor of the raster preview")
	previewBg    = flag.String("pbg", "none", "Backdrop color of the raster preview (color name or #rrggbb)")
	workers      = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	version      = flag.Bool("version", false, "Display the program version")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, pixel2svg.Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println(pixel2svg.Version)
		return
	}
	if flag.NArg() > 0 && *source == pipeName {
		*source = flag.Arg(0)
	}

	proc := &pixel2svg.Processor{
		Sensitivity:   *sensitivity,
		SquareSize:    *squareSize,
		MaxIterations: *iterations,
		Workers:       *workers,
		Seed:          *seed,
		Timeout:       *timeout,
		Combine:       *combine || *combineh,
		Optimize:      *optimize,
		Reverse:       *reverse,
		Overlap:       *overlap,
		Layers:        *layers,
	}
	if *squareSize < 1 {
		flag.Usage()
		log.Fatalf("%s", utils.DecorateText("\nThe square size should be at least 1 pixel!", utils.ErrorMessage))
	}

	bg, err := pixel2svg.ParseColor(*previewBg)
	if err != nil {
		flag.Usage()
		log.Fatalf("%s %s",
			utils.DecorateText("\nInvalid preview backdrop:", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}

	op := &pixel2svg.Ops{
		Src:               *source,
		Dst:               *destination,
		PipeName:          pipeName,
		Preview:           *preview,
		PreviewScale:      *previewScale,
		PreviewBackground: bg,
		Workers:           *workers,
	}

	if err := proc.Execute(op); err != nil {
		if errors.Is(err, pixel2svg.ErrInvalidConfig) {
			flag.Usage()
		}
		log.Fatalf("%s %s",
			utils.DecorateText("\nError converting the image:", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}
}
