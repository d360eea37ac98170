package pixel2svg

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/doj/pixel2svg-fork/utils"
)

// DefaultSquareSize is the width and height of a vector square for one pixel.
const DefaultSquareSize = 40

// Processor options
type Processor struct {
	Sensitivity   int
	SquareSize    int
	MaxIterations int
	Workers       int
	Seed          int64
	Timeout       time.Duration
	Logger        *log.Logger
	Spinner       *utils.Spinner
	Combine       bool
	Optimize      bool
	Reverse       bool
	Overlap       bool
	Layers        bool

	stats Stats
	mu    sync.Mutex
}

// Stats holds the figures of the last conversion.
type Stats struct {
	Width, Height int
	Pixels        int
	Rects         int
	Groups        int
	Fallbacks     int
}

// Validate checks the options before any pixel is scanned.
func (p *Processor) Validate() error {
	switch {
	case p.Sensitivity < 0:
		return fmt.Errorf("%w: sensitivity must not be negative, got %d", ErrInvalidConfig, p.Sensitivity)
	case p.SquareSize < 0:
		return fmt.Errorf("%w: square size must not be negative, got %d", ErrInvalidConfig, p.SquareSize)
	case p.MaxIterations < 0:
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalidConfig, p.MaxIterations)
	case p.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, p.Workers)
	case p.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative, got %v", ErrInvalidConfig, p.Timeout)
	}
	return nil
}

// squareSize returns the configured square size or the default one.
func (p *Processor) squareSize() int {
	if p.SquareSize == 0 {
		return DefaultSquareSize
	}
	return p.SquareSize
}

func (p *Processor) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}

// Stats returns the figures collected by the last conversion.
// With concurrent conversions it reflects whichever finished last.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stats
}

// Convert is the main entry point of the vectorization.
// It carves the grid into rectangles, groups them by color,
// names every group and finally orders the rectangles of each group.
func (p *Processor) Convert(g *Grid) ([]Group, error) {
	groups, stats, err := p.convert(g)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()

	return groups, nil
}

func (p *Processor) convert(g *Grid) ([]Group, Stats, error) {
	if err := p.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if err := g.validate(); err != nil {
		return nil, Stats{}, err
	}

	rects := Coalesce(g, p.Sensitivity, p.Combine)
	groups := GroupRects(rects)
	for i := range groups {
		groups[i].Name = NearestName(groups[i].Color)
	}
	fallbacks := p.orderGroups(groups)

	var pixels int
	for _, r := range rects {
		pixels += r.Area()
	}

	return groups, Stats{
		Width:     g.Width,
		Height:    g.Height,
		Pixels:    pixels,
		Rects:     len(rects),
		Groups:    len(groups),
		Fallbacks: fallbacks,
	}, nil
}

// orderGroups applies the path optimization and the reversal to every group.
// Groups are independent of each other, so they are processed concurrently.
// It returns the number of groups which fell back to the emission order.
func (p *Processor) orderGroups(groups []Group) int {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		fallbacks int
	)
	sem := make(chan struct{}, workers)

	for i := range groups {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			if err := p.orderGroup(&groups[i], int64(i)); err != nil {
				p.logger().Printf(
					utils.DecorateText("warning: keeping the scan order of the %s group: %v", utils.StatusMessage),
					groups[i].Label(), err,
				)
				mu.Lock()
				fallbacks++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	return fallbacks
}

// orderGroup reorders a single group. The optimizer only runs on groups
// with more than two rectangles. When it fails the emission order is kept,
// the reversal is applied in both cases.
func (p *Processor) orderGroup(g *Group, index int64) error {
	order := identity(len(g.Rects))

	var err error
	if p.Optimize && len(g.Rects) > 2 {
		opt := NewOptimizer(p.Seed + index)
		opt.Timeout = p.Timeout
		if p.MaxIterations > 0 {
			opt.MaxIterations = p.MaxIterations
		}
		optimized, oerr := opt.Order(g.Rects)
		if oerr != nil {
			err = oerr
		} else {
			order = optimized
		}
	}
	if p.Reverse {
		Reverse(order)
	}
	g.Permute(order)

	return err
}

// Process decodes the image from the reader, converts it and writes
// the SVG document into the writer.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	grid, groups, stats, err := p.convertReader(r)
	if err != nil {
		return err
	}
	return p.writeDocument(w, grid, groups, stats)
}

// convertReader decodes and converts the source image.
func (p *Processor) convertReader(r io.Reader) (*Grid, []Group, Stats, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, Stats{}, err
	}
	src, err := decodeImg(r)
	if err != nil {
		return nil, nil, Stats{}, err
	}
	grid, err := NewGridFromImage(src)
	if err != nil {
		return nil, nil, Stats{}, err
	}
	groups, stats, err := p.convert(grid)
	if err != nil {
		return nil, nil, Stats{}, err
	}
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()

	return grid, groups, stats, nil
}

// writeDocument serializes the groups, the conversion figures go into trailing comments.
func (p *Processor) writeDocument(w io.Writer, grid *Grid, groups []Group, stats Stats) error {
	return WriteSVG(w, groups, SVGOptions{
		Width:      grid.Width,
		Height:     grid.Height,
		SquareSize: p.squareSize(),
		Overlap:    p.Overlap,
		Layers:     p.Layers,
		Comments: []string{
			fmt.Sprintf("pixel2svg %s", Version),
			fmt.Sprintf("source %dx%d, %d pixels", stats.Width, stats.Height, stats.Pixels),
			fmt.Sprintf("used %d rectangles in %d color groups", stats.Rects, stats.Groups),
			fmt.Sprintf("combine=%t sensitivity=%d optimize=%t reverse=%t", p.Combine, p.Sensitivity, p.Optimize, p.Reverse),
		},
	})
}

// Render rasterizes the color groups back into an image of the grid size.
// Rectangles are composited over a transparent backdrop with their own opacity.
func (p *Processor) Render(groups []Group, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("render: the image dimensions must be positive")
	}
	return renderGroups(groups, width, height), nil
}
