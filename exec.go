package pixel2svg

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/doj/pixel2svg-fork/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// validExtensions lists the supported source image files.
var validExtensions = []string{".png", ".gif", ".bmp", ".jpg", ".jpeg", ".tif", ".tiff", ".webp"}

// isTerminal reports whether the file descriptor is attached to a terminal.
var isTerminal = term.IsTerminal

// Ops holds the source and destination of a conversion run.
// An empty Dst means that the destination is derived from the source name.
type Ops struct {
	Src, Dst, PipeName string
	Preview            string
	PreviewScale       int
	PreviewBackground  color.NRGBA // transparent keeps the preview backdrop empty
	Workers            int
}

// result holds the relevant information about the conversion process.
type result struct {
	path  string
	stats Stats
	err   error
}

// Execute runs the conversion over a single file, a pipe, an URL or a whole directory.
// Directories are processed concurrently by a bounded pool of workers.
// It returns the first error encountered.
func (p *Processor) Execute(op *Ops) error {
	var (
		fs  os.FileInfo
		err error
		src = op.Src
	)
	if p.Spinner == nil {
		defaultMsg := fmt.Sprintf("%s %s",
			utils.DecorateText("▦ PIXEL2SVG", utils.StatusMessage),
			utils.DecorateText("⇢ converting pixels to rectangles...", utils.DefaultMessage),
		)
		p.Spinner = utils.NewSpinner(defaultMsg, time.Millisecond*80, true)
	}

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(src) {
		img, err := utils.DownloadImage(src)
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		defer os.Remove(img.Name())
		img.Close()

		if op.Dst == "" {
			op.Dst = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".svg"
		}
		src = img.Name()
	}

	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		if isTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("%w: `-` should be used with a pipe for stdin", ErrInvalidConfig)
		}
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	now := time.Now()

	// The progress indicator is shared by all the workers,
	// so it is started and stopped only here.
	p.Spinner.Start()
	if err := op.execute(p, src, fs); err != nil {
		p.Spinner.StopMsg = statusMsg(err)
		p.Spinner.Stop()
		return err
	}
	p.Spinner.StopMsg = statusMsg(nil)
	p.Spinner.Stop()

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// execute dispatches the conversion by the source type.
func (op *Ops) execute(p *Processor, src string, fs os.FileInfo) error {
	switch mode := fs.Mode(); {
	case mode.IsDir():
		var wg sync.WaitGroup
		dst := op.Dst
		if dst == "" {
			dst = src
		}
		// Read destination file or directory.
		if _, err := os.Stat(dst); err != nil {
			if err := os.MkdirAll(dst, 0755); err != nil {
				return fmt.Errorf("unable to create the destination directory: %w", err)
			}
		}

		// Limit the concurrently running workers to maxWorkers.
		workers := op.Workers
		if workers <= 0 || workers > maxWorkers {
			workers = runtime.NumCPU()
		}

		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, src, validExtensions)

		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				op.consumer(p, dst, ch, done, paths)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		var firstErr error
		for res := range ch {
			if res.err != nil && firstErr == nil {
				firstErr = res.err
			}
			op.printOpStatus(res.path, res.stats, res.err)
		}
		if err := <-errc; err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		dst := op.Dst
		if dst == "" {
			if src == op.PipeName {
				dst = op.PipeName
			} else {
				dst = svgName(src)
			}
		}
		if ext := filepath.Ext(dst); ext != ".svg" && dst != op.PipeName {
			return fmt.Errorf("%v file type not supported", ext)
		}

		stats, err := op.process(p, src, dst)
		op.printOpStatus(dst, stats, err)
		return err
	default:
		return fmt.Errorf("unsupported source: %s", src)
	}
}

// statusMsg returns the closing message of the progress indicator.
func statusMsg(err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s %s",
			utils.DecorateText("▦ PIXEL2SVG", utils.StatusMessage),
			utils.DecorateText("converting the image failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	}
	return fmt.Sprintf("%s %s %s",
		utils.DecorateText("▦ PIXEL2SVG", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the image has been converted successfully ✔", utils.SuccessMessage),
	)
}

// svgName replaces the extension of the file name with .svg.
func svgName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".svg"
}

// consumer reads the path names from the paths channel and calls the converter against the source image.
func (op *Ops) consumer(
	p *Processor,
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		dst := filepath.Join(dest, svgName(filepath.Base(src)))
		stats, err := op.process(p, src, dst)

		select {
		case <-done:
			return
		case res <- result{
			path:  src,
			stats: stats,
			err:   err,
		}:
		}
	}
}

// process converts the source image into the destination SVG file.
// In case of an error the partially written destination is removed.
// It is called concurrently by the directory workers.
func (op *Ops) process(p *Processor, in, out string) (Stats, error) {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return Stats{}, err
	}

	// Capture CTRL-C signal and restores back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	quit := make(chan struct{})
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalChan)
		close(quit)
	}()
	go func() {
		select {
		case <-signalChan:
			p.Spinner.RestoreCursor()
			if f, ok := dst.(*os.File); ok && f != os.Stdout {
				os.Remove(f.Name())
			}
			os.Exit(1)
		case <-quit:
		}
	}()

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	grid, groups, stats, err := p.convertReader(src)
	if err == nil {
		err = p.writeDocument(dst, grid, groups, stats)
	}
	if err == nil && op.Preview != "" {
		err = op.writePreview(p, in, groups, grid)
	}

	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			// remove the generated file in case of an error
			os.Remove(f.Name())
		}
	}

	return stats, err
}

// writePreview rasterizes the result next to the SVG output.
// For directory runs the preview name is derived from the source name.
func (op *Ops) writePreview(p *Processor, in string, groups []Group, grid *Grid) error {
	name := op.Preview
	if fi, err := os.Stat(op.Src); err == nil && fi.IsDir() {
		ext := filepath.Ext(op.Preview)
		name = strings.TrimSuffix(in, filepath.Ext(in)) + ".preview" + ext
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create the preview file: %w", err)
	}
	defer f.Close()

	return p.EncodePreview(f, groups, grid.Width, grid.Height, op.PreviewScale, op.PreviewBackground)
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if isTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %v", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if isTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create the destination file: %v", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the conversion process.
func (op *Ops) printOpStatus(fname string, stats Stats, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n%s%s\n",
			utils.DecorateText("Error converting the image: "+fname, utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v", err), utils.DefaultMessage),
		)
		return
	}
	fmt.Fprintf(os.Stderr, "\nUsed %s in %s (%dx%d)\n",
		utils.Plural(stats.Rects, "rectangle"),
		utils.Plural(stats.Groups, "color group"),
		stats.Width, stats.Height,
	)
	if fname != op.PipeName {
		fmt.Fprintf(os.Stderr, "The vector image has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			// Skip the previews generated by a previous run.
			if strings.Contains(f.Name(), ".preview.") {
				return nil
			}

			if utils.Contains(srcExts, strings.ToLower(filepath.Ext(f.Name()))) {
				select {
				case <-done:
					return errors.New("directory walk cancelled")
				case pathChan <- path:
				}
			}
			return nil
		})
	}()
	return pathChan, errChan
}
