/*
Package pixel2svg converts pixel art into a compact vector representation.
Every block of same or similar colored pixels becomes one or more axis aligned
rectangles, the rectangles are grouped by color and the drawing order of each
group can be optimized to reduce the travel distance of a plotter head.

The package provides a command line interface, supporting various flags for
the conversion. To check the supported commands type:

	$ pixel2svg --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		pixel2svg "github.com/doj/pixel2svg-fork"
	)

	func main() {
		p := &pixel2svg.Processor{
			Combine:  true,
			Optimize: true,
		}

		if err := p.Process(os.Stdin, os.Stdout); err != nil {
			fmt.Printf("Error converting image: %s", err.Error())
		}
	}
*/
package pixel2svg
