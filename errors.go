package pixel2svg

import "errors"

var (
	// ErrInvalidGrid is returned for empty, ragged or missing pixel data.
	// No partial output is produced.
	ErrInvalidGrid = errors.New("invalid pixel grid")

	// ErrInvalidConfig is returned when a Processor option is out of range.
	// It is detected before any pixel is scanned.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOptimization signals that the path order of a color group could not be computed.
	// The processor recovers from it by keeping the emission order of the group.
	ErrOptimization = errors.New("path optimization failed")
)
