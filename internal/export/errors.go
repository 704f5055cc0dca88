package export

import "errors"

var (
	// ErrCancelled is returned when the context is cancelled mid-export.
	// No project file is left at the final path of the frame in progress.
	ErrCancelled = errors.New("export cancelled")

	// ErrOutput wraps failures to write the project file. It aborts the
	// whole run.
	ErrOutput = errors.New("cannot write output")

	// ErrNoCamera is returned for a frame without the configured camera.
	ErrNoCamera = errors.New("camera not found")
)
