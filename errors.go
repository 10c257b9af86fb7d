package filesniff

import (
	"errors"
	"fmt"

	"github.com/gobeaver/filesniff/exttool"
	"github.com/gobeaver/filesniff/source"
)

// Configuration errors. They stop a run even when KeepGoing is set.
var (
	ErrNoInputs         = errors.New("no inputs given")
	ErrInvalidOptions   = errors.New("invalid options")
	ErrStdinAlreadyUsed = source.ErrStdinAlreadyUsed
	ErrFullReadRequired = source.ErrFullReadRequired
	// ErrContainerRuntimeMissing is returned by New when the order names a
	// CWL descriptor and docker cannot be found.
	ErrContainerRuntimeMissing = exttool.ErrContainerRuntimeMissing
	ErrClosed                  = errors.New("classifier already closed")
)

// Per-entry errors. They are recorded as failures of one order entry and
// never stop dispatch.
var (
	ErrUnknownTester     = errors.New("unknown tester")
	ErrUnsupportedEntry  = errors.New("unsupported order entry; only built-in names and .cwl descriptors are allowed")
	ErrLocationNotOnDisk = errors.New("location is not materialized on disk")
	ErrTesterPanicked    = errors.New("tester panicked")
)

// PathError records an error and the operation and input that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is a configuration or precondition
// error rather than a problem with a single input.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidOptions) ||
		errors.Is(err, ErrStdinAlreadyUsed) ||
		errors.Is(err, ErrFullReadRequired) ||
		errors.Is(err, ErrContainerRuntimeMissing) ||
		errors.Is(err, ErrNoInputs) ||
		errors.Is(err, ErrClosed)
}

// IsNotExist reports whether err indicates that a local input does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, source.ErrNotFound)
}
