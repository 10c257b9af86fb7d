// Package source turns user-supplied inputs (paths, URLs and "-") into
// local files that format testers can open and seek.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// StdinName is the input string that selects standard input.
const StdinName = "-"

// Kind tags a Location.
type Kind uint8

const (
	// KindPath is a file that existed before the run.
	KindPath Kind = iota
	// KindSpooled is a file written into the run workspace.
	KindSpooled
	// KindStdin is unmaterialized standard input.
	KindStdin
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindSpooled:
		return "spooled"
	case KindStdin:
		return "stdin"
	default:
		return "unknown"
	}
}

// Location is where the bytes to classify live.
type Location struct {
	kind Kind
	path string
}

// PathLocation refers to an existing file.
func PathLocation(path string) Location {
	return Location{kind: KindPath, path: path}
}

// SpooledLocation refers to a file in the run workspace.
func SpooledLocation(path string) Location {
	return Location{kind: KindSpooled, path: path}
}

// Kind returns the location's tag.
func (l Location) Kind() Kind { return l.kind }

// Path returns the file path. It is empty for KindStdin.
func (l Location) Path() string { return l.path }

// Materialized reports whether the location is a file on disk.
func (l Location) Materialized() bool { return l.kind != KindStdin }

func (l Location) String() string {
	if l.kind == KindStdin {
		return StdinName
	}
	return l.path
}

var (
	// ErrStdinAlreadyUsed is returned when standard input is requested a
	// second time in one run.
	ErrStdinAlreadyUsed = errors.New("source: standard input can be read only once per run")
	// ErrStdinClaimed is returned by ClaimStdin after the first call. It
	// matches ErrStdinAlreadyUsed.
	ErrStdinClaimed = fmt.Errorf("%w: claimed elsewhere in this process", ErrStdinAlreadyUsed)
)

var stdinClaimed atomic.Bool

// StdinClaim is the single handle through which standard input is read.
type StdinClaim struct {
	r     io.Reader
	taken atomic.Bool
}

// ClaimStdin returns the process-wide claim on os.Stdin. Only the first
// call succeeds.
func ClaimStdin() (*StdinClaim, error) {
	if !stdinClaimed.CompareAndSwap(false, true) {
		return nil, ErrStdinClaimed
	}
	return &StdinClaim{r: os.Stdin}, nil
}

// NewClaim wraps r as if it were standard input. Each claim can be taken
// once.
func NewClaim(r io.Reader) *StdinClaim {
	return &StdinClaim{r: r}
}

// Take hands out the reader. The second call fails with ErrStdinAlreadyUsed
// without touching the stream.
func (c *StdinClaim) Take() (io.Reader, error) {
	if !c.taken.CompareAndSwap(false, true) {
		return nil, ErrStdinAlreadyUsed
	}
	return c.r, nil
}

// Location returns the unmaterialized stdin location.
func (c *StdinClaim) Location() Location {
	return Location{kind: KindStdin}
}
