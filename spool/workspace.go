// Package spool materializes input streams into a per-run working directory,
// either whole or as a bounded representative prefix.
package spool

import (
	"fmt"
	"os"
	"time"

	"github.com/gobeaver/filesniff/internal/logger"
)

// Workspace is the temporary directory shared by every item of one run.
// It is removed by Close unless it was created inside a caller-supplied
// cache directory.
type Workspace struct {
	dir  string
	keep bool
	log  logger.Logger
}

// NewWorkspace creates a run directory named prefix_<timestamp>_<random>.
// With a non-empty cacheDir the directory is created there and kept after
// Close; otherwise it lives under the system temp dir and is removed.
func NewWorkspace(cacheDir, prefix string, log logger.Logger) (*Workspace, error) {
	if log == nil {
		log = logger.Discard()
	}
	base := os.TempDir()
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("spool: create cache dir: %w", err)
		}
		base = cacheDir
	}
	pattern := fmt.Sprintf("%s_%s_", prefix, time.Now().Format("20060102150405"))
	dir, err := os.MkdirTemp(base, pattern)
	if err != nil {
		return nil, fmt.Errorf("spool: create workspace: %w", err)
	}
	log.Debug("created temporary directory", "dir", dir)
	return &Workspace{dir: dir, keep: cacheDir != "", log: log}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Keep reports whether Close retains the directory.
func (w *Workspace) Keep() bool { return w.keep }

// CreateTemp creates a new file in the workspace.
func (w *Workspace) CreateTemp(pattern string) (*os.File, error) {
	return os.CreateTemp(w.dir, pattern)
}

// Close removes the workspace, or logs that it is being kept.
func (w *Workspace) Close() error {
	if w.keep {
		w.log.Info("Keeping temporary directory: " + w.dir)
		return nil
	}
	w.log.Info("Deleting temporary directory: " + w.dir)
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("spool: remove workspace: %w", err)
	}
	return nil
}
