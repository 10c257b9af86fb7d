// Package tester holds the format testers tried by the classifier, one per
// supported format, and the registry that resolves them by name.
//
// A tester trial-parses a file and either reports its format or fails. A
// *MismatchError means "not my format" and is expected; any other error is
// an internal problem with the tester or the file.
package tester

import (
	"context"
	"errors"
	"fmt"
)

// Tester recognizes one format. Implementations are stateless and may be
// invoked repeatedly on different files.
type Tester interface {
	// Name is the identifier used in order configurations.
	Name() string
	// Test inspects the file at path.
	Test(ctx context.Context, path string, opts Options) (Detection, error)
}

// Options carry the run settings every tester honors.
type Options struct {
	// FullRead lifts the record budget.
	FullRead bool
	// RecordBudget is the maximum number of records a tester reads when
	// FullRead is unset.
	RecordBudget int
	// ScratchDir is a run-scoped directory testers may write to.
	ScratchDir string
}

// Exhausted reports whether a tester that has read records records must stop.
func (o Options) Exhausted(records int) bool {
	return !o.FullRead && o.RecordBudget > 0 && records >= o.RecordBudget
}

// Detection is a positive result. Empty is set for zero-length inputs,
// which carry no label.
type Detection struct {
	Label string
	ID    string
	Empty bool
}

// MismatchKind categorizes why a tester rejected a file.
type MismatchKind string

const (
	MismatchEmpty  MismatchKind = "empty"
	MismatchMagic  MismatchKind = "magic"
	MismatchHeader MismatchKind = "header"
	MismatchRecord MismatchKind = "record"
	MismatchTool   MismatchKind = "tool"
)

// MismatchError reports that a file is not in the tester's format.
type MismatchError struct {
	// Kind categorizes the failure.
	Kind MismatchKind
	// Line is the 1-based line where parsing failed, or 0.
	Line int
	// Message is the human-readable reason.
	Message string
}

func (e *MismatchError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s mismatch at line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s mismatch: %s", e.Kind, e.Message)
}

// Mismatch creates a MismatchError.
func Mismatch(kind MismatchKind, format string, args ...any) *MismatchError {
	return &MismatchError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// MismatchAt creates a MismatchError pinned to a line.
func MismatchAt(kind MismatchKind, line int, format string, args ...any) *MismatchError {
	return &MismatchError{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// IsMismatch reports whether err is, or wraps, a MismatchError.
func IsMismatch(err error) bool {
	var m *MismatchError
	return errors.As(err, &m)
}

// MismatchKindOf returns the kind of a MismatchError, or "".
func MismatchKindOf(err error) MismatchKind {
	var m *MismatchError
	if errors.As(err, &m) {
		return m.Kind
	}
	return ""
}
