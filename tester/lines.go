package tester

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// maxLineSize bounds a single line; longer lines are treated as a mismatch.
const maxLineSize = 64 << 20

// lineScanner reads a text file line by line, tracking line numbers and
// stripping CR line endings.
type lineScanner struct {
	f    *os.File
	sc   *bufio.Scanner
	ctx  context.Context
	line int
	text string
	err  error
}

func openLines(ctx context.Context, path string) (*lineScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineScanner{f: f, sc: sc, ctx: ctx}, nil
}

func (s *lineScanner) Close() error { return s.f.Close() }

// Next advances to the next line.
func (s *lineScanner) Next() bool {
	if s.err != nil {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if !s.sc.Scan() {
		return false
	}
	s.line++
	s.text = strings.TrimSuffix(s.sc.Text(), "\r")
	return true
}

// Text returns the current line.
func (s *lineScanner) Text() string { return s.text }

// Line returns the current 1-based line number.
func (s *lineScanner) Line() int { return s.line }

// Err returns the first non-EOF error. Over-long lines surface as a
// mismatch rather than an I/O error.
func (s *lineScanner) Err() error {
	if s.err != nil {
		return s.err
	}
	err := s.sc.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		return MismatchAt(MismatchRecord, s.line+1, "line exceeds %d bytes", maxLineSize)
	}
	return err
}

// parseUint parses a non-negative decimal field.
func parseUint(field string) (uint64, error) {
	return strconv.ParseUint(field, 10, 64)
}

// fieldError reports a malformed column.
func fieldError(line int, column, value string) *MismatchError {
	return MismatchAt(MismatchRecord, line, "invalid %s %q", column, value)
}

// noRecords is returned when a file holds headers or comments only.
func noRecords(format string) *MismatchError {
	return Mismatch(MismatchRecord, "no %s records found", format)
}

// readErr wraps a non-mismatch read error with the tester name.
func readErr(name string, err error) error {
	if IsMismatch(err) {
		return err
	}
	return fmt.Errorf("%s: read: %w", name, err)
}
