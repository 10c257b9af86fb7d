package spool

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

const (
	// LinesPerRecord is the line count of one record in line-oriented formats.
	LinesPerRecord = 4
	// BytesPerRecord is the byte allowance per record when sampling binary
	// streams. A truncated binary spool is not guaranteed to end on a
	// record boundary.
	BytesPerRecord = 100
	// MaxHeaderLines caps how many header lines are exempt from the line
	// count.
	MaxHeaderLines = 20
)

// Policy bounds how much of a stream is spooled.
type Policy struct {
	// Unbounded copies the whole stream.
	Unbounded bool
	// Records is the record budget when bounded.
	Records int
}

// Full returns an unbounded policy.
func Full() Policy { return Policy{Unbounded: true} }

// Bounded returns a policy limited to n records.
func Bounded(n int) Policy { return Policy{Records: n} }

func (p Policy) byteLimit() int64 { return int64(p.Records) * BytesPerRecord }
func (p Policy) lineLimit() int   { return p.Records * LinesPerRecord }

// Spool describes a file written into a workspace.
type Spool struct {
	Path string
	// Bytes is the number of bytes written.
	Bytes int64
	// Lines is the number of lines written, counted or exempt. Zero for
	// binary spools.
	Lines int
	// Truncated is set when the bound was reached before EOF was seen.
	Truncated bool
	// Digest is the hex xxhash64 of the spooled content.
	Digest string
}

// SpoolBytes copies r verbatim into a new workspace file, limited to
// Records*BytesPerRecord bytes when the policy is bounded.
func (w *Workspace) SpoolBytes(r io.Reader, p Policy) (*Spool, error) {
	if !p.Unbounded && p.Records <= 0 {
		return nil, errors.New("spool: record budget must be positive")
	}
	f, err := w.CreateTemp("spool-*.bin")
	if err != nil {
		return nil, fmt.Errorf("spool: create file: %w", err)
	}
	defer f.Close()

	h := xxhash.New()
	dst := io.MultiWriter(f, h)

	s := &Spool{Path: f.Name()}
	if p.Unbounded {
		s.Bytes, err = io.Copy(dst, r)
	} else {
		s.Bytes, err = io.CopyN(dst, r, p.byteLimit())
		if err == nil {
			s.Truncated = true
		} else if errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("spool: copy: %w", err)
	}
	s.Digest = fmt.Sprintf("%016x", h.Sum64())
	w.log.Debug("spooled binary stream", "path", s.Path, "bytes", s.Bytes, "truncated", s.Truncated, "xxhash", s.Digest)
	return s, nil
}

// SpoolLines copies r line by line into a new workspace file. Lines starting
// with '#' or '@' are exempt from the count until MaxHeaderLines exemptions
// were granted; every line read is written. A bounded policy stops after
// Records*LinesPerRecord counted lines.
func (w *Workspace) SpoolLines(r io.Reader, p Policy) (*Spool, error) {
	if !p.Unbounded && p.Records <= 0 {
		return nil, errors.New("spool: record budget must be positive")
	}
	f, err := w.CreateTemp("spool-*.txt")
	if err != nil {
		return nil, fmt.Errorf("spool: create file: %w", err)
	}
	defer f.Close()

	h := xxhash.New()
	bw := bufio.NewWriter(io.MultiWriter(f, h))
	br := bufio.NewReader(r)

	s := &Spool{Path: f.Name()}
	counted, exempt := 0, 0
	limit := p.lineLimit()
	for {
		if !p.Unbounded && counted >= limit {
			// Stopped by the bound; truncated only if input remains.
			if _, err := br.Peek(1); err == nil {
				s.Truncated = true
			}
			break
		}
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if isHeaderLine(line) && exempt < MaxHeaderLines {
				exempt++
			} else {
				counted++
			}
			n, werr := bw.Write(line)
			s.Bytes += int64(n)
			s.Lines++
			if werr != nil {
				return nil, fmt.Errorf("spool: write: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("spool: read: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("spool: flush: %w", err)
	}
	s.Digest = fmt.Sprintf("%016x", h.Sum64())
	w.log.Debug("spooled text stream", "path", s.Path, "lines", s.Lines, "bytes", s.Bytes, "truncated", s.Truncated, "xxhash", s.Digest)
	return s, nil
}

func isHeaderLine(line []byte) bool {
	return line[0] == '#' || line[0] == '@'
}
