package sniff

import (
	"errors"
	"io"
)

var (
	ErrAlreadyRewound  = errors.New("sniff: reader already rewound")
	ErrUnsupportedSeek = errors.New("sniff: only a rewind to the start is supported")
)

type rewindState uint8

const (
	notYetBuffered rewindState = iota
	bufferedUnread
	rewound
)

// RewindReader lets a caller inspect the head of a non-seekable stream and
// then read the stream from the start. The first Read fills an internal
// buffer with up to len(p) bytes and serves them; only those bytes can be
// replayed. Rewind is allowed exactly once.
type RewindReader struct {
	r      io.Reader
	state  rewindState
	buf    []byte
	cursor int
	err    error
}

// NewRewindReader wraps r.
func NewRewindReader(r io.Reader) *RewindReader {
	return &RewindReader{r: r}
}

func (rr *RewindReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if rr.state == notYetBuffered && rr.buf == nil {
		rr.fill(len(p))
		if rr.state == notYetBuffered {
			rr.state = bufferedUnread
		}
	}

	if rr.cursor < len(rr.buf) {
		n := copy(p, rr.buf[rr.cursor:])
		rr.cursor += n
		return n, nil
	}
	if rr.err != nil {
		return 0, rr.err
	}
	return rr.r.Read(p)
}

// fill reads up to size bytes from the underlying reader. Short reads from
// pipes are retried until size bytes arrive or the stream ends.
func (rr *RewindReader) fill(size int) {
	buf := make([]byte, size)
	n, err := io.ReadFull(rr.r, buf)
	rr.buf = buf[:n]
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		rr.err = io.EOF
	default:
		rr.err = err
	}
}

// Rewind resets the read position to the start of the buffered prefix.
func (rr *RewindReader) Rewind() error {
	if rr.state == rewound {
		return ErrAlreadyRewound
	}
	rr.cursor = 0
	rr.state = rewound
	return nil
}

// Seek supports only Seek(0, io.SeekStart), which is equivalent to Rewind.
func (rr *RewindReader) Seek(offset int64, whence int) (int64, error) {
	if offset != 0 || whence != io.SeekStart {
		return 0, ErrUnsupportedSeek
	}
	if err := rr.Rewind(); err != nil {
		return 0, err
	}
	return 0, nil
}

// Buffered returns the replayable prefix captured by the first Read.
func (rr *RewindReader) Buffered() []byte {
	return rr.buf
}
