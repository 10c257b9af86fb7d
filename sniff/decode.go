package sniff

import (
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// NewDecoder returns a reader producing the decompressed content of r.
// Only Gzip and Bzip2 are decoded; BlockGzip inputs are handed to testers
// in their container form.
func NewDecoder(kind Kind, r io.Reader) (io.ReadCloser, error) {
	switch kind {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("sniff: open gzip stream: %w", err)
		}
		return zr, nil
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("sniff: no decoder for %s", kind)
	}
}
