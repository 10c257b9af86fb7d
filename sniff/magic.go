// Package sniff classifies the compression container of a byte stream from
// its leading bytes and provides the single-rewind reader used to peek at
// non-seekable inputs.
package sniff

import "bytes"

// WindowSize is the number of leading bytes inspected by Detect.
const WindowSize = 100

// Kind is the compression container of an input.
type Kind uint8

const (
	None Kind = iota
	Gzip
	Bzip2
	// BlockGzip is BGZF: gzip members carrying a "BC" extra subfield. Formats
	// built on it (BAM, BCF, tabix-indexed VCF) are read in their container
	// form and never decompressed up front.
	BlockGzip
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case BlockGzip:
		return "bgzf"
	default:
		return "unknown"
	}
}

// Decodable reports whether the container is decompressed before testing.
func (k Kind) Decodable() bool {
	return k == Gzip || k == Bzip2
}

// Signature is a container magic number at a fixed offset.
type Signature struct {
	Name   string
	Offset int
	Magic  []byte
	Kind   Kind
}

// signatures are checked in order. Containers with Kind None are recognized
// only so the caller can name them when declining.
var signatures = []Signature{
	{Name: "gzip", Offset: 0, Magic: []byte{0x1F, 0x8B}, Kind: Gzip},
	{Name: "bzip2", Offset: 0, Magic: []byte("BZh"), Kind: Bzip2},
	{Name: "xz", Offset: 0, Magic: []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}, Kind: None},
	{Name: "zstd", Offset: 0, Magic: []byte{0x28, 0xB5, 0x2F, 0xFD}, Kind: None},
	{Name: "lz4", Offset: 0, Magic: []byte{0x04, 0x22, 0x4D, 0x18}, Kind: None},
	{Name: "zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x03, 0x04}, Kind: None},
	{Name: "7z", Offset: 0, Magic: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}, Kind: None},
	{Name: "rar", Offset: 0, Magic: []byte("Rar!\x1a\x07"), Kind: None},
}

// Detection is the outcome of Detect.
type Detection struct {
	Kind Kind
	// Container names the matched signature, including containers that are
	// recognized but not supported. Empty when nothing matched.
	Container string
}

// Supported reports whether a supported container was recognized.
func (d Detection) Supported() bool {
	return d.Kind != None
}

// Detect classifies prefix, normally the first WindowSize bytes of an input.
func Detect(prefix []byte) Detection {
	sig, ok := matchSignature(prefix)
	if !ok {
		return Detection{Kind: None}
	}
	d := Detection{Kind: sig.Kind, Container: sig.Name}
	if d.Kind == Gzip && IsBlockGzip(prefix) {
		d.Kind = BlockGzip
		d.Container = "bgzf"
	}
	return d
}

func matchSignature(data []byte) (Signature, bool) {
	for _, sig := range signatures {
		end := sig.Offset + len(sig.Magic)
		if end > len(data) {
			continue
		}
		if bytes.Equal(data[sig.Offset:end], sig.Magic) {
			return sig, true
		}
	}
	return Signature{}, false
}

// BGZF header layout: FLG at 3, XLEN at 10-11, then the first extra subfield
// with SI1 'B', SI2 'C' and SLEN 2.
const (
	gzipFlagOffset = 3
	gzipFlagExtra  = 0x04
	bgzfSI1Offset  = 12
	bgzfSI2Offset  = 13
	bgzfSLenOffset = 14
)

// IsBlockGzip reports whether a gzip prefix carries the BGZF extra subfield.
func IsBlockGzip(prefix []byte) bool {
	if len(prefix) <= bgzfSLenOffset {
		return false
	}
	return prefix[0] == 0x1F && prefix[1] == 0x8B &&
		prefix[gzipFlagOffset]&gzipFlagExtra != 0 &&
		prefix[bgzfSI1Offset] == 'B' &&
		prefix[bgzfSI2Offset] == 'C' &&
		prefix[bgzfSLenOffset] == 0x02
}
