package tester

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"

	"github.com/gobeaver/filesniff/edam"
)

var (
	bcfMagic  = []byte("BCF")
	cramMagic = []byte("CRAM")
)

// BCFTester recognizes BGZF-compressed binary VCF files.
type BCFTester struct {
	// MaxHeaderSize rejects implausible header lengths before allocating.
	MaxHeaderSize uint32
	Concurrency   int
}

// DefaultBCFTester allows headers up to 256 MiB.
func DefaultBCFTester() *BCFTester {
	return &BCFTester{MaxHeaderSize: 256 << 20, Concurrency: 1}
}

func (t *BCFTester) Name() string { return "bcf" }

func (t *BCFTester) Test(ctx context.Context, path string, opts Options) (Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Detection{}, err
	}
	defer f.Close()

	r, err := bgzf.NewReader(f, t.Concurrency)
	if err != nil {
		return Detection{}, Mismatch(MismatchMagic, "not a BGZF stream: %v", err)
	}
	defer r.Close()

	var magic [5]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Detection{}, Mismatch(MismatchMagic, "short BCF magic: %v", err)
	}
	if !bytes.Equal(magic[:3], bcfMagic) || magic[3] != 2 {
		return Detection{}, Mismatch(MismatchMagic, "invalid BCF magic %q", magic[:])
	}

	var textLen uint32
	if err := binary.Read(r, binary.LittleEndian, &textLen); err != nil {
		return Detection{}, Mismatch(MismatchHeader, "missing header length: %v", err)
	}
	if textLen > t.MaxHeaderSize {
		return Detection{}, Mismatch(MismatchHeader, "header length %d exceeds limit", textLen)
	}
	text := make([]byte, textLen)
	if _, err := io.ReadFull(r, text); err != nil {
		return Detection{}, Mismatch(MismatchHeader, "truncated header: %v", err)
	}
	if !bytes.HasPrefix(text, []byte("##fileformat=VCF")) {
		return Detection{}, Mismatch(MismatchHeader, "header does not declare a VCF file format")
	}

	records := 0
	for !opts.Exhausted(records) {
		if err := ctx.Err(); err != nil {
			return Detection{}, err
		}
		var lens [2]uint32
		err := binary.Read(r, binary.LittleEndian, &lens)
		if errors.Is(err, io.EOF) || (records > 0 && errors.Is(err, io.ErrUnexpectedEOF)) {
			break
		}
		if err != nil {
			return Detection{}, Mismatch(MismatchRecord, "record %d: truncated length prefix", records+1)
		}
		size := int64(lens[0]) + int64(lens[1])
		if n, err := io.CopyN(io.Discard, r, size); err != nil {
			// A sample may end inside the last record.
			if records > 0 && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
				break
			}
			return Detection{}, Mismatch(MismatchRecord, "record %d: expected %d bytes, got %d", records+1, size, n)
		}
		records++
	}
	return Detection{Label: "BCF", ID: edam.BCF}, nil
}

// CRAMTester checks the CRAM file definition: magic, version and file id.
type CRAMTester struct {
	// MajorVersions lists accepted major format versions.
	MajorVersions []byte
}

// DefaultCRAMTester accepts CRAM 2.x and 3.x.
func DefaultCRAMTester() *CRAMTester {
	return &CRAMTester{MajorVersions: []byte{2, 3}}
}

func (t *CRAMTester) Name() string { return "cram" }

// cramDefinitionSize is magic (4) + major (1) + minor (1) + file id (20).
const cramDefinitionSize = 26

func (t *CRAMTester) Test(_ context.Context, path string, _ Options) (Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Detection{}, err
	}
	defer f.Close()

	def := make([]byte, cramDefinitionSize)
	if _, err := io.ReadFull(f, def); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Detection{}, Mismatch(MismatchMagic, "file shorter than a CRAM file definition")
		}
		return Detection{}, fmt.Errorf("cram: read: %w", err)
	}
	if !bytes.Equal(def[:4], cramMagic) {
		return Detection{}, Mismatch(MismatchMagic, "invalid CRAM magic %q", def[:4])
	}
	if !bytes.Contains(t.MajorVersions, def[4:5]) {
		return Detection{}, Mismatch(MismatchHeader, "unsupported CRAM version %d.%d", def[4], def[5])
	}
	return Detection{Label: "CRAM", ID: edam.CRAM}, nil
}
