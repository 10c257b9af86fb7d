package tester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/gobeaver/filesniff/edam"
)

// recordReader is the common surface of the SAM and BAM readers.
type recordReader interface {
	Read() (*sam.Record, error)
}

// readRecords reads up to the record budget and reports how many records
// were read. Parse failures are reported as mismatches.
func readRecords(ctx context.Context, r recordReader, opts Options) (int, error) {
	records := 0
	for !opts.Exhausted(records) {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		// Sampled binary inputs end mid-record.
		if errors.Is(err, io.ErrUnexpectedEOF) && records > 0 {
			break
		}
		if err != nil {
			return records, MismatchAt(MismatchRecord, 0, "record %d: %v", records+1, err)
		}
		records++
	}
	return records, nil
}

// SAMTester recognizes SAM text alignment files.
type SAMTester struct {
	// RequireRecords rejects header-only files.
	RequireRecords bool
}

// DefaultSAMTester accepts header-only SAM files.
func DefaultSAMTester() *SAMTester {
	return &SAMTester{}
}

func (t *SAMTester) Name() string { return "sam" }

func (t *SAMTester) Test(ctx context.Context, path string, opts Options) (Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Detection{}, err
	}
	defer f.Close()

	r, err := sam.NewReader(f)
	if err != nil {
		return Detection{}, Mismatch(MismatchHeader, "%v", err)
	}
	n, err := readRecords(ctx, r, opts)
	if err != nil {
		return Detection{}, err
	}
	if n == 0 && (t.RequireRecords || (len(r.Header().Refs()) == 0 && r.Header().Version == "")) {
		return Detection{}, noRecords("SAM")
	}
	return Detection{Label: "SAM", ID: edam.SAM}, nil
}

// BAMTester recognizes BGZF-compressed BAM files.
type BAMTester struct {
	// Concurrency is the number of BGZF decompression goroutines.
	Concurrency int
}

// DefaultBAMTester decompresses on a single goroutine.
func DefaultBAMTester() *BAMTester {
	return &BAMTester{Concurrency: 1}
}

func (t *BAMTester) Name() string { return "bam" }

func (t *BAMTester) Test(ctx context.Context, path string, opts Options) (Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Detection{}, err
	}
	defer f.Close()

	r, err := bam.NewReader(f, t.Concurrency)
	if err != nil {
		return Detection{}, Mismatch(MismatchMagic, "%v", err)
	}
	defer r.Close()

	if _, err := readRecords(ctx, r, opts); err != nil {
		return Detection{}, fmt.Errorf("bam: %w", err)
	}
	return Detection{Label: "BAM", ID: edam.BAM}, nil
}
