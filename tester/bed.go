package tester

import (
	"context"
	"strings"

	"github.com/gobeaver/filesniff/edam"
)

// BEDTester recognizes BED interval files (BED3 through BED12).
type BEDTester struct{}

// DefaultBEDTester returns the BED tester.
func DefaultBEDTester() *BEDTester {
	return &BEDTester{}
}

func (t *BEDTester) Name() string { return "bed" }

func (t *BEDTester) Test(ctx context.Context, path string, opts Options) (Detection, error) {
	s, err := openLines(ctx, path)
	if err != nil {
		return Detection{}, err
	}
	defer s.Close()

	records := 0
	for !opts.Exhausted(records) && s.Next() {
		line := s.Text()
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 || len(fields) > 12 {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "expected 3 to 12 tab-separated columns, got %d", len(fields))
		}
		if fields[0] == "" {
			return Detection{}, fieldError(s.Line(), "chrom", fields[0])
		}
		start, err := parseUint(fields[1])
		if err != nil {
			return Detection{}, fieldError(s.Line(), "chromStart", fields[1])
		}
		end, err := parseUint(fields[2])
		if err != nil {
			return Detection{}, fieldError(s.Line(), "chromEnd", fields[2])
		}
		if start > end {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "chromStart %d is after chromEnd %d", start, end)
		}
		if len(fields) >= 6 && !validStrand(fields[5]) {
			return Detection{}, fieldError(s.Line(), "strand", fields[5])
		}
		records++
	}
	if err := s.Err(); err != nil {
		return Detection{}, readErr(t.Name(), err)
	}
	if records == 0 {
		return Detection{}, noRecords("BED")
	}
	return Detection{Label: "BED", ID: edam.BED}, nil
}

func validStrand(s string) bool {
	switch s {
	case "+", "-", ".":
		return true
	default:
		return false
	}
}
