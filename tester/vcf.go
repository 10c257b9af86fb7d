package tester

import (
	"context"
	"strings"

	"github.com/gobeaver/filesniff/edam"
)

var vcfHeaderColumns = []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

// VCFTester recognizes plain-text VCF files.
type VCFTester struct{}

// DefaultVCFTester returns the VCF tester.
func DefaultVCFTester() *VCFTester {
	return &VCFTester{}
}

func (t *VCFTester) Name() string { return "vcf" }

func (t *VCFTester) Test(ctx context.Context, path string, opts Options) (Detection, error) {
	s, err := openLines(ctx, path)
	if err != nil {
		return Detection{}, err
	}
	defer s.Close()

	if !s.Next() {
		if err := s.Err(); err != nil {
			return Detection{}, readErr(t.Name(), err)
		}
		return Detection{}, Mismatch(MismatchHeader, "missing fileformat line")
	}
	if !strings.HasPrefix(s.Text(), "##fileformat=VCF") {
		return Detection{}, MismatchAt(MismatchHeader, s.Line(), "first line must declare ##fileformat=VCF")
	}

	columns := 0
	for s.Next() {
		line := s.Text()
		if strings.HasPrefix(line, "##") {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			return Detection{}, MismatchAt(MismatchHeader, s.Line(), "missing #CHROM header line")
		}
		fields := strings.Split(line, "\t")
		if len(fields) < len(vcfHeaderColumns) {
			return Detection{}, MismatchAt(MismatchHeader, s.Line(), "header line has %d columns, want at least %d", len(fields), len(vcfHeaderColumns))
		}
		for i, want := range vcfHeaderColumns {
			if fields[i] != want {
				return Detection{}, MismatchAt(MismatchHeader, s.Line(), "header column %d is %q, want %q", i+1, fields[i], want)
			}
		}
		if len(fields) > len(vcfHeaderColumns) && fields[len(vcfHeaderColumns)] != "FORMAT" {
			return Detection{}, MismatchAt(MismatchHeader, s.Line(), "sample columns require FORMAT")
		}
		columns = len(fields)
		break
	}
	if columns == 0 {
		if err := s.Err(); err != nil {
			return Detection{}, readErr(t.Name(), err)
		}
		return Detection{}, Mismatch(MismatchHeader, "missing #CHROM header line")
	}

	records := 0
	for !opts.Exhausted(records) && s.Next() {
		line := s.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != columns {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "record has %d columns, header has %d", len(fields), columns)
		}
		if fields[0] == "" {
			return Detection{}, fieldError(s.Line(), "CHROM", fields[0])
		}
		if _, err := parseUint(fields[1]); err != nil {
			return Detection{}, fieldError(s.Line(), "POS", fields[1])
		}
		if fields[3] == "" || strings.IndexFunc(fields[3], invalidBase) >= 0 {
			return Detection{}, fieldError(s.Line(), "REF", fields[3])
		}
		records++
	}
	if err := s.Err(); err != nil {
		return Detection{}, readErr(t.Name(), err)
	}
	return Detection{Label: "VCF", ID: edam.VCF}, nil
}
