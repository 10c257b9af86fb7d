package tester

import (
	"context"
	"strconv"
	"strings"

	"github.com/gobeaver/filesniff/edam"
)

// attributeStyle distinguishes the ninth column of GFF3 from GTF.
type attributeStyle int

const (
	// gff3Attributes is tag=value;tag=value.
	gff3Attributes attributeStyle = iota
	// gtfAttributes is tag "value"; tag "value";
	gtfAttributes
)

// FeatureTester recognizes the nine-column GFF family.
type FeatureTester struct {
	name      string
	label     string
	id        string
	style     attributeStyle
	directive string
}

// DefaultGFF3Tester recognizes GFF3.
func DefaultGFF3Tester() *FeatureTester {
	return &FeatureTester{name: "gff3", label: "GFF3", id: edam.GFF3, style: gff3Attributes, directive: "3"}
}

// DefaultGTFTester recognizes GTF (GFF2.5).
func DefaultGTFTester() *FeatureTester {
	return &FeatureTester{name: "gtf", label: "GTF", id: edam.GTF, style: gtfAttributes}
}

func (t *FeatureTester) Name() string { return t.name }

func (t *FeatureTester) Test(ctx context.Context, path string, opts Options) (Detection, error) {
	s, err := openLines(ctx, path)
	if err != nil {
		return Detection{}, err
	}
	defer s.Close()

	records := 0
	for !opts.Exhausted(records) && s.Next() {
		line := s.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "##") {
			if strings.HasPrefix(line, "##FASTA") {
				break
			}
			if err := t.checkDirective(line, s.Line()); err != nil {
				return Detection{}, err
			}
			continue
		}
		if line[0] == '#' {
			continue
		}
		if err := t.checkFeature(line, s.Line()); err != nil {
			return Detection{}, err
		}
		records++
	}
	if err := s.Err(); err != nil {
		return Detection{}, readErr(t.Name(), err)
	}
	if records == 0 {
		return Detection{}, noRecords(t.label)
	}
	return Detection{Label: t.label, ID: t.id}, nil
}

func (t *FeatureTester) checkDirective(line string, n int) error {
	rest, ok := strings.CutPrefix(line, "##gff-version")
	if !ok {
		return nil
	}
	version := strings.TrimSpace(rest)
	if t.directive == "" {
		return MismatchAt(MismatchHeader, n, "unexpected gff-version directive %q", version)
	}
	if version != t.directive && !strings.HasPrefix(version, t.directive+".") {
		return MismatchAt(MismatchHeader, n, "unsupported gff-version %q", version)
	}
	return nil
}

func (t *FeatureTester) checkFeature(line string, n int) error {
	fields := strings.Split(line, "\t")
	if len(fields) != 9 {
		return MismatchAt(MismatchRecord, n, "expected 9 tab-separated columns, got %d", len(fields))
	}
	if fields[0] == "" {
		return fieldError(n, "seqid", fields[0])
	}
	start, err := parseUint(fields[3])
	if err != nil || start == 0 {
		return fieldError(n, "start", fields[3])
	}
	end, err := parseUint(fields[4])
	if err != nil || end < start {
		return fieldError(n, "end", fields[4])
	}
	if fields[5] != "." {
		if _, err := strconv.ParseFloat(fields[5], 64); err != nil {
			return fieldError(n, "score", fields[5])
		}
	}
	switch fields[6] {
	case "+", "-", ".", "?":
	default:
		return fieldError(n, "strand", fields[6])
	}
	switch fields[7] {
	case ".", "0", "1", "2":
	default:
		return fieldError(n, "phase", fields[7])
	}
	if !t.validAttributes(fields[8]) {
		return fieldError(n, "attributes", fields[8])
	}
	return nil
}

func (t *FeatureTester) validAttributes(col string) bool {
	if col == "." {
		return t.style == gff3Attributes
	}
	entries := 0
	for _, entry := range strings.Split(col, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entries++
		switch t.style {
		case gff3Attributes:
			tag, _, ok := strings.Cut(entry, "=")
			if !ok || tag == "" {
				return false
			}
		case gtfAttributes:
			tag, value, ok := strings.Cut(entry, " ")
			if !ok || tag == "" || strings.Contains(tag, "=") || strings.TrimSpace(value) == "" {
				return false
			}
		}
	}
	return entries > 0
}
