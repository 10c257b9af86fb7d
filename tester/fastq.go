package tester

import (
	"context"
	"strings"

	"github.com/gobeaver/filesniff/edam"
)

// FASTQTester recognizes four-line FASTQ records.
type FASTQTester struct {
	// MinQuality and MaxQuality bound the quality characters.
	MinQuality byte
	MaxQuality byte
}

// DefaultFASTQTester accepts any printable quality encoding.
func DefaultFASTQTester() *FASTQTester {
	return &FASTQTester{MinQuality: '!', MaxQuality: '~'}
}

func (t *FASTQTester) Name() string { return "fastq" }

func (t *FASTQTester) Test(ctx context.Context, path string, opts Options) (Detection, error) {
	s, err := openLines(ctx, path)
	if err != nil {
		return Detection{}, err
	}
	defer s.Close()

	records := 0
	for !opts.Exhausted(records) {
		if !s.Next() {
			break
		}
		name := s.Text()
		if name == "" {
			// Trailing blank lines are tolerated.
			continue
		}
		if name[0] != '@' {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "missing prefix ('@')")
		}
		if len(name) == 1 {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "missing read name")
		}

		if !s.Next() {
			return Detection{}, t.truncated(s)
		}
		seq := s.Text()
		if i := strings.IndexFunc(seq, invalidBase); i >= 0 {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "invalid base %q", seq[i])
		}

		if !s.Next() {
			return Detection{}, t.truncated(s)
		}
		if plus := s.Text(); plus == "" || plus[0] != '+' {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "missing separator ('+')")
		} else if len(plus) > 1 && plus[1:] != name[1:] {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "separator name does not match read name")
		}

		if !s.Next() {
			return Detection{}, t.truncated(s)
		}
		qual := s.Text()
		if len(qual) != len(seq) {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "quality length %d does not match sequence length %d", len(qual), len(seq))
		}
		for i := 0; i < len(qual); i++ {
			if qual[i] < t.MinQuality || qual[i] > t.MaxQuality {
				return Detection{}, MismatchAt(MismatchRecord, s.Line(), "invalid quality score %q", qual[i])
			}
		}
		records++
	}
	if err := s.Err(); err != nil {
		return Detection{}, readErr(t.Name(), err)
	}
	if records == 0 {
		return Detection{}, noRecords("FASTQ")
	}
	return Detection{Label: "FASTQ", ID: edam.FASTQ}, nil
}

func (t *FASTQTester) truncated(s *lineScanner) error {
	if err := s.Err(); err != nil {
		return readErr(t.Name(), err)
	}
	return MismatchAt(MismatchRecord, s.Line()+1, "unexpected end of record")
}

func invalidBase(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return false
	case r == '.' || r == '-' || r == '*':
		return false
	default:
		return true
	}
}
