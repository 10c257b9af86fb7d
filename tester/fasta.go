package tester

import (
	"context"
	"strings"

	"github.com/gobeaver/filesniff/edam"
)

// FASTATester recognizes FASTA sequence files.
type FASTATester struct {
	// Residues lists the characters accepted in sequence lines in addition
	// to ASCII letters.
	Residues string
}

// DefaultFASTATester accepts letters plus gap, stop and padding symbols.
func DefaultFASTATester() *FASTATester {
	return &FASTATester{Residues: "*-."}
}

func (t *FASTATester) Name() string { return "fasta" }

func (t *FASTATester) Test(ctx context.Context, path string, opts Options) (Detection, error) {
	s, err := openLines(ctx, path)
	if err != nil {
		return Detection{}, err
	}
	defer s.Close()

	records := 0
	inRecord := false
	for s.Next() {
		line := s.Text()
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if opts.Exhausted(records) {
				break
			}
			if strings.TrimSpace(line[1:]) == "" {
				return Detection{}, MismatchAt(MismatchRecord, s.Line(), "missing record name")
			}
			records++
			inRecord = true
			continue
		}
		if !inRecord {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "missing prefix ('>')")
		}
		if i := strings.IndexFunc(line, t.invalidResidue); i >= 0 {
			return Detection{}, MismatchAt(MismatchRecord, s.Line(), "invalid residue %q", line[i])
		}
	}
	if err := s.Err(); err != nil {
		return Detection{}, readErr(t.Name(), err)
	}
	if records == 0 {
		return Detection{}, noRecords("FASTA")
	}
	return Detection{Label: "FASTA", ID: edam.FASTA}, nil
}

func (t *FASTATester) invalidResidue(r rune) bool {
	if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
		return false
	}
	return !strings.ContainsRune(t.Residues, r)
}
