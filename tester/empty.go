package tester

import (
	"context"
	"os"
)

// EmptyTester recognizes zero-length files. A match stops dispatch without
// a label.
type EmptyTester struct{}

// DefaultEmptyTester returns the empty-file tester.
func DefaultEmptyTester() *EmptyTester {
	return &EmptyTester{}
}

func (t *EmptyTester) Name() string { return "empty" }

func (t *EmptyTester) Test(_ context.Context, path string, _ Options) (Detection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Detection{}, err
	}
	if info.Size() != 0 {
		return Detection{}, Mismatch(MismatchEmpty, "the file is not empty")
	}
	return Detection{Empty: true}, nil
}
