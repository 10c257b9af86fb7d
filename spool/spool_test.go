package spool

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(t.TempDir(), "filesniff", nil)
	require.NoError(t, err)
	return ws
}

func fastqRecords(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "read%d\nACGT\n+\nIIII\n", i)
	}
	return b.String()
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func TestSpoolLinesBounded(t *testing.T) {
	ws := newTestWorkspace(t)

	s, err := ws.SpoolLines(strings.NewReader(fastqRecords(10)), Bounded(4))
	require.NoError(t, err)

	assert.Equal(t, 16, s.Lines)
	assert.True(t, s.Truncated)
	assert.Len(t, readLines(t, s.Path), 16)
}

func TestSpoolLinesHeaderExemption(t *testing.T) {
	ws := newTestWorkspace(t)

	var in strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&in, "##meta%d\n", i)
	}
	in.WriteString(fastqRecords(10))

	s, err := ws.SpoolLines(strings.NewReader(in.String()), Bounded(1))
	require.NoError(t, err)

	// 5 exempt header lines plus 4 counted lines.
	assert.Equal(t, 9, s.Lines)
	lines := readLines(t, s.Path)
	assert.Equal(t, "##meta0\n", lines[0])
	assert.Equal(t, "IIII\n", lines[8])
}

func TestSpoolLinesHeaderExemptionCap(t *testing.T) {
	ws := newTestWorkspace(t)

	var in strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&in, "#h%d\n", i)
	}

	s, err := ws.SpoolLines(strings.NewReader(in.String()), Bounded(1))
	require.NoError(t, err)

	// 20 exempt, then 4 header lines count against the budget.
	assert.Equal(t, MaxHeaderLines+LinesPerRecord, s.Lines)
	assert.True(t, s.Truncated)
}

func TestSpoolLinesAtSign(t *testing.T) {
	ws := newTestWorkspace(t)

	// FASTQ names start with '@' and are exempt while under the cap.
	in := strings.Repeat("@r\nACGT\n+\nIIII\n", 10)
	s, err := ws.SpoolLines(strings.NewReader(in), Bounded(1))
	require.NoError(t, err)

	lines := readLines(t, s.Path)
	counted := 0
	for _, l := range lines {
		if l[0] != '@' {
			counted++
		}
	}
	assert.Equal(t, LinesPerRecord, counted)
}

func TestSpoolLinesShortInput(t *testing.T) {
	ws := newTestWorkspace(t)

	in := "chr1\t10\t20\nchr1\t30\t40"
	s, err := ws.SpoolLines(strings.NewReader(in), Bounded(100))
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Equal(t, in, string(data))
	assert.False(t, s.Truncated)
	assert.Equal(t, 2, s.Lines)
}

func TestSpoolLinesExactBudgetNotTruncated(t *testing.T) {
	ws := newTestWorkspace(t)

	s, err := ws.SpoolLines(strings.NewReader(fastqRecords(2)), Bounded(2))
	require.NoError(t, err)
	assert.Equal(t, 8, s.Lines)
	assert.False(t, s.Truncated)
}

func TestSpoolLinesUnbounded(t *testing.T) {
	ws := newTestWorkspace(t)

	in := fastqRecords(500)
	s, err := ws.SpoolLines(strings.NewReader(in), Full())
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Equal(t, in, string(data))
	assert.Equal(t, fmt.Sprintf("%016x", xxhash.Sum64String(in)), s.Digest)
}

func TestSpoolBytes(t *testing.T) {
	payload := bytes.Repeat([]byte{0x00, 0xFF, 0x42}, 1000)

	tests := []struct {
		name          string
		policy        Policy
		wantBytes     int64
		wantTruncated bool
	}{
		{"bounded", Bounded(2), 2 * BytesPerRecord, true},
		{"bounded beyond input", Bounded(1000), int64(len(payload)), false},
		{"unbounded", Full(), int64(len(payload)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newTestWorkspace(t)
			s, err := ws.SpoolBytes(bytes.NewReader(payload), tt.policy)
			require.NoError(t, err)

			assert.Equal(t, tt.wantBytes, s.Bytes)
			assert.Equal(t, tt.wantTruncated, s.Truncated)

			data, err := os.ReadFile(s.Path)
			require.NoError(t, err)
			assert.Equal(t, payload[:tt.wantBytes], data)
		})
	}
}

func TestSpoolRejectsNonPositiveBudget(t *testing.T) {
	ws := newTestWorkspace(t)
	_, err := ws.SpoolLines(strings.NewReader("x\n"), Bounded(0))
	assert.Error(t, err)
	_, err = ws.SpoolBytes(strings.NewReader("x"), Bounded(-1))
	assert.Error(t, err)
}

func TestWorkspaceLifecycle(t *testing.T) {
	t.Run("temp dir is removed", func(t *testing.T) {
		ws, err := NewWorkspace("", "filesniff", nil)
		require.NoError(t, err)
		assert.False(t, ws.Keep())
		assert.True(t, strings.HasPrefix(filepath.Base(ws.Dir()), "filesniff_"))

		_, err = ws.SpoolLines(strings.NewReader("a\n"), Full())
		require.NoError(t, err)

		require.NoError(t, ws.Close())
		_, err = os.Stat(ws.Dir())
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("cache dir is kept", func(t *testing.T) {
		cache := filepath.Join(t.TempDir(), "cache")
		ws, err := NewWorkspace(cache, "filesniff", nil)
		require.NoError(t, err)
		assert.True(t, ws.Keep())
		assert.Equal(t, cache, filepath.Dir(ws.Dir()))

		require.NoError(t, ws.Close())
		_, err = os.Stat(ws.Dir())
		assert.NoError(t, err)
	})
}
