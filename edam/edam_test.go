package edam

import (
	"strings"
	"testing"
)

func TestDefaultVocabulary(t *testing.T) {
	v := Default()
	if v.Len() == 0 {
		t.Fatal("embedded vocabulary is empty")
	}

	builtins := map[string]string{
		PlainText: "plain text format (unformatted)",
		FASTA:     "FASTA",
		FASTQ:     "FASTQ",
		SAM:       "SAM",
		BAM:       "BAM",
		CRAM:      "CRAM",
		VCF:       "VCF",
		BCF:       "BCF",
		BED:       "BED",
		GFF3:      "GFF3",
		GTF:       "GTF",
		GZIP:      "GZIP format",
	}
	for id, want := range builtins {
		got, ok := v.LabelForID(id)
		if !ok || got != want {
			t.Errorf("LabelForID(%q) = %q, %v; want %q", id, got, ok, want)
		}
	}
}

func TestLookups(t *testing.T) {
	v := Default()

	tests := []struct {
		name  string
		id    string
		label string
		want  bool
	}{
		{"full id", "http://edamontology.org/format_2573", "SAM", true},
		{"short id", "format_2573", "SAM", true},
		{"mismatched pair", "format_2573", "BAM", false},
		{"unknown id", "format_9999", "SAM", false},
		{"label with spaces", "format_1964", " plain text format (unformatted) ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Correspond(tt.id, tt.label); got != tt.want {
				t.Errorf("Correspond(%q, %q) = %v, want %v", tt.id, tt.label, got, tt.want)
			}
		})
	}

	if id, ok := v.IDForLabel("FASTQ"); !ok || id != FASTQ {
		t.Errorf("IDForLabel(FASTQ) = %q, %v", id, ok)
	}
	if _, ok := v.IDForLabel("custom tool output"); ok {
		t.Error("IDForLabel() found an unknown label")
	}
}

func TestLoad(t *testing.T) {
	in := "Class ID,Preferred Label\nformat_0001,One\n,missing id\nhttp://edamontology.org/format_0002,Two\nbroken\n"
	v, err := Load(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Len())
	}
	if label, _ := v.LabelForID("format_0002"); label != "Two" {
		t.Errorf("LabelForID(format_0002) = %q", label)
	}

	if _, err := Load(strings.NewReader("")); err == nil {
		t.Error("Load() of empty input expected error")
	}
}
