package filesniff

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gobeaver/filesniff/tester"
)

func TestDefaultOrder(t *testing.T) {
	o := DefaultOrder()
	want := []string{"bam", "bcf", "cram", "sam", "vcf", "gff3", "gtf", "bed", "fastq", "fasta"}
	if !reflect.DeepEqual(o.Order, want) {
		t.Errorf("DefaultOrder() = %v, want %v", o.Order, want)
	}

	reg := tester.GetDefaultRegistry()
	listed := map[string]bool{}
	for _, name := range o.Order {
		listed[name] = true
		if !reg.Has(name) {
			t.Errorf("default order names unknown tester %q", name)
		}
	}
	// Every built-in tester is reachable from the default order, except
	// the empty tester (always first) and the gff alias.
	for _, name := range reg.Names() {
		if name == EmptyTesterName || name == "gff" {
			continue
		}
		if !listed[name] {
			t.Errorf("tester %q is registered but missing from the default order", name)
		}
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    []string
		wantErr bool
	}{
		{"list", "order:\n  - fastq\n  - ' fasta '\n", []string{"fastq", "fasta"}, false},
		{"flow list", "order: [sam, tools/x.cwl]\nskip: [sam]\n", []string{"sam", "tools/x.cwl"}, false},
		{"empty document", "", nil, true},
		{"empty order", "order: []\n", nil, true},
		{"blank entry", "order:\n  - fastq\n  - ''\n", nil, true},
		{"unknown field", "order: [fastq]\nmodules: [x]\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := ParseOrder(strings.NewReader(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidOptions) {
					t.Errorf("ParseOrder() error = %v, want ErrInvalidOptions", err)
				}
				return
			}
			if !reflect.DeepEqual(o.Order, tt.want) {
				t.Errorf("Order = %v, want %v", o.Order, tt.want)
			}
		})
	}
}

func TestOrderEffective(t *testing.T) {
	o := &Order{
		Order: []string{"empty", "BAM", "sam", "tools/a.cwl", "gtf", "tools/b.cwl"},
		Skip:  []string{"bam", "tools/*.cwl"},
	}
	got, err := o.Effective()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"sam", "gtf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Effective() = %v, want %v", got, want)
	}

	o.Skip = []string{"{sam,gtf}"}
	got, _ = o.Effective()
	want = []string{"BAM", "tools/a.cwl", "tools/b.cwl"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Effective() = %v, want %v", got, want)
	}
}

func TestLoadOrder(t *testing.T) {
	o, err := LoadOrder("")
	if err != nil || !reflect.DeepEqual(o.Order, DefaultOrder().Order) {
		t.Fatalf("LoadOrder(\"\") = %v, %v", o, err)
	}

	path := filepath.Join(t.TempDir(), "order.yaml")
	if err := os.WriteFile(path, []byte("order: [fasta]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err = LoadOrder(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(o.Order, []string{"fasta"}) {
		t.Errorf("Order = %v", o.Order)
	}

	_, err = LoadOrder(filepath.Join(t.TempDir(), "missing.yaml"))
	var pe *PathError
	if !errors.As(err, &pe) || pe.Op != "open order" {
		t.Errorf("LoadOrder(missing) error = %v, want *PathError", err)
	}
}

func TestOrderMarshalRoundTrip(t *testing.T) {
	o := &Order{Order: []string{"bam", "tools/x.cwl"}, Skip: []string{"gtf"}}
	data, err := o.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	want := "order:\n  - bam\n  - tools/x.cwl\nskip:\n  - gtf\n"
	if string(data) != want {
		t.Errorf("Marshal() = %q, want %q", data, want)
	}

	data, _ = (&Order{Order: []string{"bam"}}).Marshal()
	if strings.Contains(string(data), "skip") {
		t.Errorf("empty skip list should be omitted: %q", data)
	}
}
