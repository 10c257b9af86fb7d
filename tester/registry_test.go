package tester

import "testing"

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, name := range []string{"empty", "bam", "bcf", "cram", "sam", "vcf", "gff3", "gff", "gtf", "bed", "fastq", "fasta"} {
		if !r.Has(name) {
			t.Errorf("DefaultRegistry() missing tester %q", name)
		}
	}

	gff, _ := r.Get("gff")
	gff3, _ := r.Get("GFF3")
	if gff != gff3 {
		t.Error("gff alias does not resolve to the gff3 tester")
	}
}

func TestRegistryOperations(t *testing.T) {
	r := NewRegistry()
	if r.Count() != 0 {
		t.Fatalf("NewRegistry().Count() = %d, want 0", r.Count())
	}

	r.Register(DefaultFASTATester())
	if _, ok := r.Get("FASTA"); !ok {
		t.Error("Get() should be case-insensitive")
	}

	clone := r.Clone()
	clone.Unregister("fasta")
	if !r.Has("fasta") {
		t.Error("Unregister() on a clone modified the original")
	}
	if clone.Has("fasta") {
		t.Error("Unregister() did not remove the tester")
	}

	r.Register(DefaultBEDTester())
	names := r.Names()
	if len(names) != 2 || names[0] != "bed" || names[1] != "fasta" {
		t.Errorf("Names() = %v, want [bed fasta]", names)
	}
}

func TestGetDefaultRegistryShared(t *testing.T) {
	if GetDefaultRegistry() != GetDefaultRegistry() {
		t.Error("GetDefaultRegistry() returned different instances")
	}
}
