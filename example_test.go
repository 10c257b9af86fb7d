package filesniff_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobeaver/filesniff"
)

func ExampleClassifier_Classify() {
	dir, _ := os.MkdirTemp("", "example")
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "reads.fq")
	_ = os.WriteFile(path, []byte("@r1\nACGT\n+\nIIII\n"), 0o644)

	c, err := filesniff.New(filesniff.WithRecordBudget(100))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer c.Close()

	res, err := c.Classify(context.Background(), path)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Label)
	fmt.Println(res.ID)
	// Output:
	// FASTQ
	// http://edamontology.org/format_1930
}

func ExampleEncode() {
	results := []*filesniff.Result{
		{Input: "reads.fq.gz", OK: true, Label: "FASTQ", ID: "http://edamontology.org/format_1930"},
		{Input: "notes.txt", OK: true},
	}
	_ = filesniff.Encode(os.Stdout, results, filesniff.FormatTSV)
	// Output:
	// File Path	Edam ID	Label
	// reads.fq.gz	http://edamontology.org/format_1930	FASTQ
	// notes.txt
}

func ExampleOrder_Marshal() {
	order := &filesniff.Order{
		Order: []string{"bam", "sam", "tools/custom.cwl"},
		Skip:  []string{"*.cwl"},
	}
	data, _ := order.Marshal()
	fmt.Print(string(data))
	// Output:
	// order:
	//   - bam
	//   - sam
	//   - tools/custom.cwl
	// skip:
	//   - '*.cwl'
}
