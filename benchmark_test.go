package filesniff

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func BenchmarkClassify(b *testing.B) {
	content := fastqRecords(5000)
	inputs := map[string][]byte{
		"plain": []byte(content),
		"gzip":  gzipBytes(b, content),
	}
	budgets := map[string][]Option{
		"sampled":   {WithRecordBudget(100)},
		"full_read": {WithFullRead(true)},
	}

	for inputName, data := range inputs {
		path := filepath.Join(b.TempDir(), "input")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			b.Fatal(err)
		}
		for budgetName, opts := range budgets {
			b.Run(inputName+"/"+budgetName, func(b *testing.B) {
				c, err := New(opts...)
				if err != nil {
					b.Fatalf("Failed to create classifier: %v", err)
				}
				defer c.Close()

				ctx := context.Background()
				b.SetBytes(int64(len(data)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					res, err := c.Classify(ctx, path)
					if err != nil {
						b.Fatal(err)
					}
					if res.Label != "FASTQ" {
						b.Fatalf("Label = %q", res.Label)
					}
				}
			})
		}
	}
}
