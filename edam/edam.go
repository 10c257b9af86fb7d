// Package edam maps EDAM format identifiers to their preferred labels.
package edam

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prefix is the namespace of full EDAM identifiers.
const Prefix = "http://edamontology.org/"

// Identifiers of the formats filesniff reports itself.
const (
	PlainText = Prefix + "format_1964"
	FASTA     = Prefix + "format_1929"
	FASTQ     = Prefix + "format_1930"
	SAM       = Prefix + "format_2573"
	BAM       = Prefix + "format_2572"
	CRAM      = Prefix + "format_3462"
	VCF       = Prefix + "format_3016"
	BCF       = Prefix + "format_3020"
	BED       = Prefix + "format_3003"
	GFF3      = Prefix + "format_1975"
	GTF       = Prefix + "format_2306"
	GZIP      = Prefix + "format_3989"
)

//go:embed formats.csv
var formatsCSV []byte

// Vocabulary is a bidirectional id/label table.
type Vocabulary struct {
	labels map[string]string // id -> label
	ids    map[string]string // label -> id
}

// Load reads a two-column CSV (id, label) with a header row.
func Load(r io.Reader) (*Vocabulary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("edam: read header: %w", err)
	}

	v := &Vocabulary{labels: make(map[string]string), ids: make(map[string]string)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("edam: read record: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		id, label := Normalize(rec[0]), strings.TrimSpace(rec[1])
		if id == "" || label == "" {
			continue
		}
		v.labels[id] = label
		v.ids[label] = id
	}
	return v, nil
}

var (
	defaultVocab     *Vocabulary
	defaultVocabOnce sync.Once
)

// Default returns the embedded vocabulary.
func Default() *Vocabulary {
	defaultVocabOnce.Do(func() {
		v, err := Load(bytes.NewReader(formatsCSV))
		if err != nil {
			panic(err)
		}
		defaultVocab = v
	})
	return defaultVocab
}

// Normalize expands short identifiers such as "format_1929" to their full
// form. Other strings are returned trimmed.
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "format_") || strings.HasPrefix(id, "data_") ||
		strings.HasPrefix(id, "operation_") || strings.HasPrefix(id, "topic_") {
		return Prefix + id
	}
	return id
}

// LabelForID returns the label of id, in short or full form.
func (v *Vocabulary) LabelForID(id string) (string, bool) {
	label, ok := v.labels[Normalize(id)]
	return label, ok
}

// IDForLabel returns the full identifier of label.
func (v *Vocabulary) IDForLabel(label string) (string, bool) {
	id, ok := v.ids[strings.TrimSpace(label)]
	return id, ok
}

// Correspond reports whether id is known and labelled label.
func (v *Vocabulary) Correspond(id, label string) bool {
	got, ok := v.LabelForID(id)
	return ok && got == strings.TrimSpace(label)
}

// Len returns the number of identifiers.
func (v *Vocabulary) Len() int {
	return len(v.labels)
}
