package filesniff

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format is an output serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatCSV, FormatTSV, FormatJSON, FormatYAML}

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown output format %q", ErrInvalidOptions, name)
}

// csvHeader is the first row of csv and tsv output.
var csvHeader = []string{"File Path", "Edam ID", "Label"}

// entry is the value stored per input in json and yaml output. Missing
// label and id are encoded as null.
type entry struct {
	ID        *string    `json:"id" yaml:"id"`
	Label     *string    `json:"label" yaml:"label"`
	Container *Container `json:"container,omitempty" yaml:"container,omitempty"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Encode writes results to w. csv and tsv have one row per result;
// json and yaml map each input to its id, label and container.
func Encode(w io.Writer, results []*Result, format Format) error {
	switch format {
	case FormatCSV:
		return encodeDelimited(w, results, ',')
	case FormatTSV:
		return encodeDelimited(w, results, '\t')
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries(results))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries(results)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidOptions, format)
	}
}

func encodeDelimited(w io.Writer, results []*Result, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write([]string{r.Input, r.ID, r.Label}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// entries keys results by input. A repeated input keeps its last result.
func entries(results []*Result) map[string]entry {
	m := make(map[string]entry, len(results))
	for _, r := range results {
		m[r.Input] = entry{
			ID:        optional(r.ID),
			Label:     optional(r.Label),
			Container: r.Container,
			Error:     r.Error,
		}
	}
	return m
}
