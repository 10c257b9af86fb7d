package filesniff

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

//go:embed order.yaml
var defaultOrderYAML []byte

// EmptyTesterName is the entry the dispatcher always tries first.
const EmptyTesterName = "empty"

// Order is the tester order configuration file:
//
//	order:
//	  - bam
//	  - fastq
//	  - ./tools/custom.cwl
//	skip:
//	  - "*.cwl"
//
// Entries without an extension name built-in testers; entries ending in
// .cwl are CWL descriptors. Skip patterns disable matching entries.
type Order struct {
	Order []string `yaml:"order"`
	Skip  []string `yaml:"skip,omitempty"`
}

// DefaultOrder returns the embedded order.
func DefaultOrder() *Order {
	o, err := ParseOrder(bytes.NewReader(defaultOrderYAML))
	if err != nil {
		panic(err)
	}
	return o
}

// LoadOrder reads an order file. An empty path yields DefaultOrder.
func LoadOrder(path string) (*Order, error) {
	if path == "" {
		return DefaultOrder(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &PathError{Op: "open order", Path: path, Err: err}
	}
	defer f.Close()
	o, err := ParseOrder(f)
	if err != nil {
		return nil, &PathError{Op: "parse order", Path: path, Err: err}
	}
	return o, nil
}

// ParseOrder decodes an order document.
func ParseOrder(r io.Reader) (*Order, error) {
	var o Order
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty order document", ErrInvalidOptions)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if len(o.Order) == 0 {
		return nil, fmt.Errorf("%w: order must list at least one tester", ErrInvalidOptions)
	}
	for i, entry := range o.Order {
		o.Order[i] = strings.TrimSpace(entry)
		if o.Order[i] == "" {
			return nil, fmt.Errorf("%w: order entry %d is empty", ErrInvalidOptions, i+1)
		}
	}
	return &o, nil
}

// Effective returns the entries left after applying Skip, without the
// empty tester.
func (o *Order) Effective() ([]string, error) {
	matchers := make([]glob.Glob, 0, len(o.Skip))
	for _, pattern := range o.Skip {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: skip pattern %q: %v", ErrInvalidOptions, pattern, err)
		}
		matchers = append(matchers, g)
	}

	entries := make([]string, 0, len(o.Order))
next:
	for _, entry := range o.Order {
		if strings.EqualFold(entry, EmptyTesterName) {
			continue
		}
		for _, g := range matchers {
			if g.Match(entry) || g.Match(strings.ToLower(entry)) {
				continue next
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Marshal encodes the order as YAML.
func (o *Order) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
