package filesniff

// Result is the classification of one input.
type Result struct {
	// Input is the location string as given by the caller.
	Input string `json:"input" yaml:"input"`
	// OK is false only when the input could not be resolved and the run
	// continued because of KeepGoing.
	OK bool `json:"ok" yaml:"ok"`
	// Label and ID name the detected format. Both are empty when no
	// tester matched.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	// Empty is set for zero-length inputs.
	Empty bool `json:"empty,omitempty" yaml:"empty,omitempty"`
	// Tester names the order entry that matched.
	Tester string `json:"tester,omitempty" yaml:"tester,omitempty"`
	// Error is the resolution error of a failed input.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Container describes the compression removed before testing.
	Container *Container `json:"container,omitempty" yaml:"container,omitempty"`
	// Failures lists, in order, why each tried entry did not match.
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Container is the facet of a decompressed input.
type Container struct {
	Compression string `json:"compression" yaml:"compression"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Failure is one tester's reason for not matching.
type Failure struct {
	Tester string `json:"tester" yaml:"tester"`
	// Kind is the mismatch kind, or "error" for unexpected failures.
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// FailureKindError marks failures that were not format mismatches.
const FailureKindError = "error"

// Recognized reports whether a tester matched with a label or id.
func (r *Result) Recognized() bool {
	return r.Label != "" || r.ID != ""
}
