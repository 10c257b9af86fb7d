package tester

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps tester names to testers. Names are case-insensitive.
type Registry struct {
	testers map[string]Tester
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{testers: make(map[string]Tester)}
}

// Register adds t under its own name.
func (r *Registry) Register(t Tester) {
	r.testers[strings.ToLower(t.Name())] = t
}

// Alias registers t under an additional name.
func (r *Registry) Alias(name string, t Tester) {
	r.testers[strings.ToLower(name)] = t
}

// Get returns the tester registered under name.
func (r *Registry) Get(name string) (Tester, bool) {
	t, ok := r.testers[strings.ToLower(name)]
	return t, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.testers))
	for name := range r.testers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered names.
func (r *Registry) Count() int {
	return len(r.testers)
}

// Unregister removes name.
func (r *Registry) Unregister(name string) {
	delete(r.testers, strings.ToLower(name))
}

// Clone returns a copy that can be modified independently.
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	for name, t := range r.testers {
		clone.testers[name] = t
	}
	return clone
}

// DefaultRegistry returns a registry holding every built-in tester.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(DefaultEmptyTester())

	// Binary container formats
	r.Register(DefaultBAMTester())
	r.Register(DefaultBCFTester())
	r.Register(DefaultCRAMTester())

	// Line-oriented formats
	r.Register(DefaultSAMTester())
	r.Register(DefaultVCFTester())
	r.Register(DefaultFASTQTester())
	r.Register(DefaultFASTATester())
	r.Register(DefaultBEDTester())

	gff3 := DefaultGFF3Tester()
	r.Register(gff3)
	r.Alias("gff", gff3)
	r.Register(DefaultGTFTester())

	return r
}

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// GetDefaultRegistry returns a shared DefaultRegistry. Callers must not
// modify it; use Clone.
func GetDefaultRegistry() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = DefaultRegistry()
	})
	return globalRegistry
}
