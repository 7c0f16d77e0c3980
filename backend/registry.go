package backend

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateBackend is returned when two descriptors share an ID.
var ErrDuplicateBackend = errors.New("duplicate backend ID")

// Registry is an immutable table of backend descriptors keyed by ID.
// It is built once at startup and never mutated, so reads need no
// locking and routing decisions cannot observe a half-updated table.
type Registry struct {
	descriptors map[string]Descriptor
	ids         []string
}

// NewRegistry builds a registry from the given descriptors. Every
// descriptor is validated; duplicate IDs are rejected.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{descriptors: make(map[string]Descriptor, len(descs))}

	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Transport == "" {
			d.Transport = TransportStdio
		}
		if _, exists := r.descriptors[d.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBackend, d.ID)
		}
		r.descriptors[d.ID] = d
		r.ids = append(r.ids, d.ID)
	}

	sort.Strings(r.ids)
	return r, nil
}

// Resolve returns the descriptor for the given backend ID.
func (r *Registry) Resolve(id string) (Descriptor, bool) {
	d, ok := r.descriptors[id]
	return d, ok
}

// Has reports whether the registry knows the given backend ID.
func (r *Registry) Has(id string) bool {
	_, ok := r.descriptors[id]
	return ok
}

// IDs returns all backend IDs sorted for deterministic output.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.descriptors)
}
