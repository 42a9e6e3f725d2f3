package probe

import "github.com/gqlaudit/gqlaudit/internal/finding"

// Registry holds probes grouped by category. Categories keep their
// registration order so scans are deterministic run to run.
type Registry struct {
	order  []finding.Category
	probes map[finding.Category][]Probe
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{probes: make(map[finding.Category][]Probe)}
}

// Register appends a probe under its category.
func (r *Registry) Register(p Probe) {
	cat := p.Category()
	if _, seen := r.probes[cat]; !seen {
		r.order = append(r.order, cat)
	}
	r.probes[cat] = append(r.probes[cat], p)
}

// Categories returns the categories in registration order.
func (r *Registry) Categories() []finding.Category {
	out := make([]finding.Category, len(r.order))
	copy(out, r.order)
	return out
}

// Probes returns the probes registered under a category, in order.
func (r *Registry) Probes(cat finding.Category) []Probe {
	out := make([]Probe, len(r.probes[cat]))
	copy(out, r.probes[cat])
	return out
}

// Len returns the total number of registered probes.
func (r *Registry) Len() int {
	n := 0
	for _, ps := range r.probes {
		n += len(ps)
	}
	return n
}
