package creature

import (
	"fmt"
	"sort"
)

// Registry indexes creature templates by ID.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry builds a Registry, rejecting duplicate IDs and evolutions that
// point at unknown templates.
//
// Postcondition: Returns a Registry containing every template, or an error.
func NewRegistry(templates []*Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := r.templates[t.ID]; dup {
			return nil, fmt.Errorf("creature: Registry: template ID %q already registered", t.ID)
		}
		r.templates[t.ID] = t
	}
	for _, t := range templates {
		if t.Evolution == nil {
			continue
		}
		if _, ok := r.templates[t.Evolution.Into]; !ok {
			return nil, fmt.Errorf("creature: Registry: template %q evolves into unknown %q", t.ID, t.Evolution.Into)
		}
	}
	return r, nil
}

// Template returns the template for ref and whether it was found.
func (r *Registry) Template(ref string) (*Template, bool) {
	t, ok := r.templates[ref]
	return t, ok
}

// All returns every template sorted by ID.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of registered templates.
func (r *Registry) Len() int {
	return len(r.templates)
}
