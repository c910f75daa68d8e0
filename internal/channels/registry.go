// ABOUTME: Static registry of channel adapters keyed by channel id
// ABOUTME: Resolved once at startup; iteration order is registration order

package channels

import (
	"fmt"
)

// Registry holds the known channel adapters. There is no dynamic discovery:
// the set is fixed when the registry is built.
type Registry struct {
	order []Adapter
	byID  map[string]Adapter
}

// NewRegistry builds a registry from the given adapters. Duplicate ids are a
// programming error.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{byID: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.byID[a.ID()]; dup {
			return nil, fmt.Errorf("duplicate channel adapter %q", a.ID())
		}
		r.byID[a.ID()] = a
		r.order = append(r.order, a)
	}
	return r, nil
}

// Get returns the adapter for id, or nil.
func (r *Registry) Get(id string) Adapter {
	return r.byID[id]
}

// All returns the adapters in registration order.
func (r *Registry) All() []Adapter {
	return r.order
}
