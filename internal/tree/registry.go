package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownIdentity indicates a lookup for an identity that was never registered.
	ErrUnknownIdentity = errors.New("identity not registered")
	// ErrParentCycle indicates the parent links loop back on themselves.
	ErrParentCycle = errors.New("parent chain contains a cycle")
)

// Placement is the registry entry for one identity: the title seen on first
// encounter and the container it was first found under.
type Placement struct {
	Title  string
	Parent ID
}

// IsRoot reports whether the placement belongs to a configured root.
func (p Placement) IsRoot() bool {
	return p.Parent == None
}

// Registry maps identities to their first placement. Entries are written once
// and never replaced; the only later change is FillTitle supplying a title
// that was empty at registration.
type Registry struct {
	entries map[ID]Placement
	order   []ID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ID]Placement)}
}

// Register records the placement of id if it has not been seen. It returns
// false, leaving the existing entry untouched, when id is already present.
func (r *Registry) Register(id ID, title string, parent ID) bool {
	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = Placement{Title: title, Parent: parent}
	r.order = append(r.order, id)
	return true
}

// FillTitle sets the title of id when it was registered without one. The
// parent is never touched. It reports whether the title changed.
func (r *Registry) FillTitle(id ID, title string) bool {
	p, ok := r.entries[id]
	if !ok || p.Title != "" || title == "" {
		return false
	}
	p.Title = title
	r.entries[id] = p
	return true
}

// Lookup returns the placement of id.
func (r *Registry) Lookup(id ID) (Placement, bool) {
	p, ok := r.entries[id]
	return p, ok
}

// Contains reports whether id has been registered.
func (r *Registry) Contains(id ID) bool {
	_, ok := r.entries[id]
	return ok
}

// Len returns the number of registered identities.
func (r *Registry) Len() int {
	return len(r.entries)
}

// IDs returns registered identities in registration order.
func (r *Registry) IDs() []ID {
	return append([]ID(nil), r.order...)
}

// Ancestors returns the parent chain of id, nearest parent first, ending at a
// root. A root has no ancestors.
func (r *Registry) Ancestors(id ID) ([]ID, error) {
	current, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIdentity, id)
	}
	var chain []ID
	for parent := current.Parent; parent != None; {
		if len(chain) >= len(r.entries) {
			return nil, fmt.Errorf("%w: starting at %q", ErrParentCycle, id)
		}
		placement, ok := r.entries[parent]
		if !ok {
			return nil, fmt.Errorf("%w: parent %q of %q", ErrUnknownIdentity, parent, id)
		}
		chain = append(chain, parent)
		parent = placement.Parent
	}
	return chain, nil
}
