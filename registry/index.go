// Package registry resolves declarative semantic definitions into an
// immutable, queryable runtime registry. The pipeline is index →
// interpolate → merge profiles → compile; the compiled Registry is
// read-only and safe to share across concurrent readers.
package registry

import (
	"github.com/semreg-dev/semreg/semantic"
)

// Index maps unit names to their raw definitions. Concepts, enums and
// groups share the namespace. The index holds the definitions as given;
// it never mutates them, and it tolerates forward references (a group may
// name a member indexed later).
type Index map[string]semantic.Unit

// NewIndex builds a name index over the given units. It fails with
// *semantic.DuplicateNameError when two units share a name.
func NewIndex(units []semantic.Unit) (Index, error) {
	ix := make(Index, len(units))
	for _, u := range units {
		name := u.UnitName()
		if _, exists := ix[name]; exists {
			return nil, &semantic.DuplicateNameError{Name: name}
		}
		ix[name] = u
	}
	return ix, nil
}

// Lookup returns the unit registered under name.
func (ix Index) Lookup(name string) (semantic.Unit, bool) {
	u, ok := ix[name]
	return u, ok
}
