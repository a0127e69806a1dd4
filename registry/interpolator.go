package registry

import (
	"fmt"
	"slices"

	"github.com/semreg-dev/semreg/semantic"
)

// resolveState tracks a unit through the depth-first walk.
type resolveState int

const (
	stateRaw resolveState = iota
	stateResolving
	stateResolved
)

// Interpolator replaces raw string references with the indexed unit
// objects, depth-first and memoized per name. Every site referencing the
// same name receives the same resolved object, which the traversal layer
// relies on for identity-keyed caching.
//
// A visiting set guards the walk: re-entering a name that is still being
// resolved fails with *semantic.CyclicReferenceError carrying the cycle
// path. References already resolved (constructed with a Unit) pass
// through untouched.
type Interpolator struct {
	index Index
	state map[string]resolveState
	stack []string
}

// NewInterpolator returns an interpolator resolving against the index.
func NewInterpolator(index Index) *Interpolator {
	return &Interpolator{
		index: index,
		state: make(map[string]resolveState),
	}
}

// ResolveRef links ref to its unit and resolves the unit's own references
// recursively. Raw refs to names absent from the index fail with
// *semantic.UnresolvedReferenceError.
func (it *Interpolator) ResolveRef(ref *semantic.UnitRef) error {
	if ref.Unit == nil {
		u, ok := it.index[ref.Name]
		if !ok {
			return &semantic.UnresolvedReferenceError{Name: ref.Name}
		}
		ref.Unit = u
	}
	return it.resolveUnit(ref.Unit)
}

// ResolveUnit resolves the internal references of a unit (concept parents,
// group members). Enums carry no references.
func (it *Interpolator) ResolveUnit(u semantic.Unit) error {
	return it.resolveUnit(u)
}

// ResolveFragment resolves the entity and value references of every
// template in the fragment.
func (it *Interpolator) ResolveFragment(frag *semantic.Fragment) error {
	for _, g := range frag.Groups {
		for _, tpl := range g.Members {
			if err := it.ResolveTemplate(tpl); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResolveTemplate resolves a single template's unit references. Profile
// references are a separate namespace and are handled by ProfileMerger.
func (it *Interpolator) ResolveTemplate(tpl *semantic.Template) error {
	if err := it.ResolveRef(&tpl.EntityConcept); err != nil {
		return err
	}
	if tpl.ValueConcept != nil {
		if err := it.ResolveRef(tpl.ValueConcept); err != nil {
			return err
		}
	}
	return nil
}

// ResolveValueSet resolves every member reference of a value set.
func (it *Interpolator) ResolveValueSet(vs *semantic.ValueSet) error {
	for i := range vs.Members {
		if err := it.ResolveRef(&vs.Members[i]); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpolator) resolveUnit(u semantic.Unit) error {
	name := u.UnitName()
	switch it.state[name] {
	case stateResolved:
		return nil
	case stateResolving:
		return &semantic.CyclicReferenceError{Path: append(slices.Clone(it.stack), name)}
	}

	it.state[name] = stateResolving
	it.stack = append(it.stack, name)
	defer func() { it.stack = it.stack[:len(it.stack)-1] }()

	switch v := u.(type) {
	case *semantic.Concept:
		for i := range v.Parents {
			if err := it.ResolveRef(&v.Parents[i]); err != nil {
				return err
			}
			if _, ok := v.Parents[i].Unit.(*semantic.Concept); !ok {
				return fmt.Errorf("concept %q: parent %q is a %s, want a concept",
					v.Name, v.Parents[i].Target(), v.Parents[i].Unit.UnitKind())
			}
		}
	case *semantic.Group:
		for i := range v.Members {
			if err := it.ResolveRef(&v.Members[i]); err != nil {
				return err
			}
		}
	case *semantic.Enum:
		// No outgoing references.
	}

	it.state[name] = stateResolved
	return nil
}
