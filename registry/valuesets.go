package registry

import (
	"github.com/semreg-dev/semreg/semantic"
)

// RuntimeUnit is the lookup view over one value-set member: its labelled
// concepts resolved to ids. Concepts expose their own label, enums their
// member labels, groups the labels of their leaf concepts.
type RuntimeUnit struct {
	name    string
	kind    semantic.Kind
	byLabel map[string]semantic.ConceptID
	labels  []string
}

// Name returns the member's unit name.
func (u *RuntimeUnit) Name() string { return u.name }

// Kind returns the member's unit kind.
func (u *RuntimeUnit) Kind() semantic.Kind { return u.kind }

// Lookup resolves a label to its concept id.
func (u *RuntimeUnit) Lookup(label string) (semantic.ConceptID, bool) {
	id, ok := u.byLabel[label]
	return id, ok
}

// Labels returns the member's labels in declaration order.
func (u *RuntimeUnit) Labels() []string {
	out := make([]string, len(u.labels))
	copy(out, u.labels)
	return out
}

// RuntimeValueSet is one compiled value set: name-keyed access to its
// member units.
type RuntimeValueSet struct {
	name  string
	units map[string]*RuntimeUnit
	order []string
}

// Name returns the value-set name.
func (vs *RuntimeValueSet) Name() string { return vs.name }

// Unit returns the member unit registered under name.
func (vs *RuntimeValueSet) Unit(name string) (*RuntimeUnit, bool) {
	u, ok := vs.units[name]
	return u, ok
}

// UnitNames returns member unit names in declaration order.
func (vs *RuntimeValueSet) UnitNames() []string {
	out := make([]string, len(vs.order))
	copy(out, vs.order)
	return out
}

// ValueSets is the compiled collection of value sets.
type ValueSets struct {
	sets  map[string]*RuntimeValueSet
	order []string
}

// Set returns the value set registered under name.
func (v *ValueSets) Set(name string) (*RuntimeValueSet, bool) {
	vs, ok := v.sets[name]
	return vs, ok
}

// Names returns value-set names in declaration order.
func (v *ValueSets) Names() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// CompileValueSets turns interpolated value sets into runtime lookup
// tables. Members must be resolved; a raw reference fails with
// *semantic.UnresolvedReferenceError. Duplicate value-set names fail with
// *semantic.DuplicateNameError.
func CompileValueSets(sets []*semantic.ValueSet) (*ValueSets, error) {
	out := &ValueSets{sets: make(map[string]*RuntimeValueSet, len(sets))}
	for _, vs := range sets {
		if _, exists := out.sets[vs.Name]; exists {
			return nil, &semantic.DuplicateNameError{Name: vs.Name}
		}
		compiled := &RuntimeValueSet{
			name:  vs.Name,
			units: make(map[string]*RuntimeUnit, len(vs.Members)),
		}
		for _, m := range vs.Members {
			if !m.Resolved() {
				return nil, &semantic.UnresolvedReferenceError{Name: m.Name}
			}
			ru, err := compileRuntimeUnit(m.Unit)
			if err != nil {
				return nil, err
			}
			compiled.units[ru.name] = ru
			compiled.order = append(compiled.order, ru.name)
		}
		out.sets[vs.Name] = compiled
		out.order = append(out.order, vs.Name)
	}
	return out, nil
}

func compileRuntimeUnit(u semantic.Unit) (*RuntimeUnit, error) {
	ru := &RuntimeUnit{
		name:    u.UnitName(),
		kind:    u.UnitKind(),
		byLabel: make(map[string]semantic.ConceptID),
	}
	add := func(label string, id semantic.ConceptID) {
		if label == "" {
			return
		}
		if _, exists := ru.byLabel[label]; exists {
			return
		}
		ru.byLabel[label] = id
		ru.labels = append(ru.labels, label)
	}

	switch v := u.(type) {
	case *semantic.Concept:
		add(v.Label, v.ConceptID)
	case *semantic.Enum:
		for _, m := range v.Members {
			add(m.Label, m.ConceptID)
		}
	case *semantic.Group:
		if err := addGroupLabels(v, add, make(map[*semantic.Group]bool)); err != nil {
			return nil, err
		}
	}
	return ru, nil
}

func addGroupLabels(g *semantic.Group, add func(string, semantic.ConceptID), visiting map[*semantic.Group]bool) error {
	if visiting[g] {
		return &semantic.CyclicReferenceError{Path: []string{g.Name}}
	}
	visiting[g] = true
	defer delete(visiting, g)

	for _, m := range g.Members {
		if !m.Resolved() {
			return &semantic.UnresolvedReferenceError{Name: m.Name}
		}
		switch v := m.Unit.(type) {
		case *semantic.Concept:
			add(v.Label, v.ConceptID)
		case *semantic.Enum:
			for _, em := range v.Members {
				add(em.Label, em.ConceptID)
			}
		case *semantic.Group:
			if err := addGroupLabels(v, add, visiting); err != nil {
				return err
			}
		}
	}
	return nil
}
